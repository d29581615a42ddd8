// Package pdf materializes laid-out mdpage documents as PDF files.
//
// Write draws every run of an mdpage.Document with a core PDF font and adds
// the "Page N" footers. Render runs the whole pipeline from Markdown text:
//
//	res, err := pdf.Render(pdf.RenderRequest{
//		Reader: strings.NewReader("# Report\n\nHello PDF.\n"),
//		Writer: outFile,
//		Title:  "Report",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res.Filename, res.Pages)
//
// Text is drawn with the Windows-1252 encoding of the core fonts; runes
// outside that code page are dropped. NewMeasurer wraps text with the same
// font metrics the writer uses.
package pdf
