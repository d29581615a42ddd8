// Package mdpage turns a Markdown answer into a paginated document layout.
//
// The package is built for export: it segments the complete answer text into
// headings, paragraphs and flat lists, then places those blocks onto fixed-size
// pages. Wrapping is delegated to a Measurer so the same layout rules serve the
// PDF writer (font metrics) and tests (a fixed glyph grid).
//
// Core properties:
//   - Pure, total segmentation; unknown line shapes become paragraphs
//   - Deterministic pagination with a footer on every page
//   - Overflow thresholds are configuration, not constants
//
// Example:
//
//	blocks := mdpage.Segment("# Hello\n\nMarkdown in, pages out.\n")
//	doc := mdpage.Layout(blocks, mdpage.DefaultGeometry())
//	for _, page := range doc.Pages {
//		fmt.Println(page.Footer.Lines[0], len(page.Runs))
//	}
//
// The pdf subpackage materializes a Document with real font metrics.
package mdpage
