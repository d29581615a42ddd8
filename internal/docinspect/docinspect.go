// Package docinspect reads back produced PDF files.
package docinspect

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// Report summarizes a PDF file.
type Report struct {
	Pages int
	// Text holds the extracted plain text of each page in order.
	Text []string
}

// Contains reports whether the whitespace-stripped text of page (zero-based)
// contains the whitespace-stripped needle.
func (r Report) Contains(page int, needle string) bool {
	if page < 0 || page >= len(r.Text) {
		return false
	}
	return strings.Contains(squash(r.Text[page]), squash(needle))
}

// Inspect parses the PDF held in data.
func Inspect(data []byte) (Report, error) {
	return read(bytes.NewReader(data), int64(len(data)))
}

// InspectReader reads all of r and parses it.
func InspectReader(r io.Reader) (Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Report{}, fmt.Errorf("inspect: read: %w", err)
	}
	return Inspect(data)
}

// InspectFile parses the PDF at path.
func InspectFile(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("inspect: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return Report{}, fmt.Errorf("inspect: %w", err)
	}
	return read(f, info.Size())
}

func read(r io.ReaderAt, size int64) (report Report, err error) {
	// the reader panics on some malformed inputs
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("inspect: malformed pdf: %v", rec)
		}
	}()
	reader, err := pdflib.NewReader(r, size)
	if err != nil {
		return Report{}, fmt.Errorf("inspect: %w", err)
	}
	report.Pages = reader.NumPage()
	report.Text = make([]string, 0, report.Pages)
	for i := 1; i <= report.Pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			report.Text = append(report.Text, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return Report{}, fmt.Errorf("inspect: page %d: %w", i, err)
		}
		report.Text = append(report.Text, text)
	}
	return report, nil
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}
