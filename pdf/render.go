package pdf

import (
	"fmt"
	"io"

	"pkt.systems/mdpage"
)

// RenderRequest contains inputs for the Markdown to PDF pipeline.
type RenderRequest struct {
	Reader io.Reader
	Writer io.Writer
	Title  string
	Config Config
	// Geometry defaults to mdpage.DefaultGeometry.
	Geometry mdpage.PageGeometry
	// Strict rejects invalid UTF-8 or binary input instead of sanitizing it.
	Strict  bool
	Options []mdpage.LayoutOption
}

// Render segments the Markdown read from req.Reader, lays it out with font
// metrics matching the writer and writes the PDF to req.Writer.
func Render(req RenderRequest) (Result, error) {
	if req.Reader == nil {
		return Result{}, fmt.Errorf("pdf render: reader is nil")
	}
	if req.Writer == nil {
		return Result{}, fmt.Errorf("pdf render: writer is nil")
	}
	src, err := io.ReadAll(req.Reader)
	if err != nil {
		return Result{}, fmt.Errorf("pdf render: read: %w", err)
	}
	if req.Strict {
		if err := mdpage.ValidateInput(src); err != nil {
			return Result{}, fmt.Errorf("pdf render: %w", err)
		}
	}
	doc, err := LayoutText(string(src), req.Geometry, req.Config, req.Options...)
	if err != nil {
		return Result{}, fmt.Errorf("pdf render: %w", err)
	}
	res, err := Write(WriteRequest{
		Writer:   req.Writer,
		Document: doc,
		Title:    req.Title,
		Config:   req.Config,
	})
	if err != nil {
		return Result{}, fmt.Errorf("pdf render: %w", err)
	}
	return res, nil
}

// LayoutText sanitizes and segments text and lays it out on g using the
// font metrics of cfg. A zero geometry means mdpage.DefaultGeometry.
func LayoutText(text string, g mdpage.PageGeometry, cfg Config, opts ...mdpage.LayoutOption) (mdpage.Document, error) {
	if g.Width <= 0 || g.Height <= 0 {
		g = mdpage.DefaultGeometry()
	}
	m, err := NewMeasurer(cfg)
	if err != nil {
		return mdpage.Document{}, err
	}
	blocks := mdpage.Segment(mdpage.Sanitize(text))
	all := append([]mdpage.LayoutOption{mdpage.WithMeasurer(m)}, opts...)
	return mdpage.Layout(blocks, g, all...), nil
}
