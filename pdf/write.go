package pdf

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"pkt.systems/mdpage"
)

// WriteRequest contains inputs for materializing a laid-out document.
type WriteRequest struct {
	Writer   io.Writer
	Document mdpage.Document
	// Title is stored in the document metadata and used to derive Filename.
	Title  string
	Config Config
}

// Result describes a written document.
type Result struct {
	Filename string
	Pages    int
	Bytes    int64
}

// Write draws every page of req.Document and writes the PDF to req.Writer.
// A document without pages is written as a single page carrying only its
// footer.
func Write(req WriteRequest) (Result, error) {
	if req.Writer == nil {
		return Result{}, fmt.Errorf("pdf write: writer is nil")
	}
	cfg := DefaultConfig()
	applyConfig(&cfg, req.Config)
	if !isCoreFont(cfg.FontFamily) {
		return Result{}, fmt.Errorf("pdf write: core font family required, got %q", cfg.FontFamily)
	}
	g := req.Document.Geometry
	if g.Width <= 0 || g.Height <= 0 {
		g = mdpage.DefaultGeometry()
	}
	pages := req.Document.Pages
	if len(pages) == 0 {
		pages = []mdpage.Page{{Index: 0, Footer: mdpage.FooterRun(g, 0)}}
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: g.Width, Ht: g.Height},
	})
	doc.SetMargins(g.Margin, g.Margin, g.Margin)
	doc.SetAutoPageBreak(false, g.Margin)
	doc.SetCompression(!cfg.Uncompressed)
	if req.Title != "" {
		doc.SetTitle(req.Title, true)
	}
	if cfg.Author != "" {
		doc.SetAuthor(cfg.Author, true)
	}
	if cfg.Creator != "" {
		doc.SetCreator(cfg.Creator, true)
	}
	doc.SetFont(cfg.FontFamily, "", mdpage.BodyFont().Size)
	if err := doc.Error(); err != nil {
		return Result{}, fmt.Errorf("pdf write: font setup failed: %w", err)
	}

	for _, page := range pages {
		doc.AddPage()
		for _, run := range page.Runs {
			drawRun(doc, run, cfg)
		}
		drawRun(doc, page.Footer, cfg)
	}
	if err := doc.Error(); err != nil {
		return Result{}, fmt.Errorf("pdf write: %w", err)
	}
	cw := &countingWriter{w: req.Writer}
	if err := doc.Output(cw); err != nil {
		return Result{}, fmt.Errorf("pdf write: output: %w", err)
	}
	return Result{
		Filename: FileName(req.Title),
		Pages:    len(pages),
		Bytes:    cw.n,
	}, nil
}

func drawRun(doc *fpdf.Fpdf, run mdpage.PlacedRun, cfg Config) {
	if len(run.Lines) == 0 {
		return
	}
	st := styleForRun(run, cfg)
	doc.SetFont(st.fontFamily, st.fontStyle, st.size)
	doc.SetTextColor(st.gray, st.gray, st.gray)
	for _, line := range run.Lines {
		text := encodeText(line.Text)
		if text == "" {
			continue
		}
		x := run.X
		if run.Footer {
			x -= doc.GetStringWidth(text)
		}
		doc.Text(x, line.Y, text)
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
