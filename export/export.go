// Package export guards the user-facing export action. An Exporter turns the
// final answer text into a PDF at most once at a time and never touches the
// writer for empty answers.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pkt.systems/mdpage"
	"pkt.systems/mdpage/internal/metrics"
	"pkt.systems/mdpage/pdf"
)

var (
	// ErrNothingToExport is returned for empty or whitespace-only answers.
	ErrNothingToExport = errors.New("nothing to export")
	// ErrExportInProgress is returned while another export runs.
	ErrExportInProgress = errors.New("export in progress")
)

// State is the state of an Exporter.
type State int32

const (
	Idle State = iota
	Exporting
)

func (s State) String() string {
	if s == Exporting {
		return "exporting"
	}
	return "idle"
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithConfig sets the PDF writer configuration.
func WithConfig(cfg pdf.Config) Option {
	return func(e *Exporter) {
		e.cfg = cfg
	}
}

// WithGeometry sets the page geometry.
func WithGeometry(g mdpage.PageGeometry) Option {
	return func(e *Exporter) {
		e.geometry = g
	}
}

// WithLayoutOptions adds layout options such as thresholds.
func WithLayoutOptions(opts ...mdpage.LayoutOption) Option {
	return func(e *Exporter) {
		e.layout = append(e.layout, opts...)
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Exporter) {
		e.log = l
	}
}

// Exporter runs exports through the Idle -> Exporting -> Idle cycle.
type Exporter struct {
	cfg      pdf.Config
	geometry mdpage.PageGeometry
	layout   []mdpage.LayoutOption
	log      zerolog.Logger

	mu    sync.Mutex
	state State
}

// New returns an idle Exporter using A4 pages and the default PDF settings.
func New(opts ...Option) *Exporter {
	e := &Exporter{
		cfg:      pdf.DefaultConfig(),
		geometry: mdpage.DefaultGeometry(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// State returns the current state.
func (e *Exporter) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Enabled reports whether the export action should be offered: the answer
// is complete and non-empty and no export runs.
func (e *Exporter) Enabled(text string, streaming bool) bool {
	return !streaming && strings.TrimSpace(text) != "" && e.State() == Idle
}

// Export renders text and writes the PDF to w. The document is built in
// memory first so w receives nothing when layout or writing fails.
func (e *Exporter) Export(ctx context.Context, w io.Writer, text, title string) (pdf.Result, error) {
	if strings.TrimSpace(text) == "" {
		metrics.Exports.WithLabelValues("empty").Inc()
		return pdf.Result{}, ErrNothingToExport
	}
	if !e.begin() {
		metrics.Exports.WithLabelValues("busy").Inc()
		return pdf.Result{}, ErrExportInProgress
	}
	defer e.end()

	start := time.Now()
	res, buf, err := e.render(ctx, text, title)
	if err != nil {
		metrics.Exports.WithLabelValues("error").Inc()
		e.log.Error().Err(err).Str("title", title).Msg("export failed")
		return pdf.Result{}, err
	}
	if _, err := buf.WriteTo(w); err != nil {
		metrics.Exports.WithLabelValues("error").Inc()
		return pdf.Result{}, fmt.Errorf("export: write: %w", err)
	}
	metrics.Exports.WithLabelValues("ok").Inc()
	metrics.ExportPages.Observe(float64(res.Pages))
	e.log.Info().
		Str("file", res.Filename).
		Int("pages", res.Pages).
		Int64("bytes", res.Bytes).
		Dur("took", time.Since(start)).
		Msg("exported")
	return res, nil
}

// ExportFile writes the PDF into dir under the derived file name and returns
// its path. The file appears atomically.
func (e *Exporter) ExportFile(ctx context.Context, dir, text, title string) (string, pdf.Result, error) {
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, ".mdpage-*.pdf")
	if err != nil {
		return "", pdf.Result{}, fmt.Errorf("export: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	res, err := e.Export(ctx, tmp, text, title)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("export: close: %w", closeErr)
	}
	if err != nil {
		return "", pdf.Result{}, err
	}
	path := filepath.Join(dir, res.Filename)
	if err := os.Rename(tmpPath, path); err != nil {
		return "", pdf.Result{}, fmt.Errorf("export: %w", err)
	}
	return path, res, nil
}

func (e *Exporter) render(ctx context.Context, text, title string) (pdf.Result, *bytes.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return pdf.Result{}, nil, err
	}
	doc, err := pdf.LayoutText(text, e.geometry, e.cfg, e.layout...)
	if err != nil {
		return pdf.Result{}, nil, fmt.Errorf("export: %w", err)
	}
	var buf bytes.Buffer
	res, err := pdf.Write(pdf.WriteRequest{
		Writer:   &buf,
		Document: doc,
		Title:    title,
		Config:   e.cfg,
	})
	if err != nil {
		return pdf.Result{}, nil, fmt.Errorf("export: %w", err)
	}
	return res, &buf, nil
}

func (e *Exporter) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Idle {
		return false
	}
	e.state = Exporting
	return true
}

func (e *Exporter) end() {
	e.mu.Lock()
	e.state = Idle
	e.mu.Unlock()
}
