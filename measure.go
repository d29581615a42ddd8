package mdpage

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// PointsPerMillimeter converts font sizes (points) into page units (millimeters).
const PointsPerMillimeter = 72.0 / 25.4

// Font is the size and weight tag of a placed run.
type Font struct {
	Size float64
	Bold bool
}

// Measurer wraps text into lines no wider than width page units.
type Measurer interface {
	Wrap(text string, font Font, width float64) []string
}

// MeasureFunc adapts a function to the Measurer interface.
type MeasureFunc func(text string, font Font, width float64) []string

// Wrap calls f.
func (f MeasureFunc) Wrap(text string, font Font, width float64) []string {
	return f(text, font, width)
}

// GridMeasurer wraps on a fixed glyph grid: every rune is assumed to be
// GlyphEm times the font size wide. Bold text is treated as 10% wider.
type GridMeasurer struct {
	GlyphEm float64
}

const defaultGlyphEm = 0.5

// Columns returns how many glyphs fit into width at font.
func (m GridMeasurer) Columns(font Font, width float64) int {
	em := m.GlyphEm
	if em <= 0 {
		em = defaultGlyphEm
	}
	glyph := font.Size / PointsPerMillimeter * em
	if font.Bold {
		glyph *= 1.1
	}
	if glyph <= 0 {
		return 1
	}
	cols := int(width / glyph)
	if cols < 1 {
		return 1
	}
	return cols
}

// Wrap word-wraps text to the grid, hard-breaking words longer than a line.
func (m GridMeasurer) Wrap(text string, font Font, width float64) []string {
	if text == "" {
		return []string{""}
	}
	cols := m.Columns(font, width)
	wrapped := wrap.String(wordwrap.String(text, cols), cols)
	lines := strings.Split(wrapped, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimRight(line, " ")
		if line == "" && len(out) > 0 {
			continue
		}
		out = append(out, line)
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}
