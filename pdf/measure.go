package pdf

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-pdf/fpdf"

	"pkt.systems/mdpage"
)

// Measurer wraps text using core font metrics. It implements mdpage.Measurer
// and is safe for concurrent use.
type Measurer struct {
	mu     sync.Mutex
	pdf    *fpdf.Fpdf
	family string
}

// NewMeasurer returns a measurer for the font family in cfg.
func NewMeasurer(cfg Config) (*Measurer, error) {
	merged := DefaultConfig()
	applyConfig(&merged, cfg)
	if !isCoreFont(merged.FontFamily) {
		return nil, fmt.Errorf("pdf measure: core font family required, got %q", merged.FontFamily)
	}
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont(merged.FontFamily, "", 11)
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("pdf measure: font setup failed: %w", err)
	}
	return &Measurer{pdf: doc, family: merged.FontFamily}, nil
}

// Width returns the width of text in millimeters.
func (m *Measurer) Width(text string, font mdpage.Font) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setFont(font)
	return m.pdf.GetStringWidth(encodeText(text))
}

// Wrap greedily fills lines up to width, breaking words that do not fit on a
// line of their own by runes.
func (m *Measurer) Wrap(text string, font mdpage.Font, width float64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setFont(font)
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	var line string
	for _, word := range words {
		if line != "" {
			candidate := line + " " + word
			if m.measure(candidate) <= width {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = ""
		}
		if m.measure(word) <= width {
			line = word
			continue
		}
		parts := m.splitRunesToWidth(word, width)
		lines = append(lines, parts[:len(parts)-1]...)
		line = parts[len(parts)-1]
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func (m *Measurer) setFont(font mdpage.Font) {
	style := ""
	if font.Bold {
		style = "B"
	}
	m.pdf.SetFont(m.family, style, font.Size)
}

func (m *Measurer) measure(text string) float64 {
	return m.pdf.GetStringWidth(encodeText(text))
}

func (m *Measurer) splitRunesToWidth(word string, width float64) []string {
	var parts []string
	var current strings.Builder
	for _, r := range word {
		next := current.String() + string(r)
		if current.Len() > 0 && m.measure(next) > width {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 || len(parts) == 0 {
		parts = append(parts, current.String())
	}
	return parts
}
