package mdpage

// A4 page size in millimeters.
const (
	A4Width  = 210.0
	A4Height = 297.0

	DefaultMargin = 20.0
)

// PageGeometry is the fixed page configuration used for one layout pass.
type PageGeometry struct {
	Width        float64
	Height       float64
	Margin       float64
	ContentWidth float64
}

// NewGeometry derives a PageGeometry with ContentWidth = width - 2*margin.
func NewGeometry(width, height, margin float64) PageGeometry {
	return PageGeometry{
		Width:        width,
		Height:       height,
		Margin:       margin,
		ContentWidth: width - 2*margin,
	}
}

// DefaultGeometry returns an A4 portrait page with 20mm margins.
func DefaultGeometry() PageGeometry {
	return NewGeometry(A4Width, A4Height, DefaultMargin)
}

// Bottom returns the y coordinate of the bottom margin.
func (g PageGeometry) Bottom() float64 {
	return g.Height - g.Margin
}

// Thresholds hold the near-bottom distances that force an early page break.
// The defaults are tuned for DefaultGeometry.
type Thresholds struct {
	// BlockBreak is checked before every block.
	BlockBreak float64
	// ParagraphBreak applies to paragraphs that would overflow.
	ParagraphBreak float64
	// ListBreak is checked before every list item.
	ListBreak float64
}

// DefaultThresholds returns the standard break distances.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BlockBreak:     10,
		ParagraphBreak: 30,
		ListBreak:      15,
	}
}
