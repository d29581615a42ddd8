package pdf

// Config holds PDF writer settings.
type Config struct {
	// FontFamily must be a core PDF font.
	FontFamily     string
	FooterFontSize float64
	// FooterGray and TextGray are 0-255 gray levels.
	FooterGray int
	TextGray   int
	Author     string
	Creator    string
	// Uncompressed writes plain content streams.
	Uncompressed bool
}

// DefaultConfig returns a baseline configuration.
func DefaultConfig() Config {
	return Config{
		FontFamily:     "Helvetica",
		FooterFontSize: 9,
		FooterGray:     100,
		TextGray:       0,
		Creator:        "mdpage",
	}
}

func applyConfig(dst *Config, src Config) {
	if src.FontFamily != "" {
		dst.FontFamily = src.FontFamily
	}
	if src.FooterFontSize > 0 {
		dst.FooterFontSize = src.FooterFontSize
	}
	if src.FooterGray > 0 {
		dst.FooterGray = src.FooterGray
	}
	if src.TextGray > 0 {
		dst.TextGray = src.TextGray
	}
	if src.Uncompressed {
		dst.Uncompressed = true
	}
	if src.Author != "" {
		dst.Author = src.Author
	}
	if src.Creator != "" {
		dst.Creator = src.Creator
	}
}

func isCoreFont(name string) bool {
	switch name {
	case "Courier", "Helvetica", "Times":
		return true
	default:
		return false
	}
}

func clampGray(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return v
	}
}
