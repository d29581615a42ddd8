package mdpage

// LayoutOption configures layout behavior.
type LayoutOption func(*layoutConfig)

type layoutConfig struct {
	measurer   Measurer
	thresholds Thresholds
}

// WithMeasurer sets the text wrapper used to compute line counts.
func WithMeasurer(m Measurer) LayoutOption {
	return func(cfg *layoutConfig) {
		if m != nil {
			cfg.measurer = m
		}
	}
}

// WithThresholds overrides the near-bottom page break distances.
func WithThresholds(t Thresholds) LayoutOption {
	return func(cfg *layoutConfig) {
		cfg.thresholds = t
	}
}
