package pdf

import "pkt.systems/mdpage"

type pdfStyle struct {
	fontFamily string
	fontStyle  string
	size       float64
	gray       int
}

func styleForRun(run mdpage.PlacedRun, cfg Config) pdfStyle {
	st := pdfStyle{
		fontFamily: cfg.FontFamily,
		size:       run.Font.Size,
		gray:       clampGray(cfg.TextGray),
	}
	if run.Font.Bold {
		st.fontStyle = "B"
	}
	if run.Footer {
		st.gray = clampGray(cfg.FooterGray)
		if cfg.FooterFontSize > 0 {
			st.size = cfg.FooterFontSize
		}
	}
	if st.size <= 0 {
		st.size = mdpage.BodyFont().Size
	}
	return st
}
