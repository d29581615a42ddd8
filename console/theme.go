package console

import (
	"sort"
	"strings"
)

const (
	ansiReset     = "\x1b[0m"
	ansiBold      = "\x1b[1m"
	ansiFaint     = "\x1b[2m"
	ansiItalic    = "\x1b[3m"
	ansiUnderline = "\x1b[4m"
)

// Style describes a terminal style as an ANSI prefix sequence.
type Style struct {
	Prefix string
}

// Styles groups the semantic styles used by the renderer.
type Styles struct {
	Text          Style
	Heading       [6]Style
	Emphasis      Style
	Strong        Style
	CodeInline    Style
	CodeBlock     Style
	Quote         Style
	ListMarker    Style
	LinkText      Style
	LinkURL       Style
	ThematicBreak Style
	Notice        Style
	Muted         Style
}

// Theme provides named styles for Markdown rendering.
type Theme interface {
	Name() string
	Styles() Styles
}

type theme struct {
	name   string
	styles Styles
}

func (t theme) Name() string   { return t.name }
func (t theme) Styles() Styles { return t.styles }

// NewTheme returns a Theme from a Styles definition.
func NewTheme(name string, styles Styles) Theme {
	return theme{name: name, styles: styles}
}

func style(prefixes ...string) Style {
	var b strings.Builder
	for _, p := range prefixes {
		b.WriteString(p)
	}
	return Style{Prefix: b.String()}
}

func fg(code string) string {
	return "\x1b[38;5;" + code + "m"
}

type palette struct {
	text, h1, h2, h3, h4, emphasis, strong, code, quote, marker, link, url, rule, notice, muted string
}

func stylesFromPalette(p palette) Styles {
	return Styles{
		Text:          style(p.text),
		Heading:       [6]Style{style(ansiBold, p.h1), style(ansiBold, p.h2), style(ansiBold, p.h3), style(ansiBold, p.h4), style(ansiBold, p.h4), style(ansiBold, p.h4)},
		Emphasis:      style(ansiItalic, p.emphasis),
		Strong:        style(ansiBold, p.strong),
		CodeInline:    style(p.code),
		CodeBlock:     style(p.code),
		Quote:         style(ansiItalic, p.quote),
		ListMarker:    style(p.marker),
		LinkText:      style(ansiUnderline, p.link),
		LinkURL:       style(p.url),
		ThematicBreak: style(p.rule),
		Notice:        style(ansiBold, p.notice),
		Muted:         style(ansiFaint, p.muted),
	}
}

var (
	paletteDark = palette{
		text: fg("252"), h1: fg("81"), h2: fg("117"), h3: fg("153"), h4: fg("189"),
		emphasis: fg("223"), strong: fg("231"), code: fg("186"), quote: fg("246"),
		marker: fg("81"), link: fg("75"), url: fg("244"), rule: fg("240"),
		notice: fg("203"), muted: fg("244"),
	}
	paletteLight = palette{
		text: fg("235"), h1: fg("25"), h2: fg("31"), h3: fg("30"), h4: fg("23"),
		emphasis: fg("94"), strong: fg("16"), code: fg("88"), quote: fg("242"),
		marker: fg("25"), link: fg("26"), url: fg("244"), rule: fg("250"),
		notice: fg("160"), muted: fg("245"),
	}
	paletteDefault = palette{
		h1: "\x1b[36m", h2: "\x1b[36m", h3: "\x1b[34m", h4: "\x1b[34m",
		code: "\x1b[33m", quote: "\x1b[90m", marker: "\x1b[36m", link: "\x1b[34m",
		url: "\x1b[90m", rule: "\x1b[90m", notice: "\x1b[31m", muted: "\x1b[90m",
	}
)

// builtinThemes holds the selectable themes. "boring" emits no escapes.
var builtinThemes = map[string]Theme{
	"default": theme{name: "default", styles: stylesFromPalette(paletteDefault)},
	"dark":    theme{name: "dark", styles: stylesFromPalette(paletteDark)},
	"light":   theme{name: "light", styles: stylesFromPalette(paletteLight)},
	"boring":  theme{name: "boring"},
}

// AvailableThemes returns the names of built-in themes.
func AvailableThemes() []string {
	names := make([]string, 0, len(builtinThemes))
	for name := range builtinThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThemeByName returns a built-in theme by name.
func ThemeByName(name string) (Theme, bool) {
	if name == "" {
		return builtinThemes["default"], true
	}
	normalized := strings.ToLower(strings.TrimSpace(name))
	t, ok := builtinThemes[normalized]
	return t, ok
}

// DefaultTheme returns the default built-in theme.
func DefaultTheme() Theme {
	return builtinThemes["default"]
}

// Toggle returns the theme to switch to from current: light and dark swap,
// anything else moves to dark.
func Toggle(current Theme) Theme {
	if current != nil && current.Name() == "dark" {
		return builtinThemes["light"]
	}
	return builtinThemes["dark"]
}

func paint(s Style, text string) string {
	if s.Prefix == "" || text == "" {
		return text
	}
	return s.Prefix + text + ansiReset
}
