package console

import (
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"pkt.systems/mdpage"
)

const (
	defaultWidth = 80
	minWidth     = 10
)

// Renderer renders Markdown to ANSI-styled text.
type Renderer struct {
	theme      Theme
	styles     Styles
	width      int
	hyperlinks bool
	md         goldmark.Markdown
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTheme selects the theme. Nil keeps the default.
func WithTheme(t Theme) Option {
	return func(r *Renderer) {
		if t != nil {
			r.theme = t
		}
	}
}

// WithWidth sets the wrap width in cells.
func WithWidth(width int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
	}
}

// WithHyperlinks emits links as OSC 8 hyperlinks instead of printing the URL.
func WithHyperlinks(enabled bool) Option {
	return func(r *Renderer) {
		r.hyperlinks = enabled
	}
}

// NewRenderer returns a Renderer using the default theme at 80 columns.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		theme: DefaultTheme(),
		width: defaultWidth,
		md:    goldmark.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.width < minWidth {
		r.width = minWidth
	}
	r.styles = r.theme.Styles()
	return r
}

// Theme returns the active theme.
func (r *Renderer) Theme() Theme { return r.theme }

// Width returns the wrap width.
func (r *Renderer) Width() int { return r.width }

// Styles returns the styles of the active theme.
func (r *Renderer) Styles() Styles { return r.styles }

// Render writes the rendered document to w.
func (r *Renderer) Render(w io.Writer, markdown string) error {
	_, err := io.WriteString(w, r.RenderString(markdown))
	return err
}

// RenderString renders markdown after dropping any leading front matter.
func (r *Renderer) RenderString(markdown string) string {
	_, body := mdpage.SplitFrontMatter(markdown)
	return r.render(body)
}

func (r *Renderer) render(markdown string) string {
	src := []byte(markdown)
	doc := r.md.Parser().Parse(text.NewReader(src))
	lines := r.blocks(doc, src, r.width, false)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// blocks renders the children of n. Unless tight, children are separated
// by one blank line.
func (r *Renderer) blocks(n ast.Node, src []byte, width int, tight bool) []string {
	var out []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		lines := r.block(c, src, width)
		if len(lines) == 0 {
			continue
		}
		if len(out) > 0 && !tight {
			out = append(out, "")
		}
		out = append(out, lines...)
	}
	return out
}

func (r *Renderer) block(n ast.Node, src []byte, width int) []string {
	if width < minWidth {
		width = minWidth
	}
	st := r.styles
	switch n := n.(type) {
	case *ast.Heading:
		level := min(max(n.Level, 1), 6)
		base := st.Heading[level-1]
		return wrapWords(paint(base, strings.Repeat("#", level)+" "+r.inline(n, src, base)), width)
	case *ast.Paragraph, *ast.TextBlock:
		return wrapWords(paint(st.Text, r.inline(n, src, st.Text)), width)
	case *ast.List:
		return r.list(n, src, width)
	case *ast.Blockquote:
		bar := paint(st.Quote, "│")
		inner := r.blocks(n, src, width-2, false)
		out := make([]string, 0, len(inner))
		for _, line := range inner {
			if line == "" {
				out = append(out, bar)
				continue
			}
			out = append(out, bar+" "+line)
		}
		return out
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return r.rawLines(n, src, "  ", st.CodeBlock)
	case *ast.HTMLBlock:
		return r.rawLines(n, src, "", Style{})
	case *ast.ThematicBreak:
		return []string{paint(st.ThematicBreak, strings.Repeat("─", min(width, 40)))}
	default:
		return r.blocks(n, src, width, false)
	}
}

func (r *Renderer) list(n *ast.List, src []byte, width int) []string {
	var out []string
	num := n.Start
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "•"
		if n.IsOrdered() {
			marker = strconv.Itoa(num) + "."
			num++
		}
		pad := visibleWidth(marker) + 1
		body := r.blocks(item, src, width-pad, n.IsTight)
		if len(body) == 0 {
			body = []string{""}
		}
		if len(out) > 0 && !n.IsTight {
			out = append(out, "")
		}
		for i, line := range body {
			switch {
			case i == 0:
				out = append(out, strings.TrimRight(paint(r.styles.ListMarker, marker)+" "+line, " "))
			case line == "":
				out = append(out, "")
			default:
				out = append(out, strings.Repeat(" ", pad)+line)
			}
		}
	}
	return out
}

func (r *Renderer) rawLines(n ast.Node, src []byte, indent string, s Style) []string {
	lines := n.Lines()
	out := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(src)), "\r\n")
		out = append(out, indent+paint(s, line))
	}
	return out
}

// inline renders the inline children of n. Nested styles restore base when
// they end.
func (r *Renderer) inline(n ast.Node, src []byte, base Style) string {
	var b strings.Builder
	r.inlineChildren(&b, n, src, base)
	return strings.TrimSpace(b.String())
}

func (r *Renderer) inlineChildren(b *strings.Builder, n ast.Node, src []byte, base Style) {
	st := r.styles
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(src))
			if c.SoftLineBreak() || c.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		case *ast.CodeSpan:
			styled(b, st.CodeInline, base, plainText(c, src))
		case *ast.Emphasis:
			s := st.Emphasis
			if c.Level >= 2 {
				s = st.Strong
			}
			styled(b, s, base, r.inline(c, src, s))
		case *ast.Link:
			r.link(b, string(c.Destination), r.inline(c, src, st.LinkText), base)
		case *ast.AutoLink:
			r.link(b, string(c.URL(src)), string(c.Label(src)), base)
		case *ast.Image:
			b.WriteString(plainText(c, src))
		case *ast.RawHTML:
			for i := 0; i < c.Segments.Len(); i++ {
				seg := c.Segments.At(i)
				b.Write(seg.Value(src))
			}
		default:
			r.inlineChildren(b, c, src, base)
		}
	}
}

func (r *Renderer) link(b *strings.Builder, url, label string, base Style) {
	st := r.styles
	if label == "" {
		label = url
	}
	if r.hyperlinks && url != "" {
		styled(b, st.LinkText, base, hyperlink(url, label))
		return
	}
	styled(b, st.LinkText, base, label)
	if url != "" && url != label {
		b.WriteByte(' ')
		styled(b, st.LinkURL, base, "("+fitURL(url, max(r.width/2, 16))+")")
	}
}

func styled(b *strings.Builder, s, base Style, text string) {
	if s.Prefix == "" {
		b.WriteString(text)
		return
	}
	b.WriteString(s.Prefix)
	b.WriteString(text)
	b.WriteString(ansiReset)
	b.WriteString(base.Prefix)
}

func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(src))
			if c.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
