package mdpage

import "strconv"

// Spacing and font rules, in page units and points.
const (
	headingGap           = 5.0
	headingAfter         = 5.0
	headingH1LineHeight  = 8.0
	headingLineHeight    = 7.0
	bodyFontSize         = 11.0
	bodyLineHeight       = 5.0
	paragraphAfter       = 5.0
	listIndent           = 5.0
	listItemAfter        = 3.0
	listAfter            = 2.0
	footerFontSize       = 9.0
	footerBaselineOffset = 10.0

	// Bullet is the glyph prefixed to list items.
	Bullet = "•"
)

// Line is one wrapped line of a run and its baseline.
type Line struct {
	Text string
	Y    float64
}

// PlacedRun is a wrapped text fragment positioned on a page. A list yields one
// run per page it touches, holding the lines of every item placed there.
type PlacedRun struct {
	// Block is the index of the source block, -1 for footers.
	Block int
	Kind  BlockKind
	Lines []Line
	Font  Font
	X     float64
	Y     float64
	Page  int
	// Footer runs are right-aligned on X and drawn muted.
	Footer bool
}

// Text returns the run's lines without positions.
func (r PlacedRun) Text() []string {
	out := make([]string, len(r.Lines))
	for i, line := range r.Lines {
		out[i] = line.Text
	}
	return out
}

// Page holds the runs placed on one page plus its footer.
type Page struct {
	Index  int
	Runs   []PlacedRun
	Footer PlacedRun
}

// Document is the result of a layout pass.
type Document struct {
	Geometry PageGeometry
	Pages    []Page
}

// PageCount returns the number of pages.
func (d Document) PageCount() int {
	return len(d.Pages)
}

// Runs returns the body runs of all pages in placement order.
func (d Document) Runs() []PlacedRun {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Runs)
	}
	runs := make([]PlacedRun, 0, n)
	for _, p := range d.Pages {
		runs = append(runs, p.Runs...)
	}
	return runs
}

// FooterRun returns the "Page N" footer for a zero-based page index.
func FooterRun(g PageGeometry, page int) PlacedRun {
	y := g.Height - footerBaselineOffset
	return PlacedRun{
		Block:  -1,
		Lines:  []Line{{Text: "Page " + strconv.Itoa(page+1), Y: y}},
		Font:   Font{Size: footerFontSize},
		X:      g.Width - g.Margin,
		Y:      y,
		Page:   page,
		Footer: true,
	}
}

// HeadingFont returns the font used for a heading level.
func HeadingFont(level int) Font {
	switch level {
	case 1:
		return Font{Size: 18, Bold: true}
	case 2:
		return Font{Size: 16, Bold: true}
	default:
		return Font{Size: 14, Bold: true}
	}
}

// BodyFont returns the font used for paragraphs and list items.
func BodyFont() Font {
	return Font{Size: bodyFontSize}
}

// Layout places blocks onto pages of geometry g.
//
// Blocks are processed strictly in order. A block starts on a new page when the
// cursor is past the block break threshold; paragraphs only break early when
// they would overflow and the cursor is already near the bottom; list items
// are checked one by one. Headings are never moved to avoid overflow.
func Layout(blocks []Block, g PageGeometry, opts ...LayoutOption) Document {
	cfg := layoutConfig{
		measurer:   GridMeasurer{},
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	l := layouter{
		g:   g,
		cfg: cfg,
		doc: Document{Geometry: g},
	}
	l.addPage()
	for i, b := range blocks {
		if !l.atTop() && l.cur.y > g.Bottom()-cfg.thresholds.BlockBreak {
			l.pageBreak()
		}
		switch b.Kind {
		case BlockHeading:
			l.placeHeading(i, b)
		case BlockParagraph:
			l.placeParagraph(i, b)
		case BlockList:
			l.placeList(i, b)
		}
	}
	return l.doc
}

type cursor struct {
	y    float64
	page int
}

type layouter struct {
	g   PageGeometry
	cfg layoutConfig
	doc Document
	cur cursor
}

func (l *layouter) addPage() {
	idx := len(l.doc.Pages)
	l.doc.Pages = append(l.doc.Pages, Page{
		Index:  idx,
		Footer: FooterRun(l.g, idx),
	})
	l.cur = cursor{y: l.g.Margin, page: idx}
}

func (l *layouter) pageBreak() {
	l.addPage()
}

// atTop reports whether nothing has been placed on the current page yet.
// Breaking there would only produce an empty page.
func (l *layouter) atTop() bool {
	return l.cur.y <= l.g.Margin
}

// place appends a run whose lines start at the cursor and returns its index
// on the current page.
func (l *layouter) place(run PlacedRun, lines []string, lineHeight float64) int {
	run.Page = l.cur.page
	run.Y = l.cur.y
	run.Lines = positionLines(lines, l.cur.y, lineHeight)
	page := &l.doc.Pages[l.cur.page]
	page.Runs = append(page.Runs, run)
	return len(page.Runs) - 1
}

func positionLines(lines []string, y, lineHeight float64) []Line {
	out := make([]Line, len(lines))
	for i, text := range lines {
		out[i] = Line{Text: text, Y: y + float64(i)*lineHeight}
	}
	return out
}

func (l *layouter) placeHeading(idx int, b Block) {
	if !l.atTop() {
		l.cur.y += headingGap
	}
	font := HeadingFont(b.Level)
	lineHeight := headingLineHeight
	if b.Level == 1 {
		lineHeight = headingH1LineHeight
	}
	lines := l.wrap(b.Text, font, l.g.ContentWidth)
	l.place(PlacedRun{
		Block: idx,
		Kind:  BlockHeading,
		Font:  font,
		X:     l.g.Margin,
	}, lines, lineHeight)
	l.cur.y += float64(len(lines))*lineHeight + headingAfter
}

func (l *layouter) placeParagraph(idx int, b Block) {
	font := BodyFont()
	lines := l.wrap(b.Text, font, l.g.ContentWidth)
	height := float64(len(lines)) * bodyLineHeight
	bottom := l.g.Bottom()
	if !l.atTop() && l.cur.y+height > bottom && l.cur.y > bottom-l.cfg.thresholds.ParagraphBreak {
		l.pageBreak()
	}
	l.place(PlacedRun{
		Block: idx,
		Kind:  BlockParagraph,
		Font:  font,
		X:     l.g.Margin,
	}, lines, bodyLineHeight)
	l.cur.y += height + paragraphAfter
}

func (l *layouter) placeList(idx int, b Block) {
	font := BodyFont()
	bottom := l.g.Bottom()
	run := -1
	for _, item := range b.Items {
		if !l.atTop() && l.cur.y > bottom-l.cfg.thresholds.ListBreak {
			l.pageBreak()
			run = -1
		}
		lines := l.wrap(Bullet+" "+item, font, l.g.ContentWidth-listIndent)
		if run < 0 {
			run = l.place(PlacedRun{
				Block: idx,
				Kind:  BlockList,
				Font:  font,
				X:     l.g.Margin + listIndent,
			}, lines, bodyLineHeight)
		} else {
			page := &l.doc.Pages[l.cur.page]
			page.Runs[run].Lines = append(page.Runs[run].Lines, positionLines(lines, l.cur.y, bodyLineHeight)...)
		}
		l.cur.y += float64(len(lines))*bodyLineHeight + listItemAfter
	}
	l.cur.y += listAfter
}

func (l *layouter) wrap(text string, font Font, width float64) []string {
	lines := l.cfg.measurer.Wrap(text, font, width)
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
