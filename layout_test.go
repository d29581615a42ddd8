package mdpage

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

// pipeMeasurer splits on '|' so tests control line counts exactly.
var pipeMeasurer = MeasureFunc(func(text string, _ Font, _ float64) []string {
	return strings.Split(text, "|")
})

func lines(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "x"
	}
	return strings.Join(parts, "|")
}

func TestLayoutEndToEndSinglePage(t *testing.T) {
	blocks := Segment("# A\n\nSome text here.\n\n- one\n- two")
	doc := Layout(blocks, DefaultGeometry())
	if doc.PageCount() != 1 {
		t.Fatalf("expected 1 page, got %d", doc.PageCount())
	}
	runs := doc.Runs()
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d: %#v", len(runs), runs)
	}
	wantKinds := []BlockKind{BlockHeading, BlockParagraph, BlockList}
	for i, run := range runs {
		if run.Kind != wantKinds[i] || run.Block != i {
			t.Fatalf("run %d = %v (block %d), want %v (block %d)", i, run.Kind, run.Block, wantKinds[i], i)
		}
	}
	if got := runs[0].Text(); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("heading lines = %q", got)
	}
	if got := runs[1].Text(); !reflect.DeepEqual(got, []string{"Some text here."}) {
		t.Fatalf("paragraph lines = %q", got)
	}
	if got := runs[2].Text(); !reflect.DeepEqual(got, []string{"• one", "• two"}) {
		t.Fatalf("list lines = %q", got)
	}
	if !reflect.DeepEqual(blocks[runs[2].Block].Items, []string{"one", "two"}) {
		t.Fatalf("list run does not reference the list block")
	}

	// heading at the margin, 1*8+5 below it the paragraph, 1*5+5 below that the list.
	if runs[0].Y != 20 || runs[1].Y != 33 || runs[2].Y != 43 {
		t.Fatalf("unexpected run positions: %v %v %v", runs[0].Y, runs[1].Y, runs[2].Y)
	}
	if runs[2].Lines[1].Y != 51 {
		t.Fatalf("second list item at %v, want 51", runs[2].Lines[1].Y)
	}
	if runs[2].X != 25 || runs[0].X != 20 {
		t.Fatalf("unexpected x positions: heading %v list %v", runs[0].X, runs[2].X)
	}
	if runs[0].Font != (Font{Size: 18, Bold: true}) || runs[1].Font != (Font{Size: 11}) {
		t.Fatalf("unexpected fonts: %#v %#v", runs[0].Font, runs[1].Font)
	}
}

func TestLayoutParagraphThatFitsStaysOnFirstPage(t *testing.T) {
	g := DefaultGeometry()
	// 50 lines * 5 = 250 fits in 297-20-20.
	doc := Layout([]Block{Paragraph(lines(50))}, g, WithMeasurer(pipeMeasurer))
	if doc.PageCount() != 1 {
		t.Fatalf("expected 1 page, got %d", doc.PageCount())
	}
	run := doc.Pages[0].Runs[0]
	if run.Page != 0 || len(run.Lines) != 50 {
		t.Fatalf("unexpected run: page %d lines %d", run.Page, len(run.Lines))
	}
}

func TestLayoutListBreaksNearBottom(t *testing.T) {
	items := make([]string, 40)
	for i := range items {
		items[i] = "item"
	}
	doc := Layout([]Block{List(items...)}, DefaultGeometry())
	if doc.PageCount() != 2 {
		t.Fatalf("expected 2 pages, got %d", doc.PageCount())
	}
	// items advance 8 units from y=20; the first item past 262 moves.
	first := doc.Pages[0].Runs[0]
	second := doc.Pages[1].Runs[0]
	if len(first.Lines) != 31 || len(second.Lines) != 9 {
		t.Fatalf("unexpected split: %d + %d", len(first.Lines), len(second.Lines))
	}
	if second.Y != 20 || second.Page != 1 {
		t.Fatalf("continuation at y=%v page=%d", second.Y, second.Page)
	}
	for i, page := range doc.Pages {
		want := "Page " + string(rune('1'+i))
		if got := page.Footer.Text(); len(got) != 1 || got[0] != want {
			t.Fatalf("page %d footer = %q, want %q", i, got, want)
		}
		if page.Footer.Page != i || !page.Footer.Footer {
			t.Fatalf("page %d footer misassigned: %#v", i, page.Footer)
		}
	}
}

func TestLayoutParagraphNearBottomBreaks(t *testing.T) {
	blocks := []Block{Paragraph(lines(45)), Paragraph(lines(6))}
	doc := Layout(blocks, DefaultGeometry(), WithMeasurer(pipeMeasurer))
	if doc.PageCount() != 2 {
		t.Fatalf("expected 2 pages, got %d", doc.PageCount())
	}
	moved := doc.Pages[1].Runs[0]
	if moved.Block != 1 || moved.Y != 20 {
		t.Fatalf("expected second paragraph at top of page 2, got block %d y %v", moved.Block, moved.Y)
	}
}

func TestLayoutParagraphOverflowsWhenNotNearBottom(t *testing.T) {
	blocks := []Block{Paragraph(lines(40)), Paragraph(lines(20))}
	doc := Layout(blocks, DefaultGeometry(), WithMeasurer(pipeMeasurer))
	if doc.PageCount() != 1 {
		t.Fatalf("expected overflow on 1 page, got %d pages", doc.PageCount())
	}
	if y := doc.Pages[0].Runs[1].Y; y != 225 {
		t.Fatalf("second paragraph at %v, want 225", y)
	}
}

func TestLayoutThresholdsAreConfigurable(t *testing.T) {
	blocks := []Block{Paragraph(lines(40)), Paragraph(lines(20))}
	th := DefaultThresholds()
	th.ParagraphBreak = 100
	doc := Layout(blocks, DefaultGeometry(), WithMeasurer(pipeMeasurer), WithThresholds(th))
	if doc.PageCount() != 2 {
		t.Fatalf("expected 2 pages with wider paragraph threshold, got %d", doc.PageCount())
	}
}

func TestLayoutHeadingNeverBreaksPreemptively(t *testing.T) {
	blocks := []Block{Paragraph(lines(45)), Heading(2, lines(10))}
	doc := Layout(blocks, DefaultGeometry(), WithMeasurer(pipeMeasurer))
	if doc.PageCount() != 1 {
		t.Fatalf("expected heading on first page, got %d pages", doc.PageCount())
	}
	h := doc.Pages[0].Runs[1]
	// 20 + 45*5 + 5 = 250, plus the 5 unit gap.
	if h.Y != 255 {
		t.Fatalf("heading at %v, want 255", h.Y)
	}
	if last := h.Lines[len(h.Lines)-1].Y; last != 255+9*7 {
		t.Fatalf("last heading line at %v", last)
	}
}

func TestLayoutBlockBreakBeforeAnyBlock(t *testing.T) {
	blocks := []Block{Paragraph(lines(49)), Heading(1, "Next")}
	doc := Layout(blocks, DefaultGeometry(), WithMeasurer(pipeMeasurer))
	if doc.PageCount() != 2 {
		t.Fatalf("expected 2 pages, got %d", doc.PageCount())
	}
	h := doc.Pages[1].Runs[0]
	if h.Kind != BlockHeading || h.Y != 20 {
		t.Fatalf("heading should open page 2 at the margin without gap, got %#v", h)
	}
}

func TestLayoutListLeavesGapBeforeNextBlock(t *testing.T) {
	blocks := []Block{List("a", "b"), Paragraph("after")}
	doc := Layout(blocks, DefaultGeometry())
	runs := doc.Runs()
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	// items at 20 and 28, each 5+3 units; the list adds 2 more.
	if last := runs[0].Lines[1].Y; last != 28 {
		t.Fatalf("second item at %v, want 28", last)
	}
	if runs[1].Y != 38 {
		t.Fatalf("paragraph at %v, want 38", runs[1].Y)
	}
}

func TestHeadingFont(t *testing.T) {
	cases := []struct {
		level int
		want  Font
	}{
		{1, Font{Size: 18, Bold: true}},
		{2, Font{Size: 16, Bold: true}},
		{3, Font{Size: 14, Bold: true}},
		{4, Font{Size: 14, Bold: true}},
		{5, Font{Size: 14, Bold: true}},
		{6, Font{Size: 14, Bold: true}},
	}
	for _, tc := range cases {
		if got := HeadingFont(tc.level); got != tc.want {
			t.Fatalf("HeadingFont(%d) = %#v, want %#v", tc.level, got, tc.want)
		}
	}
}

func TestLayoutShortPageNeverEmitsEmptyPages(t *testing.T) {
	// the usable height of 0 sits inside every threshold.
	g := NewGeometry(100, 40, 20)
	blocks := []Block{Paragraph("a"), List("b"), Heading(2, "c")}
	doc := Layout(blocks, g, WithMeasurer(pipeMeasurer))
	if doc.PageCount() != 3 {
		t.Fatalf("expected 3 pages, got %d", doc.PageCount())
	}
	for i, page := range doc.Pages {
		if len(page.Runs) != 1 {
			t.Fatalf("page %d has %d runs, want 1", i, len(page.Runs))
		}
		if run := page.Runs[0]; run.Block != i || run.Y != 20 {
			t.Fatalf("page %d holds block %d at y=%v", i, run.Block, run.Y)
		}
	}
}

func TestLayoutEmptyBlocksYieldsFooterOnlyPage(t *testing.T) {
	doc := Layout(nil, DefaultGeometry())
	if doc.PageCount() != 1 {
		t.Fatalf("expected 1 page, got %d", doc.PageCount())
	}
	if len(doc.Pages[0].Runs) != 0 {
		t.Fatalf("expected no runs")
	}
	f := doc.Pages[0].Footer
	if f.X != 190 || f.Y != 287 || f.Text()[0] != "Page 1" {
		t.Fatalf("unexpected footer %#v", f)
	}
}

func TestLayoutRunsKeepSourceOrderAcrossPages(t *testing.T) {
	var src strings.Builder
	for i := 0; i < 60; i++ {
		src.WriteString("## Section\n\n")
		src.WriteString(strings.Repeat("words flow onward ", 30))
		src.WriteString("\n\n- a\n- b\n\n")
	}
	doc := Layout(Segment(src.String()), DefaultGeometry())
	if doc.PageCount() < 2 {
		t.Fatalf("expected multiple pages, got %d", doc.PageCount())
	}
	last := -1
	for i, page := range doc.Pages {
		for _, run := range page.Runs {
			if run.Page != i {
				t.Fatalf("run on page %d reports page %d", i, run.Page)
			}
			if run.Block < last {
				t.Fatalf("block %d placed after block %d", run.Block, last)
			}
			last = run.Block
		}
	}
}

func TestGridMeasurerWrapsWithinColumns(t *testing.T) {
	m := GridMeasurer{}
	font := BodyFont()
	cols := m.Columns(font, 170)
	if cols != 87 {
		t.Fatalf("columns = %d, want 87", cols)
	}
	text := strings.Repeat("lorem ipsum dolor ", 20) + strings.Repeat("x", 200)
	got := m.Wrap(text, font, 170)
	if len(got) < 3 {
		t.Fatalf("expected wrapping, got %d lines", len(got))
	}
	for _, line := range got {
		if utf8.RuneCountInString(line) > cols {
			t.Fatalf("line exceeds %d columns: %q", cols, line)
		}
	}
	if got := m.Wrap("", font, 170); len(got) != 1 || got[0] != "" {
		t.Fatalf("empty text should produce one empty line, got %q", got)
	}
}
