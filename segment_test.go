package mdpage

import (
	"reflect"
	"strings"
	"testing"
)

func TestSegmentHeadingThenParagraph(t *testing.T) {
	got := Segment("# Title\nBody line.")
	want := []Block{Heading(1, "Title"), Paragraph("Body line.")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected blocks\nwant: %#v\n got: %#v", want, got)
	}
}

func TestSegmentSkipsByteOrderMark(t *testing.T) {
	got := Segment("\ufeff# Title\nbody")
	want := []Block{Heading(1, "Title"), Paragraph("body")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected blocks\nwant: %#v\n got: %#v", want, got)
	}
}

func TestSegmentListCollapsesConsecutiveItems(t *testing.T) {
	var b strings.Builder
	const n = 7
	for i := 0; i < n; i++ {
		b.WriteString("- item ")
		b.WriteByte(byte('a' + i))
		b.WriteByte('\n')
	}
	got := Segment(b.String())
	if len(got) != 1 {
		t.Fatalf("expected 1 block, got %d: %#v", len(got), got)
	}
	if got[0].Kind != BlockList {
		t.Fatalf("expected list, got %v", got[0].Kind)
	}
	if len(got[0].Items) != n {
		t.Fatalf("expected %d items, got %d", n, len(got[0].Items))
	}
	for i, item := range got[0].Items {
		want := "item " + string(rune('a'+i))
		if item != want {
			t.Fatalf("item %d = %q, want %q", i, item, want)
		}
	}
}

func TestSegmentParagraphJoinsLines(t *testing.T) {
	got := Segment("first line\n  second line  \nthird")
	want := []Block{Paragraph("first line second line third")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected blocks\nwant: %#v\n got: %#v", want, got)
	}
}

func TestSegmentBlankLineClosesParagraphAndList(t *testing.T) {
	got := Segment("one\n\ntwo\n- a\n\n- b\n")
	want := []Block{
		Paragraph("one"),
		Paragraph("two"),
		List("a"),
		List("b"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected blocks\nwant: %#v\n got: %#v", want, got)
	}
}

func TestSegmentHeadingClosesOpenBlocks(t *testing.T) {
	got := Segment("- a\n- b\n## Next\npara\n### Deep\n")
	want := []Block{
		List("a", "b"),
		Heading(2, "Next"),
		Paragraph("para"),
		Heading(3, "Deep"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected blocks\nwant: %#v\n got: %#v", want, got)
	}
}

func TestSegmentListAfterParagraphStartsNewBlock(t *testing.T) {
	got := Segment("intro\n* star item\n-  dash item\nafter")
	want := []Block{
		Paragraph("intro"),
		List("star item", "dash item"),
		Paragraph("after"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected blocks\nwant: %#v\n got: %#v", want, got)
	}
}

func TestSegmentUnrecognizedShapesAreParagraphs(t *testing.T) {
	cases := map[string]string{
		"#nospace":       "#nospace",
		"####### seven":  "####### seven",
		"-dash":          "-dash",
		"**bold** start": "**bold** start",
		"---":            "---",
		"#":              "#",
	}
	for in, want := range cases {
		got := Segment(in)
		if len(got) != 1 || got[0].Kind != BlockParagraph || got[0].Text != want {
			t.Fatalf("Segment(%q) = %#v, want paragraph %q", in, got, want)
		}
	}
}

func TestSegmentHeadingLevels(t *testing.T) {
	for level := 1; level <= 6; level++ {
		line := strings.Repeat("#", level) + "\tLevel"
		got := Segment(line)
		if len(got) != 1 || got[0].Kind != BlockHeading || got[0].Level != level || got[0].Text != "Level" {
			t.Fatalf("Segment(%q) = %#v", line, got)
		}
	}
}

func TestSegmentHandlesCRLF(t *testing.T) {
	got := Segment("# A\r\n\r\ntext\r\n- x\r\n")
	want := []Block{Heading(1, "A"), Paragraph("text"), List("x")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected blocks\nwant: %#v\n got: %#v", want, got)
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	if got := Segment(""); len(got) != 0 {
		t.Fatalf("expected no blocks, got %#v", got)
	}
	if got := Segment("\n \n\t\n"); len(got) != 0 {
		t.Fatalf("expected no blocks for blank lines, got %#v", got)
	}
}

func TestSegmentIsIdempotent(t *testing.T) {
	src := "# A\n\nSome text here.\nmore\n\n- one\n- two\n## B\ntail"
	first := Segment(src)
	second := Segment(src)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("segment not deterministic\nfirst:  %#v\nsecond: %#v", first, second)
	}
}

func TestSegmentPreservesSourceOrder(t *testing.T) {
	src := "alpha\n# beta\n- gamma\n- delta\n\nepsilon\n## zeta"
	var got []string
	for _, b := range Segment(src) {
		switch b.Kind {
		case BlockList:
			got = append(got, b.Items...)
		default:
			got = append(got, b.Text)
		}
	}
	want := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestSegmentReader(t *testing.T) {
	got, err := SegmentReader(strings.NewReader("# T\nbody"))
	if err != nil {
		t.Fatalf("segment reader: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(got))
	}
	if _, err := SegmentReader(nil); err == nil {
		t.Fatalf("expected error for nil reader")
	}
}
