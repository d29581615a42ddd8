package mdpage

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxHeadingLevel = 6
	byteOrderMark   = "\ufeff"
)

// Segment splits Markdown text into an ordered sequence of blocks.
//
// Lines are classified after trimming: blank lines close the open paragraph or
// list, ATX headings are emitted on their own, "-" and "*" items collapse into
// one list and everything else accumulates into a paragraph. Segment never
// fails and keeps no state between calls.
func Segment(text string) []Block {
	var s segmenter
	text = strings.TrimPrefix(text, byteOrderMark)
	for _, line := range strings.Split(text, "\n") {
		s.feedLine(strings.TrimSpace(line))
	}
	s.flush()
	return s.blocks
}

// SegmentReader reads src to EOF and segments the complete text.
func SegmentReader(src io.Reader) ([]Block, error) {
	if src == nil {
		return nil, fmt.Errorf("segment: reader is nil")
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("segment: read: %w", err)
	}
	return Segment(string(data)), nil
}

type segmenter struct {
	blocks []Block
	cur    Block
	open   bool
}

func (s *segmenter) feedLine(line string) {
	if line == "" {
		s.flush()
		return
	}
	if level, text, ok := parseHeading(line); ok {
		s.flush()
		s.blocks = append(s.blocks, Heading(level, text))
		return
	}
	if item, ok := parseListItem(line); ok {
		if s.open && s.cur.Kind != BlockList {
			s.flush()
		}
		if !s.open {
			s.cur = Block{Kind: BlockList}
			s.open = true
		}
		s.cur.Items = append(s.cur.Items, item)
		return
	}
	if s.open && s.cur.Kind == BlockParagraph {
		s.cur.Text += " " + line
		return
	}
	s.flush()
	s.cur = Paragraph(line)
	s.open = true
}

func (s *segmenter) flush() {
	if !s.open {
		return
	}
	s.blocks = append(s.blocks, s.cur)
	s.cur = Block{}
	s.open = false
}

// parseHeading matches 1-6 '#', at least one space, then text.
func parseHeading(line string) (int, string, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > maxHeadingLevel {
		return 0, "", false
	}
	text, ok := afterMarkerSpace(line[level:])
	if !ok {
		return 0, "", false
	}
	return level, text, true
}

// parseListItem matches '-' or '*', at least one space, then text.
func parseListItem(line string) (string, bool) {
	if len(line) < 2 || (line[0] != '-' && line[0] != '*') {
		return "", false
	}
	return afterMarkerSpace(line[1:])
}

func afterMarkerSpace(rest string) (string, bool) {
	r, _ := utf8.DecodeRuneInString(rest)
	if rest == "" || !unicode.IsSpace(r) {
		return "", false
	}
	text := strings.TrimLeftFunc(rest, unicode.IsSpace)
	if text == "" {
		return "", false
	}
	return text, true
}
