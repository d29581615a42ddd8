package answer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"
)

const defaultChunkRunes = 24

var defaultAnswer = template.Must(template.New("answer").Parse(`# {{.Topic}}

## Abstract

This paper summarizes what is known about {{.Topic}} and outlines open questions for further work.

## Introduction

{{.Topic}} has drawn steady attention. The sections below describe the approach taken, the main findings and their limits.

## Findings

- The topic spans several distinct areas of study.
- Results depend strongly on the assumptions made.
- Independent replication remains limited.

## Conclusion

Further research on {{.Topic}} should focus on reproducible methods.

## References

- Survey of the field, Editorial Board
`))

// Simulator streams a canned answer in fixed-size rune chunks. It needs no
// network access and is used for development and tests.
type Simulator struct {
	// Text is streamed for every query when set; otherwise a short paper
	// about the query is generated.
	Text       string
	ChunkRunes int
	Delay      time.Duration
}

// NewSimulatorFromFile returns a simulator streaming the Markdown file at path.
func NewSimulatorFromFile(path string, chunkRunes int, delay time.Duration) (*Simulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("simulator: %w", err)
	}
	return &Simulator{Text: string(data), ChunkRunes: chunkRunes, Delay: delay}, nil
}

// Name implements Source.
func (s *Simulator) Name() string { return "simulator" }

// Stream implements Source.
func (s *Simulator) Stream(ctx context.Context, query string, emit func(string) error) error {
	query, err := CheckQuery(query)
	if err != nil {
		return err
	}
	text := s.Text
	if text == "" {
		var b strings.Builder
		if err := defaultAnswer.Execute(&b, struct{ Topic string }{Topic: query}); err != nil {
			return fmt.Errorf("simulator: %w", err)
		}
		text = b.String()
	}
	size := s.ChunkRunes
	if size <= 0 {
		size = defaultChunkRunes
	}
	return streamChunks(ctx, strings.NewReader(text), size, s.Delay, emit)
}

// streamChunks reads runes from r and emits them in chunks of size runes,
// waiting delay before each chunk after the first. Invalid UTF-8 and control
// runes other than newline and tab are skipped.
func streamChunks(ctx context.Context, r io.Reader, size int, delay time.Duration, emit func(string) error) error {
	reader := bufio.NewReader(r)
	buf := make([]rune, 0, size)
	first := true
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if !first && delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		first = false
		if err := ctx.Err(); err != nil {
			return err
		}
		err := emit(string(buf))
		buf = buf[:0]
		return err
	}
	for {
		r, size0, err := reader.ReadRune()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("simulator: read: %w", err)
		}
		if r == utf8.RuneError && size0 == 1 {
			continue
		}
		if isControlRune(r) {
			continue
		}
		buf = append(buf, r)
		if len(buf) >= size {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

func isControlRune(r rune) bool {
	if r == '\n' || r == '\t' {
		return false
	}
	return r < 0x20 || r == 0x7F
}
