package console

import (
	"io"
	"strings"
	"sync"
)

// Live renders a streamed answer incrementally. Each Update receives the
// whole text accumulated so far; blocks are printed once a blank line
// outside a code fence closes them. Finish prints whatever is left.
type Live struct {
	mu    sync.Mutex
	r     *Renderer
	w     io.Writer
	done  int
	wrote bool
}

// Live returns a live view writing to w.
func (r *Renderer) Live(w io.Writer) *Live {
	return &Live{r: r, w: w}
}

// Update renders the blocks of text completed since the previous call.
// A text shorter than what was already rendered starts a new answer.
func (l *Live) Update(text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.restartIfShorter(text)
	cut := stableCut(text, l.done)
	if cut <= l.done {
		return nil
	}
	return l.emit(text[l.done:cut], cut)
}

// Finish renders the remainder of text and resets the view for the next
// answer.
func (l *Live) Finish(text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.restartIfShorter(text)
	err := l.emit(text[l.done:], len(text))
	l.done = 0
	l.wrote = false
	return err
}

// Notice prints a one-line message in the notice style.
func (l *Live) Notice(msg string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := io.WriteString(l.w, paint(l.r.styles.Notice, msg)+"\n")
	return err
}

// Rendered returns how many bytes of the current answer have been printed.
func (l *Live) Rendered() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

func (l *Live) restartIfShorter(text string) {
	if len(text) < l.done {
		l.done = 0
		l.wrote = false
	}
}

func (l *Live) emit(chunk string, next int) error {
	l.done = next
	if strings.TrimSpace(chunk) == "" {
		return nil
	}
	out := l.r.render(chunk)
	if out == "" {
		return nil
	}
	if l.wrote {
		out = "\n" + out
	}
	l.wrote = true
	_, err := io.WriteString(l.w, out)
	return err
}

// stableCut returns the offset just past the last complete blank line in
// text[from:] that is not inside a fenced code block, or from if none.
func stableCut(text string, from int) int {
	cut := from
	fenced := false
	for i := from; i < len(text); {
		j := strings.IndexByte(text[i:], '\n')
		if j < 0 {
			break
		}
		line := strings.TrimSpace(text[i : i+j])
		next := i + j + 1
		switch {
		case strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~"):
			fenced = !fenced
		case line == "" && !fenced:
			cut = next
		}
		i = next
	}
	return cut
}
