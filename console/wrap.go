package console

import (
	"strings"

	"github.com/muesli/reflow/ansi"
)

// visibleWidth returns the printed width of s, ignoring SGR and OSC 8
// sequences.
func visibleWidth(s string) int {
	return ansi.PrintableRuneWidth(stripOSC8(s))
}

func stripOSC8(s string) string {
	for {
		i := strings.Index(s, osc8Start)
		if i < 0 {
			return s
		}
		j := strings.Index(s[i+len(osc8Start):], "\x1b\\")
		if j < 0 {
			return s[:i]
		}
		s = s[:i] + s[i+len(osc8Start)+j+2:]
	}
}

// wrapWords greedily fills lines up to width. Words wider than width stand
// on their own line.
func wrapWords(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if width <= 0 {
		return []string{strings.Join(words, " ")}
	}
	var lines []string
	var cur strings.Builder
	curWidth := 0
	for _, w := range words {
		ww := visibleWidth(w)
		if curWidth > 0 && curWidth+1+ww > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curWidth = 0
		}
		if curWidth > 0 {
			cur.WriteByte(' ')
			curWidth++
		}
		cur.WriteString(w)
		curWidth += ww
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

func truncateWithEllipsis(text string, limit int) string {
	if ansi.PrintableRuneWidth(text) <= limit {
		return text
	}
	if limit <= 0 {
		return ""
	}
	if limit == 1 {
		return "…"
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}

func fitURL(url string, limit int) string {
	if ansi.PrintableRuneWidth(url) <= limit {
		return url
	}
	if idx := strings.Index(url, "://"); idx != -1 {
		trimmed := url[idx+3:]
		if ansi.PrintableRuneWidth(trimmed) <= limit {
			return trimmed
		}
	}
	return truncateWithEllipsis(url, limit)
}
