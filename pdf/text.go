package pdf

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// encodeText converts UTF-8 text to the Windows-1252 bytes expected by the
// core fonts. Tabs and no-break spaces become spaces; runes outside the code
// page and control runes are dropped.
func encodeText(text string) string {
	if isPlainASCII(text) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == utf8.RuneError || isControlRune(r) {
			continue
		}
		if r == ' ' || r == '\t' {
			b.WriteByte(' ')
			continue
		}
		c, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isPlainASCII(text string) bool {
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= utf8.RuneSelf || c < 0x20 || c == 0x7F {
			return false
		}
	}
	return true
}

func isControlRune(r rune) bool {
	if r == '\t' {
		return false
	}
	if r < 0x20 || r == 0x7F {
		return true
	}
	if r >= 0x80 && r <= 0x9F {
		return true
	}
	return false
}
