package pdf

import "strings"

const (
	fileNameRunes  = 30
	fileNameSuffix = "_research.pdf"
	fallbackName   = "answer"
)

// FileName derives the download name for an exported answer from a title
// hint such as the query. The first 30 characters are kept, anything other
// than an ASCII letter or digit becomes an underscore, and the result is
// lower-cased.
//
//	FileName("What is quantum computing?") == "what_is_quantum_computing_research.pdf"
func FileName(titleHint string) string {
	var b strings.Builder
	n := 0
	for _, r := range titleHint {
		if n == fileNameRunes {
			break
		}
		n++
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	base := strings.TrimRight(b.String(), "_")
	if strings.Trim(base, "_") == "" {
		base = fallbackName
	}
	return base + fileNameSuffix
}
