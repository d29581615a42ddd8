package mdpage

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// FrontMatter holds the metadata recognised in a leading front matter block.
type FrontMatter struct {
	Title  string `yaml:"title" json:"title"`
	Author string `yaml:"author" json:"author"`
	// Format is "yaml", "toml" or "json"; empty when the input had none.
	Format string `yaml:"-" json:"-"`
}

// SplitFrontMatter removes a front matter block from the start of text and
// returns its metadata with the remaining body. Only the very first line may
// open a block (---, +++ or ;;;), the next line must look like metadata and
// a matching closing delimiter must exist; otherwise text is returned as is.
// TOML blocks are stripped but not decoded.
func SplitFrontMatter(text string) (FrontMatter, string) {
	openLine, rest, ok := cutLine(text)
	if !ok {
		return FrontMatter{}, text
	}
	delim, format := frontMatterDelimiter(openLine)
	if delim == "" {
		return FrontMatter{}, text
	}
	first, _, _ := cutLine(rest)
	if !metadataLikely(first) {
		return FrontMatter{}, text
	}

	var meta strings.Builder
	remaining := rest
	for {
		line, next, ok := cutLine(remaining)
		if strings.TrimSpace(line) == delim {
			fm := FrontMatter{Format: format}
			decodeFrontMatter(format, meta.String(), &fm)
			return fm, strings.TrimLeft(next, "\r\n")
		}
		if !ok {
			return FrontMatter{}, text
		}
		meta.WriteString(line)
		meta.WriteByte('\n')
		remaining = next
	}
}

// cutLine splits off the first line. ok is false when s has no newline.
func cutLine(s string) (line, rest string, ok bool) {
	i := strings.IndexByte(s, '\n')
	if i < 0 {
		return strings.TrimSuffix(s, "\r"), "", false
	}
	return strings.TrimSuffix(s[:i], "\r"), s[i+1:], true
}

func frontMatterDelimiter(line string) (delim, format string) {
	switch strings.TrimSpace(strings.TrimPrefix(line, byteOrderMark)) {
	case "---":
		return "---", "yaml"
	case "+++":
		return "+++", "toml"
	case ";;;":
		return ";;;", "json"
	default:
		return "", ""
	}
}

func metadataLikely(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return true
	}
	return strings.ContainsAny(trimmed, ":=")
}

// decodeFrontMatter fills fm from raw. Undecodable metadata leaves the
// fields empty; the block is still removed from the body.
func decodeFrontMatter(format, raw string, fm *FrontMatter) {
	switch format {
	case "yaml":
		_ = yaml.Unmarshal([]byte(raw), fm)
	case "json":
		_ = json.Unmarshal([]byte(raw), fm)
	}
}
