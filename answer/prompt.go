package answer

import (
	"strings"
	"text/template"
)

var researchPrompt = template.Must(template.New("research").Parse(`Research Topic:
"{{.Topic}}"

Objective:
Write a comprehensive, formal research paper that addresses only the topic above.

Guidelines:
- Start writing immediately. Do not ask clarifying questions.
- Keep every section focused on the topic; leave out unrelated text.
- Structure the paper with the sections Abstract, Introduction, Methodology,
  Results, Discussion, Conclusion and References.
- Use Markdown: "#" headings, plain paragraphs and "-" bullet lists only.
  No tables, code blocks, images or inline emphasis.
- Cite every source by title and author in the References section. Do not
  include links.
`))

// ResearchPrompt returns the instruction sent to the model for topic.
func ResearchPrompt(topic string) string {
	var b strings.Builder
	// the template only fails on write errors, which strings.Builder never returns
	_ = researchPrompt.Execute(&b, struct{ Topic string }{Topic: topic})
	return b.String()
}
