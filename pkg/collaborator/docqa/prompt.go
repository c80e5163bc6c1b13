package docqa

import (
	"fmt"
	"strings"
)

// promptBuilder renders the retrieval prompt sent as the last user turn
type promptBuilder struct {
	hits  []Hit
	query string
}

func (b *promptBuilder) Build() string {
	var prompt strings.Builder
	b.writeReferenceMaterial(&prompt)
	b.writeTask(&prompt)
	b.writeGuidelines(&prompt)
	b.writeUserQuery(&prompt)
	return prompt.String()
}

func (b *promptBuilder) writeReferenceMaterial(prompt *strings.Builder) {
	if len(b.hits) == 0 {
		return
	}
	prompt.WriteString("<reference_material>\n")
	for _, h := range b.hits {
		fmt.Fprintf(prompt, "[page %d]\n%s\n\n", h.Page, h.Text)
	}
	prompt.WriteString("</reference_material>\n\n")
}

func (b *promptBuilder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	prompt.WriteString("You answer questions about a PDF document the user uploaded.\n")
	prompt.WriteString("The reference material holds the passages of that document most relevant to the question.\n")
	prompt.WriteString("</task>\n\n")
}

func (b *promptBuilder) writeGuidelines(prompt *strings.Builder) {
	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("1. Base your answer strictly on the reference material and the conversation so far\n")
	prompt.WriteString("2. Mention page numbers when they help the user find the passage\n")
	prompt.WriteString("3. If the material doesn't contain what's being asked, say so honestly\n")
	prompt.WriteString("4. Keep the answer clear and well organized\n")
	prompt.WriteString("</guidelines>\n\n")
}

func (b *promptBuilder) writeUserQuery(prompt *strings.Builder) {
	prompt.WriteString("<user_question>\n")
	prompt.WriteString(b.query)
	prompt.WriteString("\n</user_question>\n\n")
	prompt.WriteString("Now answer based on the reference material:")
}
