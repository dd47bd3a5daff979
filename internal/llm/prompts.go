package llm

import (
	_ "embed"
	"fmt"
	"strings"
)

var (
	//go:embed prompts/summary.txt
	summaryPrompt string
	//go:embed prompts/responsibilities.txt
	responsibilitiesPrompt string
)

// Prompt names.
const (
	PromptSummary          = "summary"
	PromptResponsibilities = "responsibilities"
)

// PromptTemplate returns the system prompt text and whether the name was recognized.
func PromptTemplate(name string) (string, bool) {
	switch name {
	case PromptSummary:
		return summaryPrompt, true
	case PromptResponsibilities:
		return responsibilitiesPrompt, true
	default:
		return "", false
	}
}

func summaryMessages(summary, description string) []Message {
	role := description
	if strings.TrimSpace(role) == "" {
		role = "N/A"
	}
	return []Message{
		{Role: "system", Content: strings.TrimSpace(summaryPrompt)},
		{Role: "user", Content: fmt.Sprintf("Current summary:\n%s\n\nTarget role description:\n%s", summary, role)},
	}
}

func responsibilitiesMessages(entriesJSON []byte) []Message {
	return []Message{
		{Role: "system", Content: strings.TrimSpace(responsibilitiesPrompt)},
		{Role: "user", Content: "Work experience entries:\n" + string(entriesJSON)},
	}
}

// PromptString flattens messages into one string, as used for hashing and
// for providers that take a single prompt.
func PromptString(messages []Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}
