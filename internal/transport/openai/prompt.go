package openai

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/medtriage/internal/domain"
)

// maxPromptTitles bounds how many evidence titles go into the prompt.
const maxPromptTitles = 5

// BuildPrompt renders the triage facts into the user message for the narrator.
func BuildPrompt(in domain.NarrativeInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Explain this triage result to the patient.

RULES:
1. At most %d words, simple and accessible language.
2. Do not state a diagnosis; possible conditions are hypotheses for the physician.
3. Repeat the urgency and the recommended specialty.
4. End with: "%s"

Patient:
- Symptoms: %s
- History: %s
- Age: %s

Triage:
- Specialty: %s
- Urgency: %s
`, MaxNarrativeWords, domain.Disclaimer, in.Symptoms, in.History, formatAge(in.Age), in.Category, in.Urgency)

	writeList(&b, "Alerts", in.Alerts, len(in.Alerts))
	writeList(&b, "Hypotheses", in.DiagnosesHint, len(in.DiagnosesHint))
	writeList(&b, "Protocols consulted", in.EvidenceTitles, maxPromptTitles)
	fmt.Fprintf(&b, "- Recommendation: %s\n", in.Recommendation)

	return b.String()
}

func writeList(b *strings.Builder, label string, items []string, limit int) {
	if len(items) == 0 {
		fmt.Fprintf(b, "- %s: none\n", label)
		return
	}
	fmt.Fprintf(b, "- %s:\n", label)
	for i, it := range items {
		if i >= limit {
			fmt.Fprintf(b, "  ... and %d more\n", len(items)-limit)
			break
		}
		fmt.Fprintf(b, "  - %s\n", it)
	}
}

func formatAge(age int) string {
	if age == 0 {
		return "not informed"
	}
	return fmt.Sprintf("%d", age)
}
