package domain

import "context"

// Disclaimer is attached to every triage report.
const Disclaimer = "This system does not replace an in-person medical evaluation."

// NarrativeInput is the structured fact sheet a narrator turns into plain language.
type NarrativeInput struct {
	Symptoms       string
	History        string
	Age            int
	Category       string
	Urgency        string
	Alerts         []string
	DiagnosesHint  []string
	EvidenceTitles []string
	Recommendation string
}

// Narrator writes a short patient-facing explanation of a triage report.
type Narrator interface {
	Narrate(ctx context.Context, in NarrativeInput) (string, error)
}
