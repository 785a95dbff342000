package symptom

import (
	"strings"

	"github.com/kailas-cloud/medtriage/internal/domain"
)

// Request limits.
const (
	// MinSymptomWords is the minimum number of words in a symptom description.
	MinSymptomWords = 3
	// MaxSymptomLength caps the raw symptom text.
	MaxSymptomLength = 4096
	// MaxAge rejects obviously wrong ages.
	MaxAge = 150
	// DefaultHistory is used when no medical history is provided.
	DefaultHistory = "not informed"
	// PediatricAgeLimit is the exclusive upper bound of pediatric ages.
	PediatricAgeLimit = 18
)

// Report is a validated symptom report. It is created once per request and never mutated.
type Report struct {
	raw               string
	normalized        string
	history           string
	normalizedHistory string
	age               int
}

// NewReport validates and normalizes a triage request.
// An empty history becomes DefaultHistory; age 0 means "not informed".
func NewReport(symptoms, history string, age int) (Report, error) {
	symptoms = strings.TrimSpace(symptoms)
	if len(strings.Fields(symptoms)) < MinSymptomWords {
		return Report{}, domain.NewValidationError("symptoms", "at least 3 words are required")
	}
	if len(symptoms) > MaxSymptomLength {
		return Report{}, domain.NewValidationError("symptoms", "too long (max 4096 chars)")
	}
	if age < 0 {
		return Report{}, domain.NewValidationError("age", "must be >= 0")
	}
	if age > MaxAge {
		return Report{}, domain.NewValidationError("age", "must be <= 150")
	}

	history = strings.TrimSpace(history)
	if history == "" {
		history = DefaultHistory
	}

	return Report{
		raw:               symptoms,
		normalized:        Normalize(symptoms),
		history:           history,
		normalizedHistory: Normalize(history),
		age:               age,
	}, nil
}

// Raw returns the symptom text as submitted (trimmed).
func (r *Report) Raw() string { return r.raw }

// Normalized returns the normalized symptom text.
func (r *Report) Normalized() string { return r.normalized }

// History returns the medical history as submitted, or DefaultHistory.
func (r *Report) History() string { return r.history }

// NormalizedHistory returns the normalized medical history.
func (r *Report) NormalizedHistory() string { return r.normalizedHistory }

// Age returns the patient age in years (0 when not informed).
func (r *Report) Age() int { return r.age }

// Pediatric reports whether the age falls under pediatric rules.
func (r *Report) Pediatric() bool { return IsPediatric(r.age) }

// IsPediatric reports whether age is below PediatricAgeLimit.
// Age 0 counts as pediatric: the conservative reading of an unknown age.
func IsPediatric(age int) bool { return age < PediatricAgeLimit }
