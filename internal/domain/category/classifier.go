package category

import (
	"strings"

	"github.com/kailas-cloud/medtriage/internal/domain/urgency"
)

// Result is the outcome of classifying one request.
type Result struct {
	Category      string
	SpecialtyID   int64
	Score         int
	Urgency       urgency.Level
	Alerts        []string
	DiagnosesHint []string
	Fallback      bool
}

// Classifier scores normalized text against a table. Safe for concurrent use.
type Classifier struct {
	table     *Table
	evaluator *urgency.Evaluator
}

// NewClassifier creates a classifier.
func NewClassifier(table *Table, evaluator *urgency.Evaluator) *Classifier {
	return &Classifier{table: table, evaluator: evaluator}
}

// Table returns the classification table.
func (c *Classifier) Table() *Table { return c.table }

// Classify picks the definition with the most keyword hits in symptoms and history.
// Both inputs must already be normalized. Keywords match as substrings, so a short
// keyword can hit inside an unrelated word. Ties go to the earlier definition.
// When nothing matches, the fallback definition is returned. Classify never fails.
func (c *Classifier) Classify(symptoms, history string, age int) Result {
	text := symptoms + " " + history
	fragments := []string{symptoms, history}

	best, bestScore := -1, 0
	for i, d := range c.table.defs {
		if d.Fallback {
			continue
		}
		score := countHits(text, d.Keywords)
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 {
		fb := c.table.Fallback()
		a := c.evaluator.EvaluateFallback(fragments, age)
		return Result{
			Category:      fb.Name,
			SpecialtyID:   fb.SpecialtyID,
			Urgency:       a.Level,
			Alerts:        a.Alerts,
			DiagnosesHint: hints(text, fb.Hints),
			Fallback:      true,
		}
	}

	d := c.table.defs[best]
	a := c.evaluator.Evaluate(fragments, age)
	return Result{
		Category:      d.Name,
		SpecialtyID:   d.SpecialtyID,
		Score:         bestScore,
		Urgency:       a.Level,
		Alerts:        a.Alerts,
		DiagnosesHint: hints(text, d.Hints),
	}
}

func countHits(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

// hints returns the diagnoses of matching rules, deduplicated in rule order.
func hints(text string, rules []HintRule) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, r := range rules {
		if !containsAll(text, r.AllOf) || containsAny(text, r.NoneOf) {
			continue
		}
		if _, ok := seen[r.Diagnosis]; ok {
			continue
		}
		seen[r.Diagnosis] = struct{}{}
		out = append(out, r.Diagnosis)
	}
	return out
}

func containsAll(text string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(text, t) {
			return false
		}
	}
	return true
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
