// Package evidence turns ranked protocol matches into supporting evidence and
// a recommendation.
package evidence

import (
	"fmt"
	"math"
	"strconv"
)

// Outcome tells which rung of the recommendation ladder a report landed on.
type Outcome string

// Outcomes.
const (
	OutcomeSupported            Outcome = "supported"
	OutcomeInconclusive         Outcome = "inconclusive"
	OutcomeNoDocuments          Outcome = "no_documents"
	OutcomeEmbeddingUnavailable Outcome = "embedding_unavailable"
	OutcomeStorageUnavailable   Outcome = "storage_unavailable"
	OutcomeDimensionMismatch    Outcome = "dimension_mismatch"
)

// Recommendation texts.
const (
	RecommendNoDocuments  = "No protocol found for this specialty. Seek medical care immediately."
	RecommendInconclusive = "Information inconclusive. An in-person evaluation is recommended."
	RecommendSupported    = "Consult a physician in person for a detailed evaluation."
	RecommendFailSafe     = "Unable to consult medical protocols. Go to the nearest hospital."
)

// Defaults.
const (
	DefaultThreshold     = 0.75
	DefaultPreviewLength = 200
	MinPreviewLength     = 150
	MaxPreviewLength     = 300
	DefaultDisplayLimit  = 3
)

const ellipsis = "..."

// Match is a ranked candidate document.
type Match struct {
	DocumentID int64
	Title      string
	Text       string
	Score      float64
}

// Item is one piece of supporting evidence.
type Item struct {
	Text       string
	Confidence string
	Source     string
	Title      string
	Score      float64
}

// Options control aggregation.
type Options struct {
	// Threshold is the minimum score kept, inclusive.
	Threshold float64
	// PreviewLength is the preview size in runes, clamped to [150, 300].
	PreviewLength int
	// Limit caps the evidence list. Zero or less keeps every match above threshold.
	Limit int
}

// DefaultOptions returns the standard aggregation policy.
func DefaultOptions() Options {
	return Options{
		Threshold:     DefaultThreshold,
		PreviewLength: DefaultPreviewLength,
		Limit:         DefaultDisplayLimit,
	}
}

// Summary is the aggregated evidence for one report.
type Summary struct {
	Evidence       []Item
	Sources        []string
	Recommendation string
	Outcome        Outcome
}

// Aggregate filters matches by threshold and picks a recommendation:
// no matches gives NoDocuments, none above threshold gives Inconclusive,
// otherwise Supported. Matches must already be ranked.
func Aggregate(matches []Match, opts Options) Summary {
	if len(matches) == 0 {
		return NoDocuments()
	}

	preview := clampPreview(opts.PreviewLength)
	items := make([]Item, 0, len(matches))
	sources := make([]string, 0, len(matches))
	seen := make(map[int64]struct{}, len(matches))

	for _, m := range matches {
		if m.Score < opts.Threshold {
			continue
		}
		if _, dup := seen[m.DocumentID]; dup {
			continue
		}
		if opts.Limit > 0 && len(items) >= opts.Limit {
			break
		}
		seen[m.DocumentID] = struct{}{}

		src := strconv.FormatInt(m.DocumentID, 10)
		sources = append(sources, src)
		items = append(items, Item{
			Text:       Preview(m.Text, preview),
			Confidence: Confidence(m.Score),
			Source:     src,
			Title:      m.Title,
			Score:      m.Score,
		})
	}

	if len(items) == 0 {
		return Inconclusive(OutcomeInconclusive)
	}
	return Summary{
		Evidence:       items,
		Sources:        sources,
		Recommendation: RecommendSupported,
		Outcome:        OutcomeSupported,
	}
}

// NoDocuments is the summary for a specialty without indexed protocols.
func NoDocuments() Summary {
	return empty(RecommendNoDocuments, OutcomeNoDocuments)
}

// Inconclusive is the summary when evidence is too weak or could not be ranked.
func Inconclusive(outcome Outcome) Summary {
	return empty(RecommendInconclusive, outcome)
}

// FailSafe is the summary when protocol storage could not be reached.
func FailSafe() Summary {
	return empty(RecommendFailSafe, OutcomeStorageUnavailable)
}

func empty(recommendation string, outcome Outcome) Summary {
	return Summary{
		Evidence:       []Item{},
		Sources:        []string{},
		Recommendation: recommendation,
		Outcome:        outcome,
	}
}

// Confidence formats a similarity score as a rounded percentage.
func Confidence(score float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(score*100)))
}

// Preview cuts text to n runes and appends an ellipsis when it was cut.
func Preview(text string, n int) string {
	if n <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i] + ellipsis
		}
		count++
	}
	return text
}

func clampPreview(n int) int {
	switch {
	case n <= 0:
		return DefaultPreviewLength
	case n < MinPreviewLength:
		return MinPreviewLength
	case n > MaxPreviewLength:
		return MaxPreviewLength
	default:
		return n
	}
}
