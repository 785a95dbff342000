// Package urgency escalates triage urgency from red-flag keywords.
package urgency

import (
	"strings"

	"github.com/kailas-cloud/medtriage/internal/domain/symptom"
)

// Level is the triage urgency tier.
type Level string

// Urgency tiers.
const (
	Low    Level = "Low"
	Medium Level = "Medium"
	High   Level = "High"
)

// Baseline is the urgency of a request with no red flags.
const Baseline = Medium

// GenericAlert is attached when no category matched the symptoms.
const GenericAlert = "Undifferentiated symptoms: needs clinical evaluation"

// IsValid checks if the level is one of the supported tiers.
func (l Level) IsValid() bool {
	return l == Low || l == Medium || l == High
}

// Flag maps a normalized keyword to the alert it raises.
type Flag struct {
	Keyword string `yaml:"keyword"`
	Alert   string `yaml:"alert"`
}

// Assessment is the result of an urgency pass.
type Assessment struct {
	Level  Level
	Alerts []string
}

// Evaluator scans normalized text fragments against red-flag tables.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	general    []Flag
	pediatric  []Flag
	advisories []Flag
}

// NewEvaluator creates an evaluator.
// general and pediatric flags escalate to High; advisories only add alerts.
func NewEvaluator(general, pediatric, advisories []Flag) *Evaluator {
	return &Evaluator{general: general, pediatric: pediatric, advisories: advisories}
}

// Default returns an evaluator with the built-in tables.
func Default() *Evaluator {
	return NewEvaluator(DefaultGeneralFlags(), DefaultPediatricFlags(), DefaultAdvisories())
}

// Evaluate starts from Baseline and escalates to High on any general red flag,
// or on a pediatric red flag when age is pediatric. Alerts are deduplicated by value.
func (e *Evaluator) Evaluate(fragments []string, age int) Assessment {
	alerts := newAlertSet()
	level := Baseline

	if scan(fragments, e.general, alerts) {
		level = High
	}
	if symptom.IsPediatric(age) && scan(fragments, e.pediatric, alerts) {
		level = High
	}
	scan(fragments, e.advisories, alerts)

	return Assessment{Level: level, Alerts: alerts.values()}
}

// EvaluateFallback handles requests that matched no category: High for pediatric
// ages, Medium otherwise, with GenericAlert attached. Red flags still apply.
func (e *Evaluator) EvaluateFallback(fragments []string, age int) Assessment {
	a := e.Evaluate(fragments, age)
	if symptom.IsPediatric(age) {
		a.Level = High
	}
	a.Alerts = appendUnique(a.Alerts, GenericAlert)
	return a
}

// scan adds the alert of every flag found in any fragment. Returns true if any matched.
func scan(fragments []string, flags []Flag, alerts *alertSet) bool {
	matched := false
	for _, f := range fragments {
		if f == "" {
			continue
		}
		for _, flag := range flags {
			if strings.Contains(f, flag.Keyword) {
				alerts.add(flag.Alert)
				matched = true
			}
		}
	}
	return matched
}

// alertSet keeps first-seen order so identical input yields identical output.
type alertSet struct {
	seen  map[string]struct{}
	items []string
}

func newAlertSet() *alertSet {
	return &alertSet{seen: make(map[string]struct{})}
}

func (s *alertSet) add(alert string) {
	if _, ok := s.seen[alert]; ok {
		return
	}
	s.seen[alert] = struct{}{}
	s.items = append(s.items, alert)
}

func (s *alertSet) values() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

func appendUnique(alerts []string, alert string) []string {
	for _, a := range alerts {
		if a == alert {
			return alerts
		}
	}
	return append(alerts, alert)
}
