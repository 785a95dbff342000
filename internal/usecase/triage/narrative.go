package triage

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/medtriage/internal/domain"
	"github.com/kailas-cloud/medtriage/internal/domain/symptom"
	"github.com/kailas-cloud/medtriage/internal/metrics"
)

// narrate asks the narrator for a plain-language summary. It never fails the
// request: any problem yields an empty narrative.
func (s *Service) narrate(ctx context.Context, log *zap.Logger, rep *symptom.Report, r *Report) string {
	if s.narrator == nil {
		return ""
	}
	if s.cfg.NarrativeLimiter != nil && !s.cfg.NarrativeLimiter.Allow() {
		metrics.NarrativeRequestsTotal.WithLabelValues("rate_limited").Inc()
		log.Info("Narrative skipped: rate limited")
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.NarrativeTimeout)
	defer cancel()

	text, err := s.narrator.Narrate(ctx, narrativeInput(rep, r))
	if err != nil {
		metrics.NarrativeRequestsTotal.WithLabelValues("error").Inc()
		log.Warn("Narrative generation failed", zap.Error(err))
		return ""
	}
	metrics.NarrativeRequestsTotal.WithLabelValues("ok").Inc()
	return text
}

func narrativeInput(rep *symptom.Report, r *Report) domain.NarrativeInput {
	titles := make([]string, 0, len(r.Evidence))
	for _, e := range r.Evidence {
		if e.Title != "" {
			titles = append(titles, e.Title)
		}
	}
	return domain.NarrativeInput{
		Symptoms:       rep.Raw(),
		History:        rep.History(),
		Age:            rep.Age(),
		Category:       r.Category,
		Urgency:        string(r.Urgency),
		Alerts:         r.Alerts,
		DiagnosesHint:  r.DiagnosesHint,
		EvidenceTitles: titles,
		Recommendation: r.Recommendation,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
