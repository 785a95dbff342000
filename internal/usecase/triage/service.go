// Package triage orchestrates classification, evidence retrieval and aggregation
// into a single triage report.
package triage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/medtriage/internal/domain"
	"github.com/kailas-cloud/medtriage/internal/domain/evidence"
	"github.com/kailas-cloud/medtriage/internal/domain/symptom"
	"github.com/kailas-cloud/medtriage/internal/domain/urgency"
	logpkg "github.com/kailas-cloud/medtriage/internal/logger"
	"github.com/kailas-cloud/medtriage/internal/metrics"
)

// Defaults.
const (
	DefaultTopK             = 10
	DefaultNarrativeTimeout = 10 * time.Second
	// MaxEvidenceLimit caps per-request evidence overrides.
	MaxEvidenceLimit = 10
)

// Request is a triage request as received from a client.
type Request struct {
	Symptoms string
	History  string
	Age      int
	// EvidenceLimit overrides the configured display limit when > 0.
	EvidenceLimit int
}

// Report is the structured result of one triage.
type Report struct {
	ID             string
	Category       string
	SpecialtyID    int64
	Urgency        urgency.Level
	Alerts         []string
	DiagnosesHint  []string
	Evidence       []evidence.Item
	Sources        []string
	Recommendation string
	Outcome        evidence.Outcome
	Narrative      string
	Disclaimer     string
}

// Config tunes the pipeline.
type Config struct {
	Evidence         evidence.Options
	TopK             int
	NarrativeTimeout time.Duration
	// NarrativeLimiter bounds narrator calls. Nil means unlimited.
	NarrativeLimiter *rate.Limiter
}

// Service runs the triage pipeline. Safe for concurrent use.
type Service struct {
	classifier Classifier
	retriever  Retriever
	narrator   domain.Narrator
	cfg        Config
	logger     *zap.Logger
	newID      func() string
}

// New creates a triage service. narrator may be nil.
func New(classifier Classifier, retriever Retriever, narrator domain.Narrator, cfg Config, logger *zap.Logger) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.NarrativeTimeout <= 0 {
		cfg.NarrativeTimeout = DefaultNarrativeTimeout
	}
	if cfg.Evidence == (evidence.Options{}) {
		cfg.Evidence = evidence.DefaultOptions()
	}
	return &Service{
		classifier: classifier,
		retriever:  retriever,
		narrator:   narrator,
		cfg:        cfg,
		logger:     logger,
		newID:      func() string { return uuid.New().String() },
	}
}

// Triage validates the request, classifies it and attaches ranked evidence.
//
// Validation failures return domain.ErrValidation. Storage and embedding failures
// do not fail the call: they produce a report whose Outcome records the degradation.
func (s *Service) Triage(ctx context.Context, req Request) (Report, error) {
	id := s.newID()
	log := logpkg.FromContextOr(ctx, s.logger).With(zap.String("triage_id", id))
	m := newMachine(log)

	if req.EvidenceLimit < 0 || req.EvidenceLimit > MaxEvidenceLimit {
		m.fail()
		return Report{}, domain.NewValidationError("evidence_limit", "must be between 0 and 10")
	}

	rep, err := symptom.NewReport(req.Symptoms, req.History, req.Age)
	if err != nil {
		m.fail()
		return Report{}, fmt.Errorf("validate request: %w", err)
	}
	m.advance(StateNormalized)

	cls := s.classifier.Classify(rep.Normalized(), rep.NormalizedHistory(), rep.Age())
	m.advance(StateClassified)
	log.Debug("Classified",
		zap.String("category", cls.Category),
		zap.Int("score", cls.Score),
		zap.String("urgency", string(cls.Urgency)),
		zap.Bool("fallback", cls.Fallback),
	)

	m.advance(StateRetrieving)
	summary, err := s.gatherEvidence(ctx, log, cls.SpecialtyID, rep.Raw(), req.EvidenceLimit)
	if err != nil {
		m.fail()
		return Report{}, err
	}
	m.advance(StateAggregated)

	report := Report{
		ID:             id,
		Category:       cls.Category,
		SpecialtyID:    cls.SpecialtyID,
		Urgency:        cls.Urgency,
		Alerts:         nonNil(cls.Alerts),
		DiagnosesHint:  nonNil(cls.DiagnosesHint),
		Evidence:       summary.Evidence,
		Sources:        summary.Sources,
		Recommendation: summary.Recommendation,
		Outcome:        summary.Outcome,
		Disclaimer:     domain.Disclaimer,
	}
	report.Narrative = s.narrate(ctx, log, &rep, &report)

	m.advance(StateReported)
	metrics.TriageOutcomesTotal.WithLabelValues(string(report.Outcome)).Inc()
	metrics.TriageCategoriesTotal.WithLabelValues(report.Category, string(report.Urgency)).Inc()
	return report, nil
}

// gatherEvidence retrieves and aggregates evidence. Collaborator outages become
// degraded summaries; any other error is returned.
func (s *Service) gatherEvidence(
	ctx context.Context, log *zap.Logger, specialtyID int64, query string, limit int,
) (evidence.Summary, error) {
	matches, err := s.retriever.Retrieve(ctx, specialtyID, query, s.cfg.TopK)
	switch {
	case errors.Is(err, domain.ErrStorageUnavailable):
		log.Warn("Protocol storage unavailable, returning fail-safe report", zap.Error(err))
		return evidence.FailSafe(), nil
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		log.Warn("Embedding unavailable, returning report without evidence", zap.Error(err))
		return evidence.Inconclusive(evidence.OutcomeEmbeddingUnavailable), nil
	case errors.Is(err, domain.ErrVectorDimMismatch):
		log.Error("Indexed protocols do not match the query embedding dimension", zap.Error(err))
		return evidence.Inconclusive(evidence.OutcomeDimensionMismatch), nil
	case err != nil:
		return evidence.Summary{}, fmt.Errorf("retrieve evidence: %w", err)
	}

	opts := s.cfg.Evidence
	if limit > 0 {
		opts.Limit = limit
	}
	return evidence.Aggregate(matches, opts), nil
}
