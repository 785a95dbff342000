package triage

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/medtriage/internal/domain"
	"github.com/kailas-cloud/medtriage/internal/domain/category"
	domdoc "github.com/kailas-cloud/medtriage/internal/domain/document"
	"github.com/kailas-cloud/medtriage/internal/domain/evidence"
	"github.com/kailas-cloud/medtriage/internal/domain/urgency"
)

type mockRetriever struct {
	matches   []evidence.Match
	err       error
	calls     int
	specialty int64
	query     string
	topK      int
}

func (m *mockRetriever) Retrieve(_ context.Context, specialtyID int64, query string, topK int) ([]evidence.Match, error) {
	m.calls++
	m.specialty, m.query, m.topK = specialtyID, query, topK
	if m.err != nil {
		return nil, m.err
	}
	return m.matches, nil
}

type mockNarrator struct {
	text  string
	err   error
	delay time.Duration
	calls int
	input domain.NarrativeInput
}

func (m *mockNarrator) Narrate(ctx context.Context, in domain.NarrativeInput) (string, error) {
	m.calls++
	m.input = in
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.delay):
		}
	}
	return m.text, m.err
}

func defaultClassifier() *category.Classifier {
	return category.NewClassifier(category.DefaultTable(), urgency.Default())
}

func newTestService(ret Retriever, narrator domain.Narrator, limiter *rate.Limiter) *Service {
	s := New(defaultClassifier(), ret, narrator, Config{NarrativeLimiter: limiter}, zap.NewNop())
	s.newID = func() string { return "00000000-0000-0000-0000-000000000001" }
	return s
}

// protocolStore serves fixed documents for every specialty.
type protocolStore struct {
	docs []domdoc.Record
}

func (p *protocolStore) DocumentIDs(_ context.Context, _ int64) ([]int64, error) {
	ids := make([]int64, len(p.docs))
	for i, d := range p.docs {
		ids[i] = d.ID
	}
	return ids, nil
}

func (p *protocolStore) DocumentsByIDs(_ context.Context, _ []int64) ([]domdoc.Record, error) {
	return p.docs, nil
}

type fixedEmbedder struct {
	vec []float32
}

func (f *fixedEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: f.vec}, nil
}
