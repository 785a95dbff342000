package retrieval

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/medtriage/internal/domain"
	domdoc "github.com/kailas-cloud/medtriage/internal/domain/document"
)

type mockRepo struct {
	idsFn     func(ctx context.Context, specialtyID int64) ([]int64, error)
	docsFn    func(ctx context.Context, ids []int64) ([]domdoc.Record, error)
	idsCalls  int
	docsCalls int
}

func (m *mockRepo) DocumentIDs(ctx context.Context, specialtyID int64) ([]int64, error) {
	m.idsCalls++
	if m.idsFn != nil {
		return m.idsFn(ctx, specialtyID)
	}
	return []int64{}, nil
}

func (m *mockRepo) DocumentsByIDs(ctx context.Context, ids []int64) ([]domdoc.Record, error) {
	m.docsCalls++
	if m.docsFn != nil {
		return m.docsFn(ctx, ids)
	}
	return nil, nil
}

type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

// fixedRepo serves a static set of records.
func fixedRepo(recs ...domdoc.Record) *mockRepo {
	ids := make([]int64, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	return &mockRepo{
		idsFn: func(_ context.Context, _ int64) ([]int64, error) { return ids, nil },
		docsFn: func(_ context.Context, _ []int64) ([]domdoc.Record, error) {
			return recs, nil
		},
	}
}

func newTestService(repo Repository, emb Embedder) *Service {
	return New(repo, emb, Config{
		TopK:  10,
		Retry: RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	}, zap.NewNop())
}
