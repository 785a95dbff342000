package retrieval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/medtriage/internal/domain"
	domdoc "github.com/kailas-cloud/medtriage/internal/domain/document"
	"github.com/kailas-cloud/medtriage/internal/domain/evidence"
	"github.com/kailas-cloud/medtriage/internal/metrics"
)

func TestRetrieve_RanksByCosine(t *testing.T) {
	repo := fixedRepo(
		domdoc.Record{ID: 1, Title: "orthogonal", Embedding: []float32{0, 1}},
		domdoc.Record{ID: 2, Title: "exact", Embedding: []float32{2, 0}},
		domdoc.Record{ID: 3, Title: "diagonal", Embedding: []float32{1, 1}},
	)
	svc := newTestService(repo, &mockEmbedder{vec: []float32{1, 0}})

	got, err := svc.Retrieve(context.Background(), 2, "dor no peito", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(got))
	}
	wantIDs := []int64{2, 3, 1}
	for i, id := range wantIDs {
		if got[i].DocumentID != id {
			t.Errorf("position %d: expected doc %d, got %d", i, id, got[i].DocumentID)
		}
	}
	if math.Abs(got[0].Score-1) > 1e-9 {
		t.Errorf("expected score 1, got %v", got[0].Score)
	}
	if math.Abs(got[1].Score-1/math.Sqrt2) > 1e-6 {
		t.Errorf("expected score 1/sqrt2, got %v", got[1].Score)
	}
	if got[0].Title != "exact" {
		t.Errorf("expected title carried through, got %q", got[0].Title)
	}
}

func TestRetrieve_TiesBrokenByID(t *testing.T) {
	repo := fixedRepo(
		domdoc.Record{ID: 9, Embedding: []float32{1, 0}},
		domdoc.Record{ID: 4, Embedding: []float32{1, 0}},
		domdoc.Record{ID: 6, Embedding: []float32{1, 0}},
	)
	svc := newTestService(repo, &mockEmbedder{vec: []float32{1, 0}})

	for range 5 {
		got, err := svc.Retrieve(context.Background(), 1, "q", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got[0].DocumentID != 4 || got[1].DocumentID != 6 || got[2].DocumentID != 9 {
			t.Fatalf("expected ascending ids on ties, got %v", ids(got))
		}
	}
}

func TestRetrieve_TopK(t *testing.T) {
	repo := fixedRepo(
		domdoc.Record{ID: 1, Embedding: []float32{1, 0}},
		domdoc.Record{ID: 2, Embedding: []float32{1, 1}},
		domdoc.Record{ID: 3, Embedding: []float32{0, 1}},
	)
	svc := newTestService(repo, &mockEmbedder{vec: []float32{1, 0}})

	got, err := svc.Retrieve(context.Background(), 1, "q", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].DocumentID != 1 || got[1].DocumentID != 2 {
		t.Errorf("unexpected top-2: %v", ids(got))
	}
}

func TestRetrieve_NoDocuments(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{1}}
	repo := &mockRepo{}
	svc := newTestService(repo, emb)

	got, err := svc.Retrieve(context.Background(), 5, "q", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
	if emb.calls != 0 {
		t.Errorf("expected embedder not called, got %d calls", emb.calls)
	}
	if repo.docsCalls != 0 {
		t.Errorf("expected no document fetch, got %d", repo.docsCalls)
	}
}

func TestRetrieve_EmbeddingFailure(t *testing.T) {
	tests := []struct {
		name string
		emb  *mockEmbedder
	}{
		{"provider error", &mockEmbedder{err: errors.New("connection reset")}},
		{"already classified", &mockEmbedder{err: domain.ErrEmbeddingUnavailable}},
		{"empty vector", &mockEmbedder{vec: []float32{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := fixedRepo(domdoc.Record{ID: 1, Embedding: []float32{1}})
			svc := newTestService(repo, tt.emb)

			_, err := svc.Retrieve(context.Background(), 1, "q", 0)
			if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
				t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
			}
			if tt.emb.calls != 1 {
				t.Errorf("expected exactly one embed call, got %d", tt.emb.calls)
			}
			if repo.docsCalls != 0 {
				t.Errorf("expected no document fetch after embed failure")
			}
		})
	}
}

func TestRetrieve_StorageRetriesExhausted(t *testing.T) {
	before := testutil.ToFloat64(metrics.StorageRetriesTotal.WithLabelValues("document_ids"))

	repo := &mockRepo{idsFn: func(_ context.Context, _ int64) ([]int64, error) {
		return nil, fmt.Errorf("%w: database is locked", domain.ErrStorageUnavailable)
	}}
	svc := newTestService(repo, &mockEmbedder{vec: []float32{1}})

	_, err := svc.Retrieve(context.Background(), 1, "q", 0)
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if repo.idsCalls != 3 {
		t.Errorf("expected 3 attempts, got %d", repo.idsCalls)
	}

	after := testutil.ToFloat64(metrics.StorageRetriesTotal.WithLabelValues("document_ids"))
	if after-before != 2 {
		t.Errorf("expected 2 retries counted, got %v", after-before)
	}
}

func TestRetrieve_StorageRecoversOnRetry(t *testing.T) {
	fail := true
	repo := fixedRepo(domdoc.Record{ID: 1, Embedding: []float32{1}})
	docs := repo.docsFn
	repo.docsFn = func(ctx context.Context, ids []int64) ([]domdoc.Record, error) {
		if fail {
			fail = false
			return nil, fmt.Errorf("%w: disk I/O error", domain.ErrStorageUnavailable)
		}
		return docs(ctx, ids)
	}
	svc := newTestService(repo, &mockEmbedder{vec: []float32{1}})

	got, err := svc.Retrieve(context.Background(), 1, "q", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || repo.docsCalls != 2 {
		t.Errorf("expected recovery on 2nd attempt, got %d matches after %d calls", len(got), repo.docsCalls)
	}
}

func TestRetrieve_PermanentStorageErrorNotRetried(t *testing.T) {
	before := testutil.ToFloat64(metrics.StorageRetriesTotal.WithLabelValues("document_ids"))

	schemaErr := errors.New("no such table: documents")
	repo := &mockRepo{idsFn: func(_ context.Context, _ int64) ([]int64, error) {
		return nil, schemaErr
	}}
	svc := newTestService(repo, &mockEmbedder{vec: []float32{1}})

	_, err := svc.Retrieve(context.Background(), 1, "q", 0)
	if !errors.Is(err, domain.ErrStorageUnavailable) || !errors.Is(err, schemaErr) {
		t.Fatalf("expected ErrStorageUnavailable wrapping the cause, got %v", err)
	}
	if repo.idsCalls != 1 {
		t.Errorf("expected a single attempt, got %d", repo.idsCalls)
	}
	if after := testutil.ToFloat64(metrics.StorageRetriesTotal.WithLabelValues("document_ids")); after != before {
		t.Errorf("expected no retries counted, got %v", after-before)
	}
}

func TestRetrieve_CallTimeoutIsRetried(t *testing.T) {
	repo := &mockRepo{}
	repo.idsFn = func(ctx context.Context, _ int64) ([]int64, error) {
		if repo.idsCalls == 1 {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []int64{}, nil
	}
	svc := New(repo, &mockEmbedder{vec: []float32{1}}, Config{
		StorageTimeout: 5 * time.Millisecond,
		Retry:          RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	}, zap.NewNop())

	got, err := svc.Retrieve(context.Background(), 1, "q", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 || repo.idsCalls != 2 {
		t.Errorf("expected recovery after timeout, got %d matches after %d calls", len(got), repo.idsCalls)
	}
}

func TestRetrieve_CanceledContextStopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	repo := &mockRepo{idsFn: func(_ context.Context, _ int64) ([]int64, error) {
		cancel()
		return nil, errors.New("interrupted")
	}}
	svc := newTestService(repo, &mockEmbedder{vec: []float32{1}})

	_, err := svc.Retrieve(ctx, 1, "q", 0)
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if repo.idsCalls != 1 {
		t.Errorf("expected no retry after cancellation, got %d calls", repo.idsCalls)
	}
}

func TestRetrieve_SkipsDimensionMismatch(t *testing.T) {
	repo := fixedRepo(
		domdoc.Record{ID: 1, Embedding: []float32{1, 0, 0}},
		domdoc.Record{ID: 2, Embedding: []float32{1, 0}},
	)
	svc := newTestService(repo, &mockEmbedder{vec: []float32{1, 0}})

	got, err := svc.Retrieve(context.Background(), 1, "q", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].DocumentID != 2 {
		t.Errorf("expected only doc 2, got %v", ids(got))
	}
}

func TestRetrieve_AllDimensionsMismatched(t *testing.T) {
	repo := fixedRepo(
		domdoc.Record{ID: 1, Embedding: []float32{1, 0, 0}},
		domdoc.Record{ID: 2, Embedding: []float32{0, 1, 0}},
	)
	svc := newTestService(repo, &mockEmbedder{vec: []float32{1, 0}})

	got, err := svc.Retrieve(context.Background(), 1, "q", 0)
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no matches, got %v", ids(got))
	}
}

func TestRetrieve_RecordsDuration(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockEmbedder{})

	if _, err := svc.Retrieve(context.Background(), 1, "q", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if testutil.CollectAndCount(metrics.RetrievalDuration, "medtriage_retrieval_duration_seconds") == 0 {
		t.Error("expected retrieval duration series")
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		q    []float64
		d    []float32
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float64{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float64{1, 0}, []float32{0, 1}, 0},
		{"zero query", []float64{0, 0}, []float32{1, 1}, 0},
		{"zero doc", []float64{1, 1}, []float32{0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosine(tt.q, tt.d); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{Attempts: 5, BaseDelay: 100, MaxDelay: 300}
	want := []int64{100, 200, 300, 300}
	for i, w := range want {
		if got := p.delay(i + 1); int64(got) != w {
			t.Errorf("delay(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestRank_Stable(t *testing.T) {
	m := []evidence.Match{
		{DocumentID: 3, Score: 0.5},
		{DocumentID: 1, Score: 0.9},
		{DocumentID: 2, Score: 0.5},
	}
	Rank(m)
	if got := ids(m); got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("unexpected order: %v", got)
	}
}

func ids(m []evidence.Match) []int64 {
	out := make([]int64, len(m))
	for i := range m {
		out[i] = m[i].DocumentID
	}
	return out
}
