package document

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/medtriage/internal/db"
	"github.com/kailas-cloud/medtriage/internal/db/sqlite"
	"github.com/kailas-cloud/medtriage/internal/domain"
	domdoc "github.com/kailas-cloud/medtriage/internal/domain/document"
)

func TestDocumentIDs_NilBecomesEmpty(t *testing.T) {
	r := New(&mockStore{})
	ids, err := r.DocumentIDs(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids == nil || len(ids) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", ids)
	}
}

func TestDocumentIDs_ErrorWrapped(t *testing.T) {
	storeErr := &db.Error{Op: db.OpSelect, Err: errors.New("disk I/O error")}
	r := New(&mockStore{documentIDsFn: func(_ context.Context, _ int64) ([]int64, error) {
		return nil, storeErr
	}})

	_, err := r.DocumentIDs(context.Background(), 2)
	if !errors.Is(err, storeErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

func TestDocumentIDs_TranslatesUnavailable(t *testing.T) {
	tests := []struct {
		name        string
		storeErr    error
		unavailable bool
	}{
		{"locked", &db.Error{Op: db.OpSelect, Err: fmt.Errorf("%w: database is locked", db.ErrUnavailable)}, true},
		{"schema", &db.Error{Op: db.OpSelect, Err: errors.New("no such table: documents")}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := New(&mockStore{documentIDsFn: func(_ context.Context, _ int64) ([]int64, error) {
				return nil, tc.storeErr
			}})

			_, err := r.DocumentIDs(context.Background(), 2)
			if !errors.Is(err, tc.storeErr) {
				t.Fatalf("expected store error in chain, got %v", err)
			}
			if got := errors.Is(err, domain.ErrStorageUnavailable); got != tc.unavailable {
				t.Errorf("ErrStorageUnavailable = %v, want %v (%v)", got, tc.unavailable, err)
			}
		})
	}
}

func TestDocumentsByIDs_Decodes(t *testing.T) {
	r := New(&mockStore{documentsFn: func(_ context.Context, ids []int64) ([]db.DocumentRow, error) {
		return []db.DocumentRow{{
			ID: ids[0], SpecialtyID: 2, Title: "t", Text: "x",
			Embedding: domdoc.EncodeVector([]float32{0.25, 0.5}),
		}}, nil
	}})

	recs, err := r.DocumentsByIDs(context.Background(), []int64{7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != 7 || recs[0].Embedding[1] != 0.5 {
		t.Errorf("unexpected records: %+v", recs)
	}
}

func TestDocumentsByIDs_CorruptEmbedding(t *testing.T) {
	r := New(&mockStore{documentsFn: func(_ context.Context, _ []int64) ([]db.DocumentRow, error) {
		return []db.DocumentRow{{ID: 1, Embedding: []byte{1, 2, 3}}}, nil
	}})

	if _, err := r.DocumentsByIDs(context.Background(), []int64{1}); err == nil {
		t.Fatal("expected error for corrupt embedding")
	}
}

func TestDocumentsByIDs_EmptyIDsSkipsStore(t *testing.T) {
	called := false
	r := New(&mockStore{documentsFn: func(_ context.Context, _ []int64) ([]db.DocumentRow, error) {
		called = true
		return nil, nil
	}})

	recs, err := r.DocumentsByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called || len(recs) != 0 {
		t.Error("expected no store call and no records")
	}
}

func TestSave_AssignsID(t *testing.T) {
	var got db.DocumentRow
	r := New(&mockStore{insertFn: func(_ context.Context, row db.DocumentRow) (int64, error) {
		got = row
		return 42, nil
	}})

	rec, err := r.Save(context.Background(), domdoc.Record{SpecialtyID: 3, Title: "t", Text: "x", Embedding: []float32{1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != 42 {
		t.Errorf("expected id 42, got %d", rec.ID)
	}
	if got.SpecialtyID != 3 || len(got.Embedding) != 4 {
		t.Errorf("unexpected stored row: %+v", got)
	}
}

func TestRepo_SQLiteRoundTrip(t *testing.T) {
	s, err := sqlite.NewStore(sqlite.Config{Path: filepath.Join(t.TempDir(), "p.db")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	r := New(s)
	ctx := context.Background()

	rec, err := domdoc.New(2, "Dor toracica", "Protocolo de atendimento", []float32{1, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saved, err := r.Save(ctx, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("expected assigned id")
	}

	ids, err := r.DocumentIDs(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	recs, err := r.DocumentsByIDs(ctx, ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].Title != "Dor toracica" || len(recs[0].Embedding) != 3 {
		t.Errorf("unexpected records: %+v", recs)
	}

	counts, err := r.CountBySpecialty(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts[2] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}
