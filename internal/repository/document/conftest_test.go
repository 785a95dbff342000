package document

import (
	"context"

	"github.com/kailas-cloud/medtriage/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	documentIDsFn func(ctx context.Context, specialtyID int64) ([]int64, error)
	documentsFn   func(ctx context.Context, ids []int64) ([]db.DocumentRow, error)
	insertFn      func(ctx context.Context, row db.DocumentRow) (int64, error)
	countFn       func(ctx context.Context) (map[int64]int, error)
}

func (m *mockStore) DocumentIDs(ctx context.Context, specialtyID int64) ([]int64, error) {
	if m.documentIDsFn != nil {
		return m.documentIDsFn(ctx, specialtyID)
	}
	return nil, nil
}

func (m *mockStore) Documents(ctx context.Context, ids []int64) ([]db.DocumentRow, error) {
	if m.documentsFn != nil {
		return m.documentsFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockStore) InsertDocument(ctx context.Context, row db.DocumentRow) (int64, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, row)
	}
	return 1, nil
}

func (m *mockStore) CountBySpecialty(ctx context.Context) (map[int64]int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return map[int64]int{}, nil
}
