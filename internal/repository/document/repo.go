package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/medtriage/internal/db"
	"github.com/kailas-cloud/medtriage/internal/domain"
	domdoc "github.com/kailas-cloud/medtriage/internal/domain/document"
)

// store is the consumer interface for protocol documents (ISP).
type store interface {
	DocumentIDs(ctx context.Context, specialtyID int64) ([]int64, error)
	Documents(ctx context.Context, ids []int64) ([]db.DocumentRow, error)
	InsertDocument(ctx context.Context, row db.DocumentRow) (int64, error)
	CountBySpecialty(ctx context.Context) (map[int64]int, error)
}

// Repo maps stored rows to document records.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// DocumentIDs returns ids of indexed documents for a specialty.
// An empty slice with a nil error means the specialty has no documents.
func (r *Repo) DocumentIDs(ctx context.Context, specialtyID int64) ([]int64, error) {
	ids, err := r.store.DocumentIDs(ctx, specialtyID)
	if err != nil {
		return nil, fmt.Errorf("document ids for specialty %d: %w", specialtyID, translate(err))
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// DocumentsByIDs loads records with decoded embeddings.
func (r *Repo) DocumentsByIDs(ctx context.Context, ids []int64) ([]domdoc.Record, error) {
	if len(ids) == 0 {
		return []domdoc.Record{}, nil
	}

	rows, err := r.store.Documents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load %d documents: %w", len(ids), translate(err))
	}

	out := make([]domdoc.Record, 0, len(rows))
	for _, row := range rows {
		vec, err := domdoc.DecodeVector(row.Embedding)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", row.ID, err)
		}
		out = append(out, domdoc.Record{
			ID:          row.ID,
			SpecialtyID: row.SpecialtyID,
			Title:       row.Title,
			Text:        row.Text,
			Embedding:   vec,
		})
	}
	return out, nil
}

// Save persists a new record and returns it with the assigned id.
func (r *Repo) Save(ctx context.Context, rec domdoc.Record) (domdoc.Record, error) {
	id, err := r.store.InsertDocument(ctx, db.DocumentRow{
		SpecialtyID: rec.SpecialtyID,
		Title:       rec.Title,
		Text:        rec.Text,
		Embedding:   domdoc.EncodeVector(rec.Embedding),
	})
	if err != nil {
		return domdoc.Record{}, fmt.Errorf("save document %q: %w", rec.Title, translate(err))
	}
	rec.ID = id
	return rec, nil
}

// CountBySpecialty returns indexed document counts keyed by specialty id.
func (r *Repo) CountBySpecialty(ctx context.Context) (map[int64]int, error) {
	counts, err := r.store.CountBySpecialty(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", translate(err))
	}
	return counts, nil
}

// translate maps retryable store failures to domain.ErrStorageUnavailable.
// Other errors pass through unchanged.
func translate(err error) error {
	if errors.Is(err, db.ErrUnavailable) {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return err
}
