package document

import (
	"context"

	"github.com/kailas-cloud/medtriage/internal/domain"
	"github.com/kailas-cloud/medtriage/internal/domain/category"
	domdoc "github.com/kailas-cloud/medtriage/internal/domain/document"
)

// Repository persists protocol documents.
type Repository interface {
	Save(ctx context.Context, rec domdoc.Record) (domdoc.Record, error)
}

// SpecialtyReader resolves specialty ids against the category table.
type SpecialtyReader interface {
	BySpecialty(id int64) (category.Definition, bool)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
