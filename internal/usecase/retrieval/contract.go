package retrieval

import (
	"context"

	"github.com/kailas-cloud/medtriage/internal/domain"
	domdoc "github.com/kailas-cloud/medtriage/internal/domain/document"
)

// Repository reads protocol documents by specialty.
type Repository interface {
	DocumentIDs(ctx context.Context, specialtyID int64) ([]int64, error)
	DocumentsByIDs(ctx context.Context, ids []int64) ([]domdoc.Record, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
