// Package retrieval ranks a specialty's protocol documents by semantic similarity
// to the patient's description.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/medtriage/internal/domain"
	domdoc "github.com/kailas-cloud/medtriage/internal/domain/document"
	"github.com/kailas-cloud/medtriage/internal/domain/evidence"
	"github.com/kailas-cloud/medtriage/internal/metrics"
)

// Defaults.
const (
	DefaultTopK           = 10
	DefaultStorageTimeout = 2 * time.Second
	DefaultEmbedTimeout   = 5 * time.Second
)

// Config controls ranking and collaborator call policy.
type Config struct {
	TopK           int
	StorageTimeout time.Duration
	EmbedTimeout   time.Duration
	Retry          RetryPolicy
}

func (c *Config) applyDefaults() {
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.StorageTimeout <= 0 {
		c.StorageTimeout = DefaultStorageTimeout
	}
	if c.EmbedTimeout <= 0 {
		c.EmbedTimeout = DefaultEmbedTimeout
	}
	c.Retry.applyDefaults()
}

// Service retrieves ranked evidence candidates.
type Service struct {
	docs   Repository
	embed  Embedder
	cfg    Config
	logger *zap.Logger
}

// New creates a retrieval service.
func New(docs Repository, embed Embedder, cfg Config, logger *zap.Logger) *Service {
	cfg.applyDefaults()
	return &Service{docs: docs, embed: embed, cfg: cfg, logger: logger}
}

// Retrieve returns up to topK documents of the specialty ranked by cosine similarity
// to query, best first, ties broken by ascending document id. topK <= 0 uses the
// configured default.
//
// A specialty without documents yields an empty slice and a nil error. Storage
// failures that survive retries wrap domain.ErrStorageUnavailable; embedding
// failures wrap domain.ErrEmbeddingUnavailable and are not retried. When documents
// exist but none matches the query dimension the error wraps
// domain.ErrVectorDimMismatch.
func (s *Service) Retrieve(ctx context.Context, specialtyID int64, query string, topK int) ([]evidence.Match, error) {
	start := time.Now()
	matches, err := s.retrieve(ctx, specialtyID, query, topK)
	metrics.RetrievalDuration.WithLabelValues(statusLabel(err)).Observe(time.Since(start).Seconds())
	return matches, err
}

func (s *Service) retrieve(ctx context.Context, specialtyID int64, query string, topK int) ([]evidence.Match, error) {
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	var ids []int64
	err := s.withRetry(ctx, "document_ids", func(ctx context.Context) error {
		var err error
		ids, err = s.docs.DocumentIDs(ctx, specialtyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []evidence.Match{}, nil
	}

	query32, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	var records []domdoc.Record
	err = s.withRetry(ctx, "documents", func(ctx context.Context) error {
		var err error
		records, err = s.docs.DocumentsByIDs(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	queryVec := toFloat64(query32)
	matches := make([]evidence.Match, 0, len(records))
	skipped := 0
	for _, rec := range records {
		if len(rec.Embedding) != len(queryVec) {
			skipped++
			s.logger.Warn("Skipping document with mismatched embedding dimension",
				zap.Int64("document_id", rec.ID),
				zap.Int("expected", len(queryVec)),
				zap.Int("got", len(rec.Embedding)),
			)
			continue
		}
		matches = append(matches, evidence.Match{
			DocumentID: rec.ID,
			Title:      rec.Title,
			Text:       rec.Text,
			Score:      cosine(queryVec, rec.Embedding),
		})
	}

	if skipped > 0 && skipped == len(records) {
		return nil, fmt.Errorf("specialty %d: %d documents, none with query dimension %d: %w",
			specialtyID, skipped, len(queryVec), domain.ErrVectorDimMismatch)
	}

	Rank(matches)
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *Service) embedQuery(ctx context.Context, query string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.EmbedTimeout)
	defer cancel()

	res, err := s.embed.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		return nil, fmt.Errorf("embed query: %w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(res.Embedding) == 0 {
		return nil, fmt.Errorf("embed query: empty vector: %w", domain.ErrEmbeddingUnavailable)
	}
	return res.Embedding, nil
}

// Rank sorts matches by score descending, then by document id ascending.
func Rank(matches []evidence.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].DocumentID < matches[j].DocumentID
	})
}

func statusLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return "embedding_error"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "storage_error"
	case errors.Is(err, domain.ErrVectorDimMismatch):
		return "dimension_mismatch"
	default:
		return "error"
	}
}
