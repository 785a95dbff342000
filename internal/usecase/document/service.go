// Package document ingests protocol documents: it vectorizes their text and stores
// them under a specialty.
package document

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/medtriage/internal/domain"
	domdoc "github.com/kailas-cloud/medtriage/internal/domain/document"
)

// MaxBatchSize is the maximum number of documents per ingest call.
const MaxBatchSize = 500

// Input is one document to ingest.
type Input struct {
	SpecialtyID int64  `yaml:"specialty_id"`
	Title       string `yaml:"title"`
	Text        string `yaml:"text"`
}

// Result reports the outcome for one input.
type Result struct {
	Index int
	ID    int64
	Err   error
}

// Service handles document ingestion with automatic vectorization.
type Service struct {
	repo        Repository
	specialties SpecialtyReader
	embedder    Embedder
	dimensions  int
}

// New creates a document service. dimensions of 0 accepts any vector size.
func New(repo Repository, specialties SpecialtyReader, embedder Embedder, dimensions int) *Service {
	return &Service{repo: repo, specialties: specialties, embedder: embedder, dimensions: dimensions}
}

// Ingest vectorizes and stores one document.
func (s *Service) Ingest(ctx context.Context, in Input) (domdoc.Record, error) {
	if _, ok := s.specialties.BySpecialty(in.SpecialtyID); !ok {
		return domdoc.Record{}, fmt.Errorf("specialty %d: %w", in.SpecialtyID, domain.ErrNotFound)
	}

	result, err := s.embedder.Embed(ctx, documentText(in))
	if err != nil {
		return domdoc.Record{}, fmt.Errorf("vectorize document: %w", err)
	}

	if s.dimensions > 0 && len(result.Embedding) != s.dimensions {
		return domdoc.Record{}, fmt.Errorf(
			"vector dimension mismatch: got %d, want %d: %w",
			len(result.Embedding), s.dimensions, domain.ErrVectorDimMismatch,
		)
	}

	rec, err := domdoc.New(in.SpecialtyID, in.Title, in.Text, result.Embedding)
	if err != nil {
		return domdoc.Record{}, err
	}

	saved, err := s.repo.Save(ctx, rec)
	if err != nil {
		return domdoc.Record{}, fmt.Errorf("save document: %w", err)
	}
	return saved, nil
}

// IngestAll ingests documents one by one with per-item error reporting.
// A failed item does not stop the rest.
func (s *Service) IngestAll(ctx context.Context, items []Input) []Result {
	results := make([]Result, len(items))

	if len(items) > MaxBatchSize {
		for i := range items {
			results[i] = Result{
				Index: i,
				Err:   domain.NewValidationError("documents", fmt.Sprintf("batch size exceeds %d", MaxBatchSize)),
			}
		}
		return results
	}

	for i, in := range items {
		if err := ctx.Err(); err != nil {
			results[i] = Result{Index: i, Err: err}
			continue
		}
		rec, err := s.Ingest(ctx, in)
		results[i] = Result{Index: i, ID: rec.ID, Err: err}
	}
	return results
}

// documentText is what gets embedded: the title carries most of the topical signal
// in short protocols.
func documentText(in Input) string {
	if in.Title == "" {
		return in.Text
	}
	return in.Title + "\n\n" + in.Text
}
