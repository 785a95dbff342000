// Package catalog lists the classification table together with how many protocol
// documents back each specialty.
package catalog

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/medtriage/internal/domain/category"
)

// Definitions exposes the category table.
type Definitions interface {
	Definitions() []category.Definition
}

// DocumentCounter counts stored documents per specialty.
type DocumentCounter interface {
	CountBySpecialty(ctx context.Context) (map[int64]int, error)
}

// Entry is one category with its corpus size.
type Entry struct {
	Name         string
	SpecialtyID  int64
	KeywordCount int
	HintCount    int
	Fallback     bool
	Documents    int
}

// Service builds catalog listings.
type Service struct {
	table  Definitions
	counts DocumentCounter
}

// New creates a catalog service. counts may be nil, in which case document counts
// are reported as zero.
func New(table Definitions, counts DocumentCounter) *Service {
	return &Service{table: table, counts: counts}
}

// List returns every category in table order.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	counts := map[int64]int{}
	if s.counts != nil {
		var err error
		counts, err = s.counts.CountBySpecialty(ctx)
		if err != nil {
			return nil, fmt.Errorf("count documents: %w", err)
		}
	}

	defs := s.table.Definitions()
	entries := make([]Entry, len(defs))
	for i, d := range defs {
		entries[i] = Entry{
			Name:         d.Name,
			SpecialtyID:  d.SpecialtyID,
			KeywordCount: len(d.Keywords),
			HintCount:    len(d.Hints),
			Fallback:     d.Fallback,
			Documents:    counts[d.SpecialtyID],
		}
	}
	return entries, nil
}
