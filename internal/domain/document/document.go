// Package document holds indexed medical protocol documents.
package document

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/medtriage/internal/domain"
)

// MaxTextSize is the maximum extracted text size in bytes.
const MaxTextSize = 1 << 20

// Record is a protocol document with its stored embedding.
// len(Embedding) equals the embedding model dimension.
type Record struct {
	ID          int64
	SpecialtyID int64
	Title       string
	Text        string
	Embedding   []float32
}

// New validates an ingested document. ID is assigned by storage.
func New(specialtyID int64, title, text string, embedding []float32) (Record, error) {
	title = strings.TrimSpace(title)
	if specialtyID <= 0 {
		return Record{}, domain.NewValidationError("specialty_id", "must be positive")
	}
	if title == "" {
		return Record{}, domain.NewValidationError("title", "is required")
	}
	if text == "" {
		return Record{}, domain.NewValidationError("text", "is required")
	}
	if len(text) > MaxTextSize {
		return Record{}, domain.NewValidationError("text", fmt.Sprintf("too large (max %d bytes)", MaxTextSize))
	}
	if !utf8.ValidString(text) {
		return Record{}, domain.NewValidationError("text", "must be valid UTF-8")
	}
	if len(embedding) == 0 {
		return Record{}, domain.NewValidationError("embedding", "is required")
	}

	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	return Record{
		SpecialtyID: specialtyID,
		Title:       title,
		Text:        text,
		Embedding:   vec,
	}, nil
}

// Dimensions returns the embedding length.
func (r Record) Dimensions() int { return len(r.Embedding) }
