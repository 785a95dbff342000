package domain

import (
	"errors"
)

var (
	// ErrValidation signals a malformed triage request (too few symptom words, negative age).
	ErrValidation = errors.New("validation failed")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrStorageUnavailable signals that the document store could not be reached
	// after the configured retries.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrEmbeddingUnavailable signals an embedding provider failure or an empty vector.
	// Unlike a specialty without documents, it blocks retrieval for every specialty.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrNarrativeUnavailable signals that the narrative generator could not produce text.
	ErrNarrativeUnavailable = errors.New("narrative unavailable")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)

// ValidationError wraps ErrValidation with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for a request field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
