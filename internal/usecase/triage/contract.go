package triage

import (
	"context"

	"github.com/kailas-cloud/medtriage/internal/domain/category"
	"github.com/kailas-cloud/medtriage/internal/domain/evidence"
)

// Classifier maps normalized text to a category with urgency.
type Classifier interface {
	Classify(symptoms, history string, age int) category.Result
}

// Retriever ranks a specialty's protocol documents against a query.
type Retriever interface {
	Retrieve(ctx context.Context, specialtyID int64, query string, topK int) ([]evidence.Match, error)
}
