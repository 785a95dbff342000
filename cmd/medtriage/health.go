package main

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/medtriage/internal/domain"
	healthuc "github.com/kailas-cloud/medtriage/internal/usecase/health"
)

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func embeddingChecker(embedder domain.Embedder) healthuc.EmbeddingChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
