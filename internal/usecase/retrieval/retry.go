package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/medtriage/internal/domain"
	"github.com/kailas-cloud/medtriage/internal/metrics"
)

// RetryPolicy is a bounded exponential backoff for storage calls.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// Retry defaults.
const (
	DefaultRetryAttempts  = 3
	DefaultRetryBaseDelay = 100 * time.Millisecond
	DefaultRetryMaxDelay  = 2 * time.Second
)

func (p *RetryPolicy) applyDefaults() {
	if p.Attempts <= 0 {
		p.Attempts = DefaultRetryAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultRetryBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultRetryMaxDelay
	}
}

// delay returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if d <= 0 || d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// withRetry runs fn with a per-call timeout until it succeeds, attempts run out,
// or ctx is done. Only transient failures are retried: errors wrapping
// domain.ErrStorageUnavailable and per-call timeouts. Every failure returned
// wraps domain.ErrStorageUnavailable.
func (s *Service) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	p := s.cfg.Retry

	var lastErr error
	attempt := 1
	for ; ; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.StorageTimeout)
		lastErr = fn(callCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		if !retryable(ctx, lastErr) {
			return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, lastErr)
		}
		if attempt >= p.Attempts || ctx.Err() != nil {
			break
		}

		wait := p.delay(attempt)
		metrics.StorageRetriesTotal.WithLabelValues(op).Inc()
		s.logger.Warn("Storage call failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(lastErr),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w: %w", op, attempt, domain.ErrStorageUnavailable, lastErr)
}

// retryable reports whether a storage failure may clear on another attempt.
// A per-call timeout counts only while the caller's context is still live.
func retryable(ctx context.Context, err error) bool {
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil
}
