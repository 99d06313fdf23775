package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docvault/docvault/internal/document"
	"github.com/docvault/docvault/pkg/logger"
	"github.com/docvault/docvault/pkg/metrics"
)

const (
	retryAttempts  = 3
	retryBaseDelay = 100 * time.Millisecond
)

// withRetry runs fn up to retryAttempts times, doubling the delay between
// attempts. Not-found and validation outcomes are final; everything else
// counts as transient and collapses into document.ErrUnavailable once the
// budget is spent.
func withRetry(ctx context.Context, backend, op string, fn func() error) error {
	delay := retryBaseDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if errors.Is(err, document.ErrNotFound) || errors.Is(err, document.ErrInvalid) {
			return err
		}
		if attempt == retryAttempts {
			break
		}
		logger.Warnf("%s %s attempt %d/%d failed: %v", backend, op, attempt, retryAttempts, err)
		metrics.StorageRetries.WithLabelValues(backend).Inc()
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", document.ErrUnavailable, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	logger.Errorf("%s %s failed after %d attempts: %v", backend, op, retryAttempts, err)
	return fmt.Errorf("%w: %v", document.ErrUnavailable, err)
}
