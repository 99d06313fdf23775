// Package database dials the storage backends at startup. Both dialers
// retry with backoff, which tolerates races against database containers
// that are still coming up.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docvault/docvault/pkg/logger"
)

const (
	dialAttempts  = 5
	dialBaseDelay = time.Second
)

func dialWithRetry(ctx context.Context, name string, dial func() error) error {
	delay := dialBaseDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = dial(); err == nil {
			return nil
		}
		if attempt == dialAttempts {
			return fmt.Errorf("%s unreachable after %d attempts: %w", name, dialAttempts, err)
		}
		logger.Warnf("%s dial attempt %d/%d failed: %v", name, attempt, dialAttempts, err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s dial interrupted: %w", name, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
}
