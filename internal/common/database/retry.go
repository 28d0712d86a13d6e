// internal/common/database/retry.go
package database

import (
	"context"
	"fmt"
	"time"

	"leadflow-workers/internal/common/logger"
)

// WaitReady calls ping until it succeeds, doubling the delay between
// attempts. Backing services often start after the worker in compose setups.
func WaitReady(ctx context.Context, name string, attempts int, initialDelay time.Duration, log logger.Logger, ping func(context.Context) error) error {
	var err error
	delay := initialDelay

	for i := 0; i < attempts; i++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		log.Warn(fmt.Sprintf("%s not ready, retrying...", name), map[string]interface{}{
			"error":       err.Error(),
			"attempt":     i + 1,
			"maxAttempts": attempts,
			"nextRetryIn": delay.String(),
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("%s not ready after %d attempts: %w", name, attempts, err)
}
