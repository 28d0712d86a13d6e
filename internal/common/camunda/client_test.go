package camunda

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"leadflow-workers/internal/common/errors"
)

var fastRetry = &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestWithRetry(t *testing.T) {
	tests := []struct {
		name          string
		failures      []error
		wantCalls     int
		wantErr       bool
		wantRetryable bool
	}{
		{"succeeds first time", nil, 1, false, false},
		{"recovers from transient error", []error{fmt.Errorf("rpc error: Unavailable")}, 2, false, false},
		{"gives up after max retries", []error{
			fmt.Errorf("connection refused"), fmt.Errorf("connection refused"), fmt.Errorf("connection refused"),
		}, 3, true, true},
		{"does not retry permanent errors", []error{fmt.Errorf("permission denied")}, 1, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := withRetry(context.Background(), fastRetry, "topology", func(context.Context) error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			std, ok := errors.As(err)
			assert.True(t, ok)
			assert.Equal(t, errors.ErrCodeZeebeRequestFailed, std.Code)
			assert.Equal(t, tt.wantRetryable, std.Retryable)
		})
	}
}

func TestWithRetryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := &RetryConfig{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}

	err := withRetry(ctx, slow, "topology", func(context.Context) error { return fmt.Errorf("timeout") })
	assert.True(t, errors.HasCode(err, errors.ErrCodeZeebeRequestFailed))
}
