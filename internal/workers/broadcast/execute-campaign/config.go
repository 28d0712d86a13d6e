// internal/workers/broadcast/execute-campaign/config.go
package executecampaign

import (
	"time"

	"leadflow-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

// LoadConfig derives the per-job budget. Campaign fan-out is slower than a
// chat turn, so the default is wider.
func LoadConfig(wc config.WorkerConfig) *Config {
	timeout := time.Duration(wc.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Config{Timeout: timeout}
}
