package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: leadflow
    user: leadflow
  redis:
    address: localhost:6379
workers:
  handle-message:
    enabled: true
    max_jobs_active: 20
  execute-campaign:
    enabled: false
automation:
  crm_provider: pipedrive
  alert_email: ${LEADFLOW_TEST_ALERT_EMAIL}
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaultsAndExpandsEnv(t *testing.T) {
	t.Setenv("LEADFLOW_TEST_ALERT_EMAIL", "alerts@example.com")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "pipedrive", cfg.Automation.CRMProvider)
	assert.Equal(t, "alerts@example.com", cfg.Automation.AlertEmail)
	assert.Equal(t, 10*time.Second, cfg.Automation.SendTimeoutDuration())
	assert.Equal(t, 24*time.Hour, cfg.Automation.SessionTTLDuration())
	assert.Equal(t, 8, cfg.Automation.BroadcastConcurrency)
	assert.Equal(t, "0 * * * * *", cfg.Automation.SchedulerSpec)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "https://api.hubapi.com", cfg.Integrations.HubSpot.BaseURL)
	assert.Equal(t, "info", cfg.Logging.Level)

	handle := GetWorkerConfig(cfg, "handle-message")
	assert.Equal(t, 20, handle.MaxJobsActive)
	assert.Equal(t, 30000, handle.Timeout)
	assert.Equal(t, 3, handle.MaxRetries)
	assert.False(t, IsWorkerEnabled(cfg, "execute-campaign"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown-worker"))
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing broker",
			yaml:    "database:\n  postgres:\n    host: h\n",
			wantErr: "camunda.broker_address",
		},
		{
			name: "missing redis",
			yaml: `
camunda:
  broker_address: b
database:
  postgres:
    host: h
    database: d
    user: u
`,
			wantErr: "database.redis.address",
		},
		{
			name: "unknown crm provider",
			yaml: `
camunda:
  broker_address: b
database:
  postgres:
    host: h
    database: d
    user: u
  redis:
    address: r
automation:
  crm_provider: salesforce
`,
			wantErr: "crm_provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIntegrationConfigured(t *testing.T) {
	var i IntegrationConfig
	assert.False(t, i.HubSpotConfigured())
	assert.False(t, i.PipedriveConfigured())

	i.HubSpot.AccessToken = "token"
	i.Pipedrive.APIToken = "token"
	assert.True(t, i.HubSpotConfigured())
	assert.True(t, i.PipedriveConfigured())
}
