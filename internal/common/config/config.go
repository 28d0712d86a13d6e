// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Integrations IntegrationConfig       `mapstructure:"integrations"`
	Automation   AutomationConfig        `mapstructure:"automation"`
	Logging      LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name           string `mapstructure:"name"`
	Version        string `mapstructure:"version"`
	Environment    string `mapstructure:"environment"`
	MetricsAddr    string `mapstructure:"metrics_addr"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"` // tracing is off when empty
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// IntegrationConfig holds settings for CRM providers and delivery channels.
type IntegrationConfig struct {
	HubSpot struct {
		BaseURL     string `mapstructure:"base_url"`
		AccessToken string `mapstructure:"access_token"`
	} `mapstructure:"hubspot"`

	Pipedrive struct {
		BaseURL  string `mapstructure:"base_url"`
		APIToken string `mapstructure:"api_token"`
	} `mapstructure:"pipedrive"`

	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled            bool   `mapstructure:"enabled"`
			DefaultSMSSenderID string `mapstructure:"default_sms_sender_id"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`

	Twilio struct {
		Enabled    bool   `mapstructure:"enabled"`
		AccountSID string `mapstructure:"account_sid"`
		AuthToken  string `mapstructure:"auth_token"`
		FromNumber string `mapstructure:"from_number"`
	} `mapstructure:"twilio"`
}

// HubSpotConfigured reports whether HubSpot credentials are present.
func (i IntegrationConfig) HubSpotConfigured() bool {
	return i.HubSpot.AccessToken != ""
}

// PipedriveConfigured reports whether Pipedrive credentials are present.
func (i IntegrationConfig) PipedriveConfigured() bool {
	return i.Pipedrive.APIToken != ""
}

// AutomationConfig tunes the post-scoring automation fan-out.
type AutomationConfig struct {
	CRMProvider          string `mapstructure:"crm_provider"`
	SendTimeout          int    `mapstructure:"send_timeout"` // milliseconds
	BroadcastConcurrency int    `mapstructure:"broadcast_concurrency"`
	SchedulerSpec        string `mapstructure:"scheduler_spec"`
	SessionTTL           int    `mapstructure:"session_ttl"` // seconds
	AlertEmail           string `mapstructure:"alert_email"`
}

func (a AutomationConfig) SendTimeoutDuration() time.Duration {
	return GetDuration(a.SendTimeout)
}

func (a AutomationConfig) SessionTTLDuration() time.Duration {
	return time.Duration(a.SessionTTL) * time.Second
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
