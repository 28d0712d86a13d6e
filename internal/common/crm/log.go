package crm

import (
	"context"

	"github.com/google/uuid"

	"leadflow-workers/internal/common/logger"
)

// LogClient records CRM operations in the log and returns synthetic ids.
// It stands in for a provider whose credentials are not configured.
type LogClient struct {
	provider string
	log      logger.Logger
}

func NewLogClient(provider string, log logger.Logger) *LogClient {
	return &LogClient{provider: provider, log: logger.Component(log, "crm-log")}
}

func (c *LogClient) UpsertContact(_ context.Context, properties map[string]interface{}) (string, error) {
	id := uuid.NewString()
	c.log.Info("Upsert contact", map[string]interface{}{
		"provider":   c.provider,
		"contact_id": id,
		"properties": len(properties),
	})
	return id, nil
}

func (c *LogClient) CreateDeal(_ context.Context, contactID string, deal Deal) (string, error) {
	id := uuid.NewString()
	c.log.Info("Create deal", map[string]interface{}{
		"provider":   c.provider,
		"contact_id": contactID,
		"deal_id":    id,
		"stage":      deal.Stage,
	})
	return id, nil
}

func (c *LogClient) AddTags(_ context.Context, contactID string, tags []string) error {
	c.log.Info("Add tags", map[string]interface{}{
		"provider":   c.provider,
		"contact_id": contactID,
		"tags":       tags,
	})
	return nil
}

func (c *LogClient) AddNote(_ context.Context, contactID string, body string) error {
	c.log.Debug("Add note", map[string]interface{}{
		"provider":   c.provider,
		"contact_id": contactID,
		"length":     len(body),
	})
	return nil
}
