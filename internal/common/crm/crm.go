// Package crm holds the REST clients for the CRM providers leads are pushed to.
package crm

import "context"

// Deal is a provider-neutral deal request. HubSpot uses Stage, Pipedrive StageID.
type Deal struct {
	Title   string
	Stage   string
	StageID int
}

// Client is implemented by every CRM REST client in this package.
type Client interface {
	UpsertContact(ctx context.Context, properties map[string]interface{}) (string, error)
	CreateDeal(ctx context.Context, contactID string, deal Deal) (string, error)
	AddTags(ctx context.Context, contactID string, tags []string) error
	AddNote(ctx context.Context, contactID string, body string) error
}
