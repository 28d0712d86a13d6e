package crm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	httpclient "leadflow-workers/internal/common/http"
)

// HubSpot association type ids for contact links.
const (
	hubspotDealToContact = 3
	hubspotNoteToContact = 202
)

var existingIDPattern = regexp.MustCompile(`Existing ID: (\d+)`)

type HubSpotClient struct {
	baseURL     string
	accessToken string
	http        *httpclient.Client
	now         func() time.Time
}

func NewHubSpotClient(baseURL, accessToken string, timeout time.Duration) *HubSpotClient {
	return &HubSpotClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		http:        httpclient.NewClient(timeout),
		now:         time.Now,
	}
}

type hubspotObject struct {
	ID string `json:"id"`
}

type hubspotAssociation struct {
	To    map[string]string        `json:"to"`
	Types []map[string]interface{} `json:"types"`
}

func contactAssociation(contactID string, typeID int) []hubspotAssociation {
	return []hubspotAssociation{{
		To: map[string]string{"id": contactID},
		Types: []map[string]interface{}{{
			"associationCategory": "HUBSPOT_DEFINED",
			"associationTypeId":   typeID,
		}},
	}}
}

func (c *HubSpotClient) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.accessToken}
}

type hubspotSearchResponse struct {
	Results []hubspotObject `json:"results"`
}

// findByPhone returns the id of a contact with exactly this phone, or "".
func (c *HubSpotClient) findByPhone(ctx context.Context, phone string) (string, error) {
	payload := map[string]interface{}{
		"filterGroups": []map[string]interface{}{{
			"filters": []map[string]interface{}{{
				"propertyName": "phone",
				"operator":     "EQ",
				"value":        phone,
			}},
		}},
		"limit": 1,
	}
	var out hubspotSearchResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, c.baseURL+"/crm/v3/objects/contacts/search", c.headers(), payload, &out); err != nil {
		return "", fmt.Errorf("hubspot search contact: %w", err)
	}
	if len(out.Results) == 0 {
		return "", nil
	}
	return out.Results[0].ID, nil
}

// UpsertContact creates the contact, falling back to the existing id HubSpot
// reports on an email conflict. Contacts without an email are matched by phone
// first since HubSpot only dedupes on email.
func (c *HubSpotClient) UpsertContact(ctx context.Context, properties map[string]interface{}) (string, error) {
	email, _ := properties["email"].(string)
	phone, _ := properties["phone"].(string)
	if email == "" && phone != "" {
		existing, err := c.findByPhone(ctx, phone)
		if err != nil {
			return "", err
		}
		if existing != "" {
			return existing, c.updateContact(ctx, existing, properties)
		}
	}

	var out hubspotObject
	err := c.http.DoJSON(ctx, http.MethodPost, c.baseURL+"/crm/v3/objects/contacts", c.headers(),
		map[string]interface{}{"properties": properties}, &out)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusConflict {
			if m := existingIDPattern.FindStringSubmatch(statusErr.Body); m != nil {
				return m[1], c.updateContact(ctx, m[1], properties)
			}
		}
		return "", fmt.Errorf("hubspot create contact: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("hubspot create contact: empty id in response")
	}
	return out.ID, nil
}

func (c *HubSpotClient) updateContact(ctx context.Context, contactID string, properties map[string]interface{}) error {
	url := fmt.Sprintf("%s/crm/v3/objects/contacts/%s", c.baseURL, contactID)
	if err := c.http.DoJSON(ctx, http.MethodPatch, url, c.headers(),
		map[string]interface{}{"properties": properties}, nil); err != nil {
		return fmt.Errorf("hubspot update contact: %w", err)
	}
	return nil
}

func (c *HubSpotClient) CreateDeal(ctx context.Context, contactID string, deal Deal) (string, error) {
	payload := map[string]interface{}{
		"properties": map[string]interface{}{
			"dealname":  deal.Title,
			"dealstage": deal.Stage,
			"pipeline":  "default",
		},
		"associations": contactAssociation(contactID, hubspotDealToContact),
	}
	var out hubspotObject
	if err := c.http.DoJSON(ctx, http.MethodPost, c.baseURL+"/crm/v3/objects/deals", c.headers(), payload, &out); err != nil {
		return "", fmt.Errorf("hubspot create deal: %w", err)
	}
	return out.ID, nil
}

// AddTags stores tags in the multi-value lead_tags contact property.
func (c *HubSpotClient) AddTags(ctx context.Context, contactID string, tags []string) error {
	return c.updateContact(ctx, contactID, map[string]interface{}{"lead_tags": strings.Join(tags, ";")})
}

func (c *HubSpotClient) AddNote(ctx context.Context, contactID string, body string) error {
	payload := map[string]interface{}{
		"properties": map[string]interface{}{
			"hs_note_body": body,
			"hs_timestamp": c.now().UTC().Format(time.RFC3339),
		},
		"associations": contactAssociation(contactID, hubspotNoteToContact),
	}
	if err := c.http.DoJSON(ctx, http.MethodPost, c.baseURL+"/crm/v3/objects/notes", c.headers(), payload, nil); err != nil {
		return fmt.Errorf("hubspot create note: %w", err)
	}
	return nil
}
