package crm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	httpclient "leadflow-workers/internal/common/http"
)

// tagsFieldKey is the person custom field holding lead tags.
const tagsFieldKey = "lead_tags"

type PipedriveClient struct {
	baseURL  string
	apiToken string
	http     *httpclient.Client
}

func NewPipedriveClient(baseURL, apiToken string, timeout time.Duration) *PipedriveClient {
	return &PipedriveClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiToken: apiToken,
		http:     httpclient.NewClient(timeout),
	}
}

type pipedriveResponse struct {
	Success bool `json:"success"`
	Data    struct {
		ID int64 `json:"id"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

type pipedriveSearchResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Items []struct {
			Item struct {
				ID int64 `json:"id"`
			} `json:"item"`
		} `json:"items"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

func (c *PipedriveClient) endpoint(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_token", c.apiToken)
	return fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())
}

func (c *PipedriveClient) call(ctx context.Context, method, path string, payload interface{}) (string, error) {
	var out pipedriveResponse
	if err := c.http.DoJSON(ctx, method, c.endpoint(path, nil), nil, payload, &out); err != nil {
		return "", err
	}
	if !out.Success {
		return "", fmt.Errorf("pipedrive rejected request: %s", out.Error)
	}
	return strconv.FormatInt(out.Data.ID, 10), nil
}

// findPerson looks a person up by exact email, or by phone when there is no
// email. It returns "" when nothing matches.
func (c *PipedriveClient) findPerson(ctx context.Context, email, phone string) (string, error) {
	term, field := email, "email"
	if term == "" {
		term, field = phone, "phone"
	}
	if term == "" {
		return "", nil
	}

	query := url.Values{"term": {term}, "fields": {field}, "exact_match": {"true"}}
	var out pipedriveSearchResponse
	if err := c.http.DoJSON(ctx, http.MethodGet, c.endpoint("/persons/search", query), nil, nil, &out); err != nil {
		return "", err
	}
	if !out.Success {
		return "", fmt.Errorf("pipedrive rejected request: %s", out.Error)
	}
	if len(out.Data.Items) == 0 {
		return "", nil
	}
	return strconv.FormatInt(out.Data.Items[0].Item.ID, 10), nil
}

// UpsertContact updates the person matching the email (or phone) and creates
// one otherwise. Pipedrive expects email and phone as lists.
func (c *PipedriveClient) UpsertContact(ctx context.Context, properties map[string]interface{}) (string, error) {
	payload := make(map[string]interface{}, len(properties))
	for k, v := range properties {
		switch k {
		case "email", "phone":
			if s, ok := v.(string); ok && s != "" {
				payload[k] = []map[string]interface{}{{"value": s, "primary": true}}
			}
		default:
			payload[k] = v
		}
	}
	email, _ := properties["email"].(string)
	phone, _ := properties["phone"].(string)
	existing, err := c.findPerson(ctx, email, phone)
	if err != nil {
		return "", fmt.Errorf("pipedrive search person: %w", err)
	}
	if existing != "" {
		if _, err := c.call(ctx, http.MethodPut, "/persons/"+existing, payload); err != nil {
			return "", fmt.Errorf("pipedrive update person: %w", err)
		}
		return existing, nil
	}

	id, err := c.call(ctx, http.MethodPost, "/persons", payload)
	if err != nil {
		return "", fmt.Errorf("pipedrive create person: %w", err)
	}
	return id, nil
}

func (c *PipedriveClient) CreateDeal(ctx context.Context, contactID string, deal Deal) (string, error) {
	personID, err := strconv.ParseInt(contactID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("pipedrive create deal: invalid person id %q", contactID)
	}
	id, err := c.call(ctx, http.MethodPost, "/deals", map[string]interface{}{
		"title":     deal.Title,
		"person_id": personID,
		"stage_id":  deal.StageID,
	})
	if err != nil {
		return "", fmt.Errorf("pipedrive create deal: %w", err)
	}
	return id, nil
}

func (c *PipedriveClient) AddTags(ctx context.Context, contactID string, tags []string) error {
	_, err := c.call(ctx, http.MethodPut, "/persons/"+contactID, map[string]interface{}{
		tagsFieldKey: strings.Join(tags, ","),
	})
	if err != nil {
		return fmt.Errorf("pipedrive tag person: %w", err)
	}
	return nil
}

func (c *PipedriveClient) AddNote(ctx context.Context, contactID string, body string) error {
	personID, err := strconv.ParseInt(contactID, 10, 64)
	if err != nil {
		return fmt.Errorf("pipedrive add note: invalid person id %q", contactID)
	}
	if _, err := c.call(ctx, http.MethodPost, "/notes", map[string]interface{}{
		"content":   body,
		"person_id": personID,
	}); err != nil {
		return fmt.Errorf("pipedrive add note: %w", err)
	}
	return nil
}
