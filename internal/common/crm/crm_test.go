package crm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]interface{}
}

func newRecorder(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		_ = json.Unmarshal(raw, &body)
		requests = append(requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestHubSpotClient_ContactDealTagsNote(t *testing.T) {
	srv, requests := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/crm/v3/objects/contacts":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"501"}`))
		case "/crm/v3/objects/deals":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"901"}`))
		default:
			_, _ = w.Write([]byte(`{"id":"1"}`))
		}
	})

	client := NewHubSpotClient(srv.URL+"/", "secret", 5*time.Second)
	client.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	id, err := client.UpsertContact(ctx, map[string]interface{}{"email": "ana@example.ro"})
	require.NoError(t, err)
	assert.Equal(t, "501", id)

	dealID, err := client.CreateDeal(ctx, id, Deal{Title: "Ana - coaching", Stage: "qualified"})
	require.NoError(t, err)
	assert.Equal(t, "901", dealID)

	require.NoError(t, client.AddTags(ctx, id, []string{"coaching", "hot-lead"}))
	require.NoError(t, client.AddNote(ctx, id, "Scor: 80%"))

	reqs := *requests
	require.Len(t, reqs, 4)
	for _, r := range reqs {
		assert.Equal(t, "Bearer secret", r.Auth)
	}

	dealProps := reqs[1].Body["properties"].(map[string]interface{})
	assert.Equal(t, "qualified", dealProps["dealstage"])

	assert.Equal(t, http.MethodPatch, reqs[2].Method)
	assert.Equal(t, "/crm/v3/objects/contacts/501", reqs[2].Path)
	tagProps := reqs[2].Body["properties"].(map[string]interface{})
	assert.Equal(t, "coaching;hot-lead", tagProps["lead_tags"])

	noteProps := reqs[3].Body["properties"].(map[string]interface{})
	assert.Equal(t, "Scor: 80%", noteProps["hs_note_body"])
	assert.Equal(t, "2024-05-01T10:00:00Z", noteProps["hs_timestamp"])
}

func TestHubSpotClient_UpsertConflictReusesExistingContact(t *testing.T) {
	srv, requests := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"status":"error","message":"Contact already exists. Existing ID: 777"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"777"}`))
	})

	client := NewHubSpotClient(srv.URL, "secret", 5*time.Second)
	id, err := client.UpsertContact(context.Background(), map[string]interface{}{"email": "ana@example.ro"})
	require.NoError(t, err)
	assert.Equal(t, "777", id)
	require.Len(t, *requests, 2)
	assert.Equal(t, "/crm/v3/objects/contacts/777", (*requests)[1].Path)
}

func TestHubSpotClient_UpsertWithoutEmailMatchesPhone(t *testing.T) {
	tests := []struct {
		name       string
		searchBody string
		wantID     string
		wantPaths  []string
	}{
		{
			name:       "existing contact is updated",
			searchBody: `{"total":1,"results":[{"id":"314"}]}`,
			wantID:     "314",
			wantPaths:  []string{"/crm/v3/objects/contacts/search", "/crm/v3/objects/contacts/314"},
		},
		{
			name:       "unknown phone creates",
			searchBody: `{"total":0,"results":[]}`,
			wantID:     "501",
			wantPaths:  []string{"/crm/v3/objects/contacts/search", "/crm/v3/objects/contacts"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, requests := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/crm/v3/objects/contacts/search":
					_, _ = w.Write([]byte(tt.searchBody))
				case "/crm/v3/objects/contacts":
					w.WriteHeader(http.StatusCreated)
					_, _ = w.Write([]byte(`{"id":"501"}`))
				default:
					_, _ = w.Write([]byte(`{"id":"314"}`))
				}
			})
			client := NewHubSpotClient(srv.URL, "secret", 5*time.Second)

			id, err := client.UpsertContact(context.Background(), map[string]interface{}{"firstname": "Ion", "phone": "+40721000000"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)

			var paths []string
			for _, r := range *requests {
				paths = append(paths, r.Path)
			}
			assert.Equal(t, tt.wantPaths, paths)

			groups := (*requests)[0].Body["filterGroups"].([]interface{})
			filter := groups[0].(map[string]interface{})["filters"].([]interface{})[0].(map[string]interface{})
			assert.Equal(t, "+40721000000", filter["value"])
		})
	}
}

func TestHubSpotClient_ServerError(t *testing.T) {
	srv, _ := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	client := NewHubSpotClient(srv.URL, "secret", 5*time.Second)
	_, err := client.UpsertContact(context.Background(), map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestPipedriveClient_PersonDealTagsNote(t *testing.T) {
	srv, requests := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/persons/search":
			_, _ = w.Write([]byte(`{"success":true,"data":{"items":[]}}`))
		case "/persons":
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":42}}`))
		case "/deals":
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":7}}`))
		default:
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":1}}`))
		}
	})

	client := NewPipedriveClient(srv.URL, "tok", 5*time.Second)
	ctx := context.Background()

	id, err := client.UpsertContact(ctx, map[string]interface{}{
		"name":  "Ana",
		"email": "ana@example.ro",
		"phone": "",
	})
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	dealID, err := client.CreateDeal(ctx, id, Deal{Title: "Ana", StageID: 2})
	require.NoError(t, err)
	assert.Equal(t, "7", dealID)

	require.NoError(t, client.AddTags(ctx, id, []string{"clinics", "warm-lead"}))
	require.NoError(t, client.AddNote(ctx, id, "note"))

	reqs := *requests
	require.Len(t, reqs, 5)

	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Equal(t, "/persons/search", reqs[0].Path)
	assert.Equal(t, "api_token=tok&exact_match=true&fields=email&term=ana%40example.ro", reqs[0].Query)
	for _, r := range reqs[1:] {
		assert.Equal(t, "api_token=tok", r.Query)
	}

	assert.Equal(t, http.MethodPost, reqs[1].Method)
	emails := reqs[1].Body["email"].([]interface{})
	assert.Equal(t, "ana@example.ro", emails[0].(map[string]interface{})["value"])
	assert.NotContains(t, reqs[1].Body, "phone")

	assert.Equal(t, float64(42), reqs[2].Body["person_id"])
	assert.Equal(t, float64(2), reqs[2].Body["stage_id"])

	assert.Equal(t, http.MethodPut, reqs[3].Method)
	assert.Equal(t, "/persons/42", reqs[3].Path)
	assert.Equal(t, "clinics,warm-lead", reqs[3].Body["lead_tags"])

	assert.Equal(t, "note", reqs[4].Body["content"])
}

func TestPipedriveClient_UpsertSameContactCreatesOnce(t *testing.T) {
	tests := []struct {
		name        string
		properties  map[string]interface{}
		searchField string
	}{
		{"by email", map[string]interface{}{"name": "Ana", "email": "ana@example.ro"}, "email"},
		{"by phone", map[string]interface{}{"name": "Ion", "phone": "+40721000000"}, "phone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created := false
			srv, requests := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
				switch {
				case r.URL.Path == "/persons/search" && created:
					_, _ = w.Write([]byte(`{"success":true,"data":{"items":[{"result_score":1,"item":{"id":42}}]}}`))
				case r.URL.Path == "/persons/search":
					_, _ = w.Write([]byte(`{"success":true,"data":{"items":[]}}`))
				case r.Method == http.MethodPost && r.URL.Path == "/persons":
					created = true
					_, _ = w.Write([]byte(`{"success":true,"data":{"id":42}}`))
				default:
					_, _ = w.Write([]byte(`{"success":true,"data":{"id":42}}`))
				}
			})
			client := NewPipedriveClient(srv.URL, "tok", 5*time.Second)

			for i := 0; i < 2; i++ {
				id, err := client.UpsertContact(context.Background(), tt.properties)
				require.NoError(t, err)
				assert.Equal(t, "42", id)
			}

			var creates, updates int
			for _, r := range *requests {
				switch {
				case r.Method == http.MethodPost && r.Path == "/persons":
					creates++
				case r.Method == http.MethodPut && r.Path == "/persons/42":
					updates++
				case r.Path == "/persons/search":
					assert.Contains(t, r.Query, "fields="+tt.searchField)
				}
			}
			assert.Equal(t, 1, creates)
			assert.Equal(t, 1, updates)
		})
	}
}

func TestPipedriveClient_UpsertWithoutKeysSkipsSearch(t *testing.T) {
	srv, requests := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":9}}`))
	})
	client := NewPipedriveClient(srv.URL, "tok", 5*time.Second)

	id, err := client.UpsertContact(context.Background(), map[string]interface{}{"name": "Anonim"})
	require.NoError(t, err)
	assert.Equal(t, "9", id)
	require.Len(t, *requests, 1)
	assert.Equal(t, "/persons", (*requests)[0].Path)
}

func TestPipedriveClient_UnsuccessfulPayload(t *testing.T) {
	srv, _ := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"quota exceeded"}`))
	})

	client := NewPipedriveClient(srv.URL, "tok", 5*time.Second)
	_, err := client.UpsertContact(context.Background(), map[string]interface{}{"name": "Ana"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	_, err = client.CreateDeal(context.Background(), "not-a-number", Deal{})
	require.Error(t, err)
}
