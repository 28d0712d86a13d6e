package crmsync

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"leadflow-workers/internal/common/crm"
	"leadflow-workers/internal/common/logger"
	"leadflow-workers/internal/models"
)

type MockCRMClient struct {
	mock.Mock
}

func (m *MockCRMClient) UpsertContact(ctx context.Context, properties map[string]interface{}) (string, error) {
	args := m.Called(ctx, properties)
	return args.String(0), args.Error(1)
}

func (m *MockCRMClient) CreateDeal(ctx context.Context, contactID string, deal crm.Deal) (string, error) {
	args := m.Called(ctx, contactID, deal)
	return args.String(0), args.Error(1)
}

func (m *MockCRMClient) AddTags(ctx context.Context, contactID string, tags []string) error {
	args := m.Called(ctx, contactID, tags)
	return args.Error(0)
}

func (m *MockCRMClient) AddNote(ctx context.Context, contactID string, body string) error {
	args := m.Called(ctx, contactID, body)
	return args.Error(0)
}

var lastActivity = time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)

func syncContext(provider models.CRMProvider, pct int, level models.LeadLevel) models.CRMSyncContext {
	return models.CRMSyncContext{
		SessionID:    "s-1",
		Industry:     models.IndustryClinics,
		Provider:     provider,
		UserInfo:     models.UserInfo{Name: "Ana", Email: "ana@example.ro"},
		Responses:    map[string]string{"urgency": "Azi", "service": "Urgență"},
		Segment:      "urgent",
		Score:        models.LeadScore{Percentage: pct, Level: level},
		LastActivity: lastActivity,
	}
}

func newSyncer(t *testing.T, client crm.Client) *Syncer {
	return NewSyncer(map[models.CRMProvider]crm.Client{
		models.CRMHubSpot:   client,
		models.CRMPipedrive: client,
	}, time.Second, logger.NewTestLogger(t))
}

func actionTypes(r *models.CRMSyncResult) []models.CRMActionType {
	out := make([]models.CRMActionType, len(r.Actions))
	for i, a := range r.Actions {
		out[i] = a.Type
	}
	return out
}

func TestSyncHotLead(t *testing.T) {
	client := new(MockCRMClient)
	client.On("UpsertContact", mock.Anything, mock.MatchedBy(func(p map[string]interface{}) bool {
		return p["email"] == "ana@example.ro" && p["clinic_service"] == "Urgență" && p["lead_score"] == 86
	})).Return("101", nil)
	client.On("CreateDeal", mock.Anything, "101", crm.Deal{Title: "clinics - Ana", Stage: "qualified", StageID: 1}).Return("d-1", nil)
	client.On("AddTags", mock.Anything, "101", []string{"clinics", "hot-lead", "urgent", "urgent"}).Return(nil)
	client.On("AddNote", mock.Anything, "101", mock.AnythingOfType("string")).Return(nil)

	got := newSyncer(t, client).Sync(context.Background(), syncContext(models.CRMHubSpot, 86, models.LevelHot))

	assert.True(t, got.Success)
	assert.Empty(t, got.Error)
	assert.Equal(t, "101", got.ContactID)
	assert.Equal(t, []models.CRMActionType{
		models.CRMActionCreateContact, models.CRMActionCreateDeal, models.CRMActionAddTags, models.CRMActionAddNote,
	}, actionTypes(got))
	client.AssertExpectations(t)
}

func TestSyncDealStage(t *testing.T) {
	tests := []struct {
		name    string
		pct     int
		level   models.LeadLevel
		stage   string
		stageID int
	}{
		{"hot above 70", 71, models.LevelHot, "qualified", 1},
		{"hot at 70", 70, models.LevelHot, "lead", 2},
		{"warm", 55, models.LevelWarm, "lead", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deal := dealFor(syncContext(models.CRMHubSpot, tt.pct, tt.level))
			assert.Equal(t, tt.stage, deal.Stage)
			assert.Equal(t, tt.stageID, deal.StageID)
		})
	}
}

func TestSyncColdLeadSkipsDeal(t *testing.T) {
	client := new(MockCRMClient)
	client.On("UpsertContact", mock.Anything, mock.Anything).Return("7", nil)
	client.On("AddTags", mock.Anything, "7", []string{"clinics", "cold-lead"}).Return(nil)
	client.On("AddNote", mock.Anything, "7", mock.Anything).Return(nil)

	sc := syncContext(models.CRMPipedrive, 20, models.LevelCold)
	sc.Segment = ""
	got := newSyncer(t, client).Sync(context.Background(), sc)

	assert.True(t, got.Success)
	assert.Equal(t, []models.CRMActionType{
		models.CRMActionCreateContact, models.CRMActionAddTags, models.CRMActionAddNote,
	}, actionTypes(got))
	client.AssertNotCalled(t, "CreateDeal", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncWithoutContactRecordsFailures(t *testing.T) {
	client := new(MockCRMClient)
	client.On("UpsertContact", mock.Anything, mock.Anything).Return("", fmt.Errorf("503 service unavailable"))

	got := newSyncer(t, client).Sync(context.Background(), syncContext(models.CRMHubSpot, 55, models.LevelWarm))

	assert.False(t, got.Success)
	assert.NotEmpty(t, got.Error)
	assert.Empty(t, got.ContactID)
	require.Len(t, got.Actions, 4)
	for _, a := range got.Actions {
		assert.False(t, a.Success, a.Type)
	}
	client.AssertNotCalled(t, "AddTags", mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "AddNote", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncPartialFailureKeepsGoing(t *testing.T) {
	client := new(MockCRMClient)
	client.On("UpsertContact", mock.Anything, mock.Anything).Return("101", nil)
	client.On("CreateDeal", mock.Anything, "101", mock.Anything).Return("", fmt.Errorf("timeout"))
	client.On("AddTags", mock.Anything, "101", mock.Anything).Return(nil)
	client.On("AddNote", mock.Anything, "101", mock.Anything).Return(nil)

	got := newSyncer(t, client).Sync(context.Background(), syncContext(models.CRMHubSpot, 86, models.LevelHot))

	assert.False(t, got.Success)
	assert.Contains(t, got.Error, "create_deal")
	require.Len(t, got.Actions, 4)
	assert.True(t, got.Actions[0].Success)
	assert.False(t, got.Actions[1].Success)
	assert.True(t, got.Actions[2].Success)
	assert.True(t, got.Actions[3].Success)
}

func TestSyncMissingMapping(t *testing.T) {
	for _, provider := range []models.CRMProvider{models.CRMAirtable, models.CRMGoogleSheets} {
		t.Run(string(provider), func(t *testing.T) {
			client := new(MockCRMClient)
			got := newSyncer(t, client).Sync(context.Background(), syncContext(provider, 86, models.LevelHot))

			assert.False(t, got.Success)
			assert.Contains(t, got.Error, "no mapping found")
			assert.NotNil(t, got.Actions)
			assert.Empty(t, got.Actions)
			client.AssertNotCalled(t, "UpsertContact", mock.Anything, mock.Anything)
		})
	}
}

func TestSyncAppliesPerCallTimeout(t *testing.T) {
	client := new(MockCRMClient)
	client.On("UpsertContact", mock.Anything, mock.Anything).Return("", context.DeadlineExceeded).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
	})

	got := newSyncer(t, client).Sync(context.Background(), syncContext(models.CRMHubSpot, 20, models.LevelCold))
	assert.False(t, got.Success)
}

func TestNoteListsResponsesSortedByKey(t *testing.T) {
	note := Note(syncContext(models.CRMHubSpot, 86, models.LevelHot))

	assert.Contains(t, note, "Scor: 86% (hot)")
	assert.Contains(t, note, "Industrie: clinics")
	assert.Contains(t, note, "Segment: urgent")
	assert.Contains(t, note, "2025-03-09T12:00:00Z")
	assert.Less(t, strings.Index(note, "- service: Urgență"), strings.Index(note, "- urgency: Azi"))
}

func TestContactPropertiesOmitsEmptyValues(t *testing.T) {
	m, ok := lookupMapping(models.IndustryClinics, models.CRMPipedrive)
	require.True(t, ok)

	props := contactProperties(m, syncContext(models.CRMPipedrive, 50, models.LevelWarm))
	assert.Equal(t, "Ana", props["name"])
	assert.NotContains(t, props, "phone")
	assert.Equal(t, "Azi", props["clinic_urgency"])
}

func TestLogClientSatisfiesSync(t *testing.T) {
	s := NewSyncer(map[models.CRMProvider]crm.Client{
		models.CRMHubSpot: crm.NewLogClient("hubspot", logger.NewTestLogger(t)),
	}, time.Second, logger.NewTestLogger(t))

	got := s.Sync(context.Background(), syncContext(models.CRMHubSpot, 86, models.LevelHot))
	assert.True(t, got.Success)
	assert.NotEmpty(t, got.ContactID)
	assert.Len(t, got.Actions, 4)
}
