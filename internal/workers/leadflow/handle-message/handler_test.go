// internal/workers/leadflow/handle-message/handler_test.go
package handlemessage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadflow-workers/internal/common/config"
	"leadflow-workers/internal/common/errors"
	"leadflow-workers/internal/common/logger"
	"leadflow-workers/internal/flowmanager"
	"leadflow-workers/internal/industry"
	"leadflow-workers/internal/industry/clinics"
	"leadflow-workers/internal/industry/coaching"
	"leadflow-workers/internal/industry/ecommerce"
	"leadflow-workers/internal/models"
	"leadflow-workers/internal/notifications"
	"leadflow-workers/internal/session"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T) (*Handler, *session.Store) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := session.NewStore(client, "session:", time.Hour)
	clock := func() time.Time { return fixedNow }
	manager := flowmanager.New(
		industry.NewRegistry(coaching.New(), clinics.New(), ecommerce.New()),
		notifications.NewGenerator(notifications.WithClock(clock)),
		logger.NewTestLogger(t),
		flowmanager.WithClock(clock),
	)
	return NewHandler(&Config{Timeout: 5 * time.Second}, store, manager, logger.NewTestLogger(t)), store
}

// ==========================
// Input Parsing Tests
// ==========================

func TestParseInput(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		wantCode  errors.ErrorCode
	}{
		{"malformed json", `{"sessionId":`, errors.ErrCodeInputParsingFailed},
		{"missing session", `{"industry":"coaching","message":"Da"}`, errors.ErrCodeValidationFailed},
		{"empty industry", `{"sessionId":"s1","industry":"","message":"Da"}`, errors.ErrCodeValidationFailed},
		{"missing message", `{"sessionId":"s1","industry":"coaching"}`, errors.ErrCodeValidationFailed},
		{"context with unknown industry", `{"sessionId":"s1","industry":"coaching","message":"Da","context":{"sessionId":"s1","industry":"legal"}}`, errors.ErrCodeValidationFailed},
		{"context score out of range", `{"sessionId":"s1","industry":"coaching","message":"Da","context":{"sessionId":"s1","industry":"coaching","score":140}}`, errors.ErrCodeValidationFailed},
		{"unknown top-level industry passes", `{"sessionId":"s1","industry":"legal","message":"Da"}`, ""},
		{"valid with context", `{"sessionId":"s1","industry":"coaching","message":"Da","context":{"sessionId":"s1","industry":"coaching","currentStep":"q1_experience"}}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := ParseInput(tt.variables)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, "s1", input.SessionID)
				return
			}
			assert.Nil(t, input)
			assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_NewSessionIsPersisted(t *testing.T) {
	h, store := newTestHandler(t)
	ctx := context.Background()

	out, err := h.Execute(ctx, &Input{
		SessionID: "s-new",
		Industry:  models.IndustryCoaching,
		Message:   "",
		UserInfo:  &models.UserInfo{Name: "Ana"},
	})
	require.NoError(t, err)
	require.NotNil(t, out.Response)
	assert.Equal(t, coaching.StepExperience, out.Response.NextStep)

	saved, found, err := store.Load(ctx, "s-new")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, coaching.StepExperience, saved.CurrentStep)
	assert.Equal(t, "Ana", saved.UserInfo.Name)
	assert.True(t, fixedNow.Equal(saved.LastActivity))
}

func TestHandler_Execute_ContinuesStoredSession(t *testing.T) {
	h, store := newTestHandler(t)
	ctx := context.Background()

	fc := models.NewFlowContext("s-cont", models.IndustryCoaching)
	fc.CurrentStep = coaching.StepExperience
	fc.UserInfo.Email = "ana@example.ro"
	require.NoError(t, store.Save(ctx, fc))

	out, err := h.Execute(ctx, &Input{
		SessionID: "s-cont",
		Industry:  models.IndustryCoaching,
		Message:   "Nu",
		UserInfo:  &models.UserInfo{Phone: "+40721000000"},
	})
	require.NoError(t, err)
	assert.Equal(t, coaching.StepTimeline, out.Response.NextStep)
	assert.Equal(t, "ana@example.ro", out.Response.Context.UserInfo.Email)
	assert.Equal(t, "+40721000000", out.Response.Context.UserInfo.Phone)

	saved, _, err := store.Load(ctx, "s-cont")
	require.NoError(t, err)
	assert.Equal(t, "Nu", saved.Response("experience"))
}

func TestHandler_Execute_ExplicitContextWins(t *testing.T) {
	h, store := newTestHandler(t)
	ctx := context.Background()

	stale := models.NewFlowContext("s-exp", models.IndustryCoaching)
	stale.CurrentStep = coaching.StepTimeline
	require.NoError(t, store.Save(ctx, stale))

	explicit := models.NewFlowContext("s-exp", models.IndustryCoaching)
	explicit.CurrentStep = coaching.StepExperience

	out, err := h.Execute(ctx, &Input{
		SessionID: "s-exp",
		Industry:  models.IndustryCoaching,
		Message:   "Da",
		Context:   &explicit,
	})
	require.NoError(t, err)
	assert.Equal(t, "Da", out.Response.Context.Response("experience"))
	assert.Equal(t, coaching.StepExperience, explicit.CurrentStep)
}

func TestHandler_Execute_IndustryChangeRestartsSession(t *testing.T) {
	h, store := newTestHandler(t)
	ctx := context.Background()

	old := models.NewFlowContext("s-switch", models.IndustryCoaching)
	old.CurrentStep = coaching.StepTimeline
	require.NoError(t, store.Save(ctx, old))

	out, err := h.Execute(ctx, &Input{
		SessionID: "s-switch",
		Industry:  models.IndustryClinics,
		Message:   "",
	})
	require.NoError(t, err)
	assert.Equal(t, models.IndustryClinics, out.Response.Context.Industry)
	assert.NotEqual(t, models.StepWelcome, out.Response.NextStep)
}

func TestHandler_Execute_UnsupportedIndustry(t *testing.T) {
	h, store := newTestHandler(t)
	ctx := context.Background()

	out, err := h.Execute(ctx, &Input{SessionID: "s-legal", Industry: "legal", Message: "salut"})

	assert.Nil(t, out)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnsupportedIndustry))
	_, found, err := store.Load(ctx, "s-legal")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHandler_Execute_SessionStoreUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	manager := flowmanager.New(industry.NewRegistry(coaching.New()), nil, logger.NewNoOpLogger())
	h := NewHandler(&Config{Timeout: time.Second}, session.NewStore(client, "session:", time.Hour), manager, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{SessionID: "s1", Industry: models.IndustryCoaching})
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionStoreFailed))
}

type flakySessionStore struct {
	saveErr error
	saves   int
}

func (f *flakySessionStore) Load(context.Context, string) (models.FlowContext, bool, error) {
	return models.FlowContext{}, false, nil
}

func (f *flakySessionStore) Save(context.Context, models.FlowContext) error {
	f.saves++
	return f.saveErr
}

type countingFlows struct {
	turns int
}

func (c *countingFlows) HandleMessage(_ context.Context, fc models.FlowContext, _ string) (*models.FlowResponse, error) {
	c.turns++
	next := fc.Clone()
	next.CurrentStep = coaching.StepExperience
	return &models.FlowResponse{NextStep: next.CurrentStep, Context: next}, nil
}

func TestHandler_Execute_SaveFailureAfterTurnIsFinal(t *testing.T) {
	tests := []struct {
		name    string
		saveErr error
	}{
		{"store error", errors.NewSessionStoreFailedError("save", fmt.Errorf("connection refused"))},
		{"deadline", context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &flakySessionStore{saveErr: tt.saveErr}
			flows := &countingFlows{}
			h := NewHandler(&Config{Timeout: time.Second}, sessions, flows, logger.NewTestLogger(t))

			out, err := h.Execute(context.Background(), &Input{SessionID: "s1", Industry: models.IndustryCoaching})

			assert.Nil(t, out)
			require.Error(t, err)
			std := errors.Normalize(err)
			assert.False(t, std.Retryable)
			assert.Zero(t, errors.ConvertToBPMNError(std).Retries)
			assert.Equal(t, 1, flows.turns)
			assert.Equal(t, 1, sessions.saves)
		})
	}
}

func TestHandler_Execute_LoadFailureStaysRetryable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	flows := &countingFlows{}
	h := NewHandler(&Config{Timeout: time.Second}, session.NewStore(client, "session:", time.Hour), flows, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{SessionID: "s1", Industry: models.IndustryCoaching})

	require.Error(t, err)
	assert.True(t, errors.Normalize(err).Retryable)
	assert.Zero(t, flows.turns)
}

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, 30*time.Second, LoadConfig(config.WorkerConfig{}).Timeout)
	assert.Equal(t, 1500*time.Millisecond, LoadConfig(config.WorkerConfig{Timeout: 1500}).Timeout)
}
