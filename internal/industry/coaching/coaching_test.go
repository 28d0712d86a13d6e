package coaching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadflow-workers/internal/common/errors"
	"leadflow-workers/internal/models"
)

func advance(t *testing.T, fc models.FlowContext, replies ...string) (*models.IndustryResponse, models.FlowContext) {
	t.Helper()
	flow := New()
	var resp *models.IndustryResponse
	for _, r := range replies {
		var err error
		resp, err = flow.HandleStep(fc, r)
		require.NoError(t, err)
		fc = resp.Context
	}
	return resp, fc
}

func TestWelcomeStartsWithExperienceQuestion(t *testing.T) {
	resp, fc := advance(t, models.FlowContext{SessionID: "s1", Industry: models.IndustryCoaching}, "")
	assert.Equal(t, StepExperience, resp.NextStep)
	assert.Equal(t, StepExperience, fc.CurrentStep)
	assert.Equal(t, []string{"Da", "Nu"}, resp.Options)
	assert.Empty(t, fc.Responses)
}

func TestBeginnerUrgentPath(t *testing.T) {
	start := models.NewFlowContext("s1", models.IndustryCoaching)

	resp, fc := advance(t, start, "", "Nu")
	assert.Equal(t, StepTimeline, resp.NextStep)

	resp, fc = advance(t, fc, "<3 luni")
	assert.Equal(t, SegmentBeginnerMotivated, resp.Segment)
	assert.Equal(t, SegmentBeginnerMotivated, fc.Segment)
	require.NotNil(t, resp.Content)
	assert.Equal(t, models.ContentPDF, resp.Content.Type)
	require.NotNil(t, resp.CTA)
	assert.Equal(t, models.CTACall, resp.CTA.Type)
	assert.Equal(t, StepContentDelivery, resp.NextStep)
	assert.Equal(t, map[string]string{"experience": "Nu", "timeline": "<3 luni"}, fc.Responses)
}

func TestSegments(t *testing.T) {
	tests := []struct {
		name        string
		replies     []string
		wantSegment string
		wantContent models.ContentType
		wantCTA     models.CTAType
	}{
		{
			name:        "beginner explorer",
			replies:     []string{"", "Nu", ">6 luni"},
			wantSegment: SegmentBeginnerExplorer,
			wantContent: models.ContentPDF,
			wantCTA:     models.CTALink,
		},
		{
			name:        "advanced urgent",
			replies:     []string{"", "Da", "Business", "<3 luni"},
			wantSegment: SegmentAdvancedUrgent,
			wantContent: models.ContentVideo,
			wantCTA:     models.CTACall,
		},
		{
			name:        "advanced strategic",
			replies:     []string{"", "Da", "Carieră", "3-6 luni"},
			wantSegment: SegmentAdvancedStrategic,
			wantContent: models.ContentVideo,
			wantCTA:     models.CTALink,
		},
		{
			name:        "unmatched experience falls through to beginner",
			replies:     []string{"", "poate", "<3 luni"},
			wantSegment: SegmentBeginnerMotivated,
			wantContent: models.ContentPDF,
			wantCTA:     models.CTACall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := advance(t, models.NewFlowContext("s", models.IndustryCoaching), tt.replies...)
			assert.Equal(t, tt.wantSegment, resp.Segment)
			assert.Equal(t, tt.wantContent, resp.Content.Type)
			assert.Equal(t, tt.wantCTA, resp.CTA.Type)
		})
	}
}

func TestReachesTerminalStep(t *testing.T) {
	resp, fc := advance(t, models.NewFlowContext("s", models.IndustryCoaching),
		"", "Da", "Relații", "3-6 luni", "Da, foarte util")
	assert.Equal(t, StepCompleted, resp.NextStep)
	assert.Equal(t, "Da, foarte util", fc.Responses[KeyContentFeedback])

	again, fc2 := advance(t, fc, "altceva")
	assert.Equal(t, StepCompleted, again.NextStep)
	assert.Equal(t, resp.Message, again.Message)
	assert.Equal(t, fc.Responses, fc2.Responses)
}

func TestHandleStepDoesNotMutateInput(t *testing.T) {
	in := models.NewFlowContext("s", models.IndustryCoaching)
	in.CurrentStep = StepExperience
	_, err := New().HandleStep(in, "Da")
	require.NoError(t, err)
	assert.Empty(t, in.Responses)
	assert.Equal(t, StepExperience, in.CurrentStep)
}

func TestUnknownStep(t *testing.T) {
	fc := models.NewFlowContext("s", models.IndustryCoaching)
	fc.CurrentStep = "q9_missing"
	_, err := New().HandleStep(fc, "x")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnknownStep))
}
