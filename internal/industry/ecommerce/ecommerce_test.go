package ecommerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadflow-workers/internal/models"
)

func run(t *testing.T, fc models.FlowContext, replies ...string) (*models.IndustryResponse, models.FlowContext) {
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

func TestFashionUnderFiftyUrgent(t *testing.T) {
	resp, fc := run(t, models.NewFlowContext("s", models.IndustryEcommerce), "", "Fashion", "<50€", "Azi / în 48h")

	assert.Equal(t, SegmentHot, resp.Segment)
	assert.Equal(t, StepProductSelection, resp.NextStep)
	assert.Equal(t, UrgencyUrgent, fc.Responses[KeyUrgencyLevel])
	require.NotEmpty(t, resp.Recommendations)
	assert.LessOrEqual(t, len(resp.Recommendations), 3)
	for i, r := range resp.Recommendations {
		assert.Less(t, r.Price, 50.0)
		assert.Equal(t, 1.0, r.MatchScore)
		if i > 0 {
			assert.GreaterOrEqual(t, resp.Recommendations[i-1].MatchScore, r.MatchScore)
		}
	}
}

func TestUrgencySegments(t *testing.T) {
	tests := []struct {
		reply       string
		wantSegment string
		wantLevel   string
	}{
		{"Azi / în 48h", SegmentHot, UrgencyUrgent},
		{"Săptămâna asta", SegmentWarm, UrgencySoon},
		{"Doar mă uit", SegmentExplorer, UrgencyBrowsing},
		{"nu știu", SegmentExplorer, UrgencyBrowsing},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			_, fc := run(t, models.NewFlowContext("s", models.IndustryEcommerce), "", "Beauty", "50-150€", tt.reply)
			assert.Equal(t, tt.wantSegment, fc.Segment)
			assert.Equal(t, tt.wantLevel, fc.Responses[KeyUrgencyLevel])
			assert.Equal(t, tt.reply, fc.Responses[KeyUrgency])
		})
	}
}

func TestRecommendScoring(t *testing.T) {
	recs := Recommend("Electronice", "150-300€", UrgencySoon)
	require.Len(t, recs, 3)
	assert.Equal(t, "el-201", recs[0].ID)
	assert.Equal(t, 0.8, recs[0].MatchScore)
	assert.Equal(t, 0.5, recs[1].MatchScore)
	assert.Equal(t, 0.5, recs[2].MatchScore)

	unknown := Recommend("Jucării", "", UrgencyBrowsing)
	require.Len(t, unknown, 3)
	assert.Equal(t, "Fashion", unknown[0].Category)
	for _, r := range unknown {
		assert.Equal(t, 0.5, r.MatchScore)
	}
}

func TestInBudget(t *testing.T) {
	assert.True(t, InBudget(49.99, "<50€"))
	assert.False(t, InBudget(50, "<50€"))
	assert.True(t, InBudget(50, "50-150€"))
	assert.True(t, InBudget(1200, ">300€"))
	assert.False(t, InBudget(10, "orice"))
}

func TestCheckoutPaths(t *testing.T) {
	_, listing := run(t, models.NewFlowContext("s", models.IndustryEcommerce), "", "Fashion", "<50€", "Săptămâna asta")

	resp, fc := run(t, listing, "1")
	assert.Equal(t, StepCheckout, resp.NextStep)
	require.NotNil(t, resp.CTA)
	assert.Equal(t, models.CTABuy, resp.CTA.Type)
	assert.Equal(t, "fa-102", fc.Responses[KeyProduct])

	done, doneCtx := run(t, fc, "Da, finalizez")
	assert.Equal(t, StepOrderConfirmed, done.NextStep)
	assert.Equal(t, "Da, finalizez", doneCtx.Responses[KeyCheckout])

	recovery, _ := run(t, fc, "Mai târziu")
	assert.Equal(t, StepCartRecovery, recovery.NextStep)
	require.NotNil(t, recovery.CTA)
	assert.Contains(t, recovery.CTA.URL, "REVENIRE10")

	terminal, _ := run(t, doneCtx, "salut")
	assert.Equal(t, StepOrderConfirmed, terminal.NextStep)
}

func TestInvalidProductSelectionKeepsContext(t *testing.T) {
	_, listing := run(t, models.NewFlowContext("s", models.IndustryEcommerce), "", "Electronice", ">300€", "Doar mă uit")

	for _, reply := range []string{"0", "4", "abc"} {
		t.Run(reply, func(t *testing.T) {
			resp, fc := run(t, listing, reply)
			assert.Equal(t, StepProductSelection, resp.NextStep)
			assert.Equal(t, listing.Responses, fc.Responses)
			assert.Equal(t, listing.Segment, fc.Segment)
			assert.Len(t, resp.Recommendations, 3)
			assert.Contains(t, resp.Message, "Opțiune invalidă")
		})
	}
}
