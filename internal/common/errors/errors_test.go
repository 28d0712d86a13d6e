package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		name     string
		err      *StandardError
		category string
		retries  int
	}{
		{"unsupported industry", NewUnsupportedIndustryError("legal"), "CONFIGURATION", 0},
		{"unknown step", NewUnknownStepError("coaching", "nowhere"), "CONFIGURATION", 0},
		{"missing template", NewTemplateNotFoundError("clinics", "reminder_24h"), "CONFIGURATION", 0},
		{"validation", NewValidationError([]string{"sessionId is required"}), "VALIDATION", 0},
		{"crm request", NewCRMRequestFailedError("hubspot", "create_contact", fmt.Errorf("503")), "EXTERNAL", 3},
		{"session store", NewSessionStoreFailedError("load", fmt.Errorf("i/o timeout")), "EXTERNAL", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, GetErrorCategory(tt.err.Code))
			assert.Equal(t, tt.category == "CONFIGURATION", IsConfigurationError(tt.err))
			assert.Equal(t, tt.retries, ConvertToBPMNError(tt.err).Retries)
		})
	}
}

func TestConvertToBPMNError_NonRetryableHasNoRetries(t *testing.T) {
	err := NewZeebeRequestError("complete_job", false, fmt.Errorf("NotFound"))
	bpmn := ConvertToBPMNError(err)

	assert.Equal(t, "ZEEBE_REQUEST_FAILED", bpmn.Code)
	assert.Zero(t, bpmn.Retries)
	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "ZEEBE_REQUEST_FAILED", vars["originalErrorCode"])
	assert.Equal(t, false, vars["retryable"])
}

func TestHasCodeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("turn failed: %w", NewUnknownStepError("clinics", "x"))

	assert.True(t, HasCode(wrapped, ErrCodeUnknownStep))
	assert.False(t, HasCode(wrapped, ErrCodeUnsupportedIndustry))
	assert.False(t, HasCode(fmt.Errorf("plain"), ErrCodeUnknownStep))
}

func TestNormalize(t *testing.T) {
	std := NewNoAudienceError("c-1")
	assert.Same(t, std, Normalize(std))

	n := Normalize(fmt.Errorf("boom"))
	require.NotNil(t, n)
	assert.Equal(t, ErrorCode("INTERNAL_ERROR"), n.Code)
	assert.Equal(t, "boom", n.Details)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no error", nil, ""},
		{"configuration", NewTemplateNotFoundError("coaching", "welcome"), GenericUserMessage},
		{"wrapped configuration", fmt.Errorf("turn: %w", NewUnsupportedIndustryError("legal")), GenericUserMessage},
		{"validation", NewValidationError([]string{"message is required"}), ValidationUserMessage},
		{"external", NewSessionStoreFailedError("save", fmt.Errorf("timeout")), TemporaryUserMessage},
		{"campaign not draft", NewCampaignNotDraftError("c-1", "sent"), TemporaryUserMessage},
		{"plain error", fmt.Errorf("boom"), TemporaryUserMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestFinal(t *testing.T) {
	orig := NewSessionStoreFailedError("save", fmt.Errorf("timeout"))
	final := Final(fmt.Errorf("after turn: %w", orig))

	assert.Equal(t, ErrCodeSessionStoreFailed, final.Code)
	assert.False(t, final.Retryable)
	assert.Zero(t, ConvertToBPMNError(final).Retries)
	assert.True(t, orig.Retryable)
	assert.Equal(t, 3, ConvertToBPMNError(orig).Retries)
}

func TestCampaignNotDraftError(t *testing.T) {
	err := NewCampaignNotDraftError("c-9", "sent")

	assert.Equal(t, ErrCodeCampaignNotDraft, err.Code)
	assert.Contains(t, err.Details, "c-9")
	assert.Equal(t, "EXTERNAL", GetErrorCategory(err.Code))
	assert.Zero(t, ConvertToBPMNError(err).Retries)
}
