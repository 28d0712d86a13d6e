// Package errors provides standardized error handling for the lead-flow workers
// and their BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Configuration errors: fail immediately, never retried by the core.
const (
	ErrCodeUnsupportedIndustry           ErrorCode = "UNSUPPORTED_INDUSTRY"
	ErrCodeUnknownStep                   ErrorCode = "UNKNOWN_STEP"
	ErrCodeCRMMappingNotFound            ErrorCode = "CRM_MAPPING_NOT_FOUND"
	ErrCodeTemplateNotFound              ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplatePlaceholderUnresolved ErrorCode = "TEMPLATE_PLACEHOLDER_UNRESOLVED"
)

// External-operation errors: surfaced as data, retryable by the caller.
const (
	ErrCodeCRMRequestFailed    ErrorCode = "CRM_REQUEST_FAILED"
	ErrCodeChannelSendFailed   ErrorCode = "CHANNEL_SEND_FAILED"
	ErrCodeCampaignStoreFailed ErrorCode = "CAMPAIGN_STORE_FAILED"
	ErrCodeAudienceQueryFailed ErrorCode = "AUDIENCE_QUERY_FAILED"
	ErrCodeSessionStoreFailed  ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeNoAudience          ErrorCode = "NO_AUDIENCE"
	ErrCodeCampaignNotFound    ErrorCode = "CAMPAIGN_NOT_FOUND"
	ErrCodeCampaignNotDraft    ErrorCode = "CAMPAIGN_NOT_DRAFT"
	ErrCodeCampaignExists      ErrorCode = "CAMPAIGN_EXISTS"
	ErrCodeInputParsingFailed  ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	ErrCodeZeebeRequestFailed  ErrorCode = "ZEEBE_REQUEST_FAILED"
)

// Texts the transport layer shows to the chat user, per error category.
const (
	GenericUserMessage    = "Ceva nu a funcționat, te rugăm să încerci din nou."
	ValidationUserMessage = "Nu am putut înțelege mesajul, te rugăm să îl reformulezi."
	TemporaryUserMessage  = "Avem o problemă temporară, revenim în câteva minute."
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// As extracts a *StandardError from err, if any.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := As(err)
	return ok && stdErr.Code == code
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewUnsupportedIndustryError is returned when no flow is registered for an industry.
func NewUnsupportedIndustryError(industry string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnsupportedIndustry,
		Message:   "Unsupported industry",
		Details:   fmt.Sprintf("industry: %q", industry),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownStepError is returned when a context points at a step the flow does not know.
func NewUnknownStepError(industry, step string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownStep,
		Message:   "Unknown flow step",
		Details:   fmt.Sprintf("industry: %s, step: %s", industry, step),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCRMMappingNotFoundError is returned when an (industry, provider) pair has no field mapping.
func NewCRMMappingNotFoundError(industry, provider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCRMMappingNotFound,
		Message:   "No mapping found",
		Details:   fmt.Sprintf("no mapping found for industry %s and provider %s", industry, provider),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(industry, name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "Template not found",
		Details:   fmt.Sprintf("industry: %s, template: %s", industry, name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplatePlaceholderError reports tokens left unresolved after rendering.
func NewTemplatePlaceholderError(name string, tokens []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplatePlaceholderUnresolved,
		Message:   "Template has unresolved placeholders",
		Details:   fmt.Sprintf("template: %s, tokens: %s", name, strings.Join(tokens, ",")),
		Retryable: false,
		Metadata:  map[string]interface{}{"tokens": tokens},
		Timestamp: time.Now().UTC(),
	}
}

// NewCRMRequestFailedError wraps a failed provider call.
func NewCRMRequestFailedError(provider, operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCRMRequestFailed,
		Message:   fmt.Sprintf("CRM %s request failed", provider),
		Details:   fmt.Sprintf("operation: %s, error: %v", operation, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewChannelSendFailedError wraps a failed channel delivery.
func NewChannelSendFailedError(channel, recipient string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeChannelSendFailed,
		Message:   "Channel delivery failed",
		Details:   fmt.Sprintf("channel: %s, recipient: %s, error: %v", channel, recipient, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCampaignStoreFailedError creates a retryable persistence error.
func NewCampaignStoreFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCampaignStoreFailed,
		Message:   "Campaign store operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %v", operation, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCampaignNotFoundError creates a non-retryable lookup error.
func NewCampaignNotFoundError(campaignID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCampaignNotFound,
		Message:   "Campaign not found",
		Details:   fmt.Sprintf("campaignId: %s", campaignID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCampaignNotDraftError is returned when a campaign has already been
// claimed, sent or failed.
func NewCampaignNotDraftError(campaignID string, status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCampaignNotDraft,
		Message:   "Campaign is not a draft",
		Details:   fmt.Sprintf("campaignId: %s, status: %s", campaignID, status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCampaignExistsError is returned when a campaign id is already stored.
func NewCampaignExistsError(campaignID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCampaignExists,
		Message:   "Campaign already exists",
		Details:   fmt.Sprintf("campaignId: %s", campaignID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAudienceQueryFailedError creates a retryable audience lookup error.
func NewAudienceQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAudienceQueryFailed,
		Message:   "Audience query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoAudienceError is returned when the audience filters match nobody.
func NewNoAudienceError(campaignID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoAudience,
		Message:   "No audience matches the campaign filters",
		Details:   fmt.Sprintf("campaignId: %s", campaignID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreFailedError creates a retryable session persistence error.
func NewSessionStoreFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %v", operation, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInputParsingError wraps a job variable decoding failure.
func NewInputParsingError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputParsingFailed,
		Message:   "Failed to parse job variables",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError reports job input that failed schema validation.
func NewValidationError(messages []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   strings.Join(messages, "; "),
		Retryable: false,
		Metadata:  map[string]interface{}{"errors": messages},
		Timestamp: time.Now().UTC(),
	}
}

// NewZeebeRequestError wraps a failed gateway command.
func NewZeebeRequestError(operation string, retryable bool, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeZeebeRequestFailed,
		Message:   fmt.Sprintf("Zeebe operation '%s' failed", operation),
		Details:   err.Error(),
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCRMRequestFailed,
		ErrCodeChannelSendFailed,
		ErrCodeCampaignStoreFailed,
		ErrCodeAudienceQueryFailed,
		ErrCodeSessionStoreFailed,
		ErrCodeZeebeRequestFailed:
		return 3
	default:
		return 0 // Configuration and validation errors: no retry
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// GetErrorCategory groups codes into the configuration / validation / external taxonomy.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeUnsupportedIndustry, ErrCodeUnknownStep, ErrCodeCRMMappingNotFound,
		ErrCodeTemplateNotFound, ErrCodeTemplatePlaceholderUnresolved:
		return "CONFIGURATION"
	case ErrCodeInputParsingFailed, ErrCodeValidationFailed:
		return "VALIDATION"
	default:
		return "EXTERNAL"
	}
}

// IsConfigurationError reports whether err is a configuration error.
func IsConfigurationError(err error) bool {
	stdErr, ok := As(err)
	return ok && GetErrorCategory(stdErr.Code) == "CONFIGURATION"
}

// UserMessage translates an error into the text shown to the chat user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if IsConfigurationError(err) {
		return GenericUserMessage
	}
	if stdErr, ok := As(err); ok && GetErrorCategory(stdErr.Code) == "VALIDATION" {
		return ValidationUserMessage
	}
	return TemporaryUserMessage
}

// Final marks err as not retryable so the job fails without another attempt.
// Used once side effects of the job have already run.
func Final(err error) *StandardError {
	stdErr := Normalize(err)
	out := *stdErr
	out.Retryable = false
	return &out
}
