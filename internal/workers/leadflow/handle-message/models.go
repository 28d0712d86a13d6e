// internal/workers/leadflow/handle-message/models.go
package handlemessage

import "leadflow-workers/internal/models"

// Input is the job variable document. Context overrides the stored session;
// UserInfo, Behavior and Preferences are merged into it when present.
type Input struct {
	SessionID   string              `json:"sessionId"`
	Industry    models.Industry     `json:"industry"`
	Message     string              `json:"message"`
	Context     *models.FlowContext `json:"context,omitempty"`
	UserInfo    *models.UserInfo    `json:"userInfo,omitempty"`
	Behavior    *models.Behavior    `json:"behavior,omitempty"`
	Preferences *models.Preferences `json:"preferences,omitempty"`
}

type Output struct {
	Response *models.FlowResponse `json:"response"`
}
