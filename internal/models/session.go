// internal/models/session.go
package models

import "time"

// Industry identifies which question flow a chat session runs.
type Industry string

const (
	IndustryCoaching  Industry = "coaching"
	IndustryClinics   Industry = "clinics"
	IndustryEcommerce Industry = "ecommerce"
)

// Industries lists every supported industry in a stable order.
var Industries = []Industry{IndustryCoaching, IndustryClinics, IndustryEcommerce}

// StepWelcome is the initial step of every industry flow.
const StepWelcome = "welcome"

// UserInfo is the progressively collected identity of the lead.
type UserInfo struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// HasEmail reports whether an email address was collected.
func (u UserInfo) HasEmail() bool { return u.Email != "" }

// HasPhone reports whether a phone number was collected.
func (u UserInfo) HasPhone() bool { return u.Phone != "" }

// Behavior holds the engagement counters tracked by the chat widget.
type Behavior struct {
	TimeSpent    int `json:"timeSpent"` // seconds
	PagesVisited int `json:"pagesVisited"`
	ReturnVisits int `json:"returnVisits"`
}

// Preferences holds the lead's contact preferences.
type Preferences struct {
	Channels  []Channel `json:"channels,omitempty"`
	Frequency string    `json:"frequency,omitempty"`
	Timezone  string    `json:"timezone,omitempty"`
}

// PreferredChannel returns the first preferred channel, email when none is set.
func (p Preferences) PreferredChannel() Channel {
	if len(p.Channels) == 0 {
		return ChannelEmail
	}
	return p.Channels[0]
}

// FlowContext is the per-session state threaded through every orchestration call.
// It is treated as a value: handlers derive a new context with Clone and never
// mutate the one they received.
type FlowContext struct {
	SessionID    string            `json:"sessionId"`
	Industry     Industry          `json:"industry"`
	UserInfo     UserInfo          `json:"userInfo"`
	Responses    map[string]string `json:"responses"`
	Segment      string            `json:"segment,omitempty"`
	Score        float64           `json:"score"`
	CurrentStep  string            `json:"currentStep"`
	LastActivity time.Time         `json:"lastActivity"`
	Behavior     Behavior          `json:"behavior"`
	Preferences  Preferences       `json:"preferences"`
}

// NewFlowContext starts a session at the welcome step.
func NewFlowContext(sessionID string, industry Industry) FlowContext {
	return FlowContext{
		SessionID:   sessionID,
		Industry:    industry,
		Responses:   map[string]string{},
		CurrentStep: StepWelcome,
	}
}

// Clone returns a deep copy so the caller's maps and slices are never shared.
func (c FlowContext) Clone() FlowContext {
	out := c
	out.Responses = make(map[string]string, len(c.Responses))
	for k, v := range c.Responses {
		out.Responses[k] = v
	}
	if c.Preferences.Channels != nil {
		out.Preferences.Channels = append([]Channel(nil), c.Preferences.Channels...)
	}
	return out
}

// Step returns the current step, defaulting to welcome.
func (c FlowContext) Step() string {
	if c.CurrentStep == "" {
		return StepWelcome
	}
	return c.CurrentStep
}

// WithResponse returns a copy with the answer recorded under key.
func (c FlowContext) WithResponse(key, value string) FlowContext {
	out := c.Clone()
	out.Responses[key] = value
	return out
}

// WithStep returns a copy positioned at step.
func (c FlowContext) WithStep(step string) FlowContext {
	out := c.Clone()
	out.CurrentStep = step
	return out
}

// Response returns the recorded answer for key, or "".
func (c FlowContext) Response(key string) string {
	if c.Responses == nil {
		return ""
	}
	return c.Responses[key]
}
