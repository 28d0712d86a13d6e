// internal/models/notification.go
package models

// Channel is a delivery channel handled by the external transport layer.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
)

type NotificationType string

const (
	NotificationReminder      NotificationType = "reminder"
	NotificationFollowup      NotificationType = "followup"
	NotificationPromotion     NotificationType = "promotion"
	NotificationAbandonedCart NotificationType = "abandoned_cart"
	NotificationAppointment   NotificationType = "appointment"
	NotificationLeadAlert     NotificationType = "lead_alert"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type ActionType string

const (
	ActionButton ActionType = "button"
	ActionLink   ActionType = "link"
	ActionPhone  ActionType = "phone"
)

type NotificationAction struct {
	Type  ActionType `json:"type"`
	Label string     `json:"label"`
	Value string     `json:"value"`
}

// Notification is a scheduled message handed over to the delivery layer.
type Notification struct {
	ID           string               `json:"id"`
	Type         NotificationType     `json:"type"`
	Channel      Channel              `json:"channel"`
	Message      string               `json:"message"`
	ScheduledFor string               `json:"scheduledFor"` // RFC3339
	Priority     Priority             `json:"priority"`
	Context      NotificationContext  `json:"context"`
	Actions      []NotificationAction `json:"actions,omitempty"`
}

// NotificationContext is the snapshot a notification batch is generated from.
type NotificationContext struct {
	SessionID   string      `json:"sessionId"`
	Industry    Industry    `json:"industry"`
	UserInfo    UserInfo    `json:"userInfo"`
	Segment     string      `json:"segment,omitempty"`
	Score       LeadScore   `json:"score"`
	Preferences Preferences `json:"preferences"`
}

// Clone returns a copy that shares no maps or slices with nc.
func (nc NotificationContext) Clone() NotificationContext {
	out := nc
	if nc.Score.Factors != nil {
		out.Score.Factors = make(map[string]ScoreFactor, len(nc.Score.Factors))
		for k, v := range nc.Score.Factors {
			out.Score.Factors[k] = v
		}
	}
	if nc.Score.Recommendations != nil {
		out.Score.Recommendations = append([]string(nil), nc.Score.Recommendations...)
	}
	if nc.Preferences.Channels != nil {
		out.Preferences.Channels = append([]Channel(nil), nc.Preferences.Channels...)
	}
	return out
}
