package models

import "time"

type CampaignType string

const (
	CampaignPromotion    CampaignType = "promotion"
	CampaignReactivation CampaignType = "reactivation"
	CampaignHotLead      CampaignType = "hot_lead_followup"
)

type CampaignStatus string

// A campaign moves draft -> sending -> sent|failed. Only a draft can be claimed.
const (
	CampaignDraft   CampaignStatus = "draft"
	CampaignSending CampaignStatus = "sending"
	CampaignSent    CampaignStatus = "sent"
	CampaignFailed  CampaignStatus = "failed"
)

// AudienceFilter narrows the candidate pool. Nil pointers mean "no filter".
type AudienceFilter struct {
	Segments         []string `json:"segments,omitempty"`
	MinScore         *float64 `json:"minScore,omitempty"`
	MaxScore         *float64 `json:"maxScore,omitempty"`
	LastActivityDays *int     `json:"lastActivityDays,omitempty"`
	Industry         Industry `json:"industry,omitempty"`
}

type BroadcastContent struct {
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	MediaURL string `json:"mediaUrl,omitempty"`
}

// Campaign is the persisted broadcast metadata.
type Campaign struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Industry     Industry         `json:"industry"`
	Type         CampaignType     `json:"type"`
	Audience     AudienceFilter   `json:"audience"`
	Content      BroadcastContent `json:"content"`
	Channels     []Channel        `json:"channels"`
	ScheduledFor *time.Time       `json:"scheduledFor,omitempty"`
	Status       CampaignStatus   `json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
	SentAt       *time.Time       `json:"sentAt,omitempty"`
}

// Recipient is one member of the audience candidate pool.
type Recipient struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Industry     Industry  `json:"industry"`
	Segment      string    `json:"segment,omitempty"`
	Score        float64   `json:"score"`
	LastActivity time.Time `json:"lastActivity"`
}

type ChannelStats struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type BroadcastDetails struct {
	Channels map[Channel]ChannelStats `json:"channels"`
	Errors   []string                 `json:"errors"`
}

// BroadcastResult aggregates the outcome of one campaign execution.
type BroadcastResult struct {
	CampaignID string           `json:"campaignId"`
	Success    bool             `json:"success"`
	Sent       int              `json:"sent"`
	Failed     int              `json:"failed"`
	Details    BroadcastDetails `json:"details"`
	Error      string           `json:"error,omitempty"`
}

// CreateCampaignResult is returned by campaign creation.
type CreateCampaignResult struct {
	Success    bool             `json:"success"`
	CampaignID string           `json:"campaignId,omitempty"`
	Error      string           `json:"error,omitempty"`
	Result     *BroadcastResult `json:"result,omitempty"`
}
