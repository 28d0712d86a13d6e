package models

import "time"

// CRMProvider names an external CRM.
type CRMProvider string

const (
	CRMHubSpot      CRMProvider = "hubspot"
	CRMPipedrive    CRMProvider = "pipedrive"
	CRMAirtable     CRMProvider = "airtable"
	CRMGoogleSheets CRMProvider = "google_sheets"
)

// CRMSyncContext is the scored session state pushed to the CRM.
type CRMSyncContext struct {
	SessionID    string            `json:"sessionId"`
	Industry     Industry          `json:"industry"`
	Provider     CRMProvider       `json:"provider"`
	UserInfo     UserInfo          `json:"userInfo"`
	Responses    map[string]string `json:"responses"`
	Segment      string            `json:"segment,omitempty"`
	Score        LeadScore         `json:"score"`
	LastActivity time.Time         `json:"lastActivity"`
}

type CRMActionType string

const (
	CRMActionCreateContact CRMActionType = "create_contact"
	CRMActionCreateDeal    CRMActionType = "create_deal"
	CRMActionAddTags       CRMActionType = "add_tags"
	CRMActionAddNote       CRMActionType = "add_note"
)

type CRMAction struct {
	Type        CRMActionType `json:"type"`
	Description string        `json:"description"`
	Success     bool          `json:"success"`
}

// CRMSyncResult is built incrementally inside one sync call.
type CRMSyncResult struct {
	Success   bool        `json:"success"`
	ContactID string      `json:"contactId,omitempty"`
	Actions   []CRMAction `json:"actions"`
	Error     string      `json:"error,omitempty"`
}
