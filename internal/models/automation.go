package models

// AutomationKind tags each automation outcome.
type AutomationKind string

const (
	AutomationNotifications AutomationKind = "notifications"
	AutomationCRMSync       AutomationKind = "crm_sync"
	AutomationBroadcast     AutomationKind = "broadcast"
)

// AutomationOutcome is implemented only by the three outcome types below.
type AutomationOutcome interface {
	Kind() AutomationKind
	isAutomationOutcome()
}

type NotificationBatch struct {
	Notifications []Notification `json:"notifications"`
}

func (NotificationBatch) Kind() AutomationKind { return AutomationNotifications }
func (NotificationBatch) isAutomationOutcome() {}

type CrmSyncOutcome struct {
	Provider CRMProvider   `json:"provider"`
	Result   CRMSyncResult `json:"result"`
}

func (CrmSyncOutcome) Kind() AutomationKind { return AutomationCRMSync }
func (CrmSyncOutcome) isAutomationOutcome() {}

type BroadcastOutcome struct {
	Campaign CreateCampaignResult `json:"campaign"`
}

func (BroadcastOutcome) Kind() AutomationKind { return AutomationBroadcast }
func (BroadcastOutcome) isAutomationOutcome() {}

// AutomationBundle groups the outcomes produced after scoring.
type AutomationBundle struct {
	Notifications *NotificationBatch `json:"notifications,omitempty"`
	CRMSync       *CrmSyncOutcome    `json:"crmSync,omitempty"`
	Broadcast     *BroadcastOutcome  `json:"broadcast,omitempty"`
}

// Outcomes lists the populated outcomes in a fixed order.
func (b *AutomationBundle) Outcomes() []AutomationOutcome {
	if b == nil {
		return nil
	}
	var out []AutomationOutcome
	if b.Notifications != nil {
		out = append(out, *b.Notifications)
	}
	if b.CRMSync != nil {
		out = append(out, *b.CRMSync)
	}
	if b.Broadcast != nil {
		out = append(out, *b.Broadcast)
	}
	return out
}
