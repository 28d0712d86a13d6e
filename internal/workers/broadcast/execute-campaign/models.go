// internal/workers/broadcast/execute-campaign/models.go
package executecampaign

import "leadflow-workers/internal/models"

type Input struct {
	CampaignID string `json:"campaignId"`
}

type Output struct {
	Result *models.BroadcastResult `json:"result"`
}
