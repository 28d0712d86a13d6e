package crmsync

import "leadflow-workers/internal/models"

// fieldMapping translates internal lead fields into provider contact properties.
// Keys are internal names: name, email, phone, score, level, segment, industry,
// or a flow response key.
type fieldMapping map[string]string

var hubspotBase = fieldMapping{
	"name":     "firstname",
	"email":    "email",
	"phone":    "phone",
	"score":    "lead_score",
	"level":    "lead_level",
	"segment":  "lead_segment",
	"industry": "lead_industry",
}

var pipedriveBase = fieldMapping{
	"name":     "name",
	"email":    "email",
	"phone":    "phone",
	"score":    "lead_score",
	"level":    "lead_level",
	"segment":  "lead_segment",
	"industry": "lead_industry",
}

func extend(base fieldMapping, extra fieldMapping) fieldMapping {
	out := make(fieldMapping, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// mappings has entries for hubspot and pipedrive only.
var mappings = map[models.Industry]map[models.CRMProvider]fieldMapping{
	models.IndustryCoaching: {
		models.CRMHubSpot: extend(hubspotBase, fieldMapping{
			"experience": "coaching_experience",
			"goal":       "coaching_goal",
			"timeline":   "coaching_timeline",
		}),
		models.CRMPipedrive: extend(pipedriveBase, fieldMapping{
			"experience": "coaching_experience",
			"goal":       "coaching_goal",
			"timeline":   "coaching_timeline",
		}),
	},
	models.IndustryClinics: {
		models.CRMHubSpot: extend(hubspotBase, fieldMapping{
			"service":     "clinic_service",
			"urgency":     "clinic_urgency",
			"returning":   "clinic_returning_patient",
			"appointment": "clinic_appointment",
		}),
		models.CRMPipedrive: extend(pipedriveBase, fieldMapping{
			"service":     "clinic_service",
			"urgency":     "clinic_urgency",
			"returning":   "clinic_returning_patient",
			"appointment": "clinic_appointment",
		}),
	},
	models.IndustryEcommerce: {
		models.CRMHubSpot: extend(hubspotBase, fieldMapping{
			"category": "shop_category",
			"budget":   "shop_budget",
			"urgency":  "shop_urgency",
			"product":  "shop_product",
		}),
		models.CRMPipedrive: extend(pipedriveBase, fieldMapping{
			"category": "shop_category",
			"budget":   "shop_budget",
			"urgency":  "shop_urgency",
			"product":  "shop_product",
		}),
	},
}

func lookupMapping(ind models.Industry, provider models.CRMProvider) (fieldMapping, bool) {
	m, ok := mappings[ind][provider]
	return m, ok
}

// contactProperties builds the provider payload. Empty values are omitted.
func contactProperties(m fieldMapping, sc models.CRMSyncContext) map[string]interface{} {
	internal := map[string]interface{}{
		"name":     sc.UserInfo.Name,
		"email":    sc.UserInfo.Email,
		"phone":    sc.UserInfo.Phone,
		"score":    sc.Score.Percentage,
		"level":    string(sc.Score.Level),
		"segment":  sc.Segment,
		"industry": string(sc.Industry),
	}
	for k, v := range sc.Responses {
		if _, taken := internal[k]; !taken {
			internal[k] = v
		}
	}

	props := make(map[string]interface{}, len(m))
	for key, property := range m {
		v, ok := internal[key]
		if !ok {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			continue
		}
		props[property] = v
	}
	return props
}
