// Package scoring computes weighted lead scores from qualification answers
// and engagement signals.
package scoring

import (
	"math"

	"leadflow-workers/internal/models"
)

const (
	// maxPoints is the best score any single factor can reach.
	maxPoints = 10.0

	EngagementFactor = "engagement"
	engagementWeight = 0.1
)

type factorRule struct {
	key         string
	weight      float64
	description string
	options     map[string]float64
}

// Factors are summed in table order so float totals are reproducible.
// Weights do not sum to 1; percentages are normalized by the achievable maximum.
var rules = map[models.Industry][]factorRule{
	models.IndustryCoaching: {
		{
			key:         "experience",
			weight:      0.2,
			description: "Experiență anterioară cu un coach",
			options:     map[string]float64{"Da": 7, "Nu": 5},
		},
		{
			key:         "goal",
			weight:      0.25,
			description: "Obiectiv principal",
			options:     map[string]float64{"Business": 10, "Carieră": 8, "Relații": 6, "Dezvoltare personală": 6},
		},
		{
			key:         "timeline",
			weight:      0.35,
			description: "Orizont de timp",
			options:     map[string]float64{"<3 luni": 10, "3-6 luni": 7, ">6 luni": 3},
		},
	},
	models.IndustryClinics: {
		{
			key:         "service",
			weight:      0.3,
			description: "Tipul serviciului solicitat",
			options:     map[string]float64{"Urgență": 10, "Tratament": 8, "Consultație": 6, "Control periodic": 4},
		},
		{
			key:         "urgency",
			weight:      0.4,
			description: "Urgența programării",
			options:     map[string]float64{"Azi": 10, "Săptămâna aceasta": 7, "Luna aceasta": 4},
		},
		{
			key:         "returning",
			weight:      0.2,
			description: "Pacient existent",
			options:     map[string]float64{"Da": 8, "Nu": 5},
		},
	},
	models.IndustryEcommerce: {
		{
			key:         "category",
			weight:      0.15,
			description: "Categoria de interes",
			options:     map[string]float64{"Electronice": 8, "Fashion": 7, "Beauty": 6, "Casă & Grădină": 6},
		},
		{
			key:         "budget",
			weight:      0.3,
			description: "Buget declarat",
			options:     map[string]float64{">300€": 10, "150-300€": 8, "50-150€": 6, "<50€": 4},
		},
		{
			key:         "urgency",
			weight:      0.4,
			description: "Urgența achiziției",
			options:     map[string]float64{"Azi / în 48h": 10, "Săptămâna asta": 7, "Doar mă uit": 2},
		},
	},
}

// CalculateScore is pure: equal inputs always yield equal scores.
func CalculateScore(sc models.ScoringContext) models.LeadScore {
	factors := make(map[string]models.ScoreFactor)
	var total, maxTotal float64

	for _, rule := range rules[sc.Industry] {
		score := rule.options[sc.Responses[rule.key]]
		factors[rule.key] = models.ScoreFactor{
			Score:       score,
			Weight:      rule.weight,
			Description: rule.description,
			MaxScore:    maxPoints,
		}
		total += score * rule.weight
		maxTotal += maxPoints * rule.weight
	}

	bonus := EngagementBonus(sc.Behavior, sc.UserInfo)
	factors[EngagementFactor] = models.ScoreFactor{
		Score:       bonus,
		Weight:      engagementWeight,
		Description: "Implicare și date de contact",
		MaxScore:    maxPoints,
	}
	total += bonus * engagementWeight
	maxTotal += maxPoints * engagementWeight

	pct := int(math.Round(100 * total / maxTotal))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	level := models.LevelForPercentage(pct)

	return models.LeadScore{
		TotalScore:      total,
		MaxScore:        maxTotal,
		Percentage:      pct,
		Level:           level,
		Factors:         factors,
		Recommendations: Recommendations(sc.Industry, level),
	}
}

// EngagementBonus scores behavioral signals and contact completeness, capped at 10.
func EngagementBonus(b models.Behavior, u models.UserInfo) float64 {
	var bonus float64

	switch {
	case b.TimeSpent > 300:
		bonus += 3
	case b.TimeSpent > 120:
		bonus += 2
	case b.TimeSpent > 60:
		bonus++
	}

	switch {
	case b.PagesVisited > 5:
		bonus += 2
	case b.PagesVisited > 3:
		bonus++
	}

	switch {
	case b.ReturnVisits > 2:
		bonus += 3
	case b.ReturnVisits > 0:
		bonus++
	}

	switch {
	case u.HasEmail() && u.HasPhone():
		bonus += 2
	case u.HasEmail() || u.HasPhone():
		bonus++
	}

	return math.Min(bonus, maxPoints)
}
