// Package ecommerce implements the shop assistant flow with product recommendations.
package ecommerce

import (
	"fmt"
	"math"
	"sort"

	"leadflow-workers/internal/industry"
	"leadflow-workers/internal/models"
)

// Steps
const (
	StepCategory         = "q1_category"
	StepBudget           = "q2_budget"
	StepUrgency          = "q3_urgency"
	StepProductSelection = "product_selection"
	StepCheckout         = "checkout"
	StepOrderConfirmed   = "order_confirmed"
	StepCartRecovery     = "cart_recovery"
)

// Response keys
const (
	KeyCategory     = "category"
	KeyBudget       = "budget"
	KeyUrgency      = "urgency"
	KeyUrgencyLevel = "urgencyLevel"
	KeyProduct      = "product"
	KeyCheckout     = "checkout"
)

// Segments
const (
	SegmentHot      = "lead_fierbinte"
	SegmentWarm     = "lead_cald"
	SegmentExplorer = "explorator"
)

// Urgency levels derived from the q3 reply.
const (
	UrgencyUrgent   = "urgent"
	UrgencySoon     = "soon"
	UrgencyBrowsing = "browsing"
)

const (
	categoryFashion = "Fashion"
	answerCheckout  = "Da, finalizez"
	discountCode    = "REVENIRE10"
	maxRecommended  = 3
)

var (
	categoryOptions = []string{categoryFashion, "Electronice", "Casă & Grădină", "Beauty"}
	budgetOptions   = []string{"<50€", "50-150€", "150-300€", ">300€"}
	urgencyOptions  = []string{"Azi / în 48h", "Săptămâna asta", "Doar mă uit"}
	checkoutOptions = []string{answerCheckout, "Mai târziu"}

	urgencyLevels = map[string]string{
		"Azi / în 48h":   UrgencyUrgent,
		"Săptămâna asta": UrgencySoon,
	}
)

type priceRange struct{ min, max float64 }

// Brackets are [min, max).
var budgetBrackets = map[string]priceRange{
	"<50€":     {0, 50},
	"50-150€":  {50, 150},
	"150-300€": {150, 300},
	">300€":    {300, math.Inf(1)},
}

// InBudget reports whether price falls in the bracket named by budget.
func InBudget(price float64, budget string) bool {
	r, ok := budgetBrackets[budget]
	return ok && price >= r.min && price < r.max
}

func New() *industry.Machine {
	return industry.NewMachine(models.IndustryEcommerce, map[string]industry.StepHandler{
		models.StepWelcome:   welcome,
		StepCategory:         category,
		StepBudget:           budget,
		StepUrgency:          urgency,
		StepProductSelection: selectProduct,
		StepCheckout:         checkout,
		StepOrderConfirmed:   orderConfirmed,
		StepCartRecovery:     cartRecovery,
	})
}

func welcome(fc models.FlowContext, _ string) *models.IndustryResponse {
	return industry.Respond(fc,
		"Bună! Te ajut să găsești produsul potrivit. Ce categorie te interesează?",
		StepCategory, categoryOptions...)
}

func category(fc models.FlowContext, reply string) *models.IndustryResponse {
	fc.Responses[KeyCategory] = reply
	return industry.Respond(fc, "Ce buget ai în minte?", StepBudget, budgetOptions...)
}

func budget(fc models.FlowContext, reply string) *models.IndustryResponse {
	fc.Responses[KeyBudget] = reply
	return industry.Respond(fc, "Când ai nevoie de produs?", StepUrgency, urgencyOptions...)
}

func urgency(fc models.FlowContext, reply string) *models.IndustryResponse {
	fc.Responses[KeyUrgency] = reply
	level, ok := urgencyLevels[reply]
	if !ok {
		level = UrgencyBrowsing
	}
	fc.Responses[KeyUrgencyLevel] = level

	switch level {
	case UrgencyUrgent:
		fc.Segment = SegmentHot
	case UrgencySoon:
		fc.Segment = SegmentWarm
	default:
		fc.Segment = SegmentExplorer
	}

	return listProducts(fc, "Am selectat pentru tine cele mai potrivite produse:")
}

func listProducts(fc models.FlowContext, header string) *models.IndustryResponse {
	recs := Recommend(fc.Responses[KeyCategory], fc.Responses[KeyBudget], fc.Responses[KeyUrgencyLevel])
	lines := make([]string, len(recs))
	for i, r := range recs {
		lines[i] = fmt.Sprintf("%s - %.0f€", r.Name, r.Price)
	}
	msg := header + "\n" + industry.NumberedList(lines) + "\nScrie numărul produsului care îți place."
	resp := industry.Respond(fc, msg, StepProductSelection, industry.NumberedOptions(len(recs))...)
	resp.Recommendations = recs
	return resp
}

// Recommend scores the category catalog and returns the best three, highest first.
func Recommend(category, budget, urgencyLevel string) []models.Recommendation {
	products := catalogFor(category)
	recs := make([]models.Recommendation, len(products))
	for i, p := range products {
		recs[i] = models.Recommendation{Product: p, MatchScore: matchScore(p, budget, urgencyLevel)}
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].MatchScore > recs[j].MatchScore })
	if len(recs) > maxRecommended {
		recs = recs[:maxRecommended]
	}
	return recs
}

func matchScore(p models.Product, budget, urgencyLevel string) float64 {
	score := 0.5
	if InBudget(p.Price, budget) {
		score += 0.3
	}
	if urgencyLevel == UrgencyUrgent {
		score += 0.2
	}
	// round away float noise such as 0.30000000000000004
	return math.Min(1.0, math.Round(score*100)/100)
}

func selectProduct(fc models.FlowContext, reply string) *models.IndustryResponse {
	recs := Recommend(fc.Responses[KeyCategory], fc.Responses[KeyBudget], fc.Responses[KeyUrgencyLevel])
	idx, ok := industry.ParseSelection(reply, len(recs))
	if !ok {
		return listProducts(fc, "Opțiune invalidă, te rog alege din nou:")
	}

	chosen := recs[idx]
	fc.Responses[KeyProduct] = chosen.ID
	resp := industry.Respond(fc,
		fmt.Sprintf("Excelentă alegere! %s costă %.0f€. Finalizezi comanda acum?", chosen.Name, chosen.Price),
		StepCheckout, checkoutOptions...)
	resp.CTA = &models.CTA{Type: models.CTABuy, Text: "Cumpără acum", URL: chosen.URL}
	return resp
}

func checkout(fc models.FlowContext, reply string) *models.IndustryResponse {
	fc.Responses[KeyCheckout] = reply
	if reply == answerCheckout {
		return orderConfirmed(fc, reply)
	}
	return cartRecovery(fc, reply)
}

func orderConfirmed(fc models.FlowContext, _ string) *models.IndustryResponse {
	return industry.Respond(fc,
		"Comanda ta a fost plasată! Vei primi confirmarea pe email în câteva minute.",
		StepOrderConfirmed)
}

func cartRecovery(fc models.FlowContext, _ string) *models.IndustryResponse {
	resp := industry.Respond(fc,
		fmt.Sprintf("Ți-am păstrat produsul în coș. Folosește codul %s pentru 10%% reducere dacă finalizezi în 24h.", discountCode),
		StepCartRecovery)
	resp.CTA = &models.CTA{
		Type: models.CTALink,
		Text: "Finalizează cu 10% reducere",
		URL:  "https://shop.leadflow.ro/cos?cod=" + discountCode,
	}
	return resp
}
