package notifications

import (
	"time"

	"leadflow-workers/internal/models"
)

// Templates maps industry -> template name -> channel -> text.
type Templates map[models.Industry]map[string]map[models.Channel]string

// Lookup returns the channel variant, falling back to email.
func (t Templates) Lookup(ind models.Industry, name string, ch models.Channel) (string, bool) {
	variants, ok := t[ind][name]
	if !ok {
		return "", false
	}
	if text, ok := variants[ch]; ok {
		return text, true
	}
	text, ok := variants[models.ChannelEmail]
	return text, ok
}

// scheduled is one entry of an industry's notification sequence.
type scheduled struct {
	template string
	kind     models.NotificationType
	offset   time.Duration
	priority models.Priority
	actions  []models.NotificationAction
}

const day = 24 * time.Hour

var sequences = map[models.Industry][]scheduled{
	models.IndustryCoaching: {
		{template: "welcome", kind: models.NotificationFollowup, offset: 0, priority: models.PriorityHigh,
			actions: []models.NotificationAction{{Type: models.ActionLink, Label: "Descarcă ghidul", Value: "{link}"}}},
		{template: "followup_day1", kind: models.NotificationFollowup, offset: day, priority: models.PriorityMedium},
		{template: "followup_day3", kind: models.NotificationPromotion, offset: 3 * day, priority: models.PriorityMedium,
			actions: []models.NotificationAction{{Type: models.ActionButton, Label: "Programează apelul", Value: "{link}"}}},
		{template: "followup_day7", kind: models.NotificationFollowup, offset: 7 * day, priority: models.PriorityLow},
	},
	models.IndustryClinics: {
		{template: "reminder_24h", kind: models.NotificationAppointment, offset: day, priority: models.PriorityHigh,
			actions: []models.NotificationAction{{Type: models.ActionButton, Label: "Confirmă prezența", Value: "confirm"}}},
		{template: "reminder_1h", kind: models.NotificationReminder, offset: time.Hour, priority: models.PriorityUrgent,
			actions: []models.NotificationAction{{Type: models.ActionPhone, Label: "Sună la recepție", Value: "{clinic_phone}"}}},
		{template: "post_visit", kind: models.NotificationFollowup, offset: day, priority: models.PriorityMedium},
	},
	models.IndustryEcommerce: {
		{template: "cart_1h", kind: models.NotificationAbandonedCart, offset: time.Hour, priority: models.PriorityHigh,
			actions: []models.NotificationAction{{Type: models.ActionLink, Label: "Finalizează comanda", Value: "{link}"}}},
		{template: "cart_24h", kind: models.NotificationAbandonedCart, offset: day, priority: models.PriorityMedium},
		{template: "cart_48h", kind: models.NotificationAbandonedCart, offset: 2 * day, priority: models.PriorityMedium,
			actions: []models.NotificationAction{{Type: models.ActionLink, Label: "Folosește reducerea", Value: "{link}"}}},
		{template: "post_purchase", kind: models.NotificationFollowup, offset: 7 * day, priority: models.PriorityLow},
	},
}

// DefaultTemplates is the built-in template table.
var DefaultTemplates = Templates{
	models.IndustryCoaching: {
		"welcome": {
			models.ChannelEmail:    "Bună, {name}! Îți mulțumim pentru interes. Ghidul tău gratuit te așteaptă aici: {link}",
			models.ChannelWhatsApp: "Bună, {name}! Ghidul tău gratuit: {link}",
		},
		"followup_day1": {
			models.ChannelEmail: "Salut, {name}! Ai apucat să citești materialul? Răspunde-ne dacă ai întrebări.",
			models.ChannelSMS:   "{name}, ai întrebări despre material? Scrie-ne oricând.",
		},
		"followup_day3": {
			models.ChannelEmail: "{name}, avem o ofertă pentru tine: {offer}. Programează un apel gratuit: {link}",
		},
		"followup_day7": {
			models.ChannelEmail: "{name}, ultima șansă pentru {offer}. Oferta expiră pe {date}.",
		},
	},
	models.IndustryClinics: {
		"reminder_24h": {
			models.ChannelEmail:    "Bună ziua, {name}! Vă reamintim de programarea de mâine, {date} la ora {time}, cu {doctor}.",
			models.ChannelSMS:      "Reminder: programare mâine la {time} cu {doctor}.",
			models.ChannelWhatsApp: "Bună ziua, {name}! Vă așteptăm mâine la ora {time} la {doctor}.",
		},
		"reminder_1h": {
			models.ChannelEmail: "{name}, programarea dumneavoastră începe într-o oră. Pentru întârzieri sunați la {clinic_phone}.",
			models.ChannelSMS:   "Programarea începe într-o oră. Info: {clinic_phone}",
		},
		"post_visit": {
			models.ChannelEmail: "{name}, cum a decurs vizita? Ne ajută mult dacă ne lăsați o recenzie: {link}",
		},
	},
	models.IndustryEcommerce: {
		"cart_1h": {
			models.ChannelEmail:    "{name}, ai uitat ceva în coș! {product} te așteaptă: {link}",
			models.ChannelWhatsApp: "{name}, {product} e încă în coșul tău: {link}",
		},
		"cart_24h": {
			models.ChannelEmail: "{name}, stocul pentru {product} este limitat. Finalizează comanda cât mai e disponibil.",
		},
		"cart_48h": {
			models.ChannelEmail: "{name}, îți oferim {offer} cu codul {discount}: {link}",
			models.ChannelSMS:   "Cod {discount}: {offer}. {link}",
		},
		"post_purchase": {
			models.ChannelEmail: "Mulțumim pentru comandă, {name}! Cum ți se pare produsul? Lasă o recenzie: {link}",
		},
	},
}

// leadAlertTemplate is sent to the sales team for hot leads, always by email.
const leadAlertTemplate = "LEAD FIERBINTE: industrie {industry}, nivel {level}, scor {percentage}%, contact {contact}, segment {segment}."

var industryLinks = map[models.Industry]string{
	models.IndustryCoaching:  "https://leadflow.ro/coaching/program",
	models.IndustryClinics:   "https://leadflow.ro/clinica/recenzii",
	models.IndustryEcommerce: "https://shop.leadflow.ro/cos",
}

var industryOffers = map[models.Industry]string{
	models.IndustryCoaching:  "20% reducere la primul program",
	models.IndustryClinics:   "consultație de control gratuită",
	models.IndustryEcommerce: "10% reducere",
}
