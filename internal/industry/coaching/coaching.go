// Package coaching implements the coaching qualification flow.
package coaching

import (
	"leadflow-workers/internal/industry"
	"leadflow-workers/internal/models"
)

// Steps
const (
	StepExperience      = "q1_experience"
	StepGoal            = "q2_goal"
	StepTimeline        = "q3_timeline"
	StepContentDelivery = "content_delivery"
	StepCompleted       = "completed"
)

// Response keys
const (
	KeyExperience      = "experience"
	KeyGoal            = "goal"
	KeyTimeline        = "timeline"
	KeyContentFeedback = "content_feedback"
)

// Segments
const (
	SegmentBeginnerMotivated = "incepator_motivat"
	SegmentBeginnerExplorer  = "incepator_explorator"
	SegmentAdvancedUrgent    = "avansat_urgent"
	SegmentAdvancedStrategic = "avansat_strategic"
)

const (
	answerYes      = "Da"
	answerNo       = "Nu"
	timelineUrgent = "<3 luni"
	closingMessage = "Mulțumim! Un coach din echipa noastră te va contacta în curând. Până atunci, spor la treabă!"
	callBookingURL = "https://calendly.com/leadflow-coaching/sesiune-gratuita"
	programURL     = "https://leadflow.ro/coaching/program"
	beginnerGuide  = "https://leadflow.ro/resurse/ghid-primii-pasi.pdf"
	masterclassURL = "https://leadflow.ro/resurse/masterclass-accelerare"
)

var (
	experienceOptions = []string{answerYes, answerNo}
	goalOptions       = []string{"Carieră", "Relații", "Business", "Dezvoltare personală"}
	timelineOptions   = []string{timelineUrgent, "3-6 luni", ">6 luni"}
	feedbackOptions   = []string{"Da, foarte util", "Vreau mai multe detalii"}
)

// New returns the coaching step machine.
func New() *industry.Machine {
	return industry.NewMachine(models.IndustryCoaching, map[string]industry.StepHandler{
		models.StepWelcome:  welcome,
		StepExperience:      experience,
		StepGoal:            goal,
		StepTimeline:        timeline,
		StepContentDelivery: contentDelivery,
		StepCompleted:       completed,
	})
}

func welcome(fc models.FlowContext, _ string) *models.IndustryResponse {
	return industry.Respond(fc,
		"Bună! Sunt asistentul tău de coaching. Ca să te ajut cât mai bine, ai mai lucrat cu un coach până acum?",
		StepExperience, experienceOptions...)
}

func experience(fc models.FlowContext, reply string) *models.IndustryResponse {
	fc.Responses[KeyExperience] = reply
	if reply == answerYes {
		return industry.Respond(fc,
			"Super! Care este obiectivul tău principal în acest moment?",
			StepGoal, goalOptions...)
	}
	return askTimeline(fc)
}

func goal(fc models.FlowContext, reply string) *models.IndustryResponse {
	fc.Responses[KeyGoal] = reply
	return askTimeline(fc)
}

func askTimeline(fc models.FlowContext) *models.IndustryResponse {
	return industry.Respond(fc,
		"În cât timp îți dorești să vezi rezultate concrete?",
		StepTimeline, timelineOptions...)
}

func timeline(fc models.FlowContext, reply string) *models.IndustryResponse {
	fc.Responses[KeyTimeline] = reply
	experienced := fc.Responses[KeyExperience] == answerYes
	urgent := reply == timelineUrgent
	fc.Segment = segmentFor(experienced, urgent)

	var content *models.Content
	if experienced {
		content = &models.Content{
			Type:  models.ContentVideo,
			Title: "Masterclass: Accelerează-ți progresul",
			URL:   masterclassURL,
		}
	} else {
		content = &models.Content{
			Type:  models.ContentPDF,
			Title: "Ghid gratuit: Primii pași spre obiectivul tău",
			URL:   beginnerGuide,
		}
	}

	var cta *models.CTA
	if urgent {
		cta = &models.CTA{Type: models.CTACall, Text: "Programează un apel gratuit de 15 minute", URL: callBookingURL}
	} else {
		cta = &models.CTA{Type: models.CTALink, Text: "Descoperă programul complet", URL: programURL}
	}

	resp := industry.Respond(fc,
		"Perfect! Pe baza răspunsurilor tale am pregătit un material potrivit pentru tine. Ți-a fost util?",
		StepContentDelivery, feedbackOptions...)
	resp.Content = content
	resp.CTA = cta
	return resp
}

func segmentFor(experienced, urgent bool) string {
	switch {
	case !experienced && urgent:
		return SegmentBeginnerMotivated
	case !experienced:
		return SegmentBeginnerExplorer
	case urgent:
		return SegmentAdvancedUrgent
	default:
		return SegmentAdvancedStrategic
	}
}

func contentDelivery(fc models.FlowContext, reply string) *models.IndustryResponse {
	fc.Responses[KeyContentFeedback] = reply
	return industry.Respond(fc, closingMessage, StepCompleted)
}

func completed(fc models.FlowContext, _ string) *models.IndustryResponse {
	return industry.Respond(fc, closingMessage, StepCompleted)
}
