// Package clinics implements the medical clinic flow, including appointment booking.
package clinics

import (
	"fmt"
	"net/url"
	"time"

	"leadflow-workers/internal/industry"
	"leadflow-workers/internal/models"
)

// Steps
const (
	StepService   = "q1_service"
	StepUrgency   = "q2_urgency"
	StepReturning = "q3_returning"
	StepSlots     = "appointment_slots"
	StepConfirmed = "confirmed"
)

// Response keys
const (
	KeyService     = "service"
	KeyServiceType = "serviceType"
	KeyUrgency     = "urgency"
	KeyReturning   = "returning"
	KeyAppointment = "appointment"
)

// Segments
const (
	SegmentUrgent  = "pacient_urgent"
	SegmentActive  = "pacient_activ"
	SegmentPlanned = "pacient_planificat"
)

const (
	serviceConsultation = "Consultație"
	serviceTreatment    = "Tratament"
	serviceCheckup      = "Control periodic"
	serviceEmergency    = "Urgență"

	urgencyToday = "Azi"
	urgencyWeek  = "Săptămâna aceasta"

	appointmentDuration = 30 * time.Minute
	calendarTimeFormat  = "20060102T150405"
)

var (
	serviceOptions   = []string{serviceConsultation, serviceTreatment, serviceCheckup, serviceEmergency}
	urgencyOptions   = []string{urgencyToday, urgencyWeek, "Luna aceasta"}
	returningOptions = []string{"Da", "Nu"}

	serviceTypes = map[string]string{
		serviceConsultation: "consultation",
		serviceTreatment:    "treatment",
		serviceCheckup:      "checkup",
		serviceEmergency:    "emergency",
	}
)

// Slot is a bookable appointment interval.
type Slot struct {
	Doctor string
	Date   string // YYYY-MM-DD
	Time   string // HH:MM
}

var slotTable = map[string][]Slot{
	serviceConsultation: {
		{Doctor: "Dr. Elena Popescu", Date: "2025-03-10", Time: "09:00"},
		{Doctor: "Dr. Elena Popescu", Date: "2025-03-10", Time: "11:30"},
		{Doctor: "Dr. Andrei Ionescu", Date: "2025-03-11", Time: "14:00"},
	},
	serviceTreatment: {
		{Doctor: "Dr. Andrei Ionescu", Date: "2025-03-10", Time: "10:00"},
		{Doctor: "Dr. Maria Dumitru", Date: "2025-03-12", Time: "15:30"},
	},
	serviceCheckup: {
		{Doctor: "Dr. Maria Dumitru", Date: "2025-03-13", Time: "08:30"},
		{Doctor: "Dr. Elena Popescu", Date: "2025-03-14", Time: "12:00"},
		{Doctor: "Dr. Maria Dumitru", Date: "2025-03-17", Time: "16:00"},
	},
	serviceEmergency: {
		{Doctor: "Dr. Radu Stan", Date: "2025-03-10", Time: "08:00"},
		{Doctor: "Dr. Radu Stan", Date: "2025-03-10", Time: "13:00"},
	},
}

// SlotsFor returns the slots for a service, consultation slots for unknown services.
func SlotsFor(service string) []Slot {
	if slots, ok := slotTable[service]; ok {
		return slots
	}
	return slotTable[serviceConsultation]
}

func New() *industry.Machine {
	return industry.NewMachine(models.IndustryClinics, map[string]industry.StepHandler{
		models.StepWelcome: welcome,
		StepService:        service,
		StepUrgency:        urgency,
		StepReturning:      returning,
		StepSlots:          selectSlot,
		StepConfirmed:      confirmed,
	})
}

func welcome(fc models.FlowContext, _ string) *models.IndustryResponse {
	return industry.Respond(fc,
		"Bună ziua! Bine ați venit la clinica noastră. Cu ce vă putem ajuta astăzi?",
		StepService, serviceOptions...)
}

func service(fc models.FlowContext, reply string) *models.IndustryResponse {
	fc.Responses[KeyService] = reply
	serviceType, ok := serviceTypes[reply]
	if !ok {
		serviceType = serviceTypes[serviceConsultation]
	}
	fc.Responses[KeyServiceType] = serviceType
	return industry.Respond(fc,
		"Cât de repede aveți nevoie de o programare?",
		StepUrgency, urgencyOptions...)
}

func urgency(fc models.FlowContext, reply string) *models.IndustryResponse {
	fc.Responses[KeyUrgency] = reply
	switch {
	case fc.Responses[KeyService] == serviceEmergency || reply == urgencyToday:
		fc.Segment = SegmentUrgent
	case reply == urgencyWeek:
		fc.Segment = SegmentActive
	default:
		fc.Segment = SegmentPlanned
	}
	return industry.Respond(fc,
		"Ați mai fost pacientul nostru până acum?",
		StepReturning, returningOptions...)
}

func returning(fc models.FlowContext, reply string) *models.IndustryResponse {
	fc.Responses[KeyReturning] = reply
	svc := fc.Responses[KeyService]
	return listSlots(fc, fmt.Sprintf("Iată intervalele disponibile pentru %s:", displayService(svc)))
}

func listSlots(fc models.FlowContext, header string) *models.IndustryResponse {
	slots := SlotsFor(fc.Responses[KeyService])
	lines := make([]string, len(slots))
	for i, s := range slots {
		lines[i] = fmt.Sprintf("%s, %s la ora %s", s.Doctor, s.Date, s.Time)
	}
	msg := header + "\n" + industry.NumberedList(lines) + "\nRăspundeți cu numărul intervalului dorit."
	return industry.Respond(fc, msg, StepSlots, industry.NumberedOptions(len(slots))...)
}

func selectSlot(fc models.FlowContext, reply string) *models.IndustryResponse {
	svc := displayService(fc.Responses[KeyService])
	slots := SlotsFor(fc.Responses[KeyService])
	idx, ok := industry.ParseSelection(reply, len(slots))
	if !ok {
		return listSlots(fc, "Opțiune invalidă, vă rugăm să alegeți din nou.")
	}

	slot := slots[idx]
	appt := &models.Appointment{
		Service:      svc,
		Doctor:       slot.Doctor,
		Date:         slot.Date,
		Time:         slot.Time,
		Status:       "confirmed",
		CalendarLink: CalendarLink(svc, slot),
	}
	fc.Responses[KeyAppointment] = slot.Date + " " + slot.Time

	resp := industry.Respond(fc,
		fmt.Sprintf("Programarea a fost confirmată: %s cu %s, pe %s la ora %s. Vă așteptăm!",
			svc, slot.Doctor, slot.Date, slot.Time),
		StepConfirmed)
	resp.Appointment = appt
	resp.CTA = &models.CTA{Type: models.CTABooking, Text: "Adaugă în calendar", URL: appt.CalendarLink}
	return resp
}

func confirmed(fc models.FlowContext, _ string) *models.IndustryResponse {
	msg := "Programarea dumneavoastră este confirmată. Pentru modificări ne puteți suna oricând."
	if appt := fc.Responses[KeyAppointment]; appt != "" {
		msg = fmt.Sprintf("Programarea dumneavoastră din %s este confirmată. Pentru modificări ne puteți suna oricând.", appt)
	}
	return industry.Respond(fc, msg, StepConfirmed)
}

func displayService(service string) string {
	if _, ok := slotTable[service]; ok {
		return service
	}
	return serviceConsultation
}

// CalendarLink builds a Google Calendar template link for a 30-minute slot.
// Times are floating local times, so the link is deterministic.
func CalendarLink(service string, slot Slot) string {
	start, err := time.Parse("2006-01-02 15:04", slot.Date+" "+slot.Time)
	if err != nil {
		return ""
	}
	end := start.Add(appointmentDuration)

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", "Programare: "+service)
	q.Set("dates", start.Format(calendarTimeFormat)+"/"+end.Format(calendarTimeFormat))
	q.Set("details", "Medic: "+slot.Doctor)
	return "https://calendar.google.com/calendar/render?" + q.Encode()
}
