// Package notifications builds the scheduled message batch for a scored lead.
package notifications

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"leadflow-workers/internal/common/errors"
	"leadflow-workers/internal/models"
)

const (
	defaultName        = "dragă client"
	defaultProduct     = "produsul ales"
	defaultDoctor      = "medicul dumneavoastră"
	defaultClinicPhone = "+40 21 555 0100"
	defaultAppointment = "10:00"
	cartDiscountCode   = "REVENIRE10"
)

// Generator produces notifications. It performs no I/O.
type Generator struct {
	templates Templates
	now       func() time.Time
	newID     func() string
}

type Option func(*Generator)

// WithClock overrides the time source used for scheduling.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithIDGenerator overrides notification id generation.
func WithIDGenerator(fn func() string) Option {
	return func(g *Generator) { g.newID = fn }
}

// WithTemplates replaces the built-in template table.
func WithTemplates(t Templates) Option {
	return func(g *Generator) { g.templates = t }
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		templates: DefaultTemplates,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the industry sequence plus one lead_alert when the lead is hot.
// Unknown industries yield an empty batch. Template problems are configuration
// errors and abort the whole batch.
func (g *Generator) Generate(nc models.NotificationContext) ([]models.Notification, error) {
	now := g.now().UTC()
	values := g.values(nc, now)
	channel := nc.Preferences.PreferredChannel()

	seq := sequences[nc.Industry]
	out := make([]models.Notification, 0, len(seq)+1)

	for _, s := range seq {
		tmpl, ok := g.templates.Lookup(nc.Industry, s.template, channel)
		if !ok {
			return nil, errors.NewTemplateNotFoundError(string(nc.Industry), s.template)
		}
		msg, err := Render(s.template, tmpl, values)
		if err != nil {
			return nil, err
		}
		actions, err := renderActions(s.template, s.actions, values)
		if err != nil {
			return nil, err
		}
		out = append(out, models.Notification{
			ID:           g.newID(),
			Type:         s.kind,
			Channel:      channel,
			Message:      msg,
			ScheduledFor: now.Add(s.offset).Format(time.RFC3339),
			Priority:     s.priority,
			Context:      nc.Clone(),
			Actions:      actions,
		})
	}

	if nc.Score.Level == models.LevelHot {
		alert, err := g.leadAlert(nc, now, values)
		if err != nil {
			return nil, err
		}
		out = append(out, alert)
	}

	return out, nil
}

func (g *Generator) leadAlert(nc models.NotificationContext, now time.Time, values map[string]string) (models.Notification, error) {
	msg, err := Render("lead_alert", leadAlertTemplate, values)
	if err != nil {
		return models.Notification{}, err
	}
	var actions []models.NotificationAction
	if nc.UserInfo.HasPhone() {
		actions = append(actions, models.NotificationAction{Type: models.ActionPhone, Label: "Sună lead-ul", Value: nc.UserInfo.Phone})
	}
	return models.Notification{
		ID:           g.newID(),
		Type:         models.NotificationLeadAlert,
		Channel:      models.ChannelEmail,
		Message:      msg,
		ScheduledFor: now.Format(time.RFC3339),
		Priority:     models.PriorityUrgent,
		Context:      nc.Clone(),
		Actions:      actions,
	}, nil
}

func (g *Generator) values(nc models.NotificationContext, now time.Time) map[string]string {
	name := strings.TrimSpace(nc.UserInfo.Name)
	if name == "" {
		name = defaultName
	}
	segment := nc.Segment
	if segment == "" {
		segment = "nesegmentat"
	}
	return map[string]string{
		"name":         name,
		"link":         industryLinks[nc.Industry],
		"offer":        industryOffers[nc.Industry],
		"date":         now.Add(day).Format("02.01.2006"),
		"time":         defaultAppointment,
		"doctor":       defaultDoctor,
		"clinic_phone": defaultClinicPhone,
		"product":      defaultProduct,
		"discount":     cartDiscountCode,
		"industry":     string(nc.Industry),
		"level":        string(nc.Score.Level),
		"percentage":   strconv.Itoa(nc.Score.Percentage),
		"contact":      contactSummary(nc.UserInfo),
		"segment":      segment,
	}
}

func contactSummary(u models.UserInfo) string {
	var parts []string
	for _, p := range []string{u.Name, u.Email, u.Phone} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "necunoscut"
	}
	return strings.Join(parts, " / ")
}

func renderActions(name string, src []models.NotificationAction, values map[string]string) ([]models.NotificationAction, error) {
	if len(src) == 0 {
		return nil, nil
	}
	out := make([]models.NotificationAction, len(src))
	for i, a := range src {
		v, err := Render(name, a.Value, values)
		if err != nil {
			return nil, err
		}
		a.Value = v
		out[i] = a
	}
	return out, nil
}
