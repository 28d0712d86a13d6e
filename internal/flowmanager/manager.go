// Package flowmanager runs one chat turn: industry step, scoring and the
// automation fan-out that follows it.
package flowmanager

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"leadflow-workers/internal/broadcast"
	"leadflow-workers/internal/common/logger"
	"leadflow-workers/internal/common/metrics"
	"leadflow-workers/internal/common/observability"
	"leadflow-workers/internal/industry"
	"leadflow-workers/internal/models"
	"leadflow-workers/internal/scoring"
)

type NotificationGenerator interface {
	Generate(nc models.NotificationContext) ([]models.Notification, error)
}

type AlertDispatcher interface {
	Dispatch(ctx context.Context, list []models.Notification) (int, error)
}

type CRMSyncer interface {
	Sync(ctx context.Context, sc models.CRMSyncContext) *models.CRMSyncResult
}

type CampaignCreator interface {
	CreateCampaign(ctx context.Context, req broadcast.CampaignRequest) models.CreateCampaignResult
}

// hotLeadMinScore is the audience floor for hot-lead follow-up campaigns.
const hotLeadMinScore = 70.0

type Manager struct {
	flows         *industry.Registry
	notifications NotificationGenerator
	alerts        AlertDispatcher
	crm           CRMSyncer
	campaigns     CampaignCreator
	crmProvider   models.CRMProvider
	obs           *observability.Observability
	now           func() time.Time
	log           logger.Logger
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithObservability(o *observability.Observability) Option {
	return func(m *Manager) { m.obs = o }
}

// WithCRM enables CRM sync against the given provider.
func WithCRM(s CRMSyncer, provider models.CRMProvider) Option {
	return func(m *Manager) {
		m.crm = s
		m.crmProvider = provider
	}
}

// WithAlerts delivers lead alerts as soon as they are generated.
func WithAlerts(d AlertDispatcher) Option {
	return func(m *Manager) { m.alerts = d }
}

// WithCampaigns enables hot-lead follow-up broadcasts.
func WithCampaigns(c CampaignCreator) Option {
	return func(m *Manager) { m.campaigns = c }
}

func New(flows *industry.Registry, notifications NotificationGenerator, log logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		flows:         flows,
		notifications: notifications,
		now:           time.Now,
		log:           logger.Component(log, "flow-manager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HandleMessage advances the session by one reply. The input context is not
// modified; the updated one is returned in the response. Only configuration
// errors are returned; external failures are reported inside Automation.
func (m *Manager) HandleMessage(ctx context.Context, fc models.FlowContext, message string) (resp *models.FlowResponse, err error) {
	start := time.Now()
	ctx, span := m.obs.StartTurn(ctx, fc.SessionID, string(fc.Industry), fc.Step())
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		m.obs.RecordTurn(ctx, string(fc.Industry), status, time.Since(start))
		observability.EndTurn(span, err)
	}()

	log := m.log.WithFields(map[string]interface{}{
		"session_id": fc.SessionID,
		"industry":   fc.Industry,
		"step":       fc.Step(),
	})

	flow, err := m.flows.Lookup(fc.Industry)
	if err != nil {
		log.WithError(err).Error("Unsupported industry", nil)
		return nil, err
	}
	step, err := flow.HandleStep(fc, message)
	if err != nil {
		log.WithError(err).Error("Step failed", nil)
		return nil, err
	}
	metrics.FlowMessages.WithLabelValues(string(fc.Industry), fc.Step()).Inc()

	next := step.Context.Clone()
	if step.Segment != "" {
		next.Segment = step.Segment
	}
	next.CurrentStep = step.NextStep
	next.LastActivity = m.now().UTC()

	score := scoring.CalculateScore(models.ScoringContext{
		Industry:  next.Industry,
		Responses: next.Responses,
		UserInfo:  next.UserInfo,
		Behavior:  next.Behavior,
	})
	next.Score = float64(score.Percentage)
	metrics.LeadLevels.WithLabelValues(string(next.Industry), string(score.Level)).Inc()

	bundle, err := m.automate(ctx, next, score)
	if err != nil {
		log.WithError(err).Error("Automation failed", nil)
		return nil, err
	}

	log.Info("Turn handled", map[string]interface{}{
		"next_step":  next.CurrentStep,
		"percentage": score.Percentage,
		"level":      score.Level,
	})

	return &models.FlowResponse{
		Message:         step.Message,
		NextStep:        step.NextStep,
		Options:         step.Options,
		Segment:         next.Segment,
		Content:         step.Content,
		CTA:             step.CTA,
		Recommendations: step.Recommendations,
		Appointment:     step.Appointment,
		Context:         next,
		Automation:      bundle,
	}, nil
}

// automate runs notifications, CRM sync and the hot-lead broadcast
// concurrently. Only a notification configuration error is returned.
func (m *Manager) automate(ctx context.Context, fc models.FlowContext, score models.LeadScore) (*models.AutomationBundle, error) {
	bundle := &models.AutomationBundle{}
	var g errgroup.Group

	if m.notifications != nil {
		nc := models.NotificationContext{
			SessionID:   fc.SessionID,
			Industry:    fc.Industry,
			UserInfo:    fc.UserInfo,
			Segment:     fc.Segment,
			Score:       score,
			Preferences: fc.Preferences,
		}
		g.Go(func() error {
			list, err := m.notifications.Generate(nc)
			if err != nil {
				return err
			}
			bundle.Notifications = &models.NotificationBatch{Notifications: list}
			if m.alerts != nil {
				if _, err := m.alerts.Dispatch(ctx, list); err != nil {
					m.log.WithError(err).Warn("Lead alert delivery failed", map[string]interface{}{"session_id": nc.SessionID})
				}
			}
			return nil
		})
	}

	if m.crm != nil {
		sc := models.CRMSyncContext{
			SessionID:    fc.SessionID,
			Industry:     fc.Industry,
			Provider:     m.crmProvider,
			UserInfo:     fc.UserInfo,
			Responses:    fc.Clone().Responses,
			Segment:      fc.Segment,
			Score:        score,
			LastActivity: fc.LastActivity,
		}
		g.Go(func() error {
			result := m.crm.Sync(ctx, sc)
			bundle.CRMSync = &models.CrmSyncOutcome{Provider: sc.Provider, Result: *result}
			return nil
		})
	}

	if m.campaigns != nil && score.Level == models.LevelHot {
		req := hotLeadCampaign(fc)
		g.Go(func() error {
			result := m.campaigns.CreateCampaign(ctx, req)
			bundle.Broadcast = &models.BroadcastOutcome{Campaign: result}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, o := range bundle.Outcomes() {
		m.obs.RecordAutomation(ctx, string(o.Kind()))
	}
	return bundle, nil
}

var hotLeadContent = map[models.Industry]models.BroadcastContent{
	models.IndustryCoaching: {
		Subject: "Locuri limitate la sesiunile de coaching",
		Message: "Bună, {name}! Mai avem câteva locuri libere săptămâna aceasta pentru o sesiune de descoperire gratuită.",
	},
	models.IndustryClinics: {
		Subject: "Intervale disponibile azi",
		Message: "Bună ziua, {name}! S-au eliberat intervale pentru astăzi. Răspundeți pentru a vă programa.",
	},
	models.IndustryEcommerce: {
		Subject: "Oferta ta expiră curând",
		Message: "{name}, produsele din coșul tău au acum livrare gratuită până la miezul nopții.",
	},
}

func hotLeadCampaign(fc models.FlowContext) broadcast.CampaignRequest {
	minScore := hotLeadMinScore
	audience := models.AudienceFilter{Industry: fc.Industry, MinScore: &minScore}
	if fc.Segment != "" {
		audience.Segments = []string{fc.Segment}
	}
	return broadcast.CampaignRequest{
		ID:       "hot-lead-" + fc.SessionID,
		Deferred: true,
		Name:     fmt.Sprintf("Hot lead follow-up %s", fc.SessionID),
		Industry: fc.Industry,
		Type:     models.CampaignHotLead,
		Audience: audience,
		Content:  hotLeadContent[fc.Industry],
		Channels: []models.Channel{fc.Preferences.PreferredChannel()},
	}
}
