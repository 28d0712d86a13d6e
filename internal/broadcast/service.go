// Package broadcast creates campaigns, resolves their audience and fans
// content out over the configured delivery channels.
package broadcast

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"leadflow-workers/internal/channels"
	"leadflow-workers/internal/common/errors"
	"leadflow-workers/internal/common/logger"
	"leadflow-workers/internal/common/metrics"
	"leadflow-workers/internal/models"
)

// CampaignRequest is the input to CreateCampaign.
type CampaignRequest struct {
	// ID makes creation idempotent. A request whose id is already stored
	// succeeds without creating or sending anything. Empty means a fresh id.
	ID           string
	Name         string
	Industry     models.Industry
	Type         models.CampaignType
	Audience     models.AudienceFilter
	Content      models.BroadcastContent
	Channels     []models.Channel
	ScheduledFor *time.Time
	// Deferred stores the campaign as a due draft for the scheduler or the
	// execute-campaign worker instead of delivering it inline.
	Deferred bool
}

type Service struct {
	store       CampaignStore
	audience    AudienceSource
	senders     *channels.Registry
	concurrency int
	sendTimeout time.Duration
	now         func() time.Time
	newID       func() string
	log         logger.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithConcurrency bounds the number of in-flight sends.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithSendTimeout bounds each individual send.
func WithSendTimeout(d time.Duration) Option {
	return func(s *Service) { s.sendTimeout = d }
}

func NewService(store CampaignStore, audience AudienceSource, senders *channels.Registry, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:       store,
		audience:    audience,
		senders:     senders,
		concurrency: 8,
		sendTimeout: 10 * time.Second,
		now:         time.Now,
		newID:       uuid.NewString,
		log:         logger.Component(log, "broadcast"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCampaign persists a draft and executes it right away unless it is
// scheduled in the future or deferred.
func (s *Service) CreateCampaign(ctx context.Context, req CampaignRequest) models.CreateCampaignResult {
	now := s.now().UTC()
	id := req.ID
	if id == "" {
		id = s.newID()
	}
	c := &models.Campaign{
		ID:           id,
		Name:         req.Name,
		Industry:     req.Industry,
		Type:         req.Type,
		Audience:     req.Audience,
		Content:      req.Content,
		Channels:     req.Channels,
		ScheduledFor: req.ScheduledFor,
		Status:       models.CampaignDraft,
		CreatedAt:    now,
	}
	if c.Audience.Industry == "" {
		c.Audience.Industry = req.Industry
	}
	if req.Deferred && c.ScheduledFor == nil {
		c.ScheduledFor = &now
	}

	if err := s.store.Create(ctx, c); err != nil {
		if errors.HasCode(err, errors.ErrCodeCampaignExists) {
			s.log.Info("Campaign already created", map[string]interface{}{"campaign_id": c.ID})
			return models.CreateCampaignResult{Success: true, CampaignID: c.ID}
		}
		s.log.WithError(err).Error("Campaign create failed", map[string]interface{}{"campaign_id": c.ID})
		return models.CreateCampaignResult{Success: false, Error: err.Error()}
	}
	s.log.Info("Campaign created", map[string]interface{}{
		"campaign_id": c.ID,
		"type":        c.Type,
		"channels":    c.Channels,
	})

	if req.Deferred || (c.ScheduledFor != nil && c.ScheduledFor.After(now)) {
		return models.CreateCampaignResult{Success: true, CampaignID: c.ID}
	}

	result, err := s.Execute(ctx, c)
	if err != nil {
		return models.CreateCampaignResult{Success: false, CampaignID: c.ID, Error: err.Error()}
	}
	out := models.CreateCampaignResult{Success: result.Success, CampaignID: c.ID, Result: result}
	if !result.Success {
		out.Error = result.Error
	}
	return out
}

// ExecuteByID loads a stored campaign and executes it.
func (s *Service) ExecuteByID(ctx context.Context, id string) (*models.BroadcastResult, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx, c)
}

// RunDue executes every draft whose schedule has passed and returns how many
// this call delivered. Drafts claimed by a concurrent run are skipped.
func (s *Service) RunDue(ctx context.Context) (int, error) {
	due, err := s.store.ListDue(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range due {
		if _, err := s.Execute(ctx, c); err != nil {
			fields := map[string]interface{}{"campaign_id": c.ID}
			if errors.HasCode(err, errors.ErrCodeCampaignNotDraft) {
				s.log.Debug("Campaign already claimed", fields)
			} else {
				s.log.WithError(err).Warn("Campaign claim failed", fields)
			}
			continue
		}
		n++
	}
	return n, nil
}

// Execute claims a draft campaign and delivers it. A campaign that is not a
// draft, or that another run claimed first, is rejected with CAMPAIGN_NOT_DRAFT
// and nothing is sent.
func (s *Service) Execute(ctx context.Context, c *models.Campaign) (*models.BroadcastResult, error) {
	if c.Status != models.CampaignDraft {
		return nil, errors.NewCampaignNotDraftError(c.ID, string(c.Status))
	}
	if err := s.store.Claim(ctx, c.ID); err != nil {
		return nil, err
	}
	c.Status = models.CampaignSending
	return s.deliver(ctx, c), nil
}

// deliver resolves the audience and fans the content out. Per-recipient
// failures are counted and do not flip Success; only audience problems do.
func (s *Service) deliver(ctx context.Context, c *models.Campaign) *models.BroadcastResult {
	log := s.log.WithFields(map[string]interface{}{"campaign_id": c.ID})
	result := &models.BroadcastResult{
		CampaignID: c.ID,
		Details: models.BroadcastDetails{
			Channels: make(map[models.Channel]models.ChannelStats, len(c.Channels)),
			Errors:   []string{},
		},
	}

	recipients, err := s.resolveAudience(ctx, c)
	if err != nil {
		result.Error = err.Error()
		log.WithError(err).Warn("Audience resolution failed", nil)
		s.finish(ctx, c, result)
		return result
	}
	if len(recipients) == 0 {
		err := errors.NewNoAudienceError(c.ID)
		result.Error = err.Message
		log.Warn("No audience", nil)
		s.finish(ctx, c, result)
		return result
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.concurrency)

	for _, ch := range c.Channels {
		mu.Lock()
		result.Details.Channels[ch] = models.ChannelStats{}
		mu.Unlock()

		sender, senderErr := s.senders.Get(ch)
		for _, r := range recipients {
			ch, r := ch, r
			g.Go(func() error {
				err := senderErr
				if err == nil {
					err = s.send(ctx, sender, c, r)
				}
				metrics.RecordBroadcastSend(string(ch), err)

				mu.Lock()
				defer mu.Unlock()
				stats := result.Details.Channels[ch]
				if err != nil {
					stats.Failed++
					result.Failed++
					result.Details.Errors = append(result.Details.Errors, fmt.Sprintf("%s/%s: %v", ch, r.ID, err))
				} else {
					stats.Sent++
					result.Sent++
				}
				result.Details.Channels[ch] = stats
				return nil
			})
		}
	}
	_ = g.Wait()

	result.Success = true
	s.finish(ctx, c, result)
	log.Info("Campaign executed", map[string]interface{}{
		"sent":   result.Sent,
		"failed": result.Failed,
	})
	return result
}

func (s *Service) send(ctx context.Context, sender channels.Sender, c *models.Campaign, r models.Recipient) error {
	to := channels.Address(sender.Channel(), r.Email, r.Phone)
	if to == "" {
		return errors.NewChannelSendFailedError(string(sender.Channel()), r.ID, fmt.Errorf("no address"))
	}
	ctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	msg := channels.Message{
		To:       to,
		Subject:  c.Content.Subject,
		Body:     personalize(c.Content.Message, r),
		MediaURL: c.Content.MediaURL,
	}
	if err := sender.Send(ctx, msg); err != nil {
		return errors.NewChannelSendFailedError(string(sender.Channel()), r.ID, err)
	}
	return nil
}

func (s *Service) finish(ctx context.Context, c *models.Campaign, result *models.BroadcastResult) {
	status := models.CampaignFailed
	var sentAt *time.Time
	if result.Success {
		status = models.CampaignSent
		t := s.now().UTC()
		sentAt = &t
	}
	c.Status = status
	c.SentAt = sentAt
	if err := s.store.UpdateStatus(ctx, c.ID, status, sentAt); err != nil {
		s.log.WithError(err).Error("Campaign status update failed", map[string]interface{}{
			"campaign_id": c.ID,
			"status":      status,
		})
	}
}

func (s *Service) resolveAudience(ctx context.Context, c *models.Campaign) ([]models.Recipient, error) {
	pool, err := s.audience.Candidates(ctx, c.Audience.Industry)
	if err != nil {
		return nil, err
	}
	return FilterAudience(pool, c.Audience, s.now()), nil
}

// FilterAudience applies every set filter to the candidate pool.
func FilterAudience(pool []models.Recipient, f models.AudienceFilter, now time.Time) []models.Recipient {
	segments := make(map[string]struct{}, len(f.Segments))
	for _, seg := range f.Segments {
		segments[seg] = struct{}{}
	}

	var out []models.Recipient
	for _, r := range pool {
		if f.Industry != "" && r.Industry != f.Industry {
			continue
		}
		if len(segments) > 0 {
			if _, ok := segments[r.Segment]; !ok {
				continue
			}
		}
		if f.MinScore != nil && r.Score < *f.MinScore {
			continue
		}
		if f.MaxScore != nil && r.Score > *f.MaxScore {
			continue
		}
		if f.LastActivityDays != nil {
			cutoff := now.Add(-time.Duration(*f.LastActivityDays) * 24 * time.Hour)
			if r.LastActivity.Before(cutoff) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func personalize(message string, r models.Recipient) string {
	name := r.Name
	if name == "" {
		name = "dragă client"
	}
	return strings.ReplaceAll(message, "{name}", name)
}
