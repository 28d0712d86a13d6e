package broadcast

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"leadflow-workers/internal/common/errors"
	"leadflow-workers/internal/models"
)

// CampaignStore persists campaign metadata and status transitions.
type CampaignStore interface {
	// Create fails with CAMPAIGN_EXISTS when the id is already stored.
	Create(ctx context.Context, c *models.Campaign) error
	Get(ctx context.Context, id string) (*models.Campaign, error)
	UpdateStatus(ctx context.Context, id string, status models.CampaignStatus, sentAt *time.Time) error
	// Claim atomically moves a draft to sending. It fails with CAMPAIGN_NOT_DRAFT
	// when the campaign is in any other status.
	Claim(ctx context.Context, id string) error
	// ListDue returns draft campaigns scheduled at or before now.
	ListDue(ctx context.Context, now time.Time) ([]*models.Campaign, error)
}

// AudienceSource returns the candidate pool filters are applied to.
type AudienceSource interface {
	Candidates(ctx context.Context, industry models.Industry) ([]models.Recipient, error)
}

// ==========================
// Postgres
// ==========================

type PostgresCampaignStore struct {
	db *sql.DB
}

func NewPostgresCampaignStore(db *sql.DB) *PostgresCampaignStore {
	return &PostgresCampaignStore{db: db}
}

func (s *PostgresCampaignStore) Create(ctx context.Context, c *models.Campaign) error {
	audience, err := json.Marshal(c.Audience)
	if err != nil {
		return errors.NewCampaignStoreFailedError("create", err)
	}
	content, err := json.Marshal(c.Content)
	if err != nil {
		return errors.NewCampaignStoreFailedError("create", err)
	}
	chans, err := json.Marshal(c.Channels)
	if err != nil {
		return errors.NewCampaignStoreFailedError("create", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO broadcast_campaigns (
			id, name, industry, type, audience, content, channels,
			scheduled_for, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		c.ID, c.Name, string(c.Industry), string(c.Type),
		audience, content, chans,
		nullTime(c.ScheduledFor), string(c.Status), c.CreatedAt,
	)
	if err != nil {
		return errors.NewCampaignStoreFailedError("create", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewCampaignExistsError(c.ID)
	}
	return nil
}

const selectCampaign = `
	SELECT id, name, industry, type, audience, content, channels,
	       scheduled_for, status, created_at, sent_at
	FROM broadcast_campaigns`

func (s *PostgresCampaignStore) Get(ctx context.Context, id string) (*models.Campaign, error) {
	row := s.db.QueryRowContext(ctx, selectCampaign+` WHERE id = $1`, id)
	c, err := scanCampaign(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewCampaignNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewCampaignStoreFailedError("get", err)
	}
	return c, nil
}

func (s *PostgresCampaignStore) UpdateStatus(ctx context.Context, id string, status models.CampaignStatus, sentAt *time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE broadcast_campaigns SET status = $2, sent_at = $3 WHERE id = $1`,
		id, string(status), nullTime(sentAt),
	)
	if err != nil {
		return errors.NewCampaignStoreFailedError("update_status", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewCampaignNotFoundError(id)
	}
	return nil
}

func (s *PostgresCampaignStore) Claim(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE broadcast_campaigns SET status = $2 WHERE id = $1 AND status = $3`,
		id, string(models.CampaignSending), string(models.CampaignDraft),
	)
	if err != nil {
		return errors.NewCampaignStoreFailedError("claim", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewCampaignStoreFailedError("claim", err)
	}
	if n == 1 {
		return nil
	}

	var status string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM broadcast_campaigns WHERE id = $1`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return errors.NewCampaignNotFoundError(id)
	}
	if err != nil {
		return errors.NewCampaignStoreFailedError("claim", err)
	}
	return errors.NewCampaignNotDraftError(id, status)
}

func (s *PostgresCampaignStore) ListDue(ctx context.Context, now time.Time) ([]*models.Campaign, error) {
	rows, err := s.db.QueryContext(ctx, selectCampaign+`
		WHERE status = $1 AND scheduled_for IS NOT NULL AND scheduled_for <= $2
		ORDER BY scheduled_for`, string(models.CampaignDraft), now)
	if err != nil {
		return nil, errors.NewCampaignStoreFailedError("list_due", err)
	}
	defer rows.Close()

	var out []*models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, errors.NewCampaignStoreFailedError("list_due", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewCampaignStoreFailedError("list_due", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCampaign(row scanner) (*models.Campaign, error) {
	var (
		c                        models.Campaign
		industry, kind, status   string
		audience, content, chans []byte
		scheduledFor, sentAt     sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.Name, &industry, &kind, &audience, &content, &chans,
		&scheduledFor, &status, &c.CreatedAt, &sentAt); err != nil {
		return nil, err
	}
	c.Industry = models.Industry(industry)
	c.Type = models.CampaignType(kind)
	c.Status = models.CampaignStatus(status)
	if err := json.Unmarshal(audience, &c.Audience); err != nil {
		return nil, fmt.Errorf("decode audience: %w", err)
	}
	if err := json.Unmarshal(content, &c.Content); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if err := json.Unmarshal(chans, &c.Channels); err != nil {
		return nil, fmt.Errorf("decode channels: %w", err)
	}
	if scheduledFor.Valid {
		t := scheduledFor.Time
		c.ScheduledFor = &t
	}
	if sentAt.Valid {
		t := sentAt.Time
		c.SentAt = &t
	}
	return &c, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// PostgresAudienceSource reads the lead pool maintained by the chat product.
type PostgresAudienceSource struct {
	db *sql.DB
}

func NewPostgresAudienceSource(db *sql.DB) *PostgresAudienceSource {
	return &PostgresAudienceSource{db: db}
}

func (s *PostgresAudienceSource) Candidates(ctx context.Context, industry models.Industry) ([]models.Recipient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(email, ''), COALESCE(phone, ''), industry,
		       COALESCE(segment, ''), score, last_activity
		FROM leads
		WHERE $1 = '' OR industry = $1`, string(industry))
	if err != nil {
		return nil, errors.NewAudienceQueryFailedError(err)
	}
	defer rows.Close()

	var out []models.Recipient
	for rows.Next() {
		var (
			r   models.Recipient
			ind string
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Phone, &ind, &r.Segment, &r.Score, &r.LastActivity); err != nil {
			return nil, errors.NewAudienceQueryFailedError(err)
		}
		r.Industry = models.Industry(ind)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewAudienceQueryFailedError(err)
	}
	return out, nil
}

// ==========================
// In-memory
// ==========================

type MemoryCampaignStore struct {
	mu        sync.RWMutex
	campaigns map[string]models.Campaign
}

func NewMemoryCampaignStore() *MemoryCampaignStore {
	return &MemoryCampaignStore{campaigns: make(map[string]models.Campaign)}
}

func (s *MemoryCampaignStore) Create(_ context.Context, c *models.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[c.ID]; ok {
		return errors.NewCampaignExistsError(c.ID)
	}
	s.campaigns[c.ID] = *c
	return nil
}

func (s *MemoryCampaignStore) Get(_ context.Context, id string) (*models.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, errors.NewCampaignNotFoundError(id)
	}
	return &c, nil
}

func (s *MemoryCampaignStore) UpdateStatus(_ context.Context, id string, status models.CampaignStatus, sentAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return errors.NewCampaignNotFoundError(id)
	}
	c.Status = status
	c.SentAt = sentAt
	s.campaigns[id] = c
	return nil
}

func (s *MemoryCampaignStore) Claim(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return errors.NewCampaignNotFoundError(id)
	}
	if c.Status != models.CampaignDraft {
		return errors.NewCampaignNotDraftError(id, string(c.Status))
	}
	c.Status = models.CampaignSending
	s.campaigns[id] = c
	return nil
}

func (s *MemoryCampaignStore) ListDue(_ context.Context, now time.Time) ([]*models.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Campaign
	for _, c := range s.campaigns {
		if c.Status == models.CampaignDraft && c.ScheduledFor != nil && !c.ScheduledFor.After(now) {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledFor.Before(*out[j].ScheduledFor) })
	return out, nil
}

// MemoryAudience is a fixed candidate pool.
type MemoryAudience struct {
	Recipients []models.Recipient
}

func (a *MemoryAudience) Candidates(_ context.Context, industry models.Industry) ([]models.Recipient, error) {
	var out []models.Recipient
	for _, r := range a.Recipients {
		if industry == "" || r.Industry == industry {
			out = append(out, r)
		}
	}
	return out, nil
}
