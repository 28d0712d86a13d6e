// Package crmsync pushes a scored lead to the configured CRM.
package crmsync

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"leadflow-workers/internal/common/crm"
	"leadflow-workers/internal/common/errors"
	"leadflow-workers/internal/common/logger"
	"leadflow-workers/internal/common/metrics"
	"leadflow-workers/internal/models"
)

// Syncer runs the contact, deal, tags and note steps against one provider.
// Provider failures are recorded in the result and never returned.
type Syncer struct {
	providers map[models.CRMProvider]crm.Client
	timeout   time.Duration
	log       logger.Logger
}

func NewSyncer(providers map[models.CRMProvider]crm.Client, timeout time.Duration, log logger.Logger) *Syncer {
	return &Syncer{
		providers: providers,
		timeout:   timeout,
		log:       logger.Component(log, "crm-sync"),
	}
}

func (s *Syncer) Sync(ctx context.Context, sc models.CRMSyncContext) *models.CRMSyncResult {
	result := &models.CRMSyncResult{Actions: []models.CRMAction{}}
	log := s.log.WithFields(map[string]interface{}{
		"session_id": sc.SessionID,
		"industry":   sc.Industry,
		"provider":   sc.Provider,
	})

	mapping, ok := lookupMapping(sc.Industry, sc.Provider)
	if !ok {
		err := errors.NewCRMMappingNotFoundError(string(sc.Industry), string(sc.Provider))
		log.Warn("No CRM mapping", map[string]interface{}{"error": err.Details})
		result.Error = err.Details
		return result
	}
	client, ok := s.providers[sc.Provider]
	if !ok {
		result.Error = fmt.Sprintf("no client configured for provider %s", sc.Provider)
		log.Warn("No CRM client", nil)
		return result
	}

	var failures []string
	record := func(action models.CRMActionType, description string, err error) {
		success := err == nil
		if !success {
			failures = append(failures, fmt.Sprintf("%s: %v", action, err))
			log.WithError(err).Warn("CRM action failed", map[string]interface{}{"action": action})
		}
		result.Actions = append(result.Actions, models.CRMAction{Type: action, Description: description, Success: success})
		metrics.RecordCRMAction(string(sc.Provider), string(action), success)
	}

	contactID, err := s.upsertContact(ctx, client, mapping, sc)
	if err != nil {
		err = errors.NewCRMRequestFailedError(string(sc.Provider), "create_contact", err)
	} else {
		result.ContactID = contactID
	}
	record(models.CRMActionCreateContact, contactDescription(sc.UserInfo), err)

	if sc.Score.Level == models.LevelWarm || sc.Score.Level == models.LevelHot {
		deal := dealFor(sc)
		err := errNoContact
		if contactID != "" {
			err = s.call(ctx, func(ctx context.Context) error {
				_, err := client.CreateDeal(ctx, contactID, deal)
				return err
			})
		}
		record(models.CRMActionCreateDeal, fmt.Sprintf("Deal %q în etapa %s", deal.Title, deal.Stage), wrapRequest(sc.Provider, "create_deal", err))
	}

	tags := Tags(sc)
	err = errNoContact
	if contactID != "" {
		err = s.call(ctx, func(ctx context.Context) error { return client.AddTags(ctx, contactID, tags) })
	}
	record(models.CRMActionAddTags, "Tag-uri: "+strings.Join(tags, ", "), wrapRequest(sc.Provider, "add_tags", err))

	err = errNoContact
	if contactID != "" {
		note := Note(sc)
		err = s.call(ctx, func(ctx context.Context) error { return client.AddNote(ctx, contactID, note) })
	}
	record(models.CRMActionAddNote, "Notă cu rezumatul calificării", wrapRequest(sc.Provider, "add_note", err))

	result.Success = len(failures) == 0
	if !result.Success {
		result.Error = strings.Join(failures, "; ")
	}
	log.Info("CRM sync finished", map[string]interface{}{
		"success":    result.Success,
		"contact_id": result.ContactID,
		"actions":    len(result.Actions),
	})
	return result
}

var errNoContact = fmt.Errorf("skipped: no contact id")

func wrapRequest(provider models.CRMProvider, op string, err error) error {
	if err == nil || err == errNoContact {
		return err
	}
	return errors.NewCRMRequestFailedError(string(provider), op, err)
}

func (s *Syncer) upsertContact(ctx context.Context, client crm.Client, m fieldMapping, sc models.CRMSyncContext) (string, error) {
	var id string
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		id, err = client.UpsertContact(ctx, contactProperties(m, sc))
		return err
	})
	return id, err
}

// call bounds a provider request with the per-call timeout.
func (s *Syncer) call(ctx context.Context, fn func(context.Context) error) error {
	if s.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}

func dealFor(sc models.CRMSyncContext) crm.Deal {
	name := sc.UserInfo.Name
	if name == "" {
		name = sc.SessionID
	}
	deal := crm.Deal{Title: fmt.Sprintf("%s - %s", sc.Industry, name)}
	if sc.Score.Percentage > 70 {
		deal.Stage, deal.StageID = "qualified", 1
	} else {
		deal.Stage, deal.StageID = "lead", 2
	}
	return deal
}

// Tags derives the tag set: industry, level tags, then the segment if present.
func Tags(sc models.CRMSyncContext) []string {
	tags := []string{string(sc.Industry)}
	switch sc.Score.Level {
	case models.LevelHot:
		tags = append(tags, "hot-lead", "urgent")
	case models.LevelWarm:
		tags = append(tags, "warm-lead")
	default:
		tags = append(tags, "cold-lead")
	}
	if sc.Segment != "" {
		tags = append(tags, sc.Segment)
	}
	return tags
}

// Note summarizes the qualification. Responses are listed sorted by key.
func Note(sc models.CRMSyncContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scor: %d%% (%s)\n", sc.Score.Percentage, sc.Score.Level)
	fmt.Fprintf(&b, "Industrie: %s\n", sc.Industry)
	segment := sc.Segment
	if segment == "" {
		segment = "-"
	}
	fmt.Fprintf(&b, "Segment: %s\n", segment)
	fmt.Fprintf(&b, "Ultima activitate: %s\n", sc.LastActivity.UTC().Format(time.RFC3339))

	keys := make([]string, 0, len(sc.Responses))
	for k := range sc.Responses {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteString("Răspunsuri:")
	for _, k := range keys {
		fmt.Fprintf(&b, "\n- %s: %s", k, sc.Responses[k])
	}
	return b.String()
}

func contactDescription(u models.UserInfo) string {
	who := u.Email
	if who == "" {
		who = u.Phone
	}
	if who == "" {
		who = u.Name
	}
	if who == "" {
		return "Creare/actualizare contact"
	}
	return "Creare/actualizare contact " + who
}
