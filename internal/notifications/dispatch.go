package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadflow-workers/internal/channels"
	"leadflow-workers/internal/common/errors"
	"leadflow-workers/internal/common/logger"
	"leadflow-workers/internal/common/metrics"
	"leadflow-workers/internal/models"
)

// AlertDispatcher delivers lead_alert notifications to the sales inbox as
// soon as they are generated. The rest of a batch is returned to the caller
// for scheduled delivery.
type AlertDispatcher struct {
	senders *channels.Registry
	to      string
	timeout time.Duration
	log     logger.Logger
}

func NewAlertDispatcher(senders *channels.Registry, to string, timeout time.Duration, log logger.Logger) *AlertDispatcher {
	return &AlertDispatcher{
		senders: senders,
		to:      to,
		timeout: timeout,
		log:     logger.Component(log, "alert-dispatcher"),
	}
}

// Dispatch sends every lead alert in list and returns how many were delivered.
func (d *AlertDispatcher) Dispatch(ctx context.Context, list []models.Notification) (int, error) {
	if d.to == "" {
		return 0, nil
	}
	sender, err := d.senders.Get(models.ChannelEmail)
	if err != nil {
		return 0, err
	}

	sent := 0
	var failures []string
	for _, n := range list {
		if n.Type != models.NotificationLeadAlert {
			continue
		}
		err := d.send(ctx, sender, n)
		metrics.RecordLeadAlert(string(n.Context.Industry), err)
		if err != nil {
			failures = append(failures, err.Error())
			continue
		}
		sent++
	}
	if len(failures) > 0 {
		return sent, fmt.Errorf("lead alerts: %s", strings.Join(failures, "; "))
	}
	return sent, nil
}

func (d *AlertDispatcher) send(ctx context.Context, sender channels.Sender, n models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	msg := channels.Message{
		To:      d.to,
		Subject: fmt.Sprintf("Lead %s %s (%d%%)", n.Context.Score.Level, n.Context.Industry, n.Context.Score.Percentage),
		Body:    n.Message,
	}
	if err := sender.Send(ctx, msg); err != nil {
		return errors.NewChannelSendFailedError(string(models.ChannelEmail), n.Context.SessionID, err)
	}
	d.log.Info("Lead alert sent", map[string]interface{}{
		"session_id":      n.Context.SessionID,
		"notification_id": n.ID,
	})
	return nil
}
