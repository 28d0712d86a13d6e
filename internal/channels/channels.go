// Package channels delivers rendered messages over email, SMS and WhatsApp.
package channels

import (
	"context"
	"fmt"

	"leadflow-workers/internal/common/logger"
	"leadflow-workers/internal/models"
)

// Message is one delivery to one recipient address.
type Message struct {
	To       string
	Subject  string
	Body     string
	MediaURL string
}

// Sender delivers messages over a single channel.
type Sender interface {
	Channel() models.Channel
	Send(ctx context.Context, msg Message) error
}

// Registry resolves the sender for a channel.
type Registry struct {
	senders map[models.Channel]Sender
}

func NewRegistry(senders ...Sender) *Registry {
	r := &Registry{senders: make(map[models.Channel]Sender, len(senders))}
	for _, s := range senders {
		r.senders[s.Channel()] = s
	}
	return r
}

// Get returns the sender registered for ch.
func (r *Registry) Get(ch models.Channel) (Sender, error) {
	s, ok := r.senders[ch]
	if !ok {
		return nil, fmt.Errorf("no sender registered for channel %s", ch)
	}
	return s, nil
}

// Address picks the recipient address a channel delivers to.
func Address(ch models.Channel, email, phone string) string {
	if ch == models.ChannelEmail {
		return email
	}
	return phone
}

// LogSender records deliveries in the log instead of calling a provider.
// It stands in for channels whose credentials are not configured.
type LogSender struct {
	channel models.Channel
	logger  logger.Logger
}

func NewLogSender(ch models.Channel, log logger.Logger) *LogSender {
	return &LogSender{
		channel: ch,
		logger:  logger.Component(log, "channel-"+string(ch)),
	}
}

func (s *LogSender) Channel() models.Channel { return s.channel }

func (s *LogSender) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("%s: empty recipient address", s.channel)
	}
	s.logger.Info("delivery skipped, channel not configured", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}
