package channels

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"leadflow-workers/internal/models"
)

// MessageCreator is the subset of the Twilio REST API used for WhatsApp.
type MessageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type WhatsAppSender struct {
	api  MessageCreator
	from string
}

// NewTwilioWhatsAppSender builds a sender backed by the Twilio REST client.
func NewTwilioWhatsAppSender(accountSID, authToken, from string) (*WhatsAppSender, error) {
	if accountSID == "" || authToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if from == "" {
		return nil, fmt.Errorf("from number must be provided")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return NewWhatsAppSender(client.Api, from), nil
}

func NewWhatsAppSender(api MessageCreator, from string) *WhatsAppSender {
	return &WhatsAppSender{api: api, from: whatsappAddress(from)}
}

func (s *WhatsAppSender) Channel() models.Channel { return models.ChannelWhatsApp }

// Send returns when the message is created or ctx is done, whichever is first.
// The Twilio client has no context-aware call, so a call abandoned on ctx
// completes in the background and its result is dropped.
func (s *WhatsAppSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("whatsapp: empty recipient address")
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(whatsappAddress(msg.To))
	params.SetFrom(s.from)
	params.SetBody(msg.Body)
	if msg.MediaURL != "" {
		params.SetMediaUrl([]string{msg.MediaURL})
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.api.CreateMessage(params)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("twilio create message: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("twilio create message: %w", ctx.Err())
	}
}

func whatsappAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
