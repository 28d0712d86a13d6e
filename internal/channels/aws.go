package channels

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"leadflow-workers/internal/models"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type EmailSender struct {
	client    SESService
	fromEmail string
}

func NewEmailSender(client SESService, fromEmail string) *EmailSender {
	return &EmailSender{client: client, fromEmail: fromEmail}
}

func (s *EmailSender) Channel() models.Channel { return models.ChannelEmail }

func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("email: empty recipient address")
	}
	body := msg.Body
	if msg.MediaURL != "" {
		body += "\n\n" + msg.MediaURL
	}
	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(s.fromEmail),
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}

type SMSSender struct {
	client   SNSService
	senderID string
}

func NewSMSSender(client SNSService, senderID string) *SMSSender {
	return &SMSSender{client: client, senderID: senderID}
}

func (s *SMSSender) Channel() models.Channel { return models.ChannelSMS }

func (s *SMSSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("sms: empty recipient address")
	}
	input := &sns.PublishInput{
		PhoneNumber: aws.String(msg.To),
		Message:     aws.String(msg.Body),
	}
	if s.senderID != "" {
		input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {DataType: aws.String("String"), StringValue: aws.String(s.senderID)},
		}
	}
	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
