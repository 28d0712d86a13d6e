// cmd/worker-manager/wiring.go
package main

import (
	"context"
	"fmt"

	"leadflow-workers/internal/channels"
	"leadflow-workers/internal/common/aws"
	"leadflow-workers/internal/common/config"
	"leadflow-workers/internal/common/crm"
	"leadflow-workers/internal/common/logger"
	"leadflow-workers/internal/models"
)

// buildSenders registers one sender per channel. Channels without provider
// credentials fall back to LogSender so flows keep running in development.
func buildSenders(ctx context.Context, cfg config.IntegrationConfig, log logger.Logger) (*channels.Registry, error) {
	var senders []channels.Sender

	if cfg.AWS.SES.Enabled || cfg.AWS.SNS.Enabled {
		clients, err := aws.NewClients(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		if cfg.AWS.SES.Enabled {
			senders = append(senders, channels.NewEmailSender(clients.SES, cfg.AWS.SES.FromEmail))
		}
		if cfg.AWS.SNS.Enabled {
			senders = append(senders, channels.NewSMSSender(clients.SNS, cfg.AWS.SNS.DefaultSMSSenderID))
		}
	}
	if !cfg.AWS.SES.Enabled {
		senders = append(senders, channels.NewLogSender(models.ChannelEmail, log))
	}
	if !cfg.AWS.SNS.Enabled {
		senders = append(senders, channels.NewLogSender(models.ChannelSMS, log))
	}

	if cfg.Twilio.Enabled {
		wa, err := channels.NewTwilioWhatsAppSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber)
		if err != nil {
			return nil, fmt.Errorf("twilio: %w", err)
		}
		senders = append(senders, wa)
	} else {
		senders = append(senders, channels.NewLogSender(models.ChannelWhatsApp, log))
	}

	return channels.NewRegistry(senders...), nil
}

// buildCRMClients returns a client for every known provider; unconfigured
// ones only log what would have been sent.
func buildCRMClients(cfg config.IntegrationConfig, timeoutMs int, log logger.Logger) map[models.CRMProvider]crm.Client {
	timeout := config.GetDuration(timeoutMs)
	clients := map[models.CRMProvider]crm.Client{
		models.CRMAirtable:     crm.NewLogClient(string(models.CRMAirtable), log),
		models.CRMGoogleSheets: crm.NewLogClient(string(models.CRMGoogleSheets), log),
	}

	if cfg.HubSpotConfigured() {
		clients[models.CRMHubSpot] = crm.NewHubSpotClient(cfg.HubSpot.BaseURL, cfg.HubSpot.AccessToken, timeout)
	} else {
		clients[models.CRMHubSpot] = crm.NewLogClient(string(models.CRMHubSpot), log)
	}
	if cfg.PipedriveConfigured() {
		clients[models.CRMPipedrive] = crm.NewPipedriveClient(cfg.Pipedrive.BaseURL, cfg.Pipedrive.APIToken, timeout)
	} else {
		clients[models.CRMPipedrive] = crm.NewLogClient(string(models.CRMPipedrive), log)
	}
	return clients
}
