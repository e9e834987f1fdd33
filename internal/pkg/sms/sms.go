// Package sms sends text messages to phone numbers.
package sms

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/yigit/schooldesk/internal/pkg/metrics"
)

// maxBodyLength keeps a message within ten concatenated SMS segments
const maxBodyLength = 1530

// Sender sends a single SMS
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// Config holds Twilio credentials
type Config struct {
	Enabled    bool
	AccountSID string
	AuthToken  string
	FromNumber string
}

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender sends SMS through the Twilio REST API
type TwilioSender struct {
	api    messageCreator
	from   string
	logger zerolog.Logger
}

// NewSender returns a Twilio sender, or a logging no-op sender when SMS is disabled or unconfigured
func NewSender(cfg Config, logger zerolog.Logger) Sender {
	if !cfg.Enabled || cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.FromNumber == "" {
		return &NoopSender{logger: logger}
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioSender{api: client.Api, from: cfg.FromNumber, logger: logger}
}

// Send implements Sender
func (s *TwilioSender) Send(_ context.Context, to, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("sms: empty recipient")
	}
	if len(body) > maxBodyLength {
		body = body[:maxBodyLength]
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	metrics.RecordNotification("sms", err == nil)
	if err != nil {
		return fmt.Errorf("sms: twilio create message: %w", err)
	}

	if resp != nil && resp.Sid != nil {
		s.logger.Debug().Str("sid", *resp.Sid).Str("to", to).Msg("SMS queued")
	}
	return nil
}

// NoopSender only logs
type NoopSender struct {
	logger zerolog.Logger
}

// Send implements Sender
func (s *NoopSender) Send(_ context.Context, to, body string) error {
	s.logger.Info().Str("to", to).Int("length", len(body)).Msg("SMS disabled - message not sent")
	return nil
}
