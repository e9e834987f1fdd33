package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/pkg/metrics"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendWelcomeCredentials(ctx context.Context, to Recipient, role, temporaryPassword string) error
	SendSalaryUpdated(ctx context.Context, to Recipient, data SalaryUpdatedData) error
	SendPasswordReset(ctx context.Context, to Recipient, token, validFor string) error
	SendNotice(ctx context.Context, to []Recipient, title, body string) error
}

// SalaryUpdatedData is the payload of the salary_updated template.
// Amounts are preformatted by the caller.
type SalaryUpdatedData struct {
	Name          string
	Previous      string
	New           string
	EffectiveFrom string
	Reason        string
}

// Config holds sender-independent mail settings
type Config struct {
	AppName     string
	FromName    string
	FromEmail   string
	FrontendURL string
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config Config
	sender Sender
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config Config, sender Sender, logger zerolog.Logger) *EmailServiceImpl {
	return &EmailServiceImpl{
		config: config,
		sender: sender,
		logger: logger,
	}
}

// ProviderConfig selects and configures the delivery backend
type ProviderConfig struct {
	Provider       string
	SMTP           SMTPConfig
	SendGridAPIKey string
}

// NewSender picks the delivery backend. Missing credentials fall back to the console sender.
func NewSender(cfg ProviderConfig, logger zerolog.Logger) Sender {
	switch cfg.Provider {
	case "smtp":
		if cfg.SMTP.Host != "" && cfg.SMTP.Username != "" && cfg.SMTP.Password != "" {
			return NewSMTPSender(cfg.SMTP, logger)
		}
		logger.Warn().Msg("SMTP credentials not configured - emails will only be logged")
	case "sendgrid":
		if cfg.SendGridAPIKey != "" {
			return NewSendGridSender(cfg.SendGridAPIKey)
		}
		logger.Warn().Msg("SendGrid API key not configured - emails will only be logged")
	}
	return NewConsoleSender(logger)
}

// SendWelcomeCredentials sends login details to an account created by an administrator
func (s *EmailServiceImpl) SendWelcomeCredentials(ctx context.Context, to Recipient, role, temporaryPassword string) error {
	return s.send(ctx, &Message{
		To:           []Recipient{to},
		Subject:      fmt.Sprintf("Your %s account", s.config.AppName),
		TemplateName: TemplateWelcomeCredentials,
		TemplateData: struct {
			Name, Email, Role, Password string
		}{to.Name, to.Email, role, temporaryPassword},
	})
}

// SendSalaryUpdated tells a staff member their salary changed
func (s *EmailServiceImpl) SendSalaryUpdated(ctx context.Context, to Recipient, data SalaryUpdatedData) error {
	return s.send(ctx, &Message{
		To:           []Recipient{to},
		Subject:      "Your salary has been updated",
		TemplateName: TemplateSalaryUpdated,
		TemplateData: data,
	})
}

// SendPasswordReset sends a one-time reset link
func (s *EmailServiceImpl) SendPasswordReset(ctx context.Context, to Recipient, token, validFor string) error {
	return s.send(ctx, &Message{
		To:           []Recipient{to},
		Subject:      "Reset your password",
		TemplateName: TemplatePasswordReset,
		TemplateData: struct {
			Name, Token, ValidFor string
		}{to.Name, token, validFor},
	})
}

// SendNotice sends a published notice, one message per recipient so addresses stay private
func (s *EmailServiceImpl) SendNotice(ctx context.Context, to []Recipient, title, body string) error {
	var failed int
	for _, r := range to {
		err := s.send(ctx, &Message{
			To:           []Recipient{r},
			Subject:      title,
			TemplateName: TemplateNotice,
			TemplateData: struct{ Title, Body string }{title, body},
		})
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("notice email failed for %d of %d recipients", failed, len(to))
	}
	return nil
}

func (s *EmailServiceImpl) send(ctx context.Context, msg *Message) error {
	if !msg.HasRecipients() {
		return nil
	}
	if err := msg.Render(s.config.AppName, s.config.FrontendURL); err != nil {
		return err
	}

	from := Recipient{Name: s.config.FromName, Email: s.config.FromEmail}
	err := s.sender.Send(ctx, from, msg)
	metrics.RecordNotification("email", err == nil)
	if err != nil {
		s.logger.Error().Err(err).Str("provider", s.sender.Name()).Str("template", msg.TemplateName).Msg("Failed to send email")
		return err
	}
	return nil
}
