package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sender delivers a rendered message
type Sender interface {
	Send(ctx context.Context, from Recipient, msg *Message) error
	Name() string
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
}

// SMTPSender delivers through an SMTP relay
type SMTPSender struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewSMTPSender creates an SMTP sender
func NewSMTPSender(config SMTPConfig, logger zerolog.Logger) *SMTPSender {
	return &SMTPSender{config: config, logger: logger}
}

// Name implements Sender
func (s *SMTPSender) Name() string { return "smtp" }

// Send implements Sender
func (s *SMTPSender) Send(_ context.Context, from Recipient, msg *Message) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)
	raw, err := buildMIME(from, msg)
	if err != nil {
		return err
	}

	recipients := make([]string, 0, len(msg.To))
	for _, r := range msg.To {
		recipients = append(recipients, r.Email)
	}

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, from.Email, recipients, raw); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(from.Email); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range recipients {
		if err = client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(raw); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	return w.Close()
}

// buildMIME writes a multipart/alternative message with text and html parts
func buildMIME(from Recipient, msg *Message) ([]byte, error) {
	var body strings.Builder
	alt := multipart.NewWriter(&body)

	to := make([]string, 0, len(msg.To))
	for _, r := range msg.To {
		to = append(to, formatAddress(r))
	}

	fmt.Fprintf(&body, "From: %s\r\n", formatAddress(from))
	fmt.Fprintf(&body, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&body, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprint(&body, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&body, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", alt.Boundary())

	parts := []struct{ ct, content string }{
		{"text/plain; charset=UTF-8", msg.Text},
		{"text/html; charset=UTF-8", msg.HTML},
	}
	for _, p := range parts {
		if p.content == "" {
			continue
		}
		w, err := alt.CreatePart(textproto.MIMEHeader{"Content-Type": {p.ct}})
		if err != nil {
			return nil, fmt.Errorf("creating %s part: %w", p.ct, err)
		}
		if _, err := fmt.Fprintf(w, "%s\r\n", p.content); err != nil {
			return nil, err
		}
	}
	if err := alt.Close(); err != nil {
		return nil, err
	}
	return []byte(body.String()), nil
}

func formatAddress(r Recipient) string {
	if r.Name == "" {
		return r.Email
	}
	return fmt.Sprintf("%s <%s>", r.Name, r.Email)
}

// SendGridSender delivers through the SendGrid v3 API
type SendGridSender struct {
	apiKey string
	host   string
}

// NewSendGridSender creates a SendGrid sender
func NewSendGridSender(apiKey string) *SendGridSender {
	return &SendGridSender{apiKey: apiKey, host: "https://api.sendgrid.com"}
}

// Name implements Sender
func (s *SendGridSender) Name() string { return "sendgrid" }

// Send implements Sender
func (s *SendGridSender) Send(ctx context.Context, from Recipient, msg *Message) error {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Email))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(from.Name, from.Email))
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", msg.Text),
		sgmail.NewContent("text/html", msg.HTML),
	)

	req := sendgrid.GetRequest(s.apiKey, "/v3/mail/send", s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected message: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// ConsoleSender logs messages instead of delivering them and keeps the last ones for inspection
type ConsoleSender struct {
	logger zerolog.Logger
	mu     sync.Mutex
	sent   []Message
}

// NewConsoleSender creates a console sender
func NewConsoleSender(logger zerolog.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger}
}

// Name implements Sender
func (s *ConsoleSender) Name() string { return "console" }

// Send implements Sender
func (s *ConsoleSender) Send(_ context.Context, from Recipient, msg *Message) error {
	to := make([]string, 0, len(msg.To))
	for _, r := range msg.To {
		to = append(to, r.Email)
	}
	s.logger.Info().
		Str("from", from.Email).
		Strs("to", to).
		Str("subject", msg.Subject).
		Str("text", msg.Text).
		Msg("Email not delivered (console mail provider)")

	s.mu.Lock()
	s.sent = append(s.sent, *msg)
	if len(s.sent) > 100 {
		s.sent = s.sent[len(s.sent)-100:]
	}
	s.mu.Unlock()
	return nil
}

// Sent returns a copy of the recorded messages
func (s *ConsoleSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
