package email

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*EmailServiceImpl, *ConsoleSender) {
	sender := NewConsoleSender(zerolog.Nop())
	svc := NewEmailService(Config{
		AppName:     "SchoolDesk",
		FromName:    "SchoolDesk",
		FromEmail:   "no-reply@school.test",
		FrontendURL: "https://app.school.test",
	}, sender, zerolog.Nop())
	return svc, sender
}

func TestSendWelcomeCredentials_RendersBothParts(t *testing.T) {
	svc, sender := newTestService()

	err := svc.SendWelcomeCredentials(context.Background(), Recipient{Name: "Asha Rai", Email: "asha@school.test"}, "TEACHER", "Tmp-Pass-99")
	require.NoError(t, err)

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Text, "Temporary password: Tmp-Pass-99")
	assert.Contains(t, sent[0].Text, "https://app.school.test/login")
	assert.Contains(t, sent[0].HTML, "<strong>TEACHER</strong>")
	assert.Contains(t, sent[0].HTML, "SchoolDesk")
}

func TestSendPasswordReset_EscapesHTML(t *testing.T) {
	svc, sender := newTestService()

	err := svc.SendPasswordReset(context.Background(), Recipient{Name: "<b>x</b>", Email: "x@school.test"}, "tok123", "1 hour")
	require.NoError(t, err)

	msg := sender.Sent()[0]
	assert.Contains(t, msg.Text, "reset-password?token=tok123")
	assert.NotContains(t, msg.HTML, "<b>x</b>")
}

func TestSendNotice_OneMessagePerRecipient(t *testing.T) {
	svc, sender := newTestService()

	err := svc.SendNotice(context.Background(), []Recipient{{Email: "a@x.test"}, {Email: "b@x.test"}}, "Holiday", "School closed Friday")
	require.NoError(t, err)

	sent := sender.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "b@x.test", sent[1].To[0].Email)
	assert.Contains(t, sent[0].Text, "School closed Friday")
}

func TestNewSender_FallsBackToConsole(t *testing.T) {
	assert.Equal(t, "console", NewSender(ProviderConfig{Provider: "smtp"}, zerolog.Nop()).Name())
	assert.Equal(t, "console", NewSender(ProviderConfig{Provider: "sendgrid"}, zerolog.Nop()).Name())
	assert.Equal(t, "sendgrid", NewSender(ProviderConfig{Provider: "sendgrid", SendGridAPIKey: "k"}, zerolog.Nop()).Name())
	assert.Equal(t, "smtp", NewSender(ProviderConfig{Provider: "smtp", SMTP: SMTPConfig{Host: "h", Username: "u", Password: "p"}}, zerolog.Nop()).Name())
}

func TestSendGridSender_PostsV3Payload(t *testing.T) {
	var payload map[string]interface{}
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender := NewSendGridSender("sg-key")
	sender.host = server.URL

	msg := &Message{To: []Recipient{{Name: "A", Email: "a@x.test"}}, Subject: "Hi", Text: "plain", HTML: "<p>html</p>"}
	require.NoError(t, sender.Send(context.Background(), Recipient{Email: "from@x.test"}, msg))

	assert.Equal(t, "Bearer sg-key", auth)
	from := payload["from"].(map[string]interface{})
	assert.Equal(t, "from@x.test", from["email"])
}

func TestSendGridSender_RejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer server.Close()

	sender := NewSendGridSender("bad")
	sender.host = server.URL

	err := sender.Send(context.Background(), Recipient{Email: "f@x.test"}, &Message{To: []Recipient{{Email: "a@x.test"}}, Subject: "s", Text: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestBuildMIME(t *testing.T) {
	raw, err := buildMIME(Recipient{Name: "School", Email: "s@x.test"}, &Message{
		To:      []Recipient{{Email: "a@x.test"}},
		Subject: "Subject line",
		Text:    "text body",
		HTML:    "<p>html body</p>",
	})
	require.NoError(t, err)

	s := string(raw)
	assert.True(t, strings.HasPrefix(s, "From: School <s@x.test>\r\n"))
	assert.Contains(t, s, "Content-Type: multipart/alternative; boundary=")
	assert.Contains(t, s, "text body")
	assert.Contains(t, s, "<p>html body</p>")
}
