package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltmpl "html/template"
	"sync"
	texttmpl "text/template"
)

//go:embed templates/*
var templateFS embed.FS

// Template names
const (
	TemplateWelcomeCredentials = "welcome_credentials"
	TemplateSalaryUpdated      = "salary_updated"
	TemplatePasswordReset      = "password_reset"
	TemplateNotice             = "notice"
)

// Recipient is a single addressee
type Recipient struct {
	Name  string
	Email string
}

// Message is an outbound email. Text and HTML are filled by Render.
type Message struct {
	To           []Recipient
	Subject      string
	TemplateName string
	TemplateData interface{}
	Text         string
	HTML         string
}

// templateContext is what every template sees as its root
type templateContext struct {
	AppName     string
	FrontendURL string
	Data        interface{}
}

type templateSet struct {
	html *htmltmpl.Template
	text *texttmpl.Template
}

var (
	templatesOnce sync.Once
	templates     map[string]templateSet
	templatesErr  error
)

func loadTemplates() {
	templates = make(map[string]templateSet)
	for _, name := range []string{TemplateWelcomeCredentials, TemplateSalaryUpdated, TemplatePasswordReset, TemplateNotice} {
		h, err := htmltmpl.New(name).Option("missingkey=error").
			ParseFS(templateFS, "templates/_base.gohtml", "templates/"+name+".gohtml")
		if err != nil {
			templatesErr = fmt.Errorf("parse %s html template: %w", name, err)
			return
		}
		t, err := texttmpl.New(name).Option("missingkey=error").
			ParseFS(templateFS, "templates/_base.txt", "templates/"+name+".txt")
		if err != nil {
			templatesErr = fmt.Errorf("parse %s text template: %w", name, err)
			return
		}
		templates[name] = templateSet{html: h, text: t}
	}
}

// Render executes the message template into Text and HTML
func (m *Message) Render(appName, frontendURL string) error {
	if m.TemplateName == "" {
		return nil
	}

	templatesOnce.Do(loadTemplates)
	if templatesErr != nil {
		return templatesErr
	}

	set, ok := templates[m.TemplateName]
	if !ok {
		return fmt.Errorf("unknown email template %q", m.TemplateName)
	}

	ctx := templateContext{AppName: appName, FrontendURL: frontendURL, Data: m.TemplateData}

	var text bytes.Buffer
	if err := set.text.ExecuteTemplate(&text, "base", ctx); err != nil {
		return fmt.Errorf("render %s text: %w", m.TemplateName, err)
	}
	var html bytes.Buffer
	if err := set.html.ExecuteTemplate(&html, "base", ctx); err != nil {
		return fmt.Errorf("render %s html: %w", m.TemplateName, err)
	}

	m.Text = text.String()
	m.HTML = html.String()
	return nil
}

// HasRecipients reports whether the message has any addressee
func (m *Message) HasRecipients() bool { return len(m.To) > 0 }
