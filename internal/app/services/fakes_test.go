package services

import (
	"context"
	"sync"
	"time"

	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/email"
	"github.com/yigit/schooldesk/internal/pkg/websocket"
)

var fixedNow = time.Date(2025, 8, 15, 10, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func noAvatar(string) string { return "" }

var (
	adminActor   = Actor{UserID: 1, Role: models.RoleAdmin}
	teacherActor = Actor{UserID: 40, Role: models.RoleTeacher}
)

type fakeAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (f *fakeAudit) Record(_ context.Context, entry AuditEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
}

func (f *fakeAudit) List(context.Context, *dto.AuditLogFilterRequest) (*dto.PaginatedResponse, error) {
	return &dto.PaginatedResponse{}, nil
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeDashboard struct {
	mu          sync.Mutex
	invalidated int
}

func (f *fakeDashboard) Stats(context.Context) (*dto.DashboardStats, error) {
	return &dto.DashboardStats{}, nil
}

func (f *fakeDashboard) Invalidate(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
}

type sentNotice struct {
	To    []email.Recipient
	Title string
}

type fakeMailer struct {
	mu       sync.Mutex
	welcomes []email.Recipient
	salaries []email.SalaryUpdatedData
	resets   []string
	notices  []sentNotice
	err      error
}

func (f *fakeMailer) SendWelcomeCredentials(_ context.Context, to email.Recipient, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomes = append(f.welcomes, to)
	return f.err
}

func (f *fakeMailer) SendSalaryUpdated(_ context.Context, _ email.Recipient, data email.SalaryUpdatedData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.salaries = append(f.salaries, data)
	return f.err
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, to email.Recipient, token, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, to.Email+":"+token)
	return f.err
}

func (f *fakeMailer) SendNotice(_ context.Context, to []email.Recipient, title, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, sentNotice{To: to, Title: title})
	return f.err
}

type broadcastCall struct {
	Event websocket.Event
	Roles []string
}

type fakeBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
	err   error
}

func (f *fakeBroadcaster) Broadcast(event websocket.Event, roles ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, broadcastCall{Event: event, Roles: roles})
	return f.err
}

type sentSMS struct {
	To   string
	Body string
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []sentSMS
}

func (f *fakeSMS) Send(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentSMS{To: to, Body: body})
	return nil
}
