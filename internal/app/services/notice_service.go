package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/email"
	"github.com/yigit/schooldesk/internal/pkg/sms"
	"github.com/yigit/schooldesk/internal/pkg/websocket"
)

// EventNoticePublished is the websocket event type sent for new notices
const EventNoticePublished = "notice.published"

// smsBodyLimit keeps notice texts within a few SMS segments
const smsBodyLimit = 300

// NoticeService publishes notices and fans them out to users
type NoticeService interface {
	Publish(ctx context.Context, actor Actor, req *dto.CreateNoticeRequest) (*models.Notice, error)
	List(ctx context.Context, actor Actor, page dto.PageQuery) (*dto.PaginatedResponse, error)
	Delete(ctx context.Context, actor Actor, id int64) error
}

type noticeServiceImpl struct {
	notices NoticeStore
	users   UserStore
	hub     Broadcaster
	mailer  email.EmailService
	sms     sms.Sender
	audit   AuditService
	tasks   *TaskRunner
	logger  zerolog.Logger
}

// NewNoticeService creates a new NoticeService
func NewNoticeService(
	notices NoticeStore,
	users UserStore,
	hub Broadcaster,
	mailer email.EmailService,
	smsSender sms.Sender,
	audit AuditService,
	tasks *TaskRunner,
	logger zerolog.Logger,
) NoticeService {
	return &noticeServiceImpl{
		notices: notices,
		users:   users,
		hub:     hub,
		mailer:  mailer,
		sms:     smsSender,
		audit:   audit,
		tasks:   tasks,
		logger:  logger,
	}
}

func (s *noticeServiceImpl) Publish(ctx context.Context, actor Actor, req *dto.CreateNoticeRequest) (*models.Notice, error) {
	notice := &models.Notice{
		Title:         req.Title,
		Body:          req.Body,
		Audience:      models.Audience(req.Audience),
		PublishedByID: int64Ptr(actor.UserID),
	}
	if err := s.notices.Create(ctx, notice); err != nil {
		return nil, err
	}

	roles := notice.Audience.Roles()
	roleNames := make([]string, 0, len(roles))
	for _, r := range roles {
		roleNames = append(roleNames, string(r))
	}
	if err := s.hub.Broadcast(websocket.Event{Type: EventNoticePublished, Payload: notice}, roleNames...); err != nil {
		s.logger.Warn().Err(err).Int64("noticeID", notice.ID).Msg("Failed to broadcast notice")
	}

	if req.SendEmail {
		s.tasks.Go(ctx, "email:notice", func(ctx context.Context) error {
			return s.emailAudience(ctx, notice, roles)
		})
	}
	if req.SendSMS && (notice.Audience == models.AudienceAll || notice.Audience == models.AudienceParents) {
		s.tasks.Go(ctx, "sms:notice", func(ctx context.Context) error {
			return s.textParents(ctx, notice)
		})
	}

	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditCreate, EntityType: "notice", EntityID: notice.ID,
		Metadata: map[string]interface{}{"audience": string(notice.Audience), "email": req.SendEmail, "sms": req.SendSMS}})
	return notice, nil
}

func (s *noticeServiceImpl) emailAudience(ctx context.Context, n *models.Notice, roles []models.RoleType) error {
	users, err := s.users.ListActiveByRoles(ctx, roles)
	if err != nil {
		return err
	}
	to := make([]email.Recipient, 0, len(users))
	for _, u := range users {
		to = append(to, email.Recipient{Name: u.FullName(), Email: u.Email})
	}
	if len(to) == 0 {
		return nil
	}
	return s.mailer.SendNotice(ctx, to, n.Title, n.Body)
}

func (s *noticeServiceImpl) textParents(ctx context.Context, n *models.Notice) error {
	parents, err := s.users.ListActiveByRoles(ctx, []models.RoleType{models.RoleParent})
	if err != nil {
		return err
	}

	body := n.Title + ": " + n.Body
	if r := []rune(body); len(r) > smsBodyLimit {
		body = string(r[:smsBodyLimit-3]) + "..."
	}

	var sent, failed int
	for _, u := range parents {
		if u.Phone == nil || *u.Phone == "" {
			continue
		}
		if err := s.sms.Send(ctx, *u.Phone, body); err != nil {
			failed++
			s.logger.Warn().Err(err).Int64("userID", u.ID).Msg("Failed to send notice SMS")
			continue
		}
		sent++
	}
	s.logger.Info().Int64("noticeID", n.ID).Int("sent", sent).Int("failed", failed).Msg("Notice SMS dispatched")
	if failed > 0 && sent == 0 {
		return fmt.Errorf("all %d notice SMS failed", failed)
	}
	return nil
}

func (s *noticeServiceImpl) List(ctx context.Context, actor Actor, q dto.PageQuery) (*dto.PaginatedResponse, error) {
	page := toPage(q)
	list, total, err := s.notices.List(ctx, models.AudiencesFor(actor.Role), page)
	if err != nil {
		return nil, err
	}
	return paginated(list, total, page), nil
}

func (s *noticeServiceImpl) Delete(ctx context.Context, actor Actor, id int64) error {
	if err := s.notices.SoftDelete(ctx, id, actor.UserID); err != nil {
		return err
	}
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditDelete, EntityType: "notice", EntityID: id})
	return nil
}
