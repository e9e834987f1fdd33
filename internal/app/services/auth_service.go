package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/auth"
	"github.com/yigit/schooldesk/internal/pkg/email"
)

// PasswordResetTTL is how long a reset link stays valid
const PasswordResetTTL = time.Hour

// ClientInfo identifies the client that opens a session
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// AuthService handles authentication operations
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest, client ClientInfo) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, actor Actor) error
	LogoutAll(ctx context.Context, actor Actor) error
	Me(ctx context.Context, actor Actor) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, actor Actor, req *dto.ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type authServiceImpl struct {
	users        UserStore
	sessions     SessionStore
	resetTokens  PasswordResetStore
	sessionCache SessionCacheService
	jwtService   *auth.JWTService
	mailer       email.EmailService
	audit        AuditService
	tasks        *TaskRunner
	avatarURL    dto.AvatarURLFunc
	now          func() time.Time
	logger       zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users UserStore,
	sessions SessionStore,
	resetTokens PasswordResetStore,
	sessionCache SessionCacheService,
	jwtService *auth.JWTService,
	mailer email.EmailService,
	audit AuditService,
	tasks *TaskRunner,
	avatarURL dto.AvatarURLFunc,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		users:        users,
		sessions:     sessions,
		resetTokens:  resetTokens,
		sessionCache: sessionCache,
		jwtService:   jwtService,
		mailer:       mailer,
		audit:        audit,
		tasks:        tasks,
		avatarURL:    avatarURL,
		now:          time.Now,
		logger:       logger,
	}
}

// Login authenticates a user and opens a new session.
// Unknown emails, wrong passwords and disabled accounts all yield ErrInvalidCredentials.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest, client ClientInfo) (*dto.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive || user.IsDeleted() {
		s.logger.Info().Int64("userID", user.ID).Msg("Login attempt on disabled account")
		return nil, apperrors.ErrInvalidCredentials
	}

	session := &models.UserSession{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		UserAgent: stringPtrOrNil(client.UserAgent),
		IPAddress: stringPtrOrNil(client.IPAddress),
		ExpiresAt: s.jwtService.GetRefreshTokenExpiry(),
	}
	pair, err := s.jwtService.GenerateTokenPair(subjectFor(user, session.ID))
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}
	session.RefreshToken = pair.RefreshToken

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("session creation error: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login")
	}
	now := s.now()
	user.LastLoginAt = &now

	s.audit.Record(ctx, AuditEntry{
		Actor:      Actor{UserID: user.ID, Role: user.RoleType, IPAddress: client.IPAddress},
		Action:     models.AuditLogin,
		EntityType: "user",
		EntityID:   user.ID,
		Metadata:   map[string]interface{}{"sessionId": session.ID},
	})

	return &dto.AuthResponse{
		Token: tokenResponse(pair),
		User:  dto.NewUserResponse(user, s.avatarURL),
	}, nil
}

// Refresh rotates the refresh token of an active session and issues a new access token
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	session, err := s.sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if session.RevokedAt != nil {
		return nil, apperrors.ErrTokenRevoked
	}
	if !session.IsActiveAt(s.now()) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenRevoked
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	if !user.IsActive || user.IsDeleted() {
		_ = s.sessions.Revoke(ctx, session.ID)
		s.sessionCache.Evict(ctx, user.ID, session.ID)
		return nil, apperrors.ErrAccountDisabled
	}

	pair, err := s.jwtService.GenerateTokenPair(subjectFor(user, session.ID))
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}
	if err := s.sessions.Rotate(ctx, session.ID, refreshToken, pair.RefreshToken, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}
	s.sessionCache.Evict(ctx, user.ID, session.ID)

	resp := tokenResponse(pair)
	return &resp, nil
}

// Logout revokes the caller's current session
func (s *authServiceImpl) Logout(ctx context.Context, actor Actor) error {
	if err := s.sessions.Revoke(ctx, actor.SessionID); err != nil {
		return err
	}
	s.sessionCache.Evict(ctx, actor.UserID, actor.SessionID)
	return nil
}

// LogoutAll revokes every session of the caller
func (s *authServiceImpl) LogoutAll(ctx context.Context, actor Actor) error {
	if _, err := s.sessions.RevokeAllForUser(ctx, actor.UserID, ""); err != nil {
		return err
	}
	s.sessionCache.EvictUser(ctx, actor.UserID)
	return nil
}

// Me returns the caller's profile
func (s *authServiceImpl) Me(ctx context.Context, actor Actor) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user, s.avatarURL)
	return &resp, nil
}

// ChangePassword replaces the caller's password and revokes their other sessions
func (s *authServiceImpl) ChangePassword(ctx context.Context, actor Actor, req *dto.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return apperrors.ErrInvalidCredentials
	}
	if req.CurrentPassword == req.NewPassword {
		return apperrors.NewBadRequestError("new password must differ from the current password")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	if _, err := s.sessions.RevokeAllForUser(ctx, user.ID, actor.SessionID); err != nil {
		return err
	}
	s.sessionCache.EvictUser(ctx, user.ID)

	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     models.AuditUpdate,
		EntityType: "user",
		EntityID:   user.ID,
		Metadata:   map[string]interface{}{"field": "password"},
	})
	return nil
}

// ForgotPassword emails a one-time reset link when the address belongs to an active user.
// It never reveals whether the address exists.
func (s *authServiceImpl) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("error finding user: %w", err)
	}
	if !user.IsActive || user.IsDeleted() {
		return nil
	}

	token := auth.NewRefreshToken()
	if err := s.resetTokens.Create(ctx, user.ID, auth.HashToken(token), s.now().Add(PasswordResetTTL)); err != nil {
		return err
	}

	to := email.Recipient{Name: user.FullName(), Email: user.Email}
	s.tasks.Go(ctx, "email:password-reset", func(ctx context.Context) error {
		return s.mailer.SendPasswordReset(ctx, to, token, "1 hour")
	})
	return nil
}

// ResetPassword consumes a reset token, sets the new password and revokes every session
func (s *authServiceImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	token, err := s.resetTokens.GetByHash(ctx, auth.HashToken(strings.TrimSpace(req.Token)))
	if err != nil {
		return err
	}
	if token.UsedAt != nil {
		return apperrors.ErrPasswordResetTokenUsed
	}
	if !s.now().Before(token.ExpiresAt) {
		return apperrors.ErrInvalidPasswordResetToken
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.resetTokens.Consume(ctx, token.ID, token.UserID, hash); err != nil {
		return err
	}

	if _, err := s.sessions.RevokeAllForUser(ctx, token.UserID, ""); err != nil {
		s.logger.Warn().Err(err).Int64("userID", token.UserID).Msg("Failed to revoke sessions after password reset")
	}
	s.sessionCache.EvictUser(ctx, token.UserID)

	s.audit.Record(ctx, AuditEntry{
		Actor:      Actor{UserID: token.UserID},
		Action:     models.AuditPasswordReset,
		EntityType: "user",
		EntityID:   token.UserID,
	})
	return nil
}

func subjectFor(user *models.User, sessionID string) auth.Subject {
	return auth.Subject{
		UserID:    user.ID,
		Email:     user.Email,
		RoleType:  string(user.RoleType),
		SessionID: sessionID,
	}
}

func tokenResponse(pair *auth.TokenPair) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             int64(pair.ExpiresIn),
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: int64(pair.RefreshExpiresIn),
	}
}
