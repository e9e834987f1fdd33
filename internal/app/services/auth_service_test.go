package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/auth"
)

type fakeUserStore struct {
	UserStore

	mu           sync.Mutex
	users        map[int64]*models.User
	passwords    map[int64]string
	lastLogins   []int64
	queriedRoles []models.RoleType
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	f := &fakeUserStore{users: map[int64]*models.User{}, passwords: map[int64]string{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLogins = append(f.lastLogins, userID)
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, userID int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords[userID] = hash
	return nil
}

func (f *fakeUserStore) ListActiveByRoles(_ context.Context, roles []models.RoleType) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queriedRoles = append(f.queriedRoles, roles...)
	var out []*models.User
	for _, u := range f.users {
		if !u.IsActive {
			continue
		}
		for _, r := range roles {
			if u.RoleType == r {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

type fakeAuthSessions struct {
	SessionStore
	created    []*models.UserSession
	revokedAll []int64
}

func (f *fakeAuthSessions) Create(_ context.Context, s *models.UserSession) error {
	f.created = append(f.created, s)
	return nil
}

func (f *fakeAuthSessions) RevokeAllForUser(_ context.Context, userID int64, _ string) ([]string, error) {
	f.revokedAll = append(f.revokedAll, userID)
	return nil, nil
}

type fakeResetStore struct {
	tokens   map[string]*models.PasswordResetToken
	created  []string
	consumed []int64
}

func (f *fakeResetStore) Create(_ context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	f.created = append(f.created, tokenHash)
	f.tokens[tokenHash] = &models.PasswordResetToken{ID: int64(len(f.created)), UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeResetStore) GetByHash(_ context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	t, ok := f.tokens[tokenHash]
	if !ok {
		return nil, apperrors.ErrInvalidPasswordResetToken
	}
	return t, nil
}

func (f *fakeResetStore) Consume(_ context.Context, tokenID, _ int64, _ string) error {
	f.consumed = append(f.consumed, tokenID)
	return nil
}

type fakeSessionCache struct {
	evictedUsers []int64
}

func (f *fakeSessionCache) GetSession(context.Context, int64, string) (*CachedSession, error) {
	return nil, apperrors.ErrTokenRevoked
}

func (f *fakeSessionCache) Evict(context.Context, int64, string) {}

func (f *fakeSessionCache) EvictUser(_ context.Context, userID int64) {
	f.evictedUsers = append(f.evictedUsers, userID)
}

type authFixture struct {
	svc      *authServiceImpl
	users    *fakeUserStore
	sessions *fakeAuthSessions
	resets   *fakeResetStore
	cache    *fakeSessionCache
	mailer   *fakeMailer
	audit    *fakeAudit
	tasks    *TaskRunner
}

const principalPassword = "S3cure!pass"

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	hash, err := auth.HashPassword(principalPassword)
	require.NoError(t, err)

	f := &authFixture{
		users: newFakeUserStore(
			&models.User{ID: 1, Email: "principal@school.test", PasswordHash: hash, FirstName: "Sita", LastName: "Sharma", RoleType: models.RoleAdmin, IsActive: true},
			&models.User{ID: 2, Email: "former@school.test", PasswordHash: hash, RoleType: models.RoleTeacher, IsActive: false},
		),
		sessions: &fakeAuthSessions{},
		resets:   &fakeResetStore{tokens: map[string]*models.PasswordResetToken{}},
		cache:    &fakeSessionCache{},
		mailer:   &fakeMailer{},
		audit:    &fakeAudit{},
		tasks:    NewTaskRunner(zerolog.Nop()),
	}
	f.svc = &authServiceImpl{
		users:        f.users,
		sessions:     f.sessions,
		resetTokens:  f.resets,
		sessionCache: f.cache,
		jwtService: auth.NewJWTService(auth.JWTConfig{
			SecretKey:       "test-secret-key-with-enough-length",
			AccessTokenExp:  15 * time.Minute,
			RefreshTokenExp: 24 * time.Hour,
			TokenIssuer:     "schooldesk-test",
		}),
		mailer:    f.mailer,
		audit:     f.audit,
		tasks:     f.tasks,
		avatarURL: noAvatar,
		now:       clock,
		logger:    zerolog.Nop(),
	}
	return f
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.Login(context.Background(), &dto.LoginRequest{Email: " principal@school.test ", Password: principalPassword}, ClientInfo{IPAddress: "10.0.0.5", UserAgent: "curl"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.NotEmpty(t, resp.Token.RefreshToken)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.Equal(t, int64(1), resp.User.ID)

	require.Len(t, f.sessions.created, 1)
	session := f.sessions.created[0]
	assert.Equal(t, int64(1), session.UserID)
	assert.Equal(t, resp.Token.RefreshToken, session.RefreshToken)
	require.NotNil(t, session.IPAddress)
	assert.Equal(t, "10.0.0.5", *session.IPAddress)

	assert.Equal(t, []int64{1}, f.users.lastLogins)
	assert.Equal(t, []string{models.AuditLogin}, f.audit.actions())
}

func TestLogin_FailuresLookAlike(t *testing.T) {
	tests := []struct {
		name string
		req  dto.LoginRequest
	}{
		{"unknown email", dto.LoginRequest{Email: "nobody@school.test", Password: principalPassword}},
		{"wrong password", dto.LoginRequest{Email: "principal@school.test", Password: "wrong-password"}},
		{"inactive account", dto.LoginRequest{Email: "former@school.test", Password: principalPassword}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			_, err := f.svc.Login(context.Background(), &tt.req, ClientInfo{})
			assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
			assert.Empty(t, f.sessions.created)
			assert.Empty(t, f.audit.actions())
		})
	}
}

func TestForgotPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "nobody@school.test"}))
	require.NoError(t, f.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "former@school.test"}))
	assert.Empty(t, f.resets.created)

	require.NoError(t, f.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "principal@school.test"}))
	f.tasks.Wait()

	require.Len(t, f.resets.created, 1)
	require.Len(t, f.mailer.resets, 1)
	sent := strings.TrimPrefix(f.mailer.resets[0], "principal@school.test:")
	assert.Equal(t, f.resets.created[0], auth.HashToken(sent), "only the hash is stored")
	assert.Equal(t, fixedNow.Add(PasswordResetTTL), f.resets.tokens[f.resets.created[0]].ExpiresAt)
}

func TestResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	used := fixedNow.Add(-time.Minute)
	f.resets.tokens[auth.HashToken("fresh")] = &models.PasswordResetToken{ID: 1, UserID: 1, ExpiresAt: fixedNow.Add(time.Hour)}
	f.resets.tokens[auth.HashToken("used")] = &models.PasswordResetToken{ID: 2, UserID: 1, ExpiresAt: fixedNow.Add(time.Hour), UsedAt: &used}
	f.resets.tokens[auth.HashToken("stale")] = &models.PasswordResetToken{ID: 3, UserID: 1, ExpiresAt: fixedNow}

	err := f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: "used", NewPassword: "another-pass"})
	assert.ErrorIs(t, err, apperrors.ErrPasswordResetTokenUsed)

	err = f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: "stale", NewPassword: "another-pass"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPasswordResetToken)

	err = f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: "unknown", NewPassword: "another-pass"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPasswordResetToken)
	assert.Empty(t, f.resets.consumed)

	require.NoError(t, f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: " fresh ", NewPassword: "another-pass"}))
	assert.Equal(t, []int64{1}, f.resets.consumed)
	assert.Equal(t, []int64{1}, f.sessions.revokedAll)
	assert.Equal(t, []int64{1}, f.cache.evictedUsers)
	assert.Equal(t, []string{models.AuditPasswordReset}, f.audit.actions())
}
