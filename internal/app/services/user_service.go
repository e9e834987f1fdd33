package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/filestorage"
)

// MaxAvatarBytes is the largest accepted avatar upload
const MaxAvatarBytes = 5 << 20

// UserService defines the interface for user operations
type UserService interface {
	List(ctx context.Context, req *dto.UserFilterRequest) (*dto.PaginatedResponse, error)
	Get(ctx context.Context, id int64) (*dto.UserResponse, error)
	Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, actor Actor, id int64) error
	UploadAvatar(ctx context.Context, actor Actor, data []byte) (*dto.AvatarResponse, error)
	DeleteAvatar(ctx context.Context, actor Actor) error
	AvatarURL(key string) string
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	users        UserStore
	sessions     SessionStore
	sessionCache SessionCacheService
	storage      filestorage.FileStorage
	audit        AuditService
	logger       zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	users UserStore,
	sessions SessionStore,
	sessionCache SessionCacheService,
	storage filestorage.FileStorage,
	audit AuditService,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		users:        users,
		sessions:     sessions,
		sessionCache: sessionCache,
		storage:      storage,
		audit:        audit,
		logger:       logger,
	}
}

// AvatarURL rewrites a stored avatar key to its public URL
func (s *userServiceImpl) AvatarURL(key string) string {
	return s.storage.URL(key)
}

func (s *userServiceImpl) List(ctx context.Context, req *dto.UserFilterRequest) (*dto.PaginatedResponse, error) {
	page := toPage(req.PageQuery)
	users, total, err := s.users.List(ctx, repositories.UserFilter{
		Role:     models.RoleType(req.Role),
		Search:   req.Search,
		IsActive: req.IsActive,
		Page:     page,
	})
	if err != nil {
		return nil, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, dto.NewUserResponse(u, s.AvatarURL))
	}
	return paginated(items, total, page), nil
}

func (s *userServiceImpl) Get(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user, s.AvatarURL)
	return &resp, nil
}

func (s *userServiceImpl) Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.IsActive != nil && !*req.IsActive && id == actor.UserID {
		return nil, apperrors.NewBadRequestError("you cannot deactivate your own account")
	}

	applyPersonUpdate(user, dto.PersonUpdate{FirstName: req.FirstName, LastName: req.LastName, Phone: req.Phone})
	deactivated := false
	if req.IsActive != nil {
		deactivated = user.IsActive && !*req.IsActive
		user.IsActive = *req.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if deactivated {
		s.revokeSessions(ctx, user.ID)
	}

	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditUpdate, EntityType: "user", EntityID: user.ID})
	resp := dto.NewUserResponse(user, s.AvatarURL)
	return &resp, nil
}

func (s *userServiceImpl) Delete(ctx context.Context, actor Actor, id int64) error {
	if id == actor.UserID {
		return apperrors.NewBadRequestError("you cannot delete your own account")
	}
	if err := s.users.SoftDelete(ctx, id, actor.UserID); err != nil {
		return err
	}
	s.revokeSessions(ctx, id)

	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditDelete, EntityType: "user", EntityID: id})
	return nil
}

// UploadAvatar normalises the image to a square WebP, stores it and removes the previous file
func (s *userServiceImpl) UploadAvatar(ctx context.Context, actor Actor, data []byte) (*dto.AvatarResponse, error) {
	if len(data) > MaxAvatarBytes {
		return nil, apperrors.ErrFileTooLarge
	}
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	processed, err := filestorage.ProcessAvatar(data)
	if err != nil {
		if apperrors.Is(err, filestorage.ErrUnsupportedImage) {
			return nil, apperrors.ErrUnsupportedImage
		}
		return nil, fmt.Errorf("failed to process avatar: %w", err)
	}

	key := filestorage.AvatarKey(user.ID)
	if err := s.storage.Put(ctx, key, bytes.NewReader(processed), int64(len(processed)), "image/webp"); err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}
	if err := s.users.UpdateAvatarKey(ctx, user.ID, &key); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn().Err(delErr).Str("key", key).Msg("Failed to remove orphaned avatar")
		}
		return nil, err
	}
	s.removeFile(ctx, user.AvatarKey)

	return &dto.AvatarResponse{AvatarURL: s.AvatarURL(key)}, nil
}

func (s *userServiceImpl) DeleteAvatar(ctx context.Context, actor Actor) error {
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if user.AvatarKey == nil {
		return nil
	}
	if err := s.users.UpdateAvatarKey(ctx, user.ID, nil); err != nil {
		return err
	}
	s.removeFile(ctx, user.AvatarKey)
	return nil
}

func (s *userServiceImpl) removeFile(ctx context.Context, key *string) {
	if key == nil || *key == "" {
		return
	}
	if err := s.storage.Delete(ctx, *key); err != nil {
		s.logger.Warn().Err(err).Str("key", *key).Msg("Failed to delete previous avatar")
	}
}

func (s *userServiceImpl) revokeSessions(ctx context.Context, userID int64) {
	if _, err := s.sessions.RevokeAllForUser(ctx, userID, ""); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to revoke sessions")
	}
	s.sessionCache.EvictUser(ctx, userID)
}

// applyPersonUpdate copies the non-nil account fields onto the user
func applyPersonUpdate(u *models.User, p dto.PersonUpdate) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Phone != nil {
		u.Phone = stringPtrOrNil(*p.Phone)
	}
}
