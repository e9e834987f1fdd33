package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/cache"
)

// RoomService manages rooms and their assets
type RoomService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateRoomRequest) (*models.Room, error)
	List(ctx context.Context, req *dto.RoomFilterRequest) (*dto.PaginatedResponse, error)
	Get(ctx context.Context, id int64) (*models.Room, error)
	Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateRoomRequest) (*models.Room, error)
	Delete(ctx context.Context, actor Actor, id int64) error

	CreateAsset(ctx context.Context, actor Actor, roomID int64, req *dto.CreateRoomAssetRequest) (*models.RoomAsset, error)
	ListAssets(ctx context.Context, roomID int64) ([]models.RoomAsset, error)
	UpdateAsset(ctx context.Context, actor Actor, roomID, assetID int64, req *dto.UpdateRoomAssetRequest) (*models.RoomAsset, error)
	DeleteAsset(ctx context.Context, actor Actor, roomID, assetID int64) error
}

type roomServiceImpl struct {
	repo      RoomStore
	cache     *cache.Service
	audit     AuditService
	dashboard DashboardService
	logger    zerolog.Logger
}

// NewRoomService creates a new RoomService
func NewRoomService(repo RoomStore, cacheService *cache.Service, audit AuditService, dashboard DashboardService, logger zerolog.Logger) RoomService {
	return &roomServiceImpl{repo: repo, cache: cacheService, audit: audit, dashboard: dashboard, logger: logger}
}

// roomPage is the cached shape of one room list page
type roomPage struct {
	Items []models.Room `json:"items"`
	Total int64         `json:"total"`
}

func roomListKey(f repositories.RoomFilter) string {
	return fmt.Sprintf("%slist:%s:%s:%d:%d", cachePrefixRooms, f.RoomType, strings.ToLower(f.Search), f.Page.Page, f.Page.Size)
}

func (s *roomServiceImpl) invalidate(ctx context.Context) {
	s.cache.InvalidatePrefix(ctx, cachePrefixRooms)
}

func (s *roomServiceImpl) checkNumber(ctx context.Context, number string, excludeID int64) error {
	taken, err := s.repo.RoomNumberExists(ctx, number, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.ErrRoomNumberTaken
	}
	return nil
}

func (s *roomServiceImpl) Create(ctx context.Context, actor Actor, req *dto.CreateRoomRequest) (*models.Room, error) {
	number := strings.ToUpper(strings.TrimSpace(req.RoomNumber))
	if err := s.checkNumber(ctx, number, 0); err != nil {
		return nil, err
	}

	room := &models.Room{
		RoomNumber: number,
		Name:       strings.TrimSpace(req.Name),
		RoomType:   req.RoomType,
		Floor:      req.Floor,
		Capacity:   req.Capacity,
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.dashboard.Invalidate(ctx)
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditCreate, EntityType: "room", EntityID: room.ID,
		Metadata: map[string]interface{}{"roomNumber": room.RoomNumber}})
	return room, nil
}

func (s *roomServiceImpl) List(ctx context.Context, req *dto.RoomFilterRequest) (*dto.PaginatedResponse, error) {
	f := repositories.RoomFilter{RoomType: req.RoomType, Search: strings.TrimSpace(req.Search), Page: toPage(req.PageQuery)}

	var page roomPage
	err := s.cache.GetOrSet(ctx, roomListKey(f), roomListCacheTTL, &page, func(ctx context.Context) (interface{}, error) {
		rooms, total, err := s.repo.List(ctx, f)
		if err != nil {
			return nil, err
		}
		return roomPage{Items: rooms, Total: total}, nil
	})
	if err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []models.Room{}
	}
	return paginated(page.Items, page.Total, f.Page), nil
}

func (s *roomServiceImpl) Get(ctx context.Context, id int64) (*models.Room, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *roomServiceImpl) Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateRoomRequest) (*models.Room, error) {
	room, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RoomNumber != nil {
		number := strings.ToUpper(strings.TrimSpace(*req.RoomNumber))
		if number != room.RoomNumber {
			if err := s.checkNumber(ctx, number, room.ID); err != nil {
				return nil, err
			}
			room.RoomNumber = number
		}
	}
	if req.Name != nil {
		room.Name = strings.TrimSpace(*req.Name)
	}
	if req.RoomType != nil {
		room.RoomType = *req.RoomType
	}
	if req.Floor != nil {
		room.Floor = *req.Floor
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}

	if err := s.repo.Update(ctx, room); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditUpdate, EntityType: "room", EntityID: room.ID})
	return room, nil
}

func (s *roomServiceImpl) Delete(ctx context.Context, actor Actor, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.repo.CountActiveClasses(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperrors.ErrRoomHasActiveClasses
	}

	if err := s.repo.SoftDelete(ctx, id, actor.UserID); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.dashboard.Invalidate(ctx)
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditDelete, EntityType: "room", EntityID: id})
	return nil
}

func (s *roomServiceImpl) checkAssetTag(ctx context.Context, tag string, excludeID int64) error {
	taken, err := s.repo.AssetTagExists(ctx, tag, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.ErrAssetTagTaken
	}
	return nil
}

func (s *roomServiceImpl) CreateAsset(ctx context.Context, actor Actor, roomID int64, req *dto.CreateRoomAssetRequest) (*models.RoomAsset, error) {
	if _, err := s.repo.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	tag := strings.TrimSpace(req.AssetTag)
	if err := s.checkAssetTag(ctx, tag, 0); err != nil {
		return nil, err
	}

	condition := models.AssetCondition(req.Condition)
	if condition == "" {
		condition = models.AssetGood
	}
	asset := &models.RoomAsset{
		RoomID:    roomID,
		Name:      strings.TrimSpace(req.Name),
		AssetTag:  tag,
		Quantity:  req.Quantity,
		Condition: condition,
	}
	if err := s.repo.CreateAsset(ctx, asset); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditCreate, EntityType: "room_asset", EntityID: asset.ID,
		Metadata: map[string]interface{}{"roomId": roomID, "assetTag": tag}})
	return asset, nil
}

func (s *roomServiceImpl) ListAssets(ctx context.Context, roomID int64) ([]models.RoomAsset, error) {
	if _, err := s.repo.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	return s.repo.ListAssets(ctx, roomID)
}

func (s *roomServiceImpl) UpdateAsset(ctx context.Context, actor Actor, roomID, assetID int64, req *dto.UpdateRoomAssetRequest) (*models.RoomAsset, error) {
	asset, err := s.repo.GetAsset(ctx, roomID, assetID)
	if err != nil {
		return nil, err
	}

	if req.AssetTag != nil {
		tag := strings.TrimSpace(*req.AssetTag)
		if tag != asset.AssetTag {
			if err := s.checkAssetTag(ctx, tag, asset.ID); err != nil {
				return nil, err
			}
			asset.AssetTag = tag
		}
	}
	if req.Name != nil {
		asset.Name = strings.TrimSpace(*req.Name)
	}
	if req.Quantity != nil {
		asset.Quantity = *req.Quantity
	}
	if req.Condition != nil {
		asset.Condition = models.AssetCondition(*req.Condition)
	}

	if err := s.repo.UpdateAsset(ctx, asset); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditUpdate, EntityType: "room_asset", EntityID: asset.ID})
	return asset, nil
}

func (s *roomServiceImpl) DeleteAsset(ctx context.Context, actor Actor, roomID, assetID int64) error {
	if err := s.repo.SoftDeleteAsset(ctx, roomID, assetID, actor.UserID); err != nil {
		return err
	}
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditDelete, EntityType: "room_asset", EntityID: assetID})
	return nil
}
