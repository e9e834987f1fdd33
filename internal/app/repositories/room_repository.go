package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/db"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/dberrors"
	"github.com/yigit/schooldesk/internal/pkg/helpers"
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

const (
	roomNumberConstraint = "rooms_room_number_active_key"
	assetTagConstraint   = "room_assets_asset_tag_active_key"
)

var roomColumns = []string{"id", "room_number", "name", "room_type", "floor", "capacity", "created_at", "updated_at"}

func scanRoom(row pgx.Row, rm *models.Room) error {
	return row.Scan(&rm.ID, &rm.RoomNumber, &rm.Name, &rm.RoomType, &rm.Floor, &rm.Capacity, &rm.CreatedAt, &rm.UpdatedAt)
}

var assetColumns = []string{"id", "room_id", "name", "asset_tag", "quantity", "condition", "created_at", "updated_at"}

func scanAsset(row pgx.Row, a *models.RoomAsset) error {
	return row.Scan(&a.ID, &a.RoomID, &a.Name, &a.AssetTag, &a.Quantity, &a.Condition, &a.CreatedAt, &a.UpdatedAt)
}

// RoomFilter filters the room list
type RoomFilter struct {
	RoomType string
	Search   string
	Page
}

// RoomRepository handles rooms and room assets
type RoomRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRoomRepository creates a new RoomRepository
func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db, sb: newBuilder()}
}

// Create inserts a room. The partial unique index backs up the service pre-check.
func (r *RoomRepository) Create(ctx context.Context, rm *models.Room) error {
	now := time.Now()
	sql, args, err := r.sb.Insert("rooms").
		Columns("room_number", "name", "room_type", "floor", "capacity", "created_at", "updated_at").
		Values(rm.RoomNumber, rm.Name, rm.RoomType, rm.Floor, rm.Capacity, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create room query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&rm.ID, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, roomNumberConstraint) {
			return apperrors.ErrRoomNumberTaken
		}
		logger.Error().Err(err).Str("roomNumber", rm.RoomNumber).Msg("Error creating room")
		return fmt.Errorf("error creating room: %w", err)
	}
	return nil
}

// RoomNumberExists checks if an active room other than excludeID uses the number
func (r *RoomRepository) RoomNumberExists(ctx context.Context, number string, excludeID int64) (bool, error) {
	q := r.sb.Select("1").From("rooms").Where(squirrel.Eq{"room_number": number, "deleted_at": nil})
	if excludeID > 0 {
		q = q.Where(squirrel.NotEq{"id": excludeID})
	}
	return exists(ctx, r.db, q, "room number")
}

// GetByID retrieves an active room
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	rm := &models.Room{}
	err := queryRow(ctx, r.db, r.sb.Select(roomColumns...).From("rooms").Where(squirrel.Eq{"id": id, "deleted_at": nil}),
		apperrors.ErrRoomNotFound, func(row pgx.Row) error { return scanRoom(row, rm) })
	if err != nil {
		return nil, err
	}
	return rm, nil
}

// List returns a page of active rooms matching the filter
func (r *RoomRepository) List(ctx context.Context, f RoomFilter) ([]models.Room, int64, error) {
	where := squirrel.And{squirrel.Eq{"deleted_at": nil}}
	if f.RoomType != "" {
		where = append(where, squirrel.Eq{"room_type": f.RoomType})
	}
	if f.Search != "" {
		pattern := helpers.ContainsPattern(f.Search)
		where = append(where, squirrel.Or{squirrel.ILike{"room_number": pattern}, squirrel.ILike{"name": pattern}})
	}

	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("rooms").Where(where), "rooms")
	if err != nil || total == 0 {
		return []models.Room{}, total, err
	}

	list := make([]models.Room, 0, f.Size)
	err = queryRows(ctx, r.db, paginate(r.sb.Select(roomColumns...).From("rooms").Where(where).OrderBy("room_number"), f.Page),
		func(rows pgx.Rows) error {
			var rm models.Room
			if err := scanRoom(rows, &rm); err != nil {
				return err
			}
			list = append(list, rm)
			return nil
		})
	if err != nil {
		logger.Error().Err(err).Msg("Error listing rooms")
		return nil, 0, fmt.Errorf("failed to list rooms: %w", err)
	}
	return list, total, nil
}

// Update writes a room
func (r *RoomRepository) Update(ctx context.Context, rm *models.Room) error {
	n, err := exec(ctx, r.db, r.sb.Update("rooms").
		Set("room_number", rm.RoomNumber).
		Set("name", rm.Name).
		Set("room_type", rm.RoomType).
		Set("floor", rm.Floor).
		Set("capacity", rm.Capacity).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": rm.ID, "deleted_at": nil}), "update room")
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, roomNumberConstraint) {
			return apperrors.ErrRoomNumberTaken
		}
		logger.Error().Err(err).Int64("roomID", rm.ID).Msg("Error updating room")
		return fmt.Errorf("error updating room: %w", err)
	}
	if n == 0 {
		return apperrors.ErrRoomNotFound
	}
	return nil
}

// CountActiveClasses counts active classes assigned to the room
func (r *RoomRepository) CountActiveClasses(ctx context.Context, roomID int64) (int64, error) {
	return count(ctx, r.db, r.sb.Select("COUNT(*)").From("classes").
		Where(squirrel.Eq{"room_id": roomID, "deleted_at": nil}), "room classes")
}

// SoftDelete marks the room and its assets deleted. The update is guarded so a class
// assigned after the caller's check still blocks the delete.
func (r *RoomRepository) SoftDelete(ctx context.Context, id, deletedBy int64) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		now := time.Now()
		n, err := exec(ctx, tx, r.sb.Update("rooms").
			Set("deleted_at", now).
			Set("deleted_by_id", deletedBy).
			Set("updated_at", now).
			Where(squirrel.Eq{"id": id, "deleted_at": nil}).
			Where("NOT EXISTS (SELECT 1 FROM classes c WHERE c.room_id = rooms.id AND c.deleted_at IS NULL)"), "delete room")
		if err != nil {
			logger.Error().Err(err).Int64("roomID", id).Msg("Error deleting room")
			return fmt.Errorf("error deleting room: %w", err)
		}
		if n == 0 {
			stillThere, err := exists(ctx, tx, r.sb.Select("1").From("rooms").Where(squirrel.Eq{"id": id, "deleted_at": nil}), "room")
			if err != nil {
				return err
			}
			if stillThere {
				return apperrors.ErrRoomHasActiveClasses
			}
			return apperrors.ErrRoomNotFound
		}

		if _, err := exec(ctx, tx, r.sb.Update("room_assets").
			Set("deleted_at", now).
			Set("deleted_by_id", deletedBy).
			Set("updated_at", now).
			Where(squirrel.Eq{"room_id": id, "deleted_at": nil}), "delete room assets"); err != nil {
			return fmt.Errorf("error deleting room assets: %w", err)
		}
		return nil
	})
}

// CreateAsset inserts a room asset
func (r *RoomRepository) CreateAsset(ctx context.Context, a *models.RoomAsset) error {
	now := time.Now()
	sql, args, err := r.sb.Insert("room_assets").
		Columns("room_id", "name", "asset_tag", "quantity", "condition", "created_at", "updated_at").
		Values(a.RoomID, a.Name, a.AssetTag, a.Quantity, a.Condition, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create asset query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, assetTagConstraint) {
			return apperrors.ErrAssetTagTaken
		}
		logger.Error().Err(err).Str("assetTag", a.AssetTag).Msg("Error creating room asset")
		return fmt.Errorf("error creating room asset: %w", err)
	}
	return nil
}

// AssetTagExists checks if an active asset other than excludeID uses the tag
func (r *RoomRepository) AssetTagExists(ctx context.Context, tag string, excludeID int64) (bool, error) {
	q := r.sb.Select("1").From("room_assets").Where(squirrel.Eq{"asset_tag": tag, "deleted_at": nil})
	if excludeID > 0 {
		q = q.Where(squirrel.NotEq{"id": excludeID})
	}
	return exists(ctx, r.db, q, "asset tag")
}

// GetAsset retrieves an active asset of a room
func (r *RoomRepository) GetAsset(ctx context.Context, roomID, assetID int64) (*models.RoomAsset, error) {
	a := &models.RoomAsset{}
	err := queryRow(ctx, r.db, r.sb.Select(assetColumns...).From("room_assets").
		Where(squirrel.Eq{"id": assetID, "room_id": roomID, "deleted_at": nil}),
		apperrors.ErrAssetNotFound, func(row pgx.Row) error { return scanAsset(row, a) })
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAssets returns the active assets of a room
func (r *RoomRepository) ListAssets(ctx context.Context, roomID int64) ([]models.RoomAsset, error) {
	list := []models.RoomAsset{}
	err := queryRows(ctx, r.db, r.sb.Select(assetColumns...).From("room_assets").
		Where(squirrel.Eq{"room_id": roomID, "deleted_at": nil}).OrderBy("asset_tag"),
		func(rows pgx.Rows) error {
			var a models.RoomAsset
			if err := scanAsset(rows, &a); err != nil {
				return err
			}
			list = append(list, a)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list room assets: %w", err)
	}
	return list, nil
}

// UpdateAsset writes a room asset
func (r *RoomRepository) UpdateAsset(ctx context.Context, a *models.RoomAsset) error {
	n, err := exec(ctx, r.db, r.sb.Update("room_assets").
		Set("name", a.Name).
		Set("asset_tag", a.AssetTag).
		Set("quantity", a.Quantity).
		Set("condition", a.Condition).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": a.ID, "room_id": a.RoomID, "deleted_at": nil}), "update asset")
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, assetTagConstraint) {
			return apperrors.ErrAssetTagTaken
		}
		return fmt.Errorf("error updating room asset: %w", err)
	}
	if n == 0 {
		return apperrors.ErrAssetNotFound
	}
	return nil
}

// SoftDeleteAsset marks an asset deleted
func (r *RoomRepository) SoftDeleteAsset(ctx context.Context, roomID, assetID, deletedBy int64) error {
	n, err := exec(ctx, r.db, r.sb.Update("room_assets").
		Set("deleted_at", time.Now()).
		Set("deleted_by_id", deletedBy).
		Where(squirrel.Eq{"id": assetID, "room_id": roomID, "deleted_at": nil}), "delete asset")
	if err != nil {
		return fmt.Errorf("error deleting room asset: %w", err)
	}
	if n == 0 {
		return apperrors.ErrAssetNotFound
	}
	return nil
}
