package models

import "time"

// Room defines a physical room ('rooms')
type Room struct {
	ID         int64     `json:"id" db:"id" example:"1"`
	RoomNumber string    `json:"roomNumber" db:"room_number" example:"B-204"`
	Name       string    `json:"name" db:"name" example:"Physics Lab"`
	RoomType   string    `json:"roomType" db:"room_type" example:"LAB"`
	Floor      int       `json:"floor" db:"floor" example:"2"`
	Capacity   int       `json:"capacity" db:"capacity" example:"40"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
	SoftDelete
}

// AssetCondition describes the state of a room asset
type AssetCondition string

const (
	AssetGood    AssetCondition = "GOOD"
	AssetFair    AssetCondition = "FAIR"
	AssetDamaged AssetCondition = "DAMAGED"
	AssetRetired AssetCondition = "RETIRED"
)

// RoomAsset is an inventory item kept in a room ('room_assets')
type RoomAsset struct {
	ID        int64          `json:"id" db:"id"`
	RoomID    int64          `json:"roomId" db:"room_id"`
	Name      string         `json:"name" db:"name" example:"Projector"`
	AssetTag  string         `json:"assetTag" db:"asset_tag" example:"AST-0091"`
	Quantity  int            `json:"quantity" db:"quantity" example:"1"`
	Condition AssetCondition `json:"condition" db:"condition" example:"GOOD"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
	SoftDelete
}
