package dto

// CreateRoomRequest creates a room
type CreateRoomRequest struct {
	RoomNumber string `json:"roomNumber" binding:"required,roomnumber" example:"B-204"`
	Name       string `json:"name" binding:"required,max=100" example:"Physics Lab"`
	RoomType   string `json:"roomType" binding:"required,oneof=CLASSROOM LAB LIBRARY OFFICE HALL OTHER" example:"LAB"`
	Floor      int    `json:"floor" binding:"min=-5,max=100" example:"2"`
	Capacity   int    `json:"capacity" binding:"min=0,max=1000" example:"40"`
}

// UpdateRoomRequest updates a room. Nil fields are left unchanged.
type UpdateRoomRequest struct {
	RoomNumber *string `json:"roomNumber" binding:"omitempty,roomnumber"`
	Name       *string `json:"name" binding:"omitempty,min=1,max=100"`
	RoomType   *string `json:"roomType" binding:"omitempty,oneof=CLASSROOM LAB LIBRARY OFFICE HALL OTHER"`
	Floor      *int    `json:"floor" binding:"omitempty,min=-5,max=100"`
	Capacity   *int    `json:"capacity" binding:"omitempty,min=0,max=1000"`
}

// RoomFilterRequest represents room list filters
type RoomFilterRequest struct {
	RoomType string `form:"roomType" binding:"omitempty,oneof=CLASSROOM LAB LIBRARY OFFICE HALL OTHER"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	PageQuery
}

// CreateRoomAssetRequest adds an asset to a room
type CreateRoomAssetRequest struct {
	Name      string `json:"name" binding:"required,max=100" example:"Projector"`
	AssetTag  string `json:"assetTag" binding:"required,max=50" example:"AST-0091"`
	Quantity  int    `json:"quantity" binding:"min=0,max=10000" example:"1"`
	Condition string `json:"condition" binding:"omitempty,oneof=GOOD FAIR DAMAGED RETIRED" example:"GOOD"`
}

// UpdateRoomAssetRequest updates a room asset. Nil fields are left unchanged.
type UpdateRoomAssetRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=100"`
	AssetTag  *string `json:"assetTag" binding:"omitempty,min=1,max=50"`
	Quantity  *int    `json:"quantity" binding:"omitempty,min=0,max=10000"`
	Condition *string `json:"condition" binding:"omitempty,oneof=GOOD FAIR DAMAGED RETIRED"`
}
