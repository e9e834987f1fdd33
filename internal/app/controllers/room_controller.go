package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
)

// RoomController handles rooms and room assets
type RoomController struct {
	roomService services.RoomService
}

// NewRoomController creates a new RoomController
func NewRoomController(roomService services.RoomService) *RoomController {
	return &RoomController{roomService: roomService}
}

// CreateRoom creates a room
// @Summary Create room
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateRoomRequest true "Room"
// @Success 201 {object} dto.StructuredResponse{data=models.Room} "Room created"
// @Failure 409 {object} dto.ErrorResponse "Room number already in use"
// @Router /rooms [post]
func (c *RoomController) CreateRoom(ctx *gin.Context) {
	var req dto.CreateRoomRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	room, err := c.roomService.Create(ctx.Request.Context(), middleware.GetActor(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, room, "Room created")
}

// ListRooms lists rooms
// @Summary List rooms
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param roomType query string false "Room type" Enums(CLASSROOM,LAB,LIBRARY,OFFICE,HALL,OTHER)
// @Param search query string false "Room number or name"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse{items=[]models.Room}} "Rooms retrieved"
// @Router /rooms [get]
func (c *RoomController) ListRooms(ctx *gin.Context) {
	var req dto.RoomFilterRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}
	page, err := c.roomService.List(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "Rooms retrieved")
}

// GetRoom returns one room
// @Summary Get room
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} dto.StructuredResponse{data=models.Room} "Room retrieved"
// @Failure 404 {object} dto.ErrorResponse "Room not found"
// @Router /rooms/{id} [get]
func (c *RoomController) GetRoom(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	room, err := c.roomService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, room, "Room retrieved")
}

// UpdateRoom updates a room
// @Summary Update room
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param request body dto.UpdateRoomRequest true "Fields to change"
// @Success 200 {object} dto.StructuredResponse{data=models.Room} "Room updated"
// @Failure 404 {object} dto.ErrorResponse "Room not found"
// @Failure 409 {object} dto.ErrorResponse "Room number already in use"
// @Router /rooms/{id} [patch]
func (c *RoomController) UpdateRoom(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateRoomRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	room, err := c.roomService.Update(ctx.Request.Context(), middleware.GetActor(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, room, "Room updated")
}

// DeleteRoom soft deletes a room that no active class uses
// @Summary Delete room
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} dto.StructuredResponse "Room deleted"
// @Failure 404 {object} dto.ErrorResponse "Room not found"
// @Failure 409 {object} dto.ErrorResponse "Room is used by active classes"
// @Router /rooms/{id} [delete]
func (c *RoomController) DeleteRoom(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.roomService.Delete(ctx.Request.Context(), middleware.GetActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Room deleted")
}

// CreateAsset adds an asset to a room
// @Summary Create room asset
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param request body dto.CreateRoomAssetRequest true "Asset"
// @Success 201 {object} dto.StructuredResponse{data=models.RoomAsset} "Asset created"
// @Failure 404 {object} dto.ErrorResponse "Room not found"
// @Failure 409 {object} dto.ErrorResponse "Asset tag already in use"
// @Router /rooms/{id}/assets [post]
func (c *RoomController) CreateAsset(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.CreateRoomAssetRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	asset, err := c.roomService.CreateAsset(ctx.Request.Context(), middleware.GetActor(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, asset, "Asset created")
}

// ListAssets lists the assets of a room
// @Summary List room assets
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} dto.StructuredResponse{data=[]models.RoomAsset} "Assets retrieved"
// @Failure 404 {object} dto.ErrorResponse "Room not found"
// @Router /rooms/{id}/assets [get]
func (c *RoomController) ListAssets(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	assets, err := c.roomService.ListAssets(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, assets, "Assets retrieved")
}

// UpdateAsset updates a room asset
// @Summary Update room asset
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param assetId path int true "Asset ID"
// @Param request body dto.UpdateRoomAssetRequest true "Fields to change"
// @Success 200 {object} dto.StructuredResponse{data=models.RoomAsset} "Asset updated"
// @Failure 404 {object} dto.ErrorResponse "Asset not found"
// @Router /rooms/{id}/assets/{assetId} [patch]
func (c *RoomController) UpdateAsset(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	assetID, ok := parseIDParam(ctx, "assetId")
	if !ok {
		return
	}
	var req dto.UpdateRoomAssetRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	asset, err := c.roomService.UpdateAsset(ctx.Request.Context(), middleware.GetActor(ctx), id, assetID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, asset, "Asset updated")
}

// DeleteAsset removes a room asset
// @Summary Delete room asset
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param assetId path int true "Asset ID"
// @Success 200 {object} dto.StructuredResponse "Asset deleted"
// @Failure 404 {object} dto.ErrorResponse "Asset not found"
// @Router /rooms/{id}/assets/{assetId} [delete]
func (c *RoomController) DeleteAsset(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	assetID, ok := parseIDParam(ctx, "assetId")
	if !ok {
		return
	}
	if err := c.roomService.DeleteAsset(ctx.Request.Context(), middleware.GetActor(ctx), id, assetID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Asset deleted")
}
