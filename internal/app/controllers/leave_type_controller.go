package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
)

// LeaveTypeController handles the leave type catalogue
type LeaveTypeController struct {
	leaveTypeService services.LeaveTypeService
}

// NewLeaveTypeController creates a new LeaveTypeController
func NewLeaveTypeController(leaveTypeService services.LeaveTypeService) *LeaveTypeController {
	return &LeaveTypeController{leaveTypeService: leaveTypeService}
}

// CreateLeaveType creates a leave type
// @Summary Create leave type
// @Tags leave-types
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateLeaveTypeRequest true "Leave type"
// @Success 201 {object} dto.StructuredResponse{data=models.LeaveType} "Leave type created"
// @Failure 409 {object} dto.ErrorResponse "Name already in use"
// @Router /leave-types [post]
func (c *LeaveTypeController) CreateLeaveType(ctx *gin.Context) {
	var req dto.CreateLeaveTypeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	lt, err := c.leaveTypeService.Create(ctx.Request.Context(), middleware.GetActor(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, lt, "Leave type created")
}

// ListLeaveTypes lists leave types
// @Summary List leave types
// @Tags leave-types
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse{items=[]models.LeaveType}} "Leave types retrieved"
// @Router /leave-types [get]
func (c *LeaveTypeController) ListLeaveTypes(ctx *gin.Context) {
	var req dto.LeaveTypeFilterRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}
	page, err := c.leaveTypeService.List(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "Leave types retrieved")
}

// GetLeaveType returns one leave type
// @Summary Get leave type
// @Tags leave-types
// @Produce json
// @Security BearerAuth
// @Param id path int true "Leave type ID"
// @Success 200 {object} dto.StructuredResponse{data=models.LeaveType} "Leave type retrieved"
// @Failure 404 {object} dto.ErrorResponse "Leave type not found"
// @Router /leave-types/{id} [get]
func (c *LeaveTypeController) GetLeaveType(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	lt, err := c.leaveTypeService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, lt, "Leave type retrieved")
}

// UpdateLeaveType updates a leave type
// @Summary Update leave type
// @Tags leave-types
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Leave type ID"
// @Param request body dto.UpdateLeaveTypeRequest true "Fields to change"
// @Success 200 {object} dto.StructuredResponse{data=models.LeaveType} "Leave type updated"
// @Failure 404 {object} dto.ErrorResponse "Leave type not found"
// @Failure 409 {object} dto.ErrorResponse "Name already in use"
// @Router /leave-types/{id} [patch]
func (c *LeaveTypeController) UpdateLeaveType(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateLeaveTypeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	lt, err := c.leaveTypeService.Update(ctx.Request.Context(), middleware.GetActor(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, lt, "Leave type updated")
}

// DeleteLeaveType soft deletes a leave type
// @Summary Delete leave type
// @Tags leave-types
// @Produce json
// @Security BearerAuth
// @Param id path int true "Leave type ID"
// @Success 200 {object} dto.StructuredResponse "Leave type deleted"
// @Failure 404 {object} dto.ErrorResponse "Leave type not found"
// @Router /leave-types/{id} [delete]
func (c *LeaveTypeController) DeleteLeaveType(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.leaveTypeService.Delete(ctx.Request.Context(), middleware.GetActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Leave type deleted")
}
