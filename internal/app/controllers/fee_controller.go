package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
)

// FeeController handles fee structures
type FeeController struct {
	feeService services.FeeService
}

// NewFeeController creates a new FeeController
func NewFeeController(feeService services.FeeService) *FeeController {
	return &FeeController{feeService: feeService}
}

// CreateFeeStructure creates a fee structure with its items
// @Summary Create fee structure
// @Description Amounts are in minor units
// @Tags fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateFeeStructureRequest true "Fee structure"
// @Success 201 {object} dto.StructuredResponse{data=models.FeeStructure} "Fee structure created"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Failure 409 {object} dto.ErrorResponse "Fee structure already exists"
// @Router /fee-structures [post]
func (c *FeeController) CreateFeeStructure(ctx *gin.Context) {
	var req dto.CreateFeeStructureRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	fs, err := c.feeService.Create(ctx.Request.Context(), middleware.GetActor(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, fs, "Fee structure created")
}

// ListFeeStructures lists fee structures
// @Summary List fee structures
// @Tags fees
// @Produce json
// @Security BearerAuth
// @Param classId query int false "Class ID"
// @Param academicYear query string false "Academic year"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse{items=[]models.FeeStructure}} "Fee structures retrieved"
// @Router /fee-structures [get]
func (c *FeeController) ListFeeStructures(ctx *gin.Context) {
	var req dto.FeeStructureFilterRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}
	page, err := c.feeService.List(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "Fee structures retrieved")
}

// GetFeeStructure returns one fee structure with its items
// @Summary Get fee structure
// @Tags fees
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fee structure ID"
// @Success 200 {object} dto.StructuredResponse{data=models.FeeStructure} "Fee structure retrieved"
// @Failure 404 {object} dto.ErrorResponse "Fee structure not found"
// @Router /fee-structures/{id} [get]
func (c *FeeController) GetFeeStructure(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	fs, err := c.feeService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, fs, "Fee structure retrieved")
}

// UpdateFeeStructure updates a fee structure, replacing its items when given
// @Summary Update fee structure
// @Tags fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fee structure ID"
// @Param request body dto.UpdateFeeStructureRequest true "Fields to change"
// @Success 200 {object} dto.StructuredResponse{data=models.FeeStructure} "Fee structure updated"
// @Failure 404 {object} dto.ErrorResponse "Fee structure not found"
// @Router /fee-structures/{id} [patch]
func (c *FeeController) UpdateFeeStructure(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateFeeStructureRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	fs, err := c.feeService.Update(ctx.Request.Context(), middleware.GetActor(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, fs, "Fee structure updated")
}

// DeleteFeeStructure soft deletes a fee structure
// @Summary Delete fee structure
// @Tags fees
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fee structure ID"
// @Success 200 {object} dto.StructuredResponse "Fee structure deleted"
// @Failure 404 {object} dto.ErrorResponse "Fee structure not found"
// @Router /fee-structures/{id} [delete]
func (c *FeeController) DeleteFeeStructure(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.feeService.Delete(ctx.Request.Context(), middleware.GetActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Fee structure deleted")
}
