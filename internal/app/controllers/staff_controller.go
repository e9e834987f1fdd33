package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
)

// StaffController handles staff records and salaries
type StaffController struct {
	staffService  services.StaffService
	salaryService services.StaffSalaryService
}

// NewStaffController creates a new StaffController
func NewStaffController(staffService services.StaffService, salaryService services.StaffSalaryService) *StaffController {
	return &StaffController{staffService: staffService, salaryService: salaryService}
}

// CreateStaff creates a TEACHER or STAFF account with its employee record
// @Summary Create staff member
// @Description Creates the user and staff rows in one transaction and emails a temporary password
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStaffRequest true "Staff member"
// @Success 201 {object} dto.StructuredResponse{data=dto.StaffResponse} "Staff member created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 409 {object} dto.ErrorResponse "Email or employee code already in use"
// @Router /staff [post]
func (c *StaffController) CreateStaff(ctx *gin.Context) {
	var req dto.CreateStaffRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	member, err := c.staffService.Create(ctx.Request.Context(), middleware.GetActor(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, member, "Staff member created")
}

// ListStaff lists staff members
// @Summary List staff
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role" Enums(TEACHER,STAFF)
// @Param department query string false "Department"
// @Param search query string false "Name, email or employee code"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse{items=[]dto.StaffResponse}} "Staff retrieved"
// @Router /staff [get]
func (c *StaffController) ListStaff(ctx *gin.Context) {
	var req dto.StaffFilterRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}
	page, err := c.staffService.List(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "Staff retrieved")
}

// GetStaff returns a staff member to an admin or the member themself
// @Summary Get staff member
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.StaffResponse} "Staff member retrieved"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Staff member not found"
// @Router /staff/{id} [get]
func (c *StaffController) GetStaff(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	member, err := c.staffService.Get(ctx.Request.Context(), middleware.GetActor(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, member, "Staff member retrieved")
}

// UpdateStaff updates staff details
// @Summary Update staff member
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Param request body dto.UpdateStaffRequest true "Fields to change"
// @Success 200 {object} dto.StructuredResponse{data=dto.StaffResponse} "Staff member updated"
// @Failure 404 {object} dto.ErrorResponse "Staff member not found"
// @Failure 409 {object} dto.ErrorResponse "Employee code already in use"
// @Router /staff/{id} [patch]
func (c *StaffController) UpdateStaff(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateStaffRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	member, err := c.staffService.Update(ctx.Request.Context(), middleware.GetActor(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, member, "Staff member updated")
}

// DeleteStaff soft deletes a staff member and their account
// @Summary Delete staff member
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Success 200 {object} dto.StructuredResponse "Staff member deleted"
// @Failure 404 {object} dto.ErrorResponse "Staff member not found"
// @Failure 409 {object} dto.ErrorResponse "Staff member is a class teacher"
// @Router /staff/{id} [delete]
func (c *StaffController) DeleteStaff(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.staffService.Delete(ctx.Request.Context(), middleware.GetActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Staff member deleted")
}

// UpdateSalary changes a salary and records exactly one history row
// @Summary Update salary
// @Description Amounts are in minor units. effectiveFrom defaults to today.
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Param request body dto.UpdateSalaryRequest true "New salary"
// @Success 200 {object} dto.StructuredResponse{data=dto.SalaryUpdateResponse} "Salary updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Staff member not found"
// @Router /staff/{id}/salary [patch]
func (c *StaffController) UpdateSalary(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateSalaryRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	resp, err := c.salaryService.UpdateStaffSalary(ctx.Request.Context(), middleware.GetActor(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp, "Salary updated")
}

// SalaryHistory lists salary changes newest first
// @Summary Salary history
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse{items=[]dto.SalaryHistoryResponse}} "Salary history retrieved"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Staff member not found"
// @Router /staff/{id}/salary-history [get]
func (c *StaffController) SalaryHistory(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var q dto.PageQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	page, err := c.salaryService.SalaryHistory(ctx.Request.Context(), middleware.GetActor(ctx), id, q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "Salary history retrieved")
}

// EffectiveSalary returns the salary in force on a date
// @Summary Effective salary
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.StructuredResponse{data=dto.EffectiveSalaryResponse} "Effective salary"
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 404 {object} dto.ErrorResponse "No salary effective at that date"
// @Router /staff/{id}/salary [get]
func (c *StaffController) EffectiveSalary(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.salaryService.EffectiveSalary(ctx.Request.Context(), middleware.GetActor(ctx), id, ctx.Query("date"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp, "Effective salary")
}
