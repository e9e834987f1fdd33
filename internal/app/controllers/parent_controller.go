package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
)

// ParentController handles parents and their linked students
type ParentController struct {
	parentService services.ParentService
}

// NewParentController creates a new ParentController
func NewParentController(parentService services.ParentService) *ParentController {
	return &ParentController{parentService: parentService}
}

// CreateParent creates a PARENT account with its parent record
// @Summary Create parent
// @Tags parents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateParentRequest true "Parent"
// @Success 201 {object} dto.StructuredResponse{data=dto.ParentResponse} "Parent created"
// @Failure 409 {object} dto.ErrorResponse "Email already in use"
// @Router /parents [post]
func (c *ParentController) CreateParent(ctx *gin.Context) {
	var req dto.CreateParentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	parent, err := c.parentService.Create(ctx.Request.Context(), middleware.GetActor(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, parent, "Parent created")
}

// ListParents lists parents
// @Summary List parents
// @Tags parents
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or email"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse{items=[]dto.ParentResponse}} "Parents retrieved"
// @Router /parents [get]
func (c *ParentController) ListParents(ctx *gin.Context) {
	var req dto.ParentFilterRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}
	page, err := c.parentService.List(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "Parents retrieved")
}

// GetParent returns one parent
// @Summary Get parent
// @Tags parents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Parent ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.ParentResponse} "Parent retrieved"
// @Failure 404 {object} dto.ErrorResponse "Parent not found"
// @Router /parents/{id} [get]
func (c *ParentController) GetParent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	parent, err := c.parentService.Get(ctx.Request.Context(), middleware.GetActor(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, parent, "Parent retrieved")
}

// UpdateParent updates a parent
// @Summary Update parent
// @Tags parents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Parent ID"
// @Param request body dto.UpdateParentRequest true "Fields to change"
// @Success 200 {object} dto.StructuredResponse{data=dto.ParentResponse} "Parent updated"
// @Failure 404 {object} dto.ErrorResponse "Parent not found"
// @Router /parents/{id} [patch]
func (c *ParentController) UpdateParent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateParentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	parent, err := c.parentService.Update(ctx.Request.Context(), middleware.GetActor(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, parent, "Parent updated")
}

// DeleteParent soft deletes a parent and removes their links
// @Summary Delete parent
// @Tags parents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Parent ID"
// @Success 200 {object} dto.StructuredResponse "Parent deleted"
// @Failure 404 {object} dto.ErrorResponse "Parent not found"
// @Router /parents/{id} [delete]
func (c *ParentController) DeleteParent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.parentService.Delete(ctx.Request.Context(), middleware.GetActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Parent deleted")
}

// LinkStudent links a student to a parent
// @Summary Link student
// @Tags parents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Parent ID"
// @Param request body dto.LinkStudentRequest true "Student and relationship"
// @Success 201 {object} dto.StructuredResponse "Student linked"
// @Failure 404 {object} dto.ErrorResponse "Parent or student not found"
// @Failure 409 {object} dto.ErrorResponse "Already linked"
// @Router /parents/{id}/students [post]
func (c *ParentController) LinkStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.LinkStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if err := c.parentService.LinkStudent(ctx.Request.Context(), middleware.GetActor(ctx), id, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, nil, "Student linked")
}

// UnlinkStudent removes a parent/student link
// @Summary Unlink student
// @Tags parents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Parent ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.StructuredResponse "Student unlinked"
// @Failure 404 {object} dto.ErrorResponse "Link not found"
// @Router /parents/{id}/students/{studentId} [delete]
func (c *ParentController) UnlinkStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	studentID, ok := parseIDParam(ctx, "studentId")
	if !ok {
		return
	}
	if err := c.parentService.UnlinkStudent(ctx.Request.Context(), middleware.GetActor(ctx), id, studentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Student unlinked")
}

// ListStudents lists the students linked to a parent
// @Summary Parent's students
// @Tags parents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Parent ID"
// @Success 200 {object} dto.StructuredResponse{data=[]dto.LinkedStudentResponse} "Students retrieved"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /parents/{id}/students [get]
func (c *ParentController) ListStudents(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	students, err := c.parentService.ListStudents(ctx.Request.Context(), middleware.GetActor(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, students, "Students retrieved")
}
