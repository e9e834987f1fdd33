package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
)

// ClassController handles class sections
type ClassController struct {
	classService services.ClassService
}

// NewClassController creates a new ClassController
func NewClassController(classService services.ClassService) *ClassController {
	return &ClassController{classService: classService}
}

// CreateClass creates a class section
// @Summary Create class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateClassRequest true "Class"
// @Success 201 {object} dto.StructuredResponse{data=models.Class} "Class created"
// @Failure 400 {object} dto.ErrorResponse "Class teacher is not a teacher"
// @Failure 404 {object} dto.ErrorResponse "Room or teacher not found"
// @Failure 409 {object} dto.ErrorResponse "Class already exists"
// @Router /classes [post]
func (c *ClassController) CreateClass(ctx *gin.Context) {
	var req dto.CreateClassRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	class, err := c.classService.Create(ctx.Request.Context(), middleware.GetActor(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, class, "Class created")
}

// ListClasses lists classes
// @Summary List classes
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param academicYear query string false "Academic year"
// @Param search query string false "Name or section"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse{items=[]models.Class}} "Classes retrieved"
// @Router /classes [get]
func (c *ClassController) ListClasses(ctx *gin.Context) {
	var req dto.ClassFilterRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}
	page, err := c.classService.List(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "Classes retrieved")
}

// GetClass returns one class
// @Summary Get class
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.StructuredResponse{data=models.Class} "Class retrieved"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id} [get]
func (c *ClassController) GetClass(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	class, err := c.classService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, class, "Class retrieved")
}

// UpdateClass updates a class
// @Summary Update class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Param request body dto.UpdateClassRequest true "Fields to change"
// @Success 200 {object} dto.StructuredResponse{data=models.Class} "Class updated"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Failure 409 {object} dto.ErrorResponse "Class already exists"
// @Router /classes/{id} [patch]
func (c *ClassController) UpdateClass(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateClassRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	class, err := c.classService.Update(ctx.Request.Context(), middleware.GetActor(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, class, "Class updated")
}

// DeleteClass soft deletes a class without active students
// @Summary Delete class
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.StructuredResponse "Class deleted"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Failure 409 {object} dto.ErrorResponse "Class has active students"
// @Router /classes/{id} [delete]
func (c *ClassController) DeleteClass(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.classService.Delete(ctx.Request.Context(), middleware.GetActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Class deleted")
}

// ListStudents lists the students enrolled in a class
// @Summary Class students
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse{items=[]dto.StudentResponse}} "Students retrieved"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id}/students [get]
func (c *ClassController) ListStudents(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var q dto.PageQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	page, err := c.classService.ListStudents(ctx.Request.Context(), id, q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "Students retrieved")
}
