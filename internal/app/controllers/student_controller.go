package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
)

// StudentController handles students and their fee summaries
type StudentController struct {
	studentService services.StudentService
	feeService     services.FeeService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService, feeService services.FeeService) *StudentController {
	return &StudentController{studentService: studentService, feeService: feeService}
}

// CreateStudent creates a STUDENT account with its student record
// @Summary Create student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student"
// @Success 201 {object} dto.StructuredResponse{data=dto.StudentResponse} "Student created"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Failure 409 {object} dto.ErrorResponse "Email or admission number already in use"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	student, err := c.studentService.Create(ctx.Request.Context(), middleware.GetActor(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, student, "Student created")
}

// ListStudents lists students
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param classId query int false "Class ID"
// @Param search query string false "Name, email or admission number"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse{items=[]dto.StudentResponse}} "Students retrieved"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	var req dto.StudentFilterRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}
	page, err := c.studentService.List(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "Students retrieved")
}

// GetStudent returns one student to staff, a linked parent or the student themself
// @Summary Get student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.StudentResponse} "Student retrieved"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	student, err := c.studentService.Get(ctx.Request.Context(), middleware.GetActor(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, student, "Student retrieved")
}

// UpdateStudent updates a student
// @Summary Update student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.UpdateStudentRequest true "Fields to change"
// @Success 200 {object} dto.StructuredResponse{data=dto.StudentResponse} "Student updated"
// @Failure 404 {object} dto.ErrorResponse "Student or class not found"
// @Failure 409 {object} dto.ErrorResponse "Admission number already in use"
// @Router /students/{id} [patch]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	student, err := c.studentService.Update(ctx.Request.Context(), middleware.GetActor(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, student, "Student updated")
}

// DeleteStudent soft deletes a student and their account
// @Summary Delete student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.StructuredResponse "Student deleted"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.studentService.Delete(ctx.Request.Context(), middleware.GetActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Student deleted")
}

// ListParents lists the parents of a student
// @Summary Student's parents
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.StructuredResponse{data=[]dto.LinkedParentResponse} "Parents retrieved"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /students/{id}/parents [get]
func (c *StudentController) ListParents(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	parents, err := c.studentService.ListParents(ctx.Request.Context(), middleware.GetActor(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, parents, "Parents retrieved")
}

// Fees computes what the student owes in an academic year
// @Summary Student fee summary
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param academicYear query string false "Academic year, defaults to the class's year"
// @Success 200 {object} dto.StructuredResponse{data=dto.StudentFeeSummary} "Fees computed"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/fees [get]
func (c *StudentController) Fees(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	summary, err := c.feeService.ComputeForStudent(ctx.Request.Context(), middleware.GetActor(ctx), id, ctx.Query("academicYear"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, summary, "Fees computed")
}
