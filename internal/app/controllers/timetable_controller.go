package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
)

// TimetableController handles timetable entries and weekly views
type TimetableController struct {
	timetableService services.TimetableService
}

// NewTimetableController creates a new TimetableController
func NewTimetableController(timetableService services.TimetableService) *TimetableController {
	return &TimetableController{timetableService: timetableService}
}

// CreateEntry schedules a period
// @Summary Create timetable entry
// @Description Rejected with 409 when the class, teacher or room already has an overlapping period that day
// @Tags timetable
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTimetableEntryRequest true "Entry"
// @Success 201 {object} dto.StructuredResponse{data=models.TimetableEntry} "Entry created"
// @Failure 400 {object} dto.ErrorResponse "Invalid time range"
// @Failure 409 {object} dto.ErrorResponse "Scheduling conflict"
// @Router /timetable [post]
func (c *TimetableController) CreateEntry(ctx *gin.Context) {
	var req dto.CreateTimetableEntryRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	entry, err := c.timetableService.Create(ctx.Request.Context(), middleware.GetActor(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, entry, "Timetable entry created")
}

// UpdateEntry changes a period
// @Summary Update timetable entry
// @Tags timetable
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Param request body dto.UpdateTimetableEntryRequest true "Fields to change"
// @Success 200 {object} dto.StructuredResponse{data=models.TimetableEntry} "Entry updated"
// @Failure 404 {object} dto.ErrorResponse "Entry not found"
// @Failure 409 {object} dto.ErrorResponse "Scheduling conflict"
// @Router /timetable/{id} [patch]
func (c *TimetableController) UpdateEntry(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateTimetableEntryRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	entry, err := c.timetableService.Update(ctx.Request.Context(), middleware.GetActor(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, entry, "Timetable entry updated")
}

// DeleteEntry removes a period
// @Summary Delete timetable entry
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Success 200 {object} dto.StructuredResponse "Entry deleted"
// @Failure 404 {object} dto.ErrorResponse "Entry not found"
// @Router /timetable/{id} [delete]
func (c *TimetableController) DeleteEntry(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.timetableService.Delete(ctx.Request.Context(), middleware.GetActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Timetable entry deleted")
}

// ClassTimetable returns the week of a class
// @Summary Class timetable
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.TimetableView} "Timetable retrieved"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /timetable/classes/{id} [get]
func (c *TimetableController) ClassTimetable(ctx *gin.Context) {
	c.view(ctx, models.TimetableOwnerClass)
}

// TeacherTimetable returns the week of a teacher
// @Summary Teacher timetable
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.TimetableView} "Timetable retrieved"
// @Failure 404 {object} dto.ErrorResponse "Teacher not found"
// @Router /timetable/teachers/{id} [get]
func (c *TimetableController) TeacherTimetable(ctx *gin.Context) {
	c.view(ctx, models.TimetableOwnerTeacher)
}

// RoomTimetable returns the week of a room
// @Summary Room timetable
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.TimetableView} "Timetable retrieved"
// @Failure 404 {object} dto.ErrorResponse "Room not found"
// @Router /timetable/rooms/{id} [get]
func (c *TimetableController) RoomTimetable(ctx *gin.Context) {
	c.view(ctx, models.TimetableOwnerRoom)
}

func (c *TimetableController) view(ctx *gin.Context, owner models.TimetableOwner) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	view, err := c.timetableService.View(ctx.Request.Context(), owner, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, view, "Timetable retrieved")
}
