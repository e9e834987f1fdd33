package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
)

// NoticeController handles the notice board
type NoticeController struct {
	noticeService services.NoticeService
}

// NewNoticeController creates a new NoticeController
func NewNoticeController(noticeService services.NoticeService) *NoticeController {
	return &NoticeController{noticeService: noticeService}
}

// PublishNotice stores a notice and pushes it to connected clients of the audience
// @Summary Publish notice
// @Tags notices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateNoticeRequest true "Notice"
// @Success 201 {object} dto.StructuredResponse{data=models.Notice} "Notice published"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Router /notices [post]
func (c *NoticeController) PublishNotice(ctx *gin.Context) {
	var req dto.CreateNoticeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	notice, err := c.noticeService.Publish(ctx.Request.Context(), middleware.GetActor(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, notice, "Notice published")
}

// ListNotices lists the notices visible to the caller
// @Summary List notices
// @Tags notices
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse{items=[]models.Notice}} "Notices retrieved"
// @Router /notices [get]
func (c *NoticeController) ListNotices(ctx *gin.Context) {
	var req dto.NoticeFilterRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}
	page, err := c.noticeService.List(ctx.Request.Context(), middleware.GetActor(ctx), req.PageQuery)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "Notices retrieved")
}

// DeleteNotice soft deletes a notice
// @Summary Delete notice
// @Tags notices
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notice ID"
// @Success 200 {object} dto.StructuredResponse "Notice deleted"
// @Failure 404 {object} dto.ErrorResponse "Notice not found"
// @Router /notices/{id} [delete]
func (c *NoticeController) DeleteNotice(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.noticeService.Delete(ctx.Request.Context(), middleware.GetActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Notice deleted")
}
