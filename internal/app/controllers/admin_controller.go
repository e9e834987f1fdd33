package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
)

// AdminController serves the audit trail and the dashboard counters
type AdminController struct {
	auditService     services.AuditService
	dashboardService services.DashboardService
}

// NewAdminController creates a new AdminController
func NewAdminController(auditService services.AuditService, dashboardService services.DashboardService) *AdminController {
	return &AdminController{auditService: auditService, dashboardService: dashboardService}
}

// ListAuditLogs lists audit entries newest first
// @Summary List audit logs
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param entityType query string false "Entity type, e.g. STAFF"
// @Param entityId query int false "Entity ID"
// @Param actorId query int false "Acting user ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse{items=[]models.AuditLog}} "Audit logs retrieved"
// @Router /audit-logs [get]
func (c *AdminController) ListAuditLogs(ctx *gin.Context) {
	var req dto.AuditLogFilterRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}
	page, err := c.auditService.List(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, page, "Audit logs retrieved")
}

// DashboardStats returns the school-wide counters
// @Summary Dashboard statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=dto.DashboardStats} "Statistics retrieved"
// @Router /dashboard/stats [get]
func (c *AdminController) DashboardStats(ctx *gin.Context) {
	stats, err := c.dashboardService.Stats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, stats, "Statistics retrieved")
}
