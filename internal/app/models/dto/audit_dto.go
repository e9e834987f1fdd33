package dto

// AuditLogFilterRequest represents audit log list filters
type AuditLogFilterRequest struct {
	EntityType string `form:"entityType" binding:"omitempty,max=50"`
	EntityID   *int64 `form:"entityId" binding:"omitempty,min=1"`
	ActorID    *int64 `form:"actorId" binding:"omitempty,min=1"`
	PageQuery
}
