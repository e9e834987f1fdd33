package models

import "time"

// Audit actions
const (
	AuditCreate        = "CREATE"
	AuditUpdate        = "UPDATE"
	AuditDelete        = "DELETE"
	AuditSalaryUpdate  = "SALARY_UPDATE"
	AuditLogin         = "LOGIN"
	AuditPasswordReset = "PASSWORD_RESET"
	AuditLink          = "LINK"
	AuditUnlink        = "UNLINK"
)

// AuditLog records who did what to which entity ('audit_logs')
type AuditLog struct {
	ID         int64                  `json:"id" db:"id"`
	ActorID    *int64                 `json:"actorId,omitempty" db:"actor_id"`
	Action     string                 `json:"action" db:"action" example:"SALARY_UPDATE"`
	EntityType string                 `json:"entityType" db:"entity_type" example:"staff"`
	EntityID   *int64                 `json:"entityId,omitempty" db:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	IPAddress  *string                `json:"ipAddress,omitempty" db:"ip_address"`
	CreatedAt  time.Time              `json:"createdAt" db:"created_at"`
}
