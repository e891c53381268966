package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionSubmitRequest  = "SUBMIT_REQUEST"
	ActionApproveRequest = "APPROVE_REQUEST"
	ActionRejectRequest  = "REJECT_REQUEST"
	ActionCancelRequest  = "CANCEL_REQUEST"

	// Quota ledger actions
	ActionUpsertQuota     = "UPSERT_QUOTA"
	ActionBulkUpsertQuota = "BULK_UPSERT_QUOTA"

	ActionCreateEmployee = "CREATE_EMPLOYEE"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EmployeeID *uuid.UUID `gorm:"type:uuid;index" json:"employee_id"` // Nullable gracefully if automated job
	Employee   *Employee  `gorm:"foreignKey:EmployeeID" json:"employee"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
