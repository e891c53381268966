package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaveQuota is the monthly allowance ledger row: how many leave days an
// employee may spend in (year, month). At most one row per key.
type LeaveQuota struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EmployeeID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_leave_quotas_period" json:"employee_id"`
	Employee    *Employee       `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Year        int             `gorm:"not null;uniqueIndex:idx_leave_quotas_period" json:"year"`
	Month       int             `gorm:"not null;uniqueIndex:idx_leave_quotas_period" json:"month"` // 1-12
	AllowedDays decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"allowed_days"`            // 0 <= v <= 31
	Note        string          `gorm:"type:varchar(500)" json:"note"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Quota bounds: a month never grants less than zero or more than its day count.
var (
	MinAllowedDays = decimal.Zero
	MaxAllowedDays = decimal.NewFromInt(31)
)

// ValidAllowedDays reports whether v is inside the grantable range.
func ValidAllowedDays(v decimal.Decimal) bool {
	return v.GreaterThanOrEqual(MinAllowedDays) && v.LessThanOrEqual(MaxAllowedDays)
}
