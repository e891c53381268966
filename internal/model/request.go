package model

import (
	"time"

	"github.com/google/uuid"
)

// RequestKind enum constants
const (
	RequestKindLeave        = "LEAVE"
	RequestKindBusinessTrip = "BUSINESS_TRIP"
	RequestKindOvertime     = "OVERTIME"
	RequestKindLateArrival  = "LATE_ARRIVAL"
)

// LeaveSubtype enum constants, only set when kind = LEAVE.
// Morning/Afternoon consume 0.5 day per calendar day, FullDay consumes 1.0.
const (
	LeaveSubtypeFullDay   = "FULL_DAY"
	LeaveSubtypeMorning   = "MORNING"
	LeaveSubtypeAfternoon = "AFTERNOON"
)

// RequestStatus enum constants
const (
	RequestStatusPending   = "PENDING_APPROVAL"
	RequestStatusApproved  = "APPROVED"
	RequestStatusRejected  = "REJECTED"
	RequestStatusCancelled = "CANCELLED"
)

// TimeOffRequest represents a single employee submission (leave, business trip,
// overtime or late arrival) moving through the approval state machine.
// Rows are never deleted: CANCELLED is a terminal state kept for audit history.
type TimeOffRequest struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EmployeeID   uuid.UUID `gorm:"type:uuid;not null;index:idx_requests_employee_dates" json:"employee_id"`
	Employee     *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Kind         string    `gorm:"type:varchar(30);not null;index" json:"kind"`
	LeaveSubtype *string   `gorm:"type:varchar(20)" json:"leave_subtype,omitempty"`
	StartDate    time.Time `gorm:"type:date;not null;index:idx_requests_employee_dates" json:"start_date"`
	EndDate      time.Time `gorm:"type:date;not null;index:idx_requests_employee_dates" json:"end_date"`
	Note         string    `gorm:"type:varchar(500)" json:"note"`

	Status string `gorm:"type:varchar(20);not null;default:'PENDING_APPROVAL';index" json:"status"`

	// QuotaWarning is set at submission time when the advisory projection already
	// exceeds the month's allowance. The request is still created; the
	// authoritative check happens at approval time.
	QuotaWarning bool `gorm:"default:false" json:"quota_warning"`

	ApproverID   *uuid.UUID `gorm:"type:uuid" json:"approver_id"`
	Approver     *Employee  `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at"`
	ApproverNote string     `gorm:"type:varchar(500)" json:"approver_note"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsDecided reports whether the request reached a decision (approved or rejected).
func (r *TimeOffRequest) IsDecided() bool {
	return r.Status == RequestStatusApproved || r.Status == RequestStatusRejected
}

// ValidRequestKind reports whether kind is one of the fixed enumeration values.
func ValidRequestKind(kind string) bool {
	switch kind {
	case RequestKindLeave, RequestKindBusinessTrip, RequestKindOvertime, RequestKindLateArrival:
		return true
	}
	return false
}

// ValidLeaveSubtype reports whether subtype is one of the fixed enumeration values.
func ValidLeaveSubtype(subtype string) bool {
	switch subtype {
	case LeaveSubtypeFullDay, LeaveSubtypeMorning, LeaveSubtypeAfternoon:
		return true
	}
	return false
}
