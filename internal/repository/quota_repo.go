package repository

import (
	"context"

	"hrm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuotaRepository interface {
	// FindByPeriod returns gorm.ErrRecordNotFound when the period is
	// unprovisioned; callers treat that as allowed_days = 0.
	FindByPeriod(ctx context.Context, employeeID uuid.UUID, year, month int) (*model.LeaveQuota, error)
	// Upsert creates or overwrites the unique (employee, year, month) row.
	Upsert(ctx context.Context, quota *model.LeaveQuota) error
	ListByEmployee(ctx context.Context, employeeID uuid.UUID, year int) ([]model.LeaveQuota, error)
	// LockEmployee takes a transaction-scoped advisory lock on the employee's
	// ledger so concurrent approvals for the same employee serialize.
	LockEmployee(ctx context.Context, employeeID uuid.UUID) error
}

type quotaRepository struct {
	db *gorm.DB
}

func NewQuotaRepository(db *gorm.DB) QuotaRepository {
	return &quotaRepository{db: db}
}

func (r *quotaRepository) FindByPeriod(ctx context.Context, employeeID uuid.UUID, year, month int) (*model.LeaveQuota, error) {
	var quota model.LeaveQuota
	if err := GetDB(ctx, r.db).
		First(&quota, "employee_id = ? AND year = ? AND month = ?", employeeID, year, month).Error; err != nil {
		return nil, err
	}
	return &quota, nil
}

func (r *quotaRepository) Upsert(ctx context.Context, quota *model.LeaveQuota) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "employee_id"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"allowed_days", "note", "updated_at"}),
	}).Create(quota).Error
}

func (r *quotaRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID, year int) ([]model.LeaveQuota, error) {
	var quotas []model.LeaveQuota
	query := GetDB(ctx, r.db).Where("employee_id = ?", employeeID)
	if year > 0 {
		query = query.Where("year = ?", year)
	}
	if err := query.Order("year asc, month asc").Find(&quotas).Error; err != nil {
		return nil, err
	}
	return quotas, nil
}

func (r *quotaRepository) LockEmployee(ctx context.Context, employeeID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", employeeID.String()).Error
}
