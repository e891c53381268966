package repository

import (
	"context"
	"time"

	"hrm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestFilter narrows List results for the approval inbox views.
type RequestFilter struct {
	EmployeeID *uuid.UUID
	Status     string
	Kind       string
	Page       int
	Limit      int
}

type RequestRepository interface {
	Create(ctx context.Context, req *model.TimeOffRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TimeOffRequest, error)
	// FindByIDForUpdate locks the request row for the duration of the
	// surrounding transaction so concurrent decisions serialize on it.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.TimeOffRequest, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.TimeOffRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]model.TimeOffRequest, int64, error)
	// ListApprovedLeaveInRange returns APPROVED leave requests of one employee
	// whose inclusive date range intersects [from, to].
	ListApprovedLeaveInRange(ctx context.Context, employeeID uuid.UUID, from, to time.Time) ([]model.TimeOffRequest, error)
	// ListUpcoming returns pending or approved requests starting on or after
	// asOf, ascending by start date.
	ListUpcoming(ctx context.Context, employeeID uuid.UUID, asOf time.Time) ([]model.TimeOffRequest, error)
	Update(ctx context.Context, req *model.TimeOffRequest) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.TimeOffRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TimeOffRequest, error) {
	var req model.TimeOffRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.TimeOffRequest, error) {
	var req model.TimeOffRequest
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.TimeOffRequest, error) {
	var req model.TimeOffRequest
	if err := GetDB(ctx, r.db).Preload("Employee").Preload("Approver").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]model.TimeOffRequest, int64, error) {
	var requests []model.TimeOffRequest
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		if filter.EmployeeID != nil {
			q = q.Where("employee_id = ?", *filter.EmployeeID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.Kind != "" {
			q = q.Where("kind = ?", filter.Kind)
		}
		return q
	}

	if err := apply(db.Model(&model.TimeOffRequest{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := apply(db.Preload("Employee").Preload("Approver")).
		Order("created_at DESC").Offset(offset).Limit(filter.Limit).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *requestRepository) ListApprovedLeaveInRange(ctx context.Context, employeeID uuid.UUID, from, to time.Time) ([]model.TimeOffRequest, error) {
	var requests []model.TimeOffRequest
	if err := GetDB(ctx, r.db).
		Where("employee_id = ? AND kind = ? AND status = ?", employeeID, model.RequestKindLeave, model.RequestStatusApproved).
		Where("start_date <= ? AND end_date >= ?", to, from).
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) ListUpcoming(ctx context.Context, employeeID uuid.UUID, asOf time.Time) ([]model.TimeOffRequest, error) {
	var requests []model.TimeOffRequest
	if err := GetDB(ctx, r.db).
		Where("employee_id = ? AND start_date >= ?", employeeID, asOf).
		Where("status IN ?", []string{model.RequestStatusPending, model.RequestStatusApproved}).
		Order("start_date ASC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) Update(ctx context.Context, req *model.TimeOffRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}
