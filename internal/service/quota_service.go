package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"hrm/internal/apperror"
	"hrm/internal/model"
	"hrm/internal/repository"
	"hrm/pkg/daycount"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type UpsertQuotaDTO struct {
	EmployeeID  string          `json:"employee_id" binding:"required,uuid"`
	Year        int             `json:"year" binding:"required,min=2000,max=2100"`
	Month       int             `json:"month" binding:"required,min=1,max=12"`
	AllowedDays decimal.Decimal `json:"allowed_days"`
	Note        string          `json:"note" binding:"max=500"`
}

type BulkUpsertQuotaDTO struct {
	Year         int             `json:"year" binding:"required,min=2000,max=2100"`
	Month        int             `json:"month" binding:"required,min=1,max=12"`
	AllowedDays  decimal.Decimal `json:"allowed_days"`
	DepartmentID *string         `json:"department_id" binding:"omitempty,uuid"`
	Note         string          `json:"note" binding:"max=500"`
}

type QuotaResponse struct {
	ID          string `json:"id,omitempty"`
	EmployeeID  string `json:"employee_id"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	AllowedDays string `json:"allowed_days"`
	Note        string `json:"note,omitempty"`
	// Configured is false when no ledger row exists for the period; allowed
	// days then default to 0 so the UI can warn administrators instead of
	// silently blocking requests.
	Configured bool `json:"configured"`
}

// BulkRowError reports one employee the bulk provisioner could not update.
type BulkRowError struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

type BulkUpsertResult struct {
	UpdatedCount int            `json:"updated_count"`
	Errors       []BulkRowError `json:"errors"`
}

// --- Interface ---

type QuotaService interface {
	GetQuota(ctx context.Context, employeeID string, year, month int) (QuotaResponse, error)
	UpsertQuota(ctx context.Context, actorID uuid.UUID, req UpsertQuotaDTO) (QuotaResponse, error)
	ListQuotas(ctx context.Context, employeeID string, year int) ([]QuotaResponse, error)
	ComputeUsedDays(ctx context.Context, employeeID uuid.UUID, year int, month time.Month) (decimal.Decimal, error)
	// BulkUpsertQuota applies one allowance across the resolved employee set.
	// It is a best-effort batch, not a transaction: per-row failures are
	// collected and reported, the remaining rows are still written.
	BulkUpsertQuota(ctx context.Context, actorID uuid.UUID, req BulkUpsertQuotaDTO) (BulkUpsertResult, error)
}

type quotaService struct {
	quotas      repository.QuotaRepository
	requests    repository.RequestRepository
	employees   repository.EmployeeRepository
	departments repository.DepartmentRepository
	audits      repository.AuditRepository
	txMgr       repository.TransactionManager
	log         zerolog.Logger
}

func NewQuotaService(
	quotas repository.QuotaRepository,
	requests repository.RequestRepository,
	employees repository.EmployeeRepository,
	departments repository.DepartmentRepository,
	audits repository.AuditRepository,
	txMgr repository.TransactionManager,
	log zerolog.Logger,
) QuotaService {
	return &quotaService{
		quotas:      quotas,
		requests:    requests,
		employees:   employees,
		departments: departments,
		audits:      audits,
		txMgr:       txMgr,
		log:         log,
	}
}

// --- Implementation ---

func (s *quotaService) GetQuota(ctx context.Context, employeeID string, year, month int) (QuotaResponse, error) {
	empID, err := uuid.Parse(employeeID)
	if err != nil {
		return QuotaResponse{}, apperror.Wrap(apperror.CodeValidation, err, "invalid employee id %q", employeeID)
	}
	if month < 1 || month > 12 {
		return QuotaResponse{}, apperror.New(apperror.CodeValidation, "invalid month %d", month)
	}

	quota, err := s.quotas.FindByPeriod(ctx, empID, year, month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unprovisioned period: allowed days default to 0 by convention.
			return QuotaResponse{
				EmployeeID:  employeeID,
				Year:        year,
				Month:       month,
				AllowedDays: decimal.Zero.String(),
				Configured:  false,
			}, nil
		}
		return QuotaResponse{}, apperror.Wrap(apperror.CodeInternal, err, "failed to load quota")
	}

	return toQuotaResponse(quota), nil
}

func (s *quotaService) UpsertQuota(ctx context.Context, actorID uuid.UUID, req UpsertQuotaDTO) (QuotaResponse, error) {
	empID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return QuotaResponse{}, apperror.Wrap(apperror.CodeValidation, err, "invalid employee id %q", req.EmployeeID)
	}

	var quota *model.LeaveQuota
	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		quota, txErr = s.upsertOne(txCtx, empID, req.Year, req.Month, req.AllowedDays, req.Note)
		if txErr != nil {
			return txErr
		}

		details, _ := json.Marshal(map[string]interface{}{
			"employee_id":  req.EmployeeID,
			"year":         req.Year,
			"month":        req.Month,
			"allowed_days": req.AllowedDays.String(),
		})
		audit := model.AuditLog{
			EmployeeID: &actorID,
			Action:     model.ActionUpsertQuota,
			EntityID:   quota.ID.String(),
			Details:    string(details),
		}
		return s.audits.Log(txCtx, &audit)
	})
	if err != nil {
		return QuotaResponse{}, err
	}

	return toQuotaResponse(quota), nil
}

// upsertOne validates and writes a single ledger row. Shared by the single
// edit path and the bulk provisioner.
func (s *quotaService) upsertOne(ctx context.Context, employeeID uuid.UUID, year, month int, allowedDays decimal.Decimal, note string) (*model.LeaveQuota, error) {
	if !model.ValidAllowedDays(allowedDays) {
		return nil, apperror.New(apperror.CodeInvalidQuotaValue,
			"allowed days must be between 0 and 31, got %s", allowedDays.String())
	}
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "employee %s not found", employeeID)
		}
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to load employee %s", employeeID)
	}

	quota := &model.LeaveQuota{
		EmployeeID:  employeeID,
		Year:        year,
		Month:       month,
		AllowedDays: allowedDays,
		Note:        note,
	}
	if err := s.quotas.Upsert(ctx, quota); err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to upsert quota for employee %s", employeeID)
	}
	return quota, nil
}

func (s *quotaService) ListQuotas(ctx context.Context, employeeID string, year int) ([]QuotaResponse, error) {
	empID, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeValidation, err, "invalid employee id %q", employeeID)
	}

	quotas, err := s.quotas.ListByEmployee(ctx, empID, year)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to list quotas")
	}

	result := make([]QuotaResponse, 0, len(quotas))
	for i := range quotas {
		result = append(result, toQuotaResponse(&quotas[i]))
	}
	return result, nil
}

func (s *quotaService) ComputeUsedDays(ctx context.Context, employeeID uuid.UUID, year int, month time.Month) (decimal.Decimal, error) {
	return computeUsedDays(ctx, s.requests, employeeID, year, month)
}

// computeUsedDays sums the day-weighted contributions of approved leave
// requests intersecting (year, month), clipped to the days inside the month.
// It reads through whatever transaction ctx carries, so the decide path gets
// a consistent view.
func computeUsedDays(ctx context.Context, requests repository.RequestRepository, employeeID uuid.UUID, year int, month time.Month) (decimal.Decimal, error) {
	first, last := daycount.MonthBounds(year, month)
	rows, err := requests.ListApprovedLeaveInRange(ctx, employeeID, first, last)
	if err != nil {
		return decimal.Zero, apperror.Wrap(apperror.CodeInternal, err, "failed to load approved leave for %04d-%02d", year, month)
	}

	used := decimal.Zero
	for i := range rows {
		used = used.Add(daycount.WeightInMonth(rows[i].StartDate, rows[i].EndDate, leaveSubtypeOf(&rows[i]), year, month))
	}
	return used, nil
}

func leaveSubtypeOf(req *model.TimeOffRequest) string {
	if req.LeaveSubtype != nil {
		return *req.LeaveSubtype
	}
	return model.LeaveSubtypeFullDay
}

func (s *quotaService) BulkUpsertQuota(ctx context.Context, actorID uuid.UUID, req BulkUpsertQuotaDTO) (BulkUpsertResult, error) {
	var departmentID *uuid.UUID
	if req.DepartmentID != nil && *req.DepartmentID != "" {
		parsed, err := uuid.Parse(*req.DepartmentID)
		if err != nil {
			return BulkUpsertResult{}, apperror.Wrap(apperror.CodeValidation, err, "invalid department id %q", *req.DepartmentID)
		}
		if _, err := s.departments.GetByID(ctx, parsed); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return BulkUpsertResult{}, apperror.New(apperror.CodeNotFound, "department %s not found", parsed)
			}
			return BulkUpsertResult{}, apperror.Wrap(apperror.CodeInternal, err, "failed to load department")
		}
		departmentID = &parsed
	}

	targets, err := s.employees.ListActive(ctx, departmentID)
	if err != nil {
		return BulkUpsertResult{}, apperror.Wrap(apperror.CodeInternal, err, "failed to resolve employee set")
	}

	// Best-effort batch: one bad row must not blank the rest, so each
	// employee is upserted independently and failures are collected.
	result := BulkUpsertResult{Errors: []BulkRowError{}}
	for i := range targets {
		emp := &targets[i]
		if _, err := s.upsertOne(ctx, emp.ID, req.Year, req.Month, req.AllowedDays, req.Note); err != nil {
			result.Errors = append(result.Errors, BulkRowError{
				EmployeeID: emp.ID.String(),
				Reason:     err.Error(),
			})
			continue
		}
		result.UpdatedCount++
	}

	details, _ := json.Marshal(map[string]interface{}{
		"year":          req.Year,
		"month":         req.Month,
		"allowed_days":  req.AllowedDays.String(),
		"department_id": req.DepartmentID,
		"updated_count": result.UpdatedCount,
		"error_count":   len(result.Errors),
	})
	audit := model.AuditLog{
		Action:  model.ActionBulkUpsertQuota,
		Details: string(details),
	}
	// Scheduled runs have no human actor; the audit row stays attributable to
	// the system via a null employee id.
	if actorID != uuid.Nil {
		audit.EmployeeID = &actorID
	}
	if err := s.audits.Log(ctx, &audit); err != nil {
		s.log.Warn().Err(err).Msg("failed to write bulk quota audit log")
	}

	s.log.Info().
		Int("year", req.Year).
		Int("month", req.Month).
		Int("updated", result.UpdatedCount).
		Int("failed", len(result.Errors)).
		Msg("bulk quota provisioning finished")

	return result, nil
}

// --- Helpers ---

func toQuotaResponse(q *model.LeaveQuota) QuotaResponse {
	return QuotaResponse{
		ID:          q.ID.String(),
		EmployeeID:  q.EmployeeID.String(),
		Year:        q.Year,
		Month:       q.Month,
		AllowedDays: q.AllowedDays.String(),
		Note:        q.Note,
		Configured:  true,
	}
}
