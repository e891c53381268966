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

// Actor is the already-authenticated identity a Workflow Controller operation
// runs on behalf of. Credential verification happened upstream; the state
// machine is a pure function of (current state, input, actor).
type Actor struct {
	ID    uuid.UUID
	Roles []string
}

// Decision outcomes accepted by Decide.
const (
	OutcomeApproved = "APPROVED"
	OutcomeRejected = "REJECTED"
)

// Notifier pushes domain events to connected clients. Nil-safe to omit.
type Notifier interface {
	Notify(event string, payload interface{})
}

// --- DTOs ---

type SubmitRequestDTO struct {
	Kind         string `json:"kind" binding:"required,oneof=LEAVE BUSINESS_TRIP OVERTIME LATE_ARRIVAL"`
	LeaveSubtype string `json:"leave_subtype" binding:"omitempty,oneof=FULL_DAY MORNING AFTERNOON"`
	StartDate    string `json:"start_date" binding:"required"`
	EndDate      string `json:"end_date" binding:"required"`
	Note         string `json:"note" binding:"max=500"`
}

type RequestResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name,omitempty"`
	Kind         string  `json:"kind"`
	LeaveSubtype *string `json:"leave_subtype,omitempty"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	Note         string  `json:"note,omitempty"`
	Status       string  `json:"status"`
	QuotaWarning bool    `json:"quota_warning"`
	ApproverID   *string `json:"approver_id,omitempty"`
	ApproverName string  `json:"approver_name,omitempty"`
	ApprovedAt   *string `json:"approved_at,omitempty"`
	ApproverNote string  `json:"approver_note,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

type ListRequestsFilter struct {
	EmployeeID string
	Status     string
	Kind       string
	Page       int
	Limit      int
}

// --- Interface ---

type RequestService interface {
	// Submit creates a request in PENDING_APPROVAL. The leave quota check here
	// is advisory: an over-quota projection sets a warning flag on the request
	// instead of rejecting it, since an administrator may still raise the quota.
	Submit(ctx context.Context, employeeID uuid.UUID, req SubmitRequestDTO) (RequestResponse, error)
	// Decide moves a pending request to APPROVED or REJECTED. Approval
	// re-validates the quota authoritatively inside one transaction; losers of
	// a concurrent race observe INVALID_TRANSITION or QUOTA_EXCEEDED.
	Decide(ctx context.Context, requestID string, actor Actor, outcome, note string) (RequestResponse, error)
	Cancel(ctx context.Context, requestID string, actorID uuid.UUID) (RequestResponse, error)
	GetRequest(ctx context.Context, requestID string) (RequestResponse, error)
	ListRequests(ctx context.Context, filter ListRequestsFilter) ([]RequestResponse, int64, error)
}

type requestService struct {
	requests repository.RequestRepository
	quotas   repository.QuotaRepository
	audits   repository.AuditRepository
	txMgr    repository.TransactionManager
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewRequestService(
	requests repository.RequestRepository,
	quotas repository.QuotaRepository,
	audits repository.AuditRepository,
	txMgr repository.TransactionManager,
	notifier Notifier,
	log zerolog.Logger,
) RequestService {
	return &requestService{
		requests: requests,
		quotas:   quotas,
		audits:   audits,
		txMgr:    txMgr,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// --- Implementation ---

func (s *requestService) Submit(ctx context.Context, employeeID uuid.UUID, req SubmitRequestDTO) (RequestResponse, error) {
	if !model.ValidRequestKind(req.Kind) {
		return RequestResponse{}, apperror.New(apperror.CodeValidation, "unknown request kind %q", req.Kind)
	}

	start, err := time.Parse(daycount.DateFormat, req.StartDate)
	if err != nil {
		return RequestResponse{}, apperror.Wrap(apperror.CodeInvalidDateRange, err, "malformed start date %q", req.StartDate)
	}
	end, err := time.Parse(daycount.DateFormat, req.EndDate)
	if err != nil {
		return RequestResponse{}, apperror.Wrap(apperror.CodeInvalidDateRange, err, "malformed end date %q", req.EndDate)
	}
	if end.Before(start) {
		return RequestResponse{}, apperror.New(apperror.CodeInvalidDateRange,
			"end date %s is before start date %s", req.EndDate, req.StartDate)
	}

	var subtype *string
	if req.Kind == model.RequestKindLeave {
		if !model.ValidLeaveSubtype(req.LeaveSubtype) {
			return RequestResponse{}, apperror.New(apperror.CodeValidation,
				"leave requests require a subtype (FULL_DAY, MORNING or AFTERNOON)")
		}
		subtype = &req.LeaveSubtype
	} else if req.LeaveSubtype != "" {
		return RequestResponse{}, apperror.New(apperror.CodeValidation,
			"leave subtype is only valid for LEAVE requests")
	}

	request := &model.TimeOffRequest{
		EmployeeID:   employeeID,
		Kind:         req.Kind,
		LeaveSubtype: subtype,
		StartDate:    start,
		EndDate:      end,
		Note:         req.Note,
		Status:       model.RequestStatusPending,
	}

	if req.Kind == model.RequestKindLeave {
		warning, err := s.projectionExceedsQuota(ctx, employeeID, start, end, *subtype)
		if err != nil {
			return RequestResponse{}, err
		}
		request.QuotaWarning = warning
	}

	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.requests.Create(txCtx, request); createErr != nil {
			return apperror.Wrap(apperror.CodeInternal, createErr, "failed to create request")
		}

		details, _ := json.Marshal(map[string]interface{}{
			"kind":          req.Kind,
			"start_date":    req.StartDate,
			"end_date":      req.EndDate,
			"quota_warning": request.QuotaWarning,
		})
		audit := model.AuditLog{
			EmployeeID: &employeeID,
			Action:     model.ActionSubmitRequest,
			EntityID:   request.ID.String(),
			EntityName: req.Kind,
			Details:    string(details),
		}
		return s.audits.Log(txCtx, &audit)
	})
	if err != nil {
		return RequestResponse{}, err
	}

	s.publish("request.submitted", request)
	return toRequestResponse(request), nil
}

// projectionExceedsQuota runs the advisory submission-time check: for every
// month the range touches, existing approved usage plus this request's weight
// is compared against the month's allowance.
func (s *requestService) projectionExceedsQuota(ctx context.Context, employeeID uuid.UUID, start, end time.Time, subtype string) (bool, error) {
	for _, ym := range daycount.MonthsTouched(start, end) {
		used, err := computeUsedDays(ctx, s.requests, employeeID, ym.Year, ym.Month)
		if err != nil {
			return false, err
		}
		allowed, err := s.allowedDays(ctx, employeeID, ym.Year, int(ym.Month))
		if err != nil {
			return false, err
		}
		add := daycount.WeightInMonth(start, end, subtype, ym.Year, ym.Month)
		if used.Add(add).GreaterThan(allowed) {
			return true, nil
		}
	}
	return false, nil
}

// allowedDays reads the ledger for one period; an unprovisioned period counts
// as 0 allowed days.
func (s *requestService) allowedDays(ctx context.Context, employeeID uuid.UUID, year, month int) (decimal.Decimal, error) {
	quota, err := s.quotas.FindByPeriod(ctx, employeeID, year, month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, apperror.Wrap(apperror.CodeInternal, err, "failed to load quota for %04d-%02d", year, month)
	}
	return quota.AllowedDays, nil
}

func (s *requestService) Decide(ctx context.Context, requestID string, actor Actor, outcome, note string) (RequestResponse, error) {
	reqID, err := uuid.Parse(requestID)
	if err != nil {
		return RequestResponse{}, apperror.Wrap(apperror.CodeValidation, err, "invalid request id %q", requestID)
	}
	if outcome != OutcomeApproved && outcome != OutcomeRejected {
		return RequestResponse{}, apperror.New(apperror.CodeValidation, "unknown decision outcome %q", outcome)
	}

	var request *model.TimeOffRequest
	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		request, txErr = s.requests.FindByIDForUpdate(txCtx, reqID)
		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "request %s not found", requestID)
			}
			return apperror.Wrap(apperror.CodeInternal, txErr, "failed to load request")
		}

		// A lost concurrent race lands here too: the loser re-reads a row that
		// is no longer pending.
		if request.Status != model.RequestStatusPending {
			return apperror.New(apperror.CodeInvalidTransition,
				"request %s is already %s", requestID, request.Status)
		}
		if actor.ID == request.EmployeeID {
			return apperror.New(apperror.CodeForbidden, "self-approval is not allowed")
		}
		if !model.IsApproverRole(actor.Roles) {
			return apperror.New(apperror.CodeForbidden, "actor lacks an approver role")
		}

		if outcome == OutcomeApproved && request.Kind == model.RequestKindLeave {
			if lockErr := s.quotas.LockEmployee(txCtx, request.EmployeeID); lockErr != nil {
				return apperror.Wrap(apperror.CodeInternal, lockErr, "failed to lock employee ledger")
			}
			if quotaErr := s.checkQuotaForApproval(txCtx, request); quotaErr != nil {
				return quotaErr
			}
		}

		now := s.now()
		if outcome == OutcomeApproved {
			request.Status = model.RequestStatusApproved
		} else {
			request.Status = model.RequestStatusRejected
		}
		request.ApproverID = &actor.ID
		request.ApprovedAt = &now
		request.ApproverNote = note

		if saveErr := s.requests.Update(txCtx, request); saveErr != nil {
			return apperror.Wrap(apperror.CodeInternal, saveErr, "failed to update request")
		}

		action := model.ActionApproveRequest
		if outcome == OutcomeRejected {
			action = model.ActionRejectRequest
		}
		details, _ := json.Marshal(map[string]interface{}{
			"kind":     request.Kind,
			"employee": request.EmployeeID.String(),
			"note":     note,
		})
		audit := model.AuditLog{
			EmployeeID: &actor.ID,
			Action:     action,
			EntityID:   request.ID.String(),
			EntityName: request.Kind,
			Details:    string(details),
		}
		return s.audits.Log(txCtx, &audit)
	})
	if err != nil {
		return RequestResponse{}, err
	}

	s.log.Info().
		Str("request_id", request.ID.String()).
		Str("outcome", outcome).
		Str("approver", actor.ID.String()).
		Msg("request decided")

	s.publish("request.decided", request)
	return toRequestResponse(request), nil
}

// checkQuotaForApproval is the authoritative quota check: for every month the
// request touches, current approved usage plus this request's clipped weight
// must stay within the month's allowance.
func (s *requestService) checkQuotaForApproval(ctx context.Context, request *model.TimeOffRequest) error {
	subtype := leaveSubtypeOf(request)
	for _, ym := range daycount.MonthsTouched(request.StartDate, request.EndDate) {
		used, err := computeUsedDays(ctx, s.requests, request.EmployeeID, ym.Year, ym.Month)
		if err != nil {
			return err
		}
		allowed, err := s.allowedDays(ctx, request.EmployeeID, ym.Year, int(ym.Month))
		if err != nil {
			return err
		}
		add := daycount.WeightInMonth(request.StartDate, request.EndDate, subtype, ym.Year, ym.Month)
		if used.Add(add).GreaterThan(allowed) {
			return apperror.New(apperror.CodeQuotaExceeded,
				"approving request %s would use %s of %s allowed days in %04d-%02d",
				request.ID, used.Add(add).String(), allowed.String(), ym.Year, int(ym.Month))
		}
	}
	return nil
}

func (s *requestService) Cancel(ctx context.Context, requestID string, actorID uuid.UUID) (RequestResponse, error) {
	reqID, err := uuid.Parse(requestID)
	if err != nil {
		return RequestResponse{}, apperror.Wrap(apperror.CodeValidation, err, "invalid request id %q", requestID)
	}

	var request *model.TimeOffRequest
	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		request, txErr = s.requests.FindByIDForUpdate(txCtx, reqID)
		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "request %s not found", requestID)
			}
			return apperror.Wrap(apperror.CodeInternal, txErr, "failed to load request")
		}

		if request.EmployeeID != actorID {
			return apperror.New(apperror.CodeForbidden, "only the requester may cancel a request")
		}
		if request.Status != model.RequestStatusPending {
			return apperror.New(apperror.CodeInvalidTransition,
				"request %s is already %s", requestID, request.Status)
		}

		request.Status = model.RequestStatusCancelled
		if saveErr := s.requests.Update(txCtx, request); saveErr != nil {
			return apperror.Wrap(apperror.CodeInternal, saveErr, "failed to update request")
		}

		audit := model.AuditLog{
			EmployeeID: &actorID,
			Action:     model.ActionCancelRequest,
			EntityID:   request.ID.String(),
			EntityName: request.Kind,
		}
		return s.audits.Log(txCtx, &audit)
	})
	if err != nil {
		return RequestResponse{}, err
	}

	s.publish("request.cancelled", request)
	return toRequestResponse(request), nil
}

func (s *requestService) GetRequest(ctx context.Context, requestID string) (RequestResponse, error) {
	reqID, err := uuid.Parse(requestID)
	if err != nil {
		return RequestResponse{}, apperror.Wrap(apperror.CodeValidation, err, "invalid request id %q", requestID)
	}

	request, err := s.requests.FindByIDWithRelations(ctx, reqID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, apperror.New(apperror.CodeNotFound, "request %s not found", requestID)
		}
		return RequestResponse{}, apperror.Wrap(apperror.CodeInternal, err, "failed to load request")
	}

	return toRequestResponse(request), nil
}

func (s *requestService) ListRequests(ctx context.Context, filter ListRequestsFilter) ([]RequestResponse, int64, error) {
	repoFilter := repository.RequestFilter{
		Status: filter.Status,
		Kind:   filter.Kind,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.EmployeeID != "" {
		empID, err := uuid.Parse(filter.EmployeeID)
		if err != nil {
			return nil, 0, apperror.Wrap(apperror.CodeValidation, err, "invalid employee id %q", filter.EmployeeID)
		}
		repoFilter.EmployeeID = &empID
	}
	if repoFilter.Page <= 0 {
		repoFilter.Page = 1
	}
	if repoFilter.Limit <= 0 {
		repoFilter.Limit = 20
	}

	requests, total, err := s.requests.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, apperror.Wrap(apperror.CodeInternal, err, "failed to list requests")
	}

	result := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, toRequestResponse(&requests[i]))
	}
	return result, total, nil
}

func (s *requestService) publish(event string, request *model.TimeOffRequest) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(event, toRequestResponse(request))
}

// --- Helpers ---

func toRequestResponse(r *model.TimeOffRequest) RequestResponse {
	resp := RequestResponse{
		ID:           r.ID.String(),
		EmployeeID:   r.EmployeeID.String(),
		Kind:         r.Kind,
		LeaveSubtype: r.LeaveSubtype,
		StartDate:    r.StartDate.Format(daycount.DateFormat),
		EndDate:      r.EndDate.Format(daycount.DateFormat),
		Note:         r.Note,
		Status:       r.Status,
		QuotaWarning: r.QuotaWarning,
		ApproverNote: r.ApproverNote,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}

	if r.Employee != nil {
		resp.EmployeeName = r.Employee.FullName
	}
	if r.ApproverID != nil {
		s := r.ApproverID.String()
		resp.ApproverID = &s
	}
	if r.Approver != nil {
		resp.ApproverName = r.Approver.FullName
	}
	if r.ApprovedAt != nil {
		s := r.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &s
	}

	return resp
}
