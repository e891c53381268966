package service

import (
	"context"
	"time"

	"hrm/internal/apperror"
	"hrm/internal/repository"
)

type AuditLogResponse struct {
	ID           string  `json:"id"`
	EmployeeID   *string `json:"employee_id,omitempty"`
	EmployeeName string  `json:"employee_name,omitempty"`
	Action       string  `json:"action"`
	EntityID     string  `json:"entity_id"`
	EntityName   string  `json:"entity_name,omitempty"`
	Details      string  `json:"details"`
	CreatedAt    string  `json:"created_at"`
}

type AuditService interface {
	ListLogs(ctx context.Context, action string, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	audits repository.AuditRepository
}

func NewAuditService(audits repository.AuditRepository) AuditService {
	return &auditService{audits: audits}
}

func (s *auditService) ListLogs(ctx context.Context, action string, page, limit int) ([]AuditLogResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	logs, total, err := s.audits.List(ctx, action, page, limit)
	if err != nil {
		return nil, 0, apperror.Wrap(apperror.CodeInternal, err, "failed to list audit logs")
	}

	result := make([]AuditLogResponse, 0, len(logs))
	for _, entry := range logs {
		resp := AuditLogResponse{
			ID:         entry.ID.String(),
			Action:     entry.Action,
			EntityID:   entry.EntityID,
			EntityName: entry.EntityName,
			Details:    entry.Details,
			CreatedAt:  entry.CreatedAt.Format(time.RFC3339),
		}
		if entry.EmployeeID != nil {
			id := entry.EmployeeID.String()
			resp.EmployeeID = &id
		}
		if entry.Employee != nil {
			resp.EmployeeName = entry.Employee.FullName
		}
		result = append(result, resp)
	}

	return result, total, nil
}
