package service

import (
	"context"
	"errors"
	"time"

	"hrm/internal/apperror"
	"hrm/internal/model"
	"hrm/internal/repository"

	"gorm.io/gorm"
)

type CreateDepartmentRequest struct {
	Code string `json:"code" binding:"required,max=20"`
	Name string `json:"name" binding:"required,max=255"`
}

type DepartmentResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type DepartmentService interface {
	CreateDepartment(ctx context.Context, req CreateDepartmentRequest) (*DepartmentResponse, error)
	ListDepartments(ctx context.Context) ([]DepartmentResponse, error)
}

type departmentService struct {
	departments repository.DepartmentRepository
}

func NewDepartmentService(departments repository.DepartmentRepository) DepartmentService {
	return &departmentService{departments: departments}
}

func (s *departmentService) CreateDepartment(ctx context.Context, req CreateDepartmentRequest) (*DepartmentResponse, error) {
	if _, err := s.departments.GetByCode(ctx, req.Code); err == nil {
		return nil, apperror.New(apperror.CodeValidation, "department code %q already exists", req.Code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to check department code")
	}

	department := &model.Department{Code: req.Code, Name: req.Name}
	if err := s.departments.Create(ctx, department); err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to create department")
	}
	return toDepartmentResponse(department), nil
}

func (s *departmentService) ListDepartments(ctx context.Context) ([]DepartmentResponse, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to list departments")
	}

	result := make([]DepartmentResponse, 0, len(departments))
	for i := range departments {
		result = append(result, *toDepartmentResponse(&departments[i]))
	}
	return result, nil
}

func toDepartmentResponse(d *model.Department) *DepartmentResponse {
	return &DepartmentResponse{
		ID:        d.ID.String(),
		Code:      d.Code,
		Name:      d.Name,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
}
