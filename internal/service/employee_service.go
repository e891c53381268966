package service

import (
	"context"
	"errors"
	"time"

	"hrm/internal/apperror"
	"hrm/internal/middleware"
	"hrm/internal/model"
	"hrm/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type CreateEmployeeRequest struct {
	Username     string `json:"username" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	FullName     string `json:"full_name" binding:"required"`
	Password     string `json:"password" binding:"required,min=6"`
	Role         string `json:"role" binding:"required,oneof=staff department_head director admin"`
	DepartmentID string `json:"department_id" binding:"omitempty,uuid"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// DTO for returning Employee without exposing sensitive data
type EmployeeResponse struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	DepartmentID *string   `json:"department_id,omitempty"`
	Department   string    `json:"department,omitempty"`
	CreatedAt    string    `json:"created_at"`
}

// EmployeeService defines the interface for business logic related to Employee
type EmployeeService interface {
	CreateEmployee(ctx context.Context, actorID *uuid.UUID, req CreateEmployeeRequest) (*EmployeeResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	GetEmployeeByID(ctx context.Context, id string) (*EmployeeResponse, error)
	ListEmployees(ctx context.Context, page, limit int) ([]EmployeeResponse, int64, error)
}

type employeeService struct {
	employees   repository.EmployeeRepository
	departments repository.DepartmentRepository
	audits      repository.AuditRepository
}

// NewEmployeeService returns a new instance of EmployeeService
func NewEmployeeService(employees repository.EmployeeRepository, departments repository.DepartmentRepository, audits repository.AuditRepository) EmployeeService {
	return &employeeService{employees: employees, departments: departments, audits: audits}
}

func mapToEmployeeResponse(e *model.Employee) *EmployeeResponse {
	resp := &EmployeeResponse{
		ID:        e.ID,
		Username:  e.Username,
		Email:     e.Email,
		FullName:  e.FullName,
		Role:      e.Role,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
	if e.DepartmentID != nil {
		s := e.DepartmentID.String()
		resp.DepartmentID = &s
	}
	if e.Department != nil {
		resp.Department = e.Department.Name
	}
	return resp
}

func (s *employeeService) CreateEmployee(ctx context.Context, actorID *uuid.UUID, req CreateEmployeeRequest) (*EmployeeResponse, error) {
	if _, err := s.employees.GetByUsername(ctx, req.Username); err == nil {
		return nil, apperror.New(apperror.CodeValidation, "username %q already exists", req.Username)
	}
	if _, err := s.employees.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperror.New(apperror.CodeValidation, "email %q already exists", req.Email)
	}

	var departmentID *uuid.UUID
	if req.DepartmentID != "" {
		parsed, err := uuid.Parse(req.DepartmentID)
		if err != nil {
			return nil, apperror.Wrap(apperror.CodeValidation, err, "invalid department id %q", req.DepartmentID)
		}
		if _, err := s.departments.GetByID(ctx, parsed); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.New(apperror.CodeNotFound, "department %s not found", parsed)
			}
			return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to load department")
		}
		departmentID = &parsed
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to hash password")
	}

	employee := &model.Employee{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		Password:     string(hashedPassword),
		Role:         req.Role,
		DepartmentID: departmentID,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to create employee")
	}

	audit := model.AuditLog{
		EmployeeID: actorID,
		Action:     model.ActionCreateEmployee,
		EntityID:   employee.ID.String(),
		EntityName: employee.Username,
	}
	_ = s.audits.Log(ctx, &audit)

	return mapToEmployeeResponse(employee), nil
}

func (s *employeeService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	employee, err := s.employees.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.New(apperror.CodeForbidden, "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.Password), []byte(req.Password)); err != nil {
		return nil, apperror.New(apperror.CodeForbidden, "invalid email or password")
	}

	// Generate JWT Token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  employee.ID.String(),
		"role": employee.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to generate token")
	}

	return &TokenResponse{Token: tokenString}, nil
}

func (s *employeeService) GetEmployeeByID(ctx context.Context, id string) (*EmployeeResponse, error) {
	empID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeValidation, err, "invalid employee id %q", id)
	}
	employee, err := s.employees.GetByID(ctx, empID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "employee %s not found", id)
		}
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to load employee")
	}
	return mapToEmployeeResponse(employee), nil
}

func (s *employeeService) ListEmployees(ctx context.Context, page, limit int) ([]EmployeeResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	employees, total, err := s.employees.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.Wrap(apperror.CodeInternal, err, "failed to list employees")
	}

	responses := make([]EmployeeResponse, 0, len(employees))
	for i := range employees {
		responses = append(responses, *mapToEmployeeResponse(&employees[i]))
	}

	return responses, total, nil
}
