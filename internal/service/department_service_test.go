package service

import (
	"context"
	"testing"

	"hrm/internal/apperror"
)

func TestCreateDepartment(t *testing.T) {
	departments := newFakeDepartmentRepo()
	svc := NewDepartmentService(departments)

	created, err := svc.CreateDepartment(context.Background(), CreateDepartmentRequest{Code: "SALES", Name: "Sales"})
	if err != nil {
		t.Fatalf("CreateDepartment() error: %v", err)
	}
	if created.Code != "SALES" || created.Name != "Sales" {
		t.Errorf("created = %+v", created)
	}

	// Codes are unique.
	_, err = svc.CreateDepartment(context.Background(), CreateDepartmentRequest{Code: "SALES", Name: "Sales again"})
	if !apperror.Is(err, apperror.CodeValidation) {
		t.Errorf("duplicate code error = %v, want VALIDATION_ERROR", err)
	}

	list, err := svc.ListDepartments(context.Background())
	if err != nil {
		t.Fatalf("ListDepartments() error: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list = %d entries, want 1", len(list))
	}
}
