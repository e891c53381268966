package service

import (
	"context"
	"testing"

	"hrm/internal/apperror"
	"hrm/internal/middleware"
	"hrm/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func newLoginTestService(t *testing.T) (EmployeeService, *model.Employee) {
	t.Helper()
	employees := newFakeEmployeeRepo()
	svc := NewEmployeeService(employees, newFakeDepartmentRepo(), &fakeAuditRepo{})

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	employee := &model.Employee{
		Username: "jdoe",
		Email:    "jdoe@example.com",
		FullName: "J. Doe",
		Password: string(hash),
		Role:     model.RoleStaff,
	}
	if err := employees.Create(context.Background(), employee); err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return svc, employee
}

// Tokens issued at login must verify against the same secret the auth
// middleware checks with.
func TestLoginSignsWithSharedSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "login-test-secret")
	svc, employee := newLoginTestService(t)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "jdoe@example.com", Password: "s3cret!"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	token, err := jwt.Parse(resp.Token, func(t *jwt.Token) (interface{}, error) {
		return middleware.GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("issued token does not verify against the shared secret: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("token claims are not map claims")
	}
	if claims["sub"] != employee.ID.String() {
		t.Errorf("sub claim = %v, want %s", claims["sub"], employee.ID)
	}
	if claims["role"] != model.RoleStaff {
		t.Errorf("role claim = %v, want %s", claims["role"], model.RoleStaff)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "login-test-secret")
	svc, _ := newLoginTestService(t)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "jdoe@example.com", Password: "wrong"})
	if !apperror.Is(err, apperror.CodeForbidden) {
		t.Errorf("Login() error = %v, want FORBIDDEN", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "s3cret!"})
	if !apperror.Is(err, apperror.CodeForbidden) {
		t.Errorf("Login() with unknown email error = %v, want FORBIDDEN", err)
	}
}
