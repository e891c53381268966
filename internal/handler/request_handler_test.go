package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hrm/internal/model"
	"hrm/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type stubRequestService struct {
	decideCalls int
	decidedNote string
}

func (s *stubRequestService) Submit(_ context.Context, _ uuid.UUID, _ service.SubmitRequestDTO) (service.RequestResponse, error) {
	return service.RequestResponse{}, nil
}

func (s *stubRequestService) Decide(_ context.Context, requestID string, _ service.Actor, outcome, note string) (service.RequestResponse, error) {
	s.decideCalls++
	s.decidedNote = note
	return service.RequestResponse{ID: requestID, Status: outcome}, nil
}

func (s *stubRequestService) Cancel(_ context.Context, requestID string, _ uuid.UUID) (service.RequestResponse, error) {
	return service.RequestResponse{ID: requestID}, nil
}

func (s *stubRequestService) GetRequest(_ context.Context, requestID string) (service.RequestResponse, error) {
	return service.RequestResponse{ID: requestID}, nil
}

func (s *stubRequestService) ListRequests(_ context.Context, _ service.ListRequestsFilter) ([]service.RequestResponse, int64, error) {
	return nil, 0, nil
}

// newApproveRouter wires the approve route with the actor identity injected
// the way the auth middleware would after token validation.
func newApproveRouter(stub *stubRequestService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewRequestHandler(stub)
	router := gin.New()
	router.PUT("/api/requests/:id/approve", func(c *gin.Context) {
		c.Set("employeeID", uuid.New().String())
		c.Set("employeeRole", model.RoleDepartmentHead)
		h.ApproveRequest(c)
	})
	return router
}

func TestDecideRejectsOversizedNote(t *testing.T) {
	stub := &stubRequestService{}
	router := newApproveRouter(stub)

	body := `{"note":"` + strings.Repeat("x", 501) + `"}`
	req := httptest.NewRequest(http.MethodPut, "/api/requests/"+uuid.New().String()+"/approve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if stub.decideCalls != 0 {
		t.Errorf("decide called %d times despite invalid body", stub.decideCalls)
	}
}

func TestDecideAcceptsEmptyBody(t *testing.T) {
	stub := &stubRequestService{}
	router := newApproveRouter(stub)

	req := httptest.NewRequest(http.MethodPut, "/api/requests/"+uuid.New().String()+"/approve", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if stub.decideCalls != 1 {
		t.Fatalf("decide called %d times, want 1", stub.decideCalls)
	}
	if stub.decidedNote != "" {
		t.Errorf("note = %q, want empty", stub.decidedNote)
	}
}
