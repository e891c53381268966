package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeOf(t *testing.T) {
	base := New(CodeQuotaExceeded, "no days left")

	if got := CodeOf(base); got != CodeQuotaExceeded {
		t.Errorf("CodeOf() = %s, want %s", got, CodeQuotaExceeded)
	}
	// Codes survive wrapping with %w.
	wrapped := fmt.Errorf("deciding request: %w", base)
	if got := CodeOf(wrapped); got != CodeQuotaExceeded {
		t.Errorf("CodeOf(wrapped) = %s, want %s", got, CodeQuotaExceeded)
	}
	if got := CodeOf(errors.New("plain")); got != CodeInternal {
		t.Errorf("CodeOf(plain) = %s, want %s", got, CodeInternal)
	}
	if !Is(wrapped, CodeQuotaExceeded) {
		t.Error("Is(wrapped, QUOTA_EXCEEDED) = false")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(CodeInternal, cause, "failed to load request")
	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeInvalidDateRange, http.StatusBadRequest},
		{CodeInvalidQuotaValue, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeForbidden, http.StatusForbidden},
		{CodeInvalidTransition, http.StatusConflict},
		{CodeQuotaExceeded, http.StatusConflict},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(New(tt.code, "x")); got != tt.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
	if got := HTTPStatus(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("HTTPStatus(plain) = %d, want 500", got)
	}
}
