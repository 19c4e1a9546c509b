package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{name: "not found", err: NotFoundWithID("Booking", "b1"), wantCode: CodeNotFound, wantStatus: http.StatusNotFound},
		{name: "validation", err: Validation("bad", nil), wantCode: CodeValidation, wantStatus: http.StatusUnprocessableEntity},
		{name: "invalid input", err: InvalidInput("bad"), wantCode: CodeInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "forbidden", err: Forbidden("no"), wantCode: CodeForbidden, wantStatus: http.StatusForbidden},
		{name: "conflict", err: Conflict("taken"), wantCode: CodeConflict, wantStatus: http.StatusConflict},
		{name: "out of window", err: OutOfWindow("closed"), wantCode: CodeOutOfWindow, wantStatus: http.StatusUnprocessableEntity},
		{name: "invalid transition", err: InvalidTransition("CANCELLED", "CONFIRMED"), wantCode: CodeInvalidTransition, wantStatus: http.StatusConflict},
		{name: "past date time", err: PastDateTime("elapsed"), wantCode: CodePastDateTime, wantStatus: http.StatusUnprocessableEntity},
		{name: "internal", err: Internal("boom", errors.New("db down")), wantCode: CodeInternal, wantStatus: http.StatusInternalServerError},
		{name: "timeout", err: Timeout("slow"), wantCode: CodeTimeout, wantStatus: http.StatusGatewayTimeout},
		{name: "unavailable", err: Unavailable("Catalog"), wantCode: CodeUnavailable, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, tt.err.StatusCode())
			}
		})
	}
}

func TestInvalidTransitionDetails(t *testing.T) {
	err := InvalidTransition("COMPLETED", "CANCELLED")

	if err.Message != "cannot change status from COMPLETED to CANCELLED" {
		t.Errorf("unexpected message: %s", err.Message)
	}
	if err.Details["from"] != "COMPLETED" || err.Details["to"] != "CANCELLED" {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestAppError_Error(t *testing.T) {
	withCause := Internal("Failed to create booking", errors.New("connection reset"))
	if got := withCause.Error(); got != "INTERNAL_ERROR: Failed to create booking (caused by: connection reset)" {
		t.Errorf("unexpected error string: %s", got)
	}

	if got := Conflict("slot taken").Error(); got != "CONFLICT: slot taken" {
		t.Errorf("unexpected error string: %s", got)
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	conflict := Conflict("slot taken")
	wrapped := fmt.Errorf("create booking: %w", conflict)

	if !IsAppError(wrapped) {
		t.Fatalf("IsAppError() should see through wrapping")
	}
	if AsAppError(wrapped) != conflict {
		t.Errorf("AsAppError() should return the wrapped AppError")
	}
	if !HasCode(wrapped, CodeConflict) {
		t.Errorf("HasCode() should match the wrapped code")
	}
	if HasCode(wrapped, CodeNotFound) {
		t.Errorf("HasCode() should not match a different code")
	}

	plain := errors.New("socket closed")
	result := AsAppError(plain)
	if result.Code != CodeInternal || result.Err != plain {
		t.Errorf("AsAppError() should wrap a plain error as internal, got %+v", result)
	}
}
