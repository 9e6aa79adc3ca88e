package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNew_RetryableDetection(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
	}{
		{ErrCodeServiceUnavailable, true},
		{ErrCodeRateLimited, true},
		{ErrCodeNotFound, false},
		{ErrCodeInternal, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			err := New(tc.code, "msg", http.StatusTeapot)
			if err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v for %s", tc.retryable, tc.code)
			}
			if err.HTTPStatus != http.StatusTeapot {
				t.Errorf("expected status %d, got %d", http.StatusTeapot, err.HTTPStatus)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
	}{
		{"not found", NotFound("session", "abc"), ErrCodeNotFound, http.StatusNotFound},
		{"conflict", Conflict("already streaming"), ErrCodeConflict, http.StatusConflict},
		{"invalid input", InvalidInput("username", "bad"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"validation", Validation("username: is required"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"not acceptable", NotAcceptable("text/event-stream"), ErrCodeNotAcceptable, http.StatusNotAcceptable},
		{"internal", Internal(fmt.Errorf("boom")), ErrCodeInternal, http.StatusInternalServerError},
		{"unavailable", ServiceUnavailable("registry"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{"rate limited", RateLimited(), ErrCodeRateLimited, http.StatusTooManyRequests},
		{"too large", PayloadTooLarge(1024), ErrCodeTooLarge, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
			if tc.err.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	if got := StatusFor(ErrCodeConflict); got != http.StatusConflict {
		t.Errorf("expected 409 for CONFLICT, got %d", got)
	}
	if got := StatusFor("SOMETHING_NEW"); got != http.StatusInternalServerError {
		t.Errorf("expected 500 for unknown code, got %d", got)
	}
}

func TestNotFound_Details(t *testing.T) {
	err := NotFound("session", "123")
	if err.Details["resource"] != "session" {
		t.Errorf("expected resource=session, got %v", err.Details["resource"])
	}
	if err.Details["id"] != "123" {
		t.Errorf("expected id=123, got %v", err.Details["id"])
	}

	noID := NotFound("session", "")
	if _, ok := noID.Details["id"]; ok {
		t.Error("expected no id detail when id is empty")
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("uuid: entropy exhausted")
	err := Internal(cause)

	if !strings.Contains(err.Error(), "INTERNAL_ERROR") || !strings.Contains(err.Error(), "entropy exhausted") {
		t.Errorf("unexpected Error(): %q", err.Error())
	}
	if err.Unwrap() != cause {
		t.Error("expected Unwrap to return the cause")
	}

	plain := Conflict("nope")
	if plain.Error() != "CONFLICT: nope" {
		t.Errorf("unexpected Error(): %q", plain.Error())
	}
}

func TestAppError_WithCauseAndDetail(t *testing.T) {
	cause := fmt.Errorf("x")
	err := Conflict("busy").WithCause(cause).WithDetail("session_id", "s1")
	if err.Cause != cause {
		t.Error("expected cause to be set")
	}
	if err.Details["session_id"] != "s1" {
		t.Errorf("expected session_id detail, got %v", err.Details["session_id"])
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NotFound("session", "s"))
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected wrapped AppError to be found")
	}
	if appErr.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", appErr.Code)
	}

	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("expected plain error not to convert")
	}
}

func TestToResponse_JSONShape(t *testing.T) {
	resp := InvalidInput("username", "must not be empty").ToResponse()
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"code":"INVALID_INPUT"`, `"retryable":false`, `"field":"username"`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
}
