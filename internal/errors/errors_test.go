package errors

import (
	stderrors "errors"
	"net/http"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_StatusMapping(t *testing.T) {
	tests := []struct {
		err  *AppError
		code ErrorCode
		want int
	}{
		{NotFound("user", "123"), ErrCodeNotFound, http.StatusNotFound},
		{AlreadyExists("user"), ErrCodeAlreadyExists, http.StatusConflict},
		{Conflict("Email already taken."), ErrCodeConflict, http.StatusConflict},
		{InvalidInput("email", "bad format"), ErrCodeInvalidInput, http.StatusBadRequest},
		{MissingField("password"), ErrCodeMissingField, http.StatusBadRequest},
		{Unauthorized(""), ErrCodeUnauthorized, http.StatusUnauthorized},
		{InvalidCredentials(), ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{Forbidden(""), ErrCodeForbidden, http.StatusForbidden},
		{Internal(stderrors.New("boom")), ErrCodeInternal, http.StatusInternalServerError},
		{DatabaseError(stderrors.New("locked")), ErrCodeDatabaseError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if tt.err.Code != tt.code {
			t.Errorf("%s: code = %s, want %s", tt.err.Message, tt.err.Code, tt.code)
		}
		if tt.err.HTTPStatus != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.err.Code, tt.err.HTTPStatus, tt.want)
		}
	}
}

func TestAppError_InvalidCredentialsMessage(t *testing.T) {
	// The login failure message is fixed; handlers rely on it being identical
	// for unknown-email and wrong-password.
	if got := InvalidCredentials().Message; got != "Invalid credentials" {
		t.Fatalf("message = %q, want %q", got, "Invalid credentials")
	}
}

func TestAppError_UnauthorizedDefaultReason(t *testing.T) {
	if got := Unauthorized("").Message; got == "" {
		t.Fatal("expected a default message")
	}
	if got := Unauthorized("token expired").Message; got != "token expired" {
		t.Fatalf("message = %q, want the explicit reason", got)
	}
}

func TestAppError_WithCauseAndUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Internal(nil).WithCause(cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap did not return the cause")
	}
}

func TestAppError_WithDetail(t *testing.T) {
	err := AlreadyExists("user").WithDetail("field", "email")
	if err.Details["field"] != "email" {
		t.Errorf("expected field=email, got %v", err.Details["field"])
	}
	if err.Details["resource"] != "user" {
		t.Errorf("expected resource=user, got %v", err.Details["resource"])
	}
}

func TestAppError_ToResponse(t *testing.T) {
	resp := NotFound("student", "abc").ToResponse()
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("response code = %s", resp.Error.Code)
	}
	if resp.Error.Details["resource"] != "student" {
		t.Errorf("response details = %v", resp.Error.Details)
	}
}

func TestIsAppError(t *testing.T) {
	if !IsAppError(NotFound("user", "1")) {
		t.Error("expected AppError to be recognized")
	}
	if IsAppError(stderrors.New("plain")) {
		t.Error("plain error misidentified as AppError")
	}

	wrapped := stderrors.Join(stderrors.New("outer"), Forbidden(""))
	app, ok := AsAppError(wrapped)
	if !ok || app.Code != ErrCodeForbidden {
		t.Errorf("AsAppError(wrapped) = (%v, %v)", app, ok)
	}
}
