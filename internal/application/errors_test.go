package application

import (
	"fmt"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"field": "invalid"}}
	if got := withFields.Error(); got != "validation failed" {
		t.Fatalf("expected consistent message for populated error, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if (&ValidationError{}).HasErrors() {
		t.Fatalf("expected HasErrors to report false for empty error")
	}

	if !(&ValidationError{FieldErrors: map[string]string{"field": "bad"}}).HasErrors() {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestValidationError_Add(t *testing.T) {
	t.Parallel()

	base := &ValidationError{}
	base.add("first", "value")
	if got := base.FieldErrors["first"]; got != "value" {
		t.Fatalf("expected add to populate map, got %q", got)
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrUnauthorized, "unauthorized"},
		{ErrRoomNotFound, "room_not_found"},
		{ErrNotFound, "not_found"},
		{ErrInvalidRequest, "invalid_request"},
		{ErrAlreadyExists, "already_exists"},
		{ErrInvalidCredentials, "invalid_credentials"},
		{ErrAccountDisabled, "account_disabled"},
		{ErrSessionExpired, "session_expired"},
		{ErrSessionRevoked, "session_revoked"},
		{fmt.Errorf("reserve slot 3: %w", ErrAlreadyExists), "already_exists"},
		{&ValidationError{FieldErrors: map[string]string{"login": "bad"}}, "validation"},
		{fmt.Errorf("boom"), "unexpected"},
	}

	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
