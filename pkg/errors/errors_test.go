package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("disk full")
	tests := []struct {
		err  *Error
		want string
	}{
		{New(ErrCodeInvalidInput, "bad %s", "value"), "INVALID_INPUT: bad value"},
		{Wrap(ErrCodeStore, cause, "save %s", "orders"), "STORE_ERROR: save orders: disk full"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeStore, cause, "load orders")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestCodeLookup(t *testing.T) {
	inner := New(ErrCodeInvalidInput, "inner")
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"coded", New(ErrCodeInvalidRoot, "x"), ErrCodeInvalidRoot},
		{"fmt wrapped", fmt.Errorf("context: %w", inner), ErrCodeInvalidInput},
		{"outermost wins", Wrap(ErrCodeStore, inner, "outer"), ErrCodeStore},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false, want true", tt.code)
			}
			if Is(tt.err, ErrCodeUnsupported) {
				t.Error("Is(UNSUPPORTED) = true, want false")
			}
		})
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		code Code
		want Category
	}{
		{ErrCodeInvalidPath, CategoryInvalid},
		{ErrCodeInvalidConfig, CategoryInvalid},
		{ErrCodeNotFound, CategoryNotFound},
		{ErrCodeRootNotFound, CategoryNotFound},
		{ErrCodeMutationConflict, CategoryConflict},
		{ErrCodeMutationInFlight, CategoryConflict},
		{ErrCodeStore, CategoryUnavailable},
		{ErrCodeUnsupported, CategoryUnsupported},
		{ErrCodeGraphBuild, CategoryInternal},
		{"", CategoryInternal},
	}
	for _, tt := range tests {
		if got := tt.code.Category(); got != tt.want {
			t.Errorf("%q.Category() = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(fmt.Errorf("open: %w", New(ErrCodeStore, "down"))) {
		t.Error("STORE_ERROR should be retryable")
	}
	if Retryable(New(ErrCodeRootNotFound, "orders")) {
		t.Error("ROOT_NOT_FOUND should not be retryable")
	}
	if Retryable(errors.New("plain")) {
		t.Error("uncoded errors should not be retryable")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(Wrap(ErrCodeStore, errors.New("io"), "friendly")); got != "friendly" {
		t.Errorf("UserMessage() = %q, want friendly", got)
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage() = %q, want plain error", got)
	}
}

func TestConflict(t *testing.T) {
	err := Conflict("no mapping at %q", "person.address")

	if err.Code != ErrCodeMutationConflict {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeMutationConflict)
	}
	if !IsConflict(err) {
		t.Error("IsConflict(err) = false, want true")
	}
	if IsConflict(Wrap(ErrCodeStore, err, "save failed")) {
		t.Error("IsConflict should only match the outermost coded error")
	}
}
