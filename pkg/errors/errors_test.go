package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidSide, "unknown side: %s", "diagonal")

	if err.Code != ErrCodeInvalidSide {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidSide)
	}
	if err.Message != "unknown side: diagonal" {
		t.Errorf("Message = %v, want %v", err.Message, "unknown side: diagonal")
	}

	expected := "INVALID_SIDE: unknown side: diagonal"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("node detached")
	err := Wrap(ErrCodeUnmeasurable, cause, "measure %s", "box")

	if err.Code != ErrCodeUnmeasurable {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeUnmeasurable)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if err.Error() != "UNMEASURABLE: measure box: node detached" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidAlign, "test"),
			code:     ErrCodeInvalidAlign,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidAlign, "test"),
			code:     ErrCodeInvalidSide,
			expected: false,
		},
		{
			name:     "outer code wins",
			err:      Wrap(ErrCodeInvalidScene, New(ErrCodeInvalidSide, "inner"), "outer"),
			code:     ErrCodeInvalidScene,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("load: %w", New(ErrCodeNotFound, "scene")),
			code:     ErrCodeNotFound,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCodeAndUserMessage(t *testing.T) {
	err := fmt.Errorf("ctx: %w", New(ErrCodeUnsupported, "no hover support"))
	if got := GetCode(err); got != ErrCodeUnsupported {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeUnsupported)
	}
	if got := UserMessage(err); got != "no hover support" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := GetCode(errors.New("x")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestIsInvalid(t *testing.T) {
	if !IsInvalid(New(ErrCodeInvalidAlign, "x")) {
		t.Error("INVALID_ALIGN should be invalid")
	}
	if IsInvalid(New(ErrCodeUnmeasurable, "x")) {
		t.Error("UNMEASURABLE should not be invalid")
	}
}
