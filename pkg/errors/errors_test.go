package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "rate must be positive, got %v", -1)

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeInvalidInput)
	}
	if !strings.Contains(err.Error(), "rate must be positive, got -1") {
		t.Errorf("Error() = %q", err.Error())
	}
	if !strings.Contains(err.Error(), string(ErrCodeInvalidInput)) {
		t.Errorf("Error() = %q, missing code", err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(ErrCodeCatalogLoad, cause, "read catalog %s", "data.toml")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error lost its cause")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Error() = %q, missing cause", err.Error())
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeInfeasible, "singular system")

	if !Is(err, ErrCodeInfeasible) {
		t.Error("Is() = false for matching code")
	}
	if Is(err, ErrCodeInvalidInput) {
		t.Error("Is() = true for different code")
	}
	if Is(nil, ErrCodeInfeasible) {
		t.Error("Is(nil) = true")
	}
	if Is(fmt.Errorf("plain"), ErrCodeInfeasible) {
		t.Error("Is() = true for plain error")
	}

	// Codes survive fmt wrapping.
	wrapped := fmt.Errorf("solve: %w", err)
	if !Is(wrapped, ErrCodeInfeasible) {
		t.Error("Is() = false through fmt.Errorf wrapping")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeNotFound, "x")); got != ErrCodeNotFound {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeNotFound)
	}
	if got := GetCode(fmt.Errorf("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
	if got := GetCode(nil); got != "" {
		t.Errorf("GetCode(nil) = %q, want empty", got)
	}
}
