package util

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := NewValidationError("hostname is required")
		msg := err.Error()
		if msg != "validation failed: hostname is required" {
			t.Errorf("Error() = %q", msg)
		}
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("ValidationError should unwrap to ErrValidationFailed")
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := NewValidationError("ip is invalid", "mask is invalid", "name is required")
		msg := err.Error()
		for _, want := range []string{"ip is invalid", "mask is invalid", "name is required"} {
			if !strings.Contains(msg, want) {
				t.Errorf("Error message should contain %q: %s", want, msg)
			}
		}
	})
}

func TestValidationBuilder(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		v := &ValidationBuilder{}
		v.Add(true, "this should not appear")

		if v.HasErrors() {
			t.Error("Should not have errors when all conditions are true")
		}
		if err := v.Build(); err != nil {
			t.Errorf("Build() should return nil when no errors: %v", err)
		}
	})

	t.Run("with errors", func(t *testing.T) {
		err := (&ValidationBuilder{}).
			Add(false, "first error").
			Add(true, "this passes").
			AddErrorf("timeout %d out of range", -1).
			Build()
		if err == nil {
			t.Fatal("Build() should return error")
		}

		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("Expected *ValidationError, got %T", err)
		}
		if len(validationErr.Errors) != 2 {
			t.Errorf("Expected 2 errors, got %d", len(validationErr.Errors))
		}
		if validationErr.Errors[1] != "timeout -1 out of range" {
			t.Errorf("Errors[1] = %q", validationErr.Errors[1])
		}
	})
}

func TestNotConfiguredError(t *testing.T) {
	err := NewNotConfiguredError("router inventory", "set REDIS_ADDR")
	if err.Error() != "router inventory is not configured (set REDIS_ADDR)" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrNotConfigured) {
		t.Error("NotConfiguredError should unwrap to ErrNotConfigured")
	}

	bare := NewNotConfiguredError("audit log", "")
	if bare.Error() != "audit log is not configured" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrInvalidConfig,
		ErrPermissionDenied,
		ErrValidationFailed,
		ErrNotConfigured,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v == %v", err1, err2)
			}
		}
	}
}
