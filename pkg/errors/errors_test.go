package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewDriverError("fetching profile", cause)

	if !strings.Contains(err.Error(), "driver error") {
		t.Errorf("Expected type in message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Expected cause in message, got %q", err.Error())
	}

	bare := NewAuthError("missing credentials", nil)
	if strings.Contains(bare.Error(), "<nil>") {
		t.Errorf("Nil cause should not appear in message, got %q", bare.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := NewStorageError("insert failed", cause)

	if !stderrors.Is(err, cause) {
		t.Error("Expected errors.Is to find the cause through Unwrap")
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"driver", NewDriverError("x", nil), ErrorTypeDriver},
		{"auth", NewAuthError("x", nil), ErrorTypeAuth},
		{"storage", NewStorageError("x", nil), ErrorTypeStorage},
		{"parsing", NewParsingError("x", nil), ErrorTypeParsing},
		{"untyped", stderrors.New("x"), ErrorTypeUnknown},
		{"wrapped", fmt.Errorf("outer: %w", NewAuthError("x", nil)), ErrorTypeAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeOf(tt.err); got != tt.want {
				t.Errorf("TypeOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAlreadyExists(t *testing.T) {
	if !IsAlreadyExists(ErrAlreadyExists) {
		t.Error("Expected sentinel to match itself")
	}
	if !IsAlreadyExists(fmt.Errorf("insert: %w", ErrAlreadyExists)) {
		t.Error("Expected wrapped sentinel to match")
	}
	if IsAlreadyExists(NewStorageError("insert failed", nil)) {
		t.Error("Storage error is not the dedup sentinel")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(ErrorTypeDriver) {
		t.Error("Driver failures should be retryable")
	}
	if !IsRetryable(ErrorTypeStorage) {
		t.Error("Storage failures should be retryable")
	}
	if IsRetryable(ErrorTypeAuth) {
		t.Error("Auth failures should not be retryable")
	}
	if IsRetryable(ErrorTypeParsing) {
		t.Error("Parsing failures should not be retryable")
	}
	if IsRetryable(ErrorTypeUnknown) {
		t.Error("Unknown failures should not be retryable")
	}
}
