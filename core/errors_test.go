package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestUploadError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *UploadError
		expected string
	}{
		{
			name: "error with status code",
			err: &UploadError{
				Type:       ErrorTypeRemote,
				Message:    "internal error",
				StatusCode: 500,
			},
			expected: "remote_error (status 500): internal error",
		},
		{
			name: "error without status code",
			err: &UploadError{
				Type:    ErrorTypeProtocolViolation,
				Message: "missing header",
			},
			expected: "protocol_violation: missing header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUploadError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	uploadErr := NewLocalIOError("/tmp/missing", originalErr)

	if unwrapped := uploadErr.Unwrap(); unwrapped != originalErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, originalErr)
	}
	if !errors.Is(uploadErr, originalErr) {
		t.Error("errors.Is should match the wrapped error")
	}
}

func TestAsUploadError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewRemoteError(404, []byte("not found")))

	ue, ok := AsUploadError(wrapped)
	if !ok {
		t.Fatal("AsUploadError should find the error in the chain")
	}
	if ue.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", ue.StatusCode)
	}
	if string(ue.Body) != "not found" {
		t.Errorf("Body = %q, want %q", ue.Body, "not found")
	}

	if _, ok := AsUploadError(errors.New("plain")); ok {
		t.Error("AsUploadError should not match a plain error")
	}
}

func TestIsErrorType(t *testing.T) {
	err := NewProtocolViolationError("bad handshake")

	if !IsErrorType(err, ErrorTypeProtocolViolation) {
		t.Error("expected protocol_violation type to match")
	}
	if IsErrorType(err, ErrorTypeRemote) {
		t.Error("remote_error type should not match")
	}
	if IsErrorType(nil, ErrorTypeRemote) {
		t.Error("nil error should not match any type")
	}
}
