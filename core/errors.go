// Package core provides the shared types and error taxonomy for the
// generative-language file client.
package core

import (
	"errors"
	"fmt"
)

// ErrorType classifies an upload failure
type ErrorType string

const (
	// ErrorTypeLocalIO indicates the local file could not be stat'ed or read
	ErrorTypeLocalIO ErrorType = "local_io"
	// ErrorTypeProtocolViolation indicates the service response broke the
	// resumable-upload handshake contract
	ErrorTypeProtocolViolation ErrorType = "protocol_violation"
	// ErrorTypeRemote indicates a non-200 response from the service
	ErrorTypeRemote ErrorType = "remote_error"
	// ErrorTypeTransport indicates a network-level failure (DNS, connect, timeout)
	ErrorTypeTransport ErrorType = "transport_error"
	// ErrorTypeMalformedResponse indicates a response body that could not be
	// normalized into a FileDescriptor
	ErrorTypeMalformedResponse ErrorType = "malformed_response"
)

// UploadError is the error type for all failures surfaced by this client.
// Exactly one of these reaches the caller; phases never produce partial results.
type UploadError struct {
	Type    ErrorType
	Message string
	// StatusCode and Body are populated for remote errors so callers can
	// diagnose the service response verbatim.
	StatusCode int
	Body       []byte
	// Original error for unwrapping (not part of the client contract)
	Err error
}

// Error implements the error interface
func (e *UploadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *UploadError) Unwrap() error {
	return e.Err
}

// AsUploadError extracts an *UploadError from an error chain.
func AsUploadError(err error) (*UploadError, bool) {
	var ue *UploadError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// IsErrorType reports whether err is an UploadError of the given type.
func IsErrorType(err error, t ErrorType) bool {
	ue, ok := AsUploadError(err)
	return ok && ue.Type == t
}

// NewLocalIOError creates an error for a local stat/read failure
func NewLocalIOError(path string, err error) *UploadError {
	return &UploadError{
		Type:    ErrorTypeLocalIO,
		Message: fmt.Sprintf("cannot access local file %q: %v", path, err),
		Err:     err,
	}
}

// NewProtocolViolationError creates an error for a handshake contract breach
func NewProtocolViolationError(message string) *UploadError {
	return &UploadError{
		Type:    ErrorTypeProtocolViolation,
		Message: message,
	}
}

// NewRemoteError creates an error carrying the verbatim non-200 response
func NewRemoteError(statusCode int, body []byte) *UploadError {
	return &UploadError{
		Type:       ErrorTypeRemote,
		Message:    string(body),
		StatusCode: statusCode,
		Body:       body,
	}
}

// NewTransportError creates an error for a request that never completed
func NewTransportError(message string, err error) *UploadError {
	return &UploadError{
		Type:    ErrorTypeTransport,
		Message: message,
		Err:     err,
	}
}

// NewMalformedResponseError creates an error for a response body that failed
// descriptor normalization
func NewMalformedResponseError(message string, err error) *UploadError {
	return &UploadError{
		Type:    ErrorTypeMalformedResponse,
		Message: message,
		Err:     err,
	}
}
