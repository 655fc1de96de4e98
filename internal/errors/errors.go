package errors

import (
	"errors"
	"fmt"
	"time"
)

// SDKError is the base interface for all errors produced by this module.
type SDKError interface {
	error
	IsSageMCPError() bool
}

// Compile-time verification that all error types implement SDKError.
var (
	_ SDKError = (*ConnectionError)(nil)
	_ SDKError = (*TimeoutError)(nil)
	_ SDKError = (*ProtocolError)(nil)
	_ SDKError = (*SerializationError)(nil)
	_ SDKError = (*ConfigurationError)(nil)
	_ SDKError = (*ValidationError)(nil)
	_ SDKError = (*StatusError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNotConnected indicates the transport is not connected.
	ErrNotConnected = errors.New("transport not connected")

	// ErrRequestTimeout indicates a request timed out waiting for its response.
	ErrRequestTimeout = errors.New("request timeout")

	// ErrConnectionClosed indicates the connection reached a terminal state.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrHandshakeFailed indicates the capability handshake did not complete.
	ErrHandshakeFailed = errors.New("handshake failed")

	// ErrNoActiveSession indicates a session-scoped operation was called
	// without a session in progress.
	ErrNoActiveSession = errors.New("no active session")
)

// ConnectionError indicates the transport was unreachable or refused
// delivery. Recoverable: callers may retry with backoff.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsSageMCPError implements SDKError.
func (e *ConnectionError) IsSageMCPError() bool { return true }

// TimeoutError indicates the deadline elapsed while waiting for a
// correlated response. Recoverable: callers may retry with backoff.
type TimeoutError struct {
	Op            string
	CorrelationID string
	Elapsed       time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s (correlation id %s)", e.Op, e.Elapsed, e.CorrelationID)
}

func (e *TimeoutError) Unwrap() error {
	return ErrRequestTimeout
}

// IsSageMCPError implements SDKError.
func (e *TimeoutError) IsSageMCPError() bool { return true }

// ProtocolError indicates a malformed message, an unexpected method, or a
// failed handshake.
type ProtocolError struct {
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Message, e.Err)
	}

	return fmt.Sprintf("protocol error: %s", e.Message)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsSageMCPError implements SDKError.
func (e *ProtocolError) IsSageMCPError() bool { return true }

// SerializationError indicates a message failed to encode or decode.
// Retrying the same input cannot succeed.
type SerializationError struct {
	Op  string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization error during %s: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// IsSageMCPError implements SDKError.
func (e *SerializationError) IsSageMCPError() bool { return true }

// ConfigurationError indicates invalid transport or client setup.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// IsSageMCPError implements SDKError.
func (e *ConfigurationError) IsSageMCPError() bool { return true }

// StatusError indicates the remote peer rejected a delivered message with
// a non-success status. Distinct from ConnectionError: the transport
// worked, the remote said no.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s rejected with HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

// IsSageMCPError implements SDKError.
func (e *StatusError) IsSageMCPError() bool { return true }

// ValidationError indicates caller-supplied invalid input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// IsSageMCPError implements SDKError.
func (e *ValidationError) IsSageMCPError() bool { return true }

// Recoverable reports whether retrying the failed operation could succeed.
// Connection and timeout failures are transient; serialization,
// configuration, and validation failures are not.
func Recoverable(err error) bool {
	var (
		connErr    *ConnectionError
		timeoutErr *TimeoutError
	)

	switch {
	case errors.As(err, &connErr), errors.As(err, &timeoutErr):
		return true
	case errors.Is(err, ErrNotConnected), errors.Is(err, ErrRequestTimeout):
		return true
	default:
		return false
	}
}
