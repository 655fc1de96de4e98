package sagemcp

import "github.com/sagex/mcp-client-go/internal/errors"

// Re-export error types from internal package

// ConnectionError indicates a transport-level failure while talking to the
// server.
type ConnectionError = errors.ConnectionError

// TimeoutError indicates a request did not receive a response in time.
type TimeoutError = errors.TimeoutError

// ProtocolError indicates the server violated the message protocol.
type ProtocolError = errors.ProtocolError

// SerializationError indicates message encoding or decoding failed.
type SerializationError = errors.SerializationError

// ConfigurationError indicates invalid client configuration.
type ConfigurationError = errors.ConfigurationError

// ValidationError indicates an invalid argument or client state.
type ValidationError = errors.ValidationError

// StatusError indicates the server rejected a message with an HTTP status.
type StatusError = errors.StatusError

// SageMCPError is the base interface for all client errors.
type SageMCPError = errors.SDKError

// Recoverable reports whether an operation that failed with err is worth
// retrying. Only connection and timeout failures are recoverable.
func Recoverable(err error) bool {
	return errors.Recoverable(err)
}

// Re-export sentinel errors from internal package.
var (
	// ErrNotConnected indicates the transport is not connected.
	ErrNotConnected = errors.ErrNotConnected

	// ErrRequestTimeout indicates a request timed out.
	ErrRequestTimeout = errors.ErrRequestTimeout

	// ErrConnectionClosed indicates the connection has been closed.
	ErrConnectionClosed = errors.ErrConnectionClosed

	// ErrHandshakeFailed indicates the server rejected the initialize request.
	ErrHandshakeFailed = errors.ErrHandshakeFailed

	// ErrNoActiveSession indicates an operation that needs a session was
	// called without one.
	ErrNoActiveSession = errors.ErrNoActiveSession
)
