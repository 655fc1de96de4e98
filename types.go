package sagemcp

import (
	"github.com/sagex/mcp-client-go/internal/connection"
	"github.com/sagex/mcp-client-go/internal/envelope"
	"github.com/sagex/mcp-client-go/internal/events"
	"github.com/sagex/mcp-client-go/internal/session"
	"github.com/sagex/mcp-client-go/internal/transport"
)

// Re-export types from internal packages

// ===== Protocol messages =====

// Message is any protocol message: a Request, Response or Notification.
type Message = envelope.Message

// Request is a correlated request message.
type Request = envelope.Request

// Response answers a request with a matching correlation id.
type Response = envelope.Response

// Notification is a one-way message with no correlation id.
type Notification = envelope.Notification

// ErrorObject carries the error payload of a failed response.
type ErrorObject = envelope.ErrorObject

// ===== Transport =====

// Transport moves protocol messages to and from a server.
type Transport = transport.Transport

// TransportType selects a built-in transport implementation.
type TransportType = transport.Type

// TransportConfig holds transport-specific settings.
type TransportConfig = transport.Config

const (
	// TransportHTTP exchanges messages over HTTP with optional SSE events.
	TransportHTTP = transport.TypeHTTP
	// TransportStdio exchanges newline-delimited messages over stdio.
	TransportStdio = transport.TypeStdio
	// TransportMock is an in-memory transport for tests.
	TransportMock = transport.TypeMock
)

// ===== Connection =====

// Capabilities describes what a client or server supports.
type Capabilities = connection.Capabilities

// ConnectionState is the lifecycle state of the protocol connection.
type ConnectionState = connection.State

const (
	// StateConnecting is the initial state before the handshake completes.
	StateConnecting = connection.StateConnecting
	// StateConnected means the handshake succeeded.
	StateConnected = connection.StateConnected
	// StateDisconnecting means Disconnect is in progress.
	StateDisconnecting = connection.StateDisconnecting
	// StateDisconnected is the terminal state.
	StateDisconnected = connection.StateDisconnected
	// StateError means the connection failed; see the state reason.
	StateError = connection.StateError
)

// ProtocolVersion is the protocol version this client speaks.
const ProtocolVersion = connection.ProtocolVersion

// ===== Sessions =====

// SessionContext describes the environment a development session runs in.
type SessionContext = session.Context

// SessionMetrics aggregates counters for a development session.
type SessionMetrics = session.Metrics

// DevSession is a tracked development session.
type DevSession = session.DevSession

// SessionState is the lifecycle state of a session.
type SessionState = session.State

const (
	// SessionActive means the session is in progress.
	SessionActive = session.StateActive
	// SessionCompleted means the session ended normally.
	SessionCompleted = session.StateCompleted
	// SessionAborted means the session ended without completing.
	SessionAborted = session.StateAborted
)

// ExecutionResult is the outcome of applying a rule.
type ExecutionResult = session.ExecutionResult

// ===== Events =====

// Event is an internal client event delivered to the event loop.
type Event = events.Event

// SessionStarted is emitted after a session becomes active.
type SessionStarted = events.SessionStarted

// SessionEnded is emitted after a session ends.
type SessionEnded = events.SessionEnded

// RuleApplied is emitted after a rule executes against the active session.
type RuleApplied = events.RuleApplied

// ErrorOccurred is emitted when a background operation fails.
type ErrorOccurred = events.ErrorOccurred

// CacheUpdated is emitted after rule identifiers are invalidated.
type CacheUpdated = events.CacheUpdated

// TelemetryCollected is emitted after metrics are gathered.
type TelemetryCollected = events.TelemetryCollected
