// Package transport moves envelope messages across a process or network
// boundary.
//
// A Transport owns its I/O resources and an internal connected flag. A
// single instance is shared by all concurrent requests on a connection,
// so every implementation must be safe for concurrent use.
package transport

import (
	"context"
	"log/slog"
	"os"

	"github.com/sagex/mcp-client-go/internal/envelope"
	"github.com/sagex/mcp-client-go/internal/errors"
)

// Type identifies a transport implementation.
type Type string

// Available transport types.
const (
	// TypeHTTP is the point-to-point HTTP transport.
	TypeHTTP Type = "http"
	// TypeStdio is the line-oriented standard-stream transport.
	TypeStdio Type = "stdio"
	// TypeSocket is reserved for a socket-streaming transport. Selecting
	// it is a configuration error until an implementation exists.
	TypeSocket Type = "socket"
	// TypeMock is the in-memory transport for deterministic testing.
	TypeMock Type = "mock"
)

// Config is the loosely-typed configuration map consumed by the factory.
// Recognized keys depend on the transport type; see New.
type Config map[string]any

// Transport is the capability set every implementation provides.
//
// SendMessage while not connected fails with a connection error, and a
// message that cannot be serialized fails with a serialization error,
// uniformly across implementations.
type Transport interface {
	// Initialize prepares the transport for communication. Failure leaves
	// the transport in the not-connected state.
	Initialize(ctx context.Context) error

	// SendMessage delivers one message to the remote peer.
	SendMessage(ctx context.Context, msg envelope.Message) error

	// ReceiveMessage drains one inbound message, if any. Absence of a
	// message is not an error: it returns (nil, nil).
	ReceiveMessage(ctx context.Context) (envelope.Message, error)

	// Close releases I/O resources and clears the connected flag. It is
	// safe to call Close multiple times.
	Close() error

	// IsConnected reports whether the transport is ready for traffic.
	IsConnected() bool

	// Type reports the transport implementation type.
	Type() Type
}

// New selects a transport implementation from a type tag and a
// loosely-typed configuration map.
//
// Recognized configuration keys:
//   - TypeHTTP: "base_url" (string, default "http://localhost:8080") and
//     "events" (bool) to enable the server-push inbound subscription.
//   - TypeStdio: "writer" defaults to os.Stdout; inbound lines are fed by
//     the caller via Feed or Pump.
//
// An unrecognized or unimplemented type is a configuration error.
func New(log *slog.Logger, typ Type, cfg Config) (Transport, error) {
	switch typ {
	case TypeHTTP:
		baseURL := "http://localhost:8080"
		if v, ok := cfg["base_url"].(string); ok && v != "" {
			baseURL = v
		}

		events, _ := cfg["events"].(bool)

		return NewHTTP(log, baseURL, events), nil

	case TypeStdio:
		return NewStdio(log, os.Stdout), nil

	case TypeMock:
		return NewMock(), nil

	case TypeSocket:
		return nil, &errors.ConfigurationError{Message: "socket transport not implemented"}

	default:
		return nil, &errors.ConfigurationError{Message: "unknown transport type " + string(typ)}
	}
}

// nopLogger is the silent default applied when no logger is supplied.
func nopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
