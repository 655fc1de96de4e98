// Package config provides configuration types for the sage MCP client.
package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sagex/mcp-client-go/internal/connection"
	"github.com/sagex/mcp-client-go/internal/session"
	"github.com/sagex/mcp-client-go/internal/transport"
)

// RuleEngine evaluates rules against a session context. The evaluation
// logic is an external collaborator; this module only carries results
// across its boundary.
type RuleEngine interface {
	ApplyRule(ctx context.Context, ruleID uuid.UUID, sctx *session.Context) (session.ExecutionResult, error)
}

// TelemetrySink receives a flat string-keyed metrics mapping.
type TelemetrySink interface {
	Record(metrics map[string]string)
}

// CacheStore is notified with the set of identifiers that changed.
type CacheStore interface {
	Invalidate(ids []string)
}

// Options configures a client.
type Options struct {
	// Logger is the slog logger for debug output. If nil, logging is
	// disabled (silent operation).
	Logger *slog.Logger

	// TransportType selects the transport implementation built by the
	// factory. Ignored when Transport is set.
	TransportType transport.Type

	// TransportConfig is the loosely-typed configuration handed to the
	// transport factory.
	TransportConfig transport.Config

	// Transport injects a pre-built transport, bypassing the factory.
	// Useful for testing with a mock.
	Transport transport.Transport

	// Capabilities advertised during the handshake. Nil selects the
	// defaults.
	Capabilities *connection.Capabilities

	// RequestTimeout bounds the wait for each correlated response.
	// Zero selects the connection default.
	RequestTimeout time.Duration

	// CleanupInterval is how often the maintenance sweep evicts expired
	// pending requests. Zero disables the background sweep.
	CleanupInterval time.Duration

	// EventQueueSize bounds the event loop queue. Zero selects the
	// default.
	EventQueueSize int

	// RuleEngine handles rule application. Nil means ApplyRule fails
	// with a validation error.
	RuleEngine RuleEngine

	// TelemetrySink receives collected metrics. Nil discards them.
	TelemetrySink TelemetrySink

	// CacheStore is told which rule identifiers changed. Nil discards
	// the notifications.
	CacheStore CacheStore
}
