package sagemcp

import (
	"log/slog"
	"time"

	"github.com/sagex/mcp-client-go/internal/config"
)

// Option configures ClientOptions using the functional options pattern.
type Option func(*ClientOptions)

// ClientOptions configures the behavior of the client.
type ClientOptions = config.Options

// RuleEngine executes development rules against a session context.
// Implementations are supplied by the embedding application.
type RuleEngine = config.RuleEngine

// TelemetrySink receives flat metric snapshots from CollectMetrics.
type TelemetrySink = config.TelemetrySink

// CacheStore is notified when rule identifiers change and must be
// re-fetched.
type CacheStore = config.CacheStore

// applyOptions applies functional options to a ClientOptions struct.
func applyOptions(opts []Option) *ClientOptions {
	options := &ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *ClientOptions) {
		o.Logger = logger
	}
}

// WithTransportType selects a built-in transport. Defaults to TransportHTTP.
func WithTransportType(typ TransportType) Option {
	return func(o *ClientOptions) {
		o.TransportType = typ
	}
}

// WithTransportConfig sets transport-specific settings, such as "base_url"
// and "events" for the HTTP transport.
func WithTransportConfig(cfg TransportConfig) Option {
	return func(o *ClientOptions) {
		o.TransportConfig = cfg
	}
}

// WithTransport injects a custom Transport implementation. Takes precedence
// over WithTransportType.
func WithTransport(t Transport) Option {
	return func(o *ClientOptions) {
		o.Transport = t
	}
}

// WithCapabilities overrides the capabilities advertised during the
// handshake.
func WithCapabilities(caps Capabilities) Option {
	return func(o *ClientOptions) {
		o.Capabilities = &caps
	}
}

// WithRequestTimeout sets the per-request timeout. Defaults to 30 seconds.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *ClientOptions) {
		o.RequestTimeout = d
	}
}

// WithCleanupInterval sets how often expired pending requests are swept.
// Zero disables the sweep.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *ClientOptions) {
		o.CleanupInterval = d
	}
}

// WithEventQueueSize bounds the internal event queue. When the queue is
// full the oldest event is dropped to admit the new one.
func WithEventQueueSize(n int) Option {
	return func(o *ClientOptions) {
		o.EventQueueSize = n
	}
}

// WithRuleEngine supplies the engine ApplyRule delegates to.
func WithRuleEngine(engine RuleEngine) Option {
	return func(o *ClientOptions) {
		o.RuleEngine = engine
	}
}

// WithTelemetrySink supplies the sink CollectMetrics reports to.
func WithTelemetrySink(sink TelemetrySink) Option {
	return func(o *ClientOptions) {
		o.TelemetrySink = sink
	}
}

// WithCacheStore supplies the store notified by RulesChanged.
func WithCacheStore(store CacheStore) Option {
	return func(o *ClientOptions) {
		o.CacheStore = store
	}
}
