package sagemcp

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sagex/mcp-client-go/internal/connection"
	"github.com/sagex/mcp-client-go/internal/envelope"
	interrors "github.com/sagex/mcp-client-go/internal/errors"
	"github.com/sagex/mcp-client-go/internal/events"
	"github.com/sagex/mcp-client-go/internal/session"
	"github.com/sagex/mcp-client-go/internal/transport"
)

// Client is the public entry point. It owns a protocol connection, a
// local tool/resource registry, the current development session and an
// internal event loop.
//
// Lifecycle: NewClient, Connect, use, Close. Clients are single-use;
// after Close create a new client.
//
// All methods are safe for concurrent use.
type Client struct {
	log  *slog.Logger
	opts *ClientOptions

	conn *connection.Conn
	loop *events.Loop

	runMu  sync.Mutex
	group  *errgroup.Group
	cancel context.CancelFunc

	mu        sync.RWMutex
	current   *session.DevSession
	tools     []Tool
	resources []Resource

	closeOnce sync.Once
}

// NewClient builds a client from functional options. The transport is
// either injected via WithTransport or built by the factory from
// WithTransportType and WithTransportConfig; the default is the HTTP
// transport against http://localhost:8080.
func NewClient(opts ...Option) (*Client, error) {
	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	tr := options.Transport
	if tr == nil {
		typ := options.TransportType
		if typ == "" {
			typ = transport.TypeHTTP
		}

		var err error

		tr, err = transport.New(log, typ, options.TransportConfig)
		if err != nil {
			return nil, err
		}
	}

	caps := connection.DefaultCapabilities()
	if options.Capabilities != nil {
		caps = *options.Capabilities
	}

	c := &Client{
		log:  log.With("component", "client"),
		opts: options,
	}

	c.conn = connection.New(log, tr, caps, options.RequestTimeout)
	c.loop = events.NewLoop(log, options.EventQueueSize, c.handleEvent)

	return c, nil
}

// Connect starts the background read and maintenance loops, initializes
// the transport and performs the handshake. The read loop starts first
// because the handshake response arrives through it.
func (c *Client) Connect(ctx context.Context) error {
	c.runMu.Lock()

	// Background loops outlive the Connect ctx; Close cancels them.
	runCtx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		return c.conn.Run(gctx)
	})

	if c.opts.CleanupInterval > 0 {
		g.Go(func() error {
			c.sweepLoop(gctx)
			return nil
		})
	}

	c.group = g
	c.cancel = cancel
	c.runMu.Unlock()

	if err := c.conn.Connect(ctx); err != nil {
		cancel()
		_ = g.Wait()

		return err
	}

	c.loop.Start()

	return nil
}

// sweepLoop periodically evicts pending requests whose deadline passed.
func (c *Client) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(c.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.conn.CleanupExpiredRequests()
		}
	}
}

// Close ends any active session, stops the background loops, disconnects
// and drains the event loop. It is safe to call Close multiple times.
func (c *Client) Close() error {
	var err error

	c.closeOnce.Do(func() {
		if _, ended := c.EndSession(); ended {
			c.log.Debug("active session completed on close")
		}

		c.runMu.Lock()
		cancel := c.cancel
		group := c.group
		c.runMu.Unlock()

		if cancel != nil {
			cancel()
		}

		err = c.conn.Disconnect(context.Background())

		if group != nil {
			// Run returns once the connection's done channel closes or
			// its context is cancelled; cancellation is not a failure.
			if werr := group.Wait(); werr != nil && !stderrors.Is(werr, context.Canceled) && err == nil {
				err = werr
			}
		}

		c.loop.Close()
	})

	return err
}

// State reports the connection state.
func (c *Client) State() ConnectionState {
	return c.conn.State()
}

// Capabilities reports the capabilities negotiated during the handshake.
func (c *Client) Capabilities() Capabilities {
	return c.conn.Capabilities()
}

// Notifications exposes server-initiated notifications. Messages are
// dropped when the channel is not drained.
func (c *Client) Notifications() <-chan *Notification {
	return c.conn.Notifications()
}

// EventsDropped reports how many internal events were discarded because
// the event queue was full.
func (c *Client) EventsDropped() uint64 {
	return c.loop.Dropped()
}

// ===== Sessions =====

// StartSession begins a new development session and returns its id.
// Fails with a ValidationError when a session is already active.
func (c *Client) StartSession(sctx SessionContext) (uuid.UUID, error) {
	c.mu.Lock()

	if c.current != nil && c.current.State == session.StateActive {
		c.mu.Unlock()
		return uuid.Nil, &interrors.ValidationError{Field: "session", Message: "a session is already active"}
	}

	s := &session.DevSession{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		Context:   sctx,
		State:     session.StateActive,
	}
	c.current = s
	c.mu.Unlock()

	c.loop.Publish(events.SessionStarted{
		SessionID:        s.ID,
		WorkingDirectory: sctx.WorkingDirectory,
	})

	return s.ID, nil
}

// EndSession completes the active session, if any, and returns its id.
// The second result reports whether a session was ended.
func (c *Client) EndSession() (uuid.UUID, bool) {
	c.mu.Lock()

	s := c.current
	if s == nil || s.State != session.StateActive {
		c.mu.Unlock()
		return uuid.Nil, false
	}

	now := time.Now()
	s.EndedAt = &now
	s.State = session.StateCompleted
	c.mu.Unlock()

	c.loop.Publish(events.SessionEnded{
		SessionID: s.ID,
		State:     string(s.State),
	})

	return s.ID, true
}

// CurrentSession returns a copy of the current session, or nil when no
// session was ever started.
func (c *Client) CurrentSession() *DevSession {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return nil
	}

	s := *c.current
	s.AppliedRules = append([]uuid.UUID(nil), c.current.AppliedRules...)

	return &s
}

// ApplyRule hands one rule to the configured RuleEngine, records the
// outcome on the active session and emits a RuleApplied event.
func (c *Client) ApplyRule(ctx context.Context, ruleID uuid.UUID) (ExecutionResult, error) {
	engine := c.opts.RuleEngine
	if engine == nil {
		return session.ExecutionResult{}, &interrors.ConfigurationError{Message: "no rule engine configured"}
	}

	c.mu.RLock()
	s := c.current
	if s == nil || s.State != session.StateActive {
		c.mu.RUnlock()
		return session.ExecutionResult{}, interrors.ErrNoActiveSession
	}

	sessionID := s.ID
	sctx := s.Context
	c.mu.RUnlock()

	result, err := engine.ApplyRule(ctx, ruleID, &sctx)
	if err != nil {
		c.loop.Publish(events.ErrorOccurred{
			Err:     err,
			Context: fmt.Sprintf("applying rule %s", ruleID),
		})

		return session.ExecutionResult{}, err
	}

	c.mu.Lock()
	if c.current != nil && c.current.ID == sessionID {
		c.current.AppliedRules = append(c.current.AppliedRules, ruleID)
		c.current.Metrics.RulesApplied++

		if !result.Success {
			c.current.Metrics.ErrorsCount++
		}
	}
	c.mu.Unlock()

	c.loop.Publish(events.RuleApplied{
		RuleID:    ruleID,
		SessionID: sessionID,
		Success:   result.Success,
		Message:   result.Message,
	})

	return result, nil
}

// RulesChanged tells the configured CacheStore that the given rule
// identifiers are stale and emits a CacheUpdated event.
func (c *Client) RulesChanged(ids []string) {
	if len(ids) == 0 {
		return
	}

	if store := c.opts.CacheStore; store != nil {
		store.Invalidate(ids)
	}

	c.loop.Publish(events.CacheUpdated{UpdatedRules: ids})
}

// ===== Protocol operations =====

// Ping round-trips a ping request and fails unless the server answers
// with a success response.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.conn.SendRequest(ctx, envelope.Ping(""))
	if err != nil {
		return err
	}

	if resp.IsError() {
		return &interrors.ProtocolError{Message: fmt.Sprintf("ping rejected: %s", resp.Err.Message)}
	}

	return nil
}

// ExecuteTool invokes a tool on the server and returns the raw response.
func (c *Client) ExecuteTool(ctx context.Context, name string, args any) (*Response, error) {
	if name == "" {
		return nil, &interrors.ValidationError{Field: "tool_name", Message: "must not be empty"}
	}

	return c.conn.SendRequest(ctx, envelope.CallTool("", name, args))
}

// GetResource reads one resource from the server and returns its payload.
// A failure response becomes a ProtocolError.
func (c *Client) GetResource(ctx context.Context, uri string) (any, error) {
	if uri == "" {
		return nil, &interrors.ValidationError{Field: "resource_uri", Message: "must not be empty"}
	}

	resp, err := c.conn.SendRequest(ctx, envelope.ReadResource("", uri))
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, &interrors.ProtocolError{
			Message: fmt.Sprintf("resource %q: %s", uri, resp.Err.Message),
		}
	}

	return resp.Result, nil
}

// ===== Telemetry =====

// CollectMetrics gathers a flat snapshot of client counters, reports it
// to the configured TelemetrySink and emits a TelemetryCollected event.
func (c *Client) CollectMetrics() map[string]string {
	metrics := map[string]string{
		"connection_state": c.conn.State().String(),
		"events_dropped":   fmt.Sprintf("%d", c.loop.Dropped()),
	}

	c.mu.RLock()
	metrics["available_tools_count"] = fmt.Sprintf("%d", len(c.tools))
	metrics["available_resources_count"] = fmt.Sprintf("%d", len(c.resources))

	if s := c.current; s != nil {
		metrics["session_id"] = s.ID.String()
		metrics["session_state"] = string(s.State)
		metrics["session_rules_applied"] = fmt.Sprintf("%d", s.Metrics.RulesApplied)
		metrics["session_files_modified"] = fmt.Sprintf("%d", s.Metrics.FilesModified)
		metrics["session_errors_count"] = fmt.Sprintf("%d", s.Metrics.ErrorsCount)
	}
	c.mu.RUnlock()

	if sink := c.opts.TelemetrySink; sink != nil {
		sink.Record(metrics)
	}

	c.loop.Publish(events.TelemetryCollected{Metrics: metrics})

	return metrics
}

// handleEvent runs on the event loop consumer goroutine and logs each
// event.
func (c *Client) handleEvent(ev events.Event) {
	switch e := ev.(type) {
	case events.SessionStarted:
		c.log.Info("session started",
			"session_id", e.SessionID,
			"working_directory", e.WorkingDirectory)
	case events.SessionEnded:
		c.log.Info("session ended", "session_id", e.SessionID, "state", e.State)
	case events.RuleApplied:
		c.log.Info("rule applied",
			"rule_id", e.RuleID,
			"session_id", e.SessionID,
			"success", e.Success,
			"message", e.Message)
	case events.ErrorOccurred:
		c.log.Error("background error", "context", e.Context, "error", e.Err)
	case events.CacheUpdated:
		c.log.Debug("rule cache updated", "rules", len(e.UpdatedRules))
	case events.TelemetryCollected:
		c.log.Debug("telemetry collected", "keys", len(e.Metrics))
	default:
		c.log.Debug("event", "name", ev.EventName())
	}
}
