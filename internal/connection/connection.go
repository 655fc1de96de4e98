// Package connection implements the protocol state machine on top of a
// transport: capability handshake, correlation of asynchronous requests
// to responses, notification delivery, and per-request timeout
// enforcement.
package connection

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/sagex/mcp-client-go/internal/envelope"
	"github.com/sagex/mcp-client-go/internal/errors"
	"github.com/sagex/mcp-client-go/internal/transport"
)

const (
	// DefaultRequestTimeout bounds the wait for a correlated response.
	DefaultRequestTimeout = 30 * time.Second

	// notificationBufferSize is the capacity of the notification sink.
	// Delivery is best-effort: the dispatch path never blocks on it.
	notificationBufferSize = 64

	// pollInterval is how often Run checks the transport for inbound
	// messages when the queue is empty.
	pollInterval = 5 * time.Millisecond

	// CodeMethodNotFound is the error code returned for an inbound
	// request naming a method outside the local dispatch table.
	CodeMethodNotFound = -32601
)

// State is the connection lifecycle state.
type State int

// Connection states. The happy path is Connecting, Connected,
// Disconnecting, Disconnected. StateError is reachable from any
// non-terminal state; StateError and StateDisconnected are terminal.
const (
	StateConnecting State = iota
	StateConnected
	StateDisconnecting
	StateDisconnected
	StateError
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	case StateDisconnected:
		return "disconnected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// pendingRequest tracks one in-flight request. The entry is removed from
// the table exactly once: whoever claims it owns the response channel.
// The inbound dispatcher delivers the response; a timeout or sweep
// closes the channel instead.
type pendingRequest struct {
	issuedAt time.Time
	deadline time.Duration
	response chan *envelope.Response
}

// Conn is one protocol connection over one transport.
//
// A single Conn may be used by many goroutines at once. Locks guard only
// the pending table and the state flag and are never held across
// transport I/O or while waiting for a response.
type Conn struct {
	id        uuid.UUID
	log       *slog.Logger
	transport transport.Transport
	timeout   time.Duration

	stateMu     sync.RWMutex
	state       State
	stateReason string

	capsMu sync.RWMutex
	caps   Capabilities

	pendingMu sync.Mutex
	pending   map[string]*pendingRequest

	notifications chan *envelope.Notification

	closeOnce sync.Once
	done      chan struct{}
}

// New creates a connection over the given transport. The capabilities
// are advertised during the handshake. A zero requestTimeout selects
// DefaultRequestTimeout.
func New(log *slog.Logger, tr transport.Transport, caps Capabilities, requestTimeout time.Duration) *Conn {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	id := uuid.New()

	return &Conn{
		id:            id,
		log:           log.With("component", "connection", "connection_id", id.String()),
		transport:     tr,
		timeout:       requestTimeout,
		state:         StateConnecting,
		caps:          caps,
		pending:       make(map[string]*pendingRequest, 10),
		notifications: make(chan *envelope.Notification, notificationBufferSize),
		done:          make(chan struct{}),
	}
}

// ID returns the unique id of this connection.
func (c *Conn) ID() uuid.UUID { return c.id }

// State returns the current lifecycle state.
func (c *Conn) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()

	return c.state
}

// StateReason returns the reason recorded when the connection entered
// StateError, or "" otherwise.
func (c *Conn) StateReason() string {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()

	return c.stateReason
}

// IsConnected reports whether the connection is in StateConnected.
func (c *Conn) IsConnected() bool {
	return c.State() == StateConnected
}

// Capabilities returns the negotiated capability set.
func (c *Conn) Capabilities() Capabilities {
	c.capsMu.RLock()
	defer c.capsMu.RUnlock()

	return c.caps
}

// Notifications returns the sink inbound notifications are forwarded to.
// Delivery is best-effort: notifications arriving while the sink is full
// are dropped.
func (c *Conn) Notifications() <-chan *envelope.Notification {
	return c.notifications
}

func (c *Conn) setState(s State) {
	c.stateMu.Lock()
	c.state = s
	c.stateMu.Unlock()
}

// setError moves the connection to the terminal StateError and records
// the reason. Waiters are released via the done channel.
func (c *Conn) setError(reason string) {
	c.stateMu.Lock()
	c.state = StateError
	c.stateReason = reason
	c.stateMu.Unlock()

	c.closeDone()
}

func (c *Conn) closeDone() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Connect initializes the transport and performs the capability
// handshake. The handshake is an ordinary initialize request answered
// through the same correlation mechanism as any other request; the
// connection reaches StateConnected only after its response arrives.
// Failure leaves the connection in StateError.
func (c *Conn) Connect(ctx context.Context) error {
	c.setState(StateConnecting)

	if err := c.transport.Initialize(ctx); err != nil {
		c.log.Warn("Transport initialization failed", "error", err)
		c.setError(err.Error())

		return err
	}

	req := envelope.Initialize(newCorrelationID(), c.Capabilities())

	resp, err := c.SendRequest(ctx, req)
	if err != nil {
		c.setError(err.Error())

		return &errors.ProtocolError{Message: "handshake failed", Err: err}
	}

	if resp.IsError() {
		c.setError(resp.Err.Message)

		return &errors.ProtocolError{Message: "handshake rejected: " + resp.Err.Message, Err: errors.ErrHandshakeFailed}
	}

	c.adoptNegotiated(resp.Result)
	c.setState(StateConnected)
	c.log.Info("Connection established", "transport", c.transport.Type())

	return nil
}

// adoptNegotiated replaces the local capability set with the one the
// server answered the handshake with, when the result parses as a
// capability set. Capabilities are never mutated afterwards.
func (c *Conn) adoptNegotiated(result any) {
	if result == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}

	var negotiated Capabilities
	if err := json.Unmarshal(data, &negotiated); err != nil || negotiated.ProtocolVersion == "" {
		return
	}

	c.capsMu.Lock()
	c.caps = negotiated
	c.capsMu.Unlock()
}

// newCorrelationID creates a unique correlation id.
func newCorrelationID() string {
	return ulid.Make().String()
}

// SendRequest dispatches a request and waits for its correlated
// response. A request without an id is assigned a fresh correlation id.
//
// Exactly one of the following terminates the wait: the matching
// response arrives, the per-request timeout elapses, the context is
// cancelled, or the connection closes. Registration completes and the
// table lock is released before the transport send and before the wait
// begins.
func (c *Conn) SendRequest(ctx context.Context, req *envelope.Request) (*envelope.Response, error) {
	switch c.State() {
	case StateConnecting, StateConnected:
	default:
		return nil, &errors.ConnectionError{Op: "send_request", Err: errors.ErrConnectionClosed}
	}

	if req.ID == "" {
		req.ID = newCorrelationID()
	}

	pr := &pendingRequest{
		issuedAt: time.Now(),
		deadline: c.timeout,
		response: make(chan *envelope.Response, 1),
	}

	c.pendingMu.Lock()

	if _, exists := c.pending[req.ID]; exists {
		c.pendingMu.Unlock()

		return nil, &errors.ValidationError{Field: "id", Message: "correlation id already pending"}
	}

	c.pending[req.ID] = pr
	c.pendingMu.Unlock()

	c.log.Debug("Sending request", "correlation_id", req.ID, "method", req.Method)

	if err := c.transport.SendMessage(ctx, req); err != nil {
		c.claim(req.ID)
		c.log.Warn("Request dispatch failed", "correlation_id", req.ID, "error", err)

		return nil, err
	}

	timer := time.NewTimer(pr.deadline)
	defer timer.Stop()

	select {
	case resp := <-pr.response:
		c.log.Debug("Response received", "correlation_id", req.ID)

		return resp, nil

	case <-timer.C:
		if c.claim(req.ID) {
			elapsed := time.Since(pr.issuedAt)
			c.log.Warn("Request timed out", "correlation_id", req.ID, "elapsed", elapsed)

			return nil, &errors.TimeoutError{Op: "send_request", CorrelationID: req.ID, Elapsed: elapsed}
		}

		// Lost the race: the entry was already claimed, so a response is
		// being delivered or the channel is being closed right now.
		return c.awaitClaimed(req.ID, pr)

	case <-ctx.Done():
		if c.claim(req.ID) {
			return nil, ctx.Err()
		}

		return c.awaitClaimed(req.ID, pr)

	case <-c.done:
		if c.claim(req.ID) {
			return nil, &errors.ConnectionError{Op: "send_request", Err: errors.ErrConnectionClosed}
		}

		return c.awaitClaimed(req.ID, pr)
	}
}

// awaitClaimed resolves a wait that lost the claim race. The claimer
// either delivers the response or closes the channel (sweep eviction).
func (c *Conn) awaitClaimed(id string, pr *pendingRequest) (*envelope.Response, error) {
	resp, ok := <-pr.response
	if !ok {
		elapsed := time.Since(pr.issuedAt)

		return nil, &errors.TimeoutError{Op: "send_request", CorrelationID: id, Elapsed: elapsed}
	}

	return resp, nil
}

// claim removes the pending entry for id, reporting whether this caller
// won ownership of it. Removal is idempotent: exactly one caller wins.
func (c *Conn) claim(id string) bool {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	if _, ok := c.pending[id]; !ok {
		return false
	}

	delete(c.pending, id)

	return true
}

// SendNotification dispatches a fire-and-forget notification.
func (c *Conn) SendNotification(ctx context.Context, n *envelope.Notification) error {
	return c.transport.SendMessage(ctx, n)
}

// SendResponse dispatches a response to a remote request.
func (c *Conn) SendResponse(ctx context.Context, r *envelope.Response) error {
	return c.transport.SendMessage(ctx, r)
}

// HandleMessage dispatches one inbound message: requests go to the local
// method table, responses resolve their pending entry, notifications are
// forwarded to the sink. A response with no pending entry (already timed
// out, or an unknown id) is silently discarded; late and duplicate
// responses are expected under network jitter.
func (c *Conn) HandleMessage(ctx context.Context, msg envelope.Message) error {
	switch m := msg.(type) {
	case *envelope.Request:
		return c.handleRequest(ctx, m)

	case *envelope.Response:
		c.pendingMu.Lock()

		pr, ok := c.pending[m.ID]
		if ok {
			delete(c.pending, m.ID)
		}

		c.pendingMu.Unlock()

		if !ok {
			c.log.Debug("Discarding response with no pending request", "correlation_id", m.ID)

			return nil
		}

		pr.response <- m

		return nil

	case *envelope.Notification:
		select {
		case c.notifications <- m:
		default:
			c.log.Warn("Notification sink full, dropping", "method", m.Method)
		}

		return nil

	default:
		return &errors.ProtocolError{Message: "unsupported message kind"}
	}
}

// handleRequest answers an inbound request from the local method table.
// The table is deliberately small: a full system delegates unknown
// methods to the business layer instead.
func (c *Conn) handleRequest(ctx context.Context, req *envelope.Request) error {
	var resp *envelope.Response

	switch req.Method {
	case envelope.MethodPing:
		resp = envelope.NewSuccessResponse(req.ID, map[string]any{"pong": true})

	case envelope.MethodCapabilities:
		resp = envelope.NewSuccessResponse(req.ID, c.Capabilities())

	default:
		c.log.Debug("Unknown inbound method", "method", req.Method)
		resp = envelope.NewErrorResponse(req.ID, envelope.ErrorObject{
			Code:    CodeMethodNotFound,
			Message: "Method not found",
		})
	}

	return c.SendResponse(ctx, resp)
}

// CleanupExpiredRequests evicts pending entries whose elapsed time
// exceeds their deadline and returns the number evicted. It is safe to
// run concurrently with request issuance and resolution: entries
// resolved in the same instant are not double-removed.
func (c *Conn) CleanupExpiredRequests() int {
	now := time.Now()

	c.pendingMu.Lock()

	var evicted []*pendingRequest

	for id, pr := range c.pending {
		if now.Sub(pr.issuedAt) > pr.deadline {
			delete(c.pending, id)
			evicted = append(evicted, pr)

			c.log.Debug("Evicting expired request", "correlation_id", id)
		}
	}

	c.pendingMu.Unlock()

	// Closing outside the lock releases any waiter that lost its own
	// timeout race to this sweep.
	for _, pr := range evicted {
		close(pr.response)
	}

	return len(evicted)
}

// Run polls the transport for inbound messages and dispatches them until
// the context is cancelled or the connection closes.
func (c *Conn) Run(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-c.done:
			return nil

		case <-ticker.C:
			for {
				msg, err := c.transport.ReceiveMessage(ctx)
				if err != nil {
					c.log.Warn("Receive failed", "error", err)

					break
				}

				if msg == nil {
					break
				}

				if err := c.HandleMessage(ctx, msg); err != nil {
					c.log.Warn("Dispatch failed", "error", err)
				}
			}
		}
	}
}

// Disconnect closes the transport and moves the connection to the
// terminal StateDisconnected. In-flight requests are released with a
// connection error.
func (c *Conn) Disconnect(_ context.Context) error {
	if state := c.State(); state == StateDisconnected || state == StateError {
		return nil
	}

	c.setState(StateDisconnecting)

	err := c.transport.Close()

	c.setState(StateDisconnected)
	c.closeDone()

	c.log.Info("Connection closed")

	if err != nil {
		return &errors.ConnectionError{Op: "disconnect", Err: err}
	}

	return nil
}
