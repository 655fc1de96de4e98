package transport

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/sagex/mcp-client-go/internal/envelope"
	"github.com/sagex/mcp-client-go/internal/errors"
)

var (
	errInjectedInit = stderrors.New("mock init failure")
	errInjectedSend = stderrors.New("mock send failure")
)

// Mock is the in-memory transport for deterministic testing.
//
// It records every sent message for later inspection, lets a test
// pre-load messages to be received, and supports independently
// toggleable failure injection on Initialize and SendMessage.
type Mock struct {
	mu        sync.Mutex
	sent      []envelope.Message
	incoming  []envelope.Message
	connected bool
	failInit  bool
	failSend  bool

	// SendHook, when set, is invoked after each successfully recorded
	// send. Tests use it to synthesize correlated responses.
	SendHook func(envelope.Message)
}

// NewMock creates a mock transport.
func NewMock() *Mock {
	return &Mock{}
}

// WithInitFailure makes Initialize fail with a connection error.
func (t *Mock) WithInitFailure() *Mock {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.failInit = true

	return t
}

// WithSendFailure makes SendMessage fail with a connection error.
func (t *Mock) WithSendFailure() *Mock {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.failSend = true

	return t
}

// AddIncoming pre-loads a message for a later ReceiveMessage call.
// Messages are received in the order they were added.
func (t *Mock) AddIncoming(msg envelope.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.incoming = append(t.incoming, msg)
}

// SentMessages returns a copy of every message sent so far.
func (t *Mock) SentMessages() []envelope.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]envelope.Message, len(t.sent))
	copy(out, t.sent)

	return out
}

// ClearSent discards the record of sent messages.
func (t *Mock) ClearSent() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sent = nil
}

// Initialize implements Transport.
func (t *Mock) Initialize(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.failInit {
		return &errors.ConnectionError{Op: "initialize", Err: errInjectedInit}
	}

	t.connected = true

	return nil
}

// SendMessage implements Transport.
func (t *Mock) SendMessage(_ context.Context, msg envelope.Message) error {
	t.mu.Lock()

	if t.failSend {
		t.mu.Unlock()

		return &errors.ConnectionError{Op: "send_message", Err: errInjectedSend}
	}

	if !t.connected {
		t.mu.Unlock()

		return &errors.ConnectionError{Op: "send_message", Err: errors.ErrNotConnected}
	}

	t.sent = append(t.sent, msg)
	hook := t.SendHook
	t.mu.Unlock()

	if hook != nil {
		hook(msg)
	}

	return nil
}

// ReceiveMessage implements Transport.
func (t *Mock) ReceiveMessage(_ context.Context) (envelope.Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.incoming) == 0 {
		return nil, nil
	}

	msg := t.incoming[0]
	t.incoming = t.incoming[1:]

	return msg, nil
}

// Close implements Transport.
func (t *Mock) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.connected = false

	return nil
}

// IsConnected implements Transport.
func (t *Mock) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.connected
}

// Type implements Transport.
func (t *Mock) Type() Type { return TypeMock }
