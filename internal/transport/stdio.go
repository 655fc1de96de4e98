package transport

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/sagex/mcp-client-go/internal/envelope"
	"github.com/sagex/mcp-client-go/internal/errors"
)

// Stdio is the line-oriented standard-stream transport.
//
// Outbound messages are written as exactly one JSON document per line.
// Inbound messages arrive on an internal queue fed by an external line
// reader: either the collaborator calls Feed directly, or runs Pump over
// the inbound stream.
type Stdio struct {
	log *slog.Logger

	writeMu sync.Mutex
	w       io.Writer

	incoming chan envelope.Message

	connMu    sync.RWMutex
	connected bool
}

// NewStdio creates a stdio transport writing outbound lines to w.
func NewStdio(log *slog.Logger, w io.Writer) *Stdio {
	if log == nil {
		log = nopLogger()
	}

	return &Stdio{
		log:      log.With("component", "stdio_transport"),
		w:        w,
		incoming: make(chan envelope.Message, inboundBufferSize),
	}
}

// Initialize flips the connected flag. There is no handshake at this
// layer.
func (t *Stdio) Initialize(_ context.Context) error {
	t.connMu.Lock()
	t.connected = true
	t.connMu.Unlock()

	t.log.Debug("Stdio transport initialized")

	return nil
}

// SendMessage writes msg as one JSON document followed by a newline.
func (t *Stdio) SendMessage(_ context.Context, msg envelope.Message) error {
	if !t.IsConnected() {
		return &errors.ConnectionError{Op: "send_message", Err: errors.ErrNotConnected}
	}

	data, err := envelope.Encode(msg)
	if err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := t.w.Write(append(data, '\n')); err != nil {
		return &errors.ConnectionError{Op: "send_message", Err: err}
	}

	return nil
}

// ReceiveMessage drains one message from the inbound queue, if any.
func (t *Stdio) ReceiveMessage(_ context.Context) (envelope.Message, error) {
	select {
	case msg := <-t.incoming:
		return msg, nil
	default:
		return nil, nil
	}
}

// Feed enqueues an inbound message. Intended for the external line
// reader; delivery is best-effort, messages arriving while the queue is
// full are dropped with a warning.
func (t *Stdio) Feed(msg envelope.Message) {
	select {
	case t.incoming <- msg:
	default:
		t.log.Warn("Inbound queue full, dropping message")
	}
}

// Pump reads JSON lines from r until EOF or context cancellation,
// decoding each into the inbound queue. Undecodable lines are skipped
// with a warning. Most callers run this in its own goroutine.
func (t *Stdio) Pump(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		msg, err := envelope.Decode(line)
		if err != nil {
			t.log.Warn("Skipping undecodable line", "error", err)

			continue
		}

		t.Feed(msg)
	}

	return scanner.Err()
}

// Close clears the connected flag.
func (t *Stdio) Close() error {
	t.connMu.Lock()
	t.connected = false
	t.connMu.Unlock()

	return nil
}

// IsConnected implements Transport.
func (t *Stdio) IsConnected() bool {
	t.connMu.RLock()
	defer t.connMu.RUnlock()

	return t.connected
}

// Type implements Transport.
func (t *Stdio) Type() Type { return TypeStdio }
