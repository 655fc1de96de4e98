package transport

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tmaxmax/go-sse"

	"github.com/sagex/mcp-client-go/internal/envelope"
	"github.com/sagex/mcp-client-go/internal/errors"
)

const (
	// healthTimeout bounds the readiness probe during Initialize.
	healthTimeout = 10 * time.Second

	// sendTimeout bounds a single message delivery.
	sendTimeout = 30 * time.Second

	// inboundBufferSize is the capacity of the inbound message queue.
	inboundBufferSize = 64
)

// HTTP is the point-to-point HTTP transport.
//
// Outbound messages are POSTed to a per-kind resource path under the
// configured base URL. Inbound messages arrive on an internal queue fed
// by an optional server-push (SSE) subscription to {base}/mcp/events;
// ReceiveMessage drains that queue without blocking.
type HTTP struct {
	log     *slog.Logger
	baseURL string
	client  *http.Client
	events  bool

	incoming chan envelope.Message

	connMu    sync.RWMutex
	connected bool

	sseCancel context.CancelFunc
	wg        sync.WaitGroup
}

// NewHTTP creates an HTTP transport rooted at baseURL. When events is
// true, Initialize also subscribes to the server's event stream to feed
// the inbound queue.
func NewHTTP(log *slog.Logger, baseURL string, events bool) *HTTP {
	if log == nil {
		log = nopLogger()
	}

	return &HTTP{
		log:      log.With("component", "http_transport"),
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{},
		events:   events,
		incoming: make(chan envelope.Message, inboundBufferSize),
	}
}

// Initialize probes {base}/health. A non-2xx reply or a connection
// failure leaves the transport not connected.
func (t *HTTP) Initialize(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	url := t.baseURL + "/health"

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, url, nil)
	if err != nil {
		return &errors.ConnectionError{Op: "initialize", Err: err}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Warn("Health probe failed", "url", url, "error", err)

		return &errors.ConnectionError{Op: "initialize", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		t.log.Warn("Health probe rejected", "url", url, "status", resp.StatusCode)

		return &errors.ConnectionError{
			Op:  "initialize",
			Err: fmt.Errorf("health probe returned status %d", resp.StatusCode),
		}
	}

	t.connMu.Lock()
	t.connected = true
	t.connMu.Unlock()

	if t.events {
		sseCtx, sseCancel := context.WithCancel(context.Background())
		t.sseCancel = sseCancel

		t.wg.Add(1)

		go t.readEvents(sseCtx)
	}

	t.log.Debug("HTTP transport initialized", "base_url", t.baseURL, "events", t.events)

	return nil
}

// endpointFor maps a message kind to its resource path.
func endpointFor(msg envelope.Message) string {
	switch m := msg.(type) {
	case *envelope.Request:
		return "/mcp/request/" + m.Method
	case *envelope.Response:
		return "/mcp/response/" + m.ID
	case *envelope.Notification:
		return "/mcp/notification/" + m.Method
	default:
		return "/mcp/unknown"
	}
}

// SendMessage serializes msg and POSTs it to the per-kind resource path.
// A non-2xx reply is a delivery failure surfaced as a StatusError so
// callers can tell remote rejection apart from transport trouble.
func (t *HTTP) SendMessage(ctx context.Context, msg envelope.Message) error {
	if !t.IsConnected() {
		return &errors.ConnectionError{Op: "send_message", Err: errors.ErrNotConnected}
	}

	data, err := envelope.Encode(msg)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	url := t.baseURL + endpointFor(msg)

	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return &errors.ConnectionError{Op: "send_message", Err: err}
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Warn("Message delivery failed", "url", url, "error", err)

		return &errors.ConnectionError{Op: "send_message", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		t.log.Warn("Message rejected by server", "url", url, "status", resp.StatusCode)

		return &errors.StatusError{
			Op:         "send_message",
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return nil
}

// ReceiveMessage drains one message from the inbound queue, if any.
func (t *HTTP) ReceiveMessage(_ context.Context) (envelope.Message, error) {
	select {
	case msg := <-t.incoming:
		return msg, nil
	default:
		return nil, nil
	}
}

// Close stops the event subscription and clears the connected flag.
func (t *HTTP) Close() error {
	t.connMu.Lock()
	t.connected = false
	t.connMu.Unlock()

	if t.sseCancel != nil {
		t.sseCancel()
		t.sseCancel = nil
	}

	t.wg.Wait()

	return nil
}

// IsConnected implements Transport.
func (t *HTTP) IsConnected() bool {
	t.connMu.RLock()
	defer t.connMu.RUnlock()

	return t.connected
}

// Type implements Transport.
func (t *HTTP) Type() Type { return TypeHTTP }

// readEvents subscribes to {base}/mcp/events and feeds decoded messages
// into the inbound queue. Messages that cannot be decoded, and messages
// arriving while the queue is full, are dropped with a warning.
func (t *HTTP) readEvents(ctx context.Context) {
	defer t.wg.Done()

	url := t.baseURL + "/mcp/events"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		t.log.Error("Event subscription setup failed", "url", url, "error", err)

		return
	}

	req.Header.Set("Accept", "text/event-stream")

	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Warn("Event subscription failed", "url", url, "error", err)

		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.log.Warn("Event subscription rejected", "url", url, "status", resp.StatusCode)

		return
	}

	for ev, err := range sse.Read(resp.Body, nil) {
		if err != nil {
			if !stderrors.Is(err, context.Canceled) {
				t.log.Warn("Event stream read failed", "error", err)
			}

			return
		}

		msg, err := envelope.Decode([]byte(ev.Data))
		if err != nil {
			t.log.Warn("Skipping undecodable event", "error", err)

			continue
		}

		select {
		case t.incoming <- msg:
		default:
			t.log.Warn("Inbound queue full, dropping event")
		}
	}
}
