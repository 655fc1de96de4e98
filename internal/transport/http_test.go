package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sagex/mcp-client-go/internal/envelope"
	"github.com/sagex/mcp-client-go/internal/errors"
)

func TestHTTPInitializeProbesHealth(t *testing.T) {
	var mu sync.Mutex

	var paths []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := NewHTTP(nil, server.URL, false)
	require.NoError(t, transport.Initialize(context.Background()))
	require.True(t, transport.IsConnected())
	require.Equal(t, TypeHTTP, transport.Type())

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"/health"}, paths)
}

func TestHTTPInitializeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	transport := NewHTTP(nil, server.URL, false)
	err := transport.Initialize(context.Background())

	var connErr *errors.ConnectionError
	require.ErrorAs(t, err, &connErr)
	require.False(t, transport.IsConnected())
}

func TestHTTPInitializeUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	server.Close() // immediately: connection refused

	transport := NewHTTP(nil, server.URL, false)
	err := transport.Initialize(context.Background())

	var connErr *errors.ConnectionError
	require.ErrorAs(t, err, &connErr)
	require.False(t, transport.IsConnected())
}

func TestHTTPSendMapsKindsToPaths(t *testing.T) {
	var mu sync.Mutex

	var posts []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			mu.Lock()
			posts = append(posts, r.URL.Path)
			mu.Unlock()
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx := context.Background()
	transport := NewHTTP(nil, server.URL, false)
	require.NoError(t, transport.Initialize(ctx))

	require.NoError(t, transport.SendMessage(ctx, envelope.Ping("req-9")))
	require.NoError(t, transport.SendMessage(ctx, envelope.NewSuccessResponse("req-9", map[string]any{"pong": true})))
	require.NoError(t, transport.SendMessage(ctx, envelope.NewNotification("notifications/progress", nil)))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{
		"/mcp/request/ping",
		"/mcp/response/req-9",
		"/mcp/notification/notifications/progress",
	}, posts)
}

func TestHTTPSendWhileDisconnected(t *testing.T) {
	transport := NewHTTP(nil, "http://127.0.0.1:0", false)

	err := transport.SendMessage(context.Background(), envelope.Ping("x"))
	require.ErrorIs(t, err, errors.ErrNotConnected)
}

func TestHTTPSendRejectedByServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)

			return
		}

		http.Error(w, "invalid payload", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	ctx := context.Background()
	transport := NewHTTP(nil, server.URL, false)
	require.NoError(t, transport.Initialize(ctx))

	err := transport.SendMessage(ctx, envelope.Ping("rejected"))

	var statusErr *errors.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusUnprocessableEntity, statusErr.StatusCode)
	require.Equal(t, "invalid payload", statusErr.Body)
}

func TestHTTPEventIngestion(t *testing.T) {
	payload, err := envelope.Encode(envelope.NewSuccessResponse("evt-1", map[string]any{"pong": true}))
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/mcp/events":
			w.Header().Set("Content-Type", "text/event-stream")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("data: " + string(payload) + "\n\n"))

			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}

			<-r.Context().Done()
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	transport := NewHTTP(nil, server.URL, true)
	require.NoError(t, transport.Initialize(ctx))

	defer func() { require.NoError(t, transport.Close()) }()

	require.Eventually(t, func() bool {
		msg, err := transport.ReceiveMessage(ctx)
		if err != nil || msg == nil {
			return false
		}

		id, _ := envelope.ID(msg)

		return id == "evt-1"
	}, 2*time.Second, 10*time.Millisecond)
}
