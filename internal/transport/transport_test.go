package transport

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sagex/mcp-client-go/internal/envelope"
	"github.com/sagex/mcp-client-go/internal/errors"
)

func TestMockTransport(t *testing.T) {
	ctx := context.Background()
	mock := NewMock()

	require.NoError(t, mock.Initialize(ctx))
	require.True(t, mock.IsConnected())
	require.Equal(t, TypeMock, mock.Type())

	request := envelope.Ping("test-1")
	require.NoError(t, mock.SendMessage(ctx, request))

	sent := mock.SentMessages()
	require.Len(t, sent, 1)
	require.True(t, envelope.IsRequest(sent[0]))

	mock.AddIncoming(envelope.NewSuccessResponse("test-1", map[string]any{"pong": true}))

	received, err := mock.ReceiveMessage(ctx)
	require.NoError(t, err)
	require.NotNil(t, received)
	require.True(t, envelope.IsResponse(received))

	// Queue drained: absence of a message is not an error.
	received, err = mock.ReceiveMessage(ctx)
	require.NoError(t, err)
	require.Nil(t, received)

	mock.ClearSent()
	require.Empty(t, mock.SentMessages())

	require.NoError(t, mock.Close())
	require.False(t, mock.IsConnected())
}

func TestMockTransportFailureInjection(t *testing.T) {
	ctx := context.Background()

	init := NewMock().WithInitFailure()
	err := init.Initialize(ctx)
	require.Error(t, err)
	require.False(t, init.IsConnected())

	var connErr *errors.ConnectionError
	require.ErrorAs(t, err, &connErr)

	send := NewMock().WithSendFailure()
	require.NoError(t, send.Initialize(ctx))

	err = send.SendMessage(ctx, envelope.Ping("test-1"))
	require.ErrorAs(t, err, &connErr)
	require.Empty(t, send.SentMessages())
}

func TestMockTransportSendWhileDisconnected(t *testing.T) {
	mock := NewMock()

	err := mock.SendMessage(context.Background(), envelope.Ping("test-1"))
	require.ErrorIs(t, err, errors.ErrNotConnected)
}

func TestMockTransportSendHook(t *testing.T) {
	ctx := context.Background()
	mock := NewMock()
	require.NoError(t, mock.Initialize(ctx))

	var hooked []envelope.Message

	mock.SendHook = func(msg envelope.Message) {
		hooked = append(hooked, msg)
	}

	require.NoError(t, mock.SendMessage(ctx, envelope.Ping("h-1")))
	require.Len(t, hooked, 1)
}

func TestStdioTransport(t *testing.T) {
	ctx := context.Background()

	var out bytes.Buffer

	stdio := NewStdio(nil, &out)
	require.Equal(t, TypeStdio, stdio.Type())

	// Not connected before Initialize.
	err := stdio.SendMessage(ctx, envelope.Ping("s-1"))
	require.ErrorIs(t, err, errors.ErrNotConnected)

	require.NoError(t, stdio.Initialize(ctx))
	require.True(t, stdio.IsConnected())

	require.NoError(t, stdio.SendMessage(ctx, envelope.Ping("s-1")))
	require.NoError(t, stdio.SendMessage(ctx, envelope.NewNotification("heartbeat", nil)))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	require.JSONEq(t, `{"type":"Request","id":"s-1","method":"ping"}`, lines[0])

	decoded, err := envelope.Decode([]byte(lines[1]))
	require.NoError(t, err)
	require.True(t, envelope.IsNotification(decoded))

	require.NoError(t, stdio.Close())
	require.False(t, stdio.IsConnected())
}

func TestStdioFeedAndReceive(t *testing.T) {
	ctx := context.Background()
	stdio := NewStdio(nil, &bytes.Buffer{})
	require.NoError(t, stdio.Initialize(ctx))

	msg, err := stdio.ReceiveMessage(ctx)
	require.NoError(t, err)
	require.Nil(t, msg)

	stdio.Feed(envelope.NewSuccessResponse("s-2", map[string]any{"ok": true}))

	msg, err = stdio.ReceiveMessage(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)

	id, ok := envelope.ID(msg)
	require.True(t, ok)
	require.Equal(t, "s-2", id)
}

func TestStdioPump(t *testing.T) {
	ctx := context.Background()
	stdio := NewStdio(nil, &bytes.Buffer{})
	require.NoError(t, stdio.Initialize(ctx))

	input := strings.Join([]string{
		`{"type":"Response","id":"p-1","result":{"pong":true}}`,
		`not json at all`,
		``,
		`{"type":"Notification","method":"notifications/progress"}`,
	}, "\n")

	require.NoError(t, stdio.Pump(ctx, strings.NewReader(input)))

	first, err := stdio.ReceiveMessage(ctx)
	require.NoError(t, err)
	require.True(t, envelope.IsResponse(first))

	second, err := stdio.ReceiveMessage(ctx)
	require.NoError(t, err)
	require.True(t, envelope.IsNotification(second))

	// The malformed line was skipped, not queued.
	third, err := stdio.ReceiveMessage(ctx)
	require.NoError(t, err)
	require.Nil(t, third)
}

func TestFactory(t *testing.T) {
	httpTransport, err := New(nil, TypeHTTP, Config{"base_url": "http://example.test"})
	require.NoError(t, err)
	require.Equal(t, TypeHTTP, httpTransport.Type())

	stdioTransport, err := New(nil, TypeStdio, nil)
	require.NoError(t, err)
	require.Equal(t, TypeStdio, stdioTransport.Type())

	mockTransport, err := New(nil, TypeMock, nil)
	require.NoError(t, err)
	require.Equal(t, TypeMock, mockTransport.Type())

	var cfgErr *errors.ConfigurationError

	_, err = New(nil, TypeSocket, nil)
	require.ErrorAs(t, err, &cfgErr)

	_, err = New(nil, Type("carrier-pigeon"), nil)
	require.ErrorAs(t, err, &cfgErr)
}
