package envelope

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sagex/mcp-client-go/internal/errors"
)

func TestAccessors(t *testing.T) {
	req := NewRequest("req-1", MethodPing, nil)
	require.True(t, IsRequest(req))
	require.False(t, IsResponse(req))

	id, ok := ID(req)
	require.True(t, ok)
	require.Equal(t, "req-1", id)

	method, ok := Method(req)
	require.True(t, ok)
	require.Equal(t, "ping", method)

	resp := NewSuccessResponse("req-1", map[string]any{"status": "ok"})
	require.True(t, IsResponse(resp))

	id, ok = ID(resp)
	require.True(t, ok)
	require.Equal(t, "req-1", id)

	_, ok = Method(resp)
	require.False(t, ok)

	notif := NewNotification("test/notification", map[string]any{"test": true})
	require.True(t, IsNotification(notif))
	require.NotNil(t, notif.Timestamp)

	_, ok = ID(notif)
	require.False(t, ok)

	method, ok = Method(notif)
	require.True(t, ok)
	require.Equal(t, "test/notification", method)
}

func TestResponseSuccessAndError(t *testing.T) {
	success := NewSuccessResponse("r-1", map[string]any{"pong": true})
	require.True(t, success.IsSuccess())
	require.False(t, success.IsError())

	failure := NewErrorResponse("r-2", ErrorObject{Code: -32600, Message: "Invalid Request"})
	require.False(t, failure.IsSuccess())
	require.True(t, failure.IsError())
	require.Equal(t, -32600, failure.Err.Code)
}

func TestRequestBuilders(t *testing.T) {
	require.Equal(t, "ping", Ping("p-1").Method)
	require.Equal(t, "p-1", Ping("p-1").ID)
	require.Equal(t, "tools/list", ListTools("t-1").Method)
	require.Equal(t, "resources/list", ListResources("r-1").Method)

	call := CallTool("c-1", "formatter", map[string]any{"path": "main.go"})
	require.Equal(t, "tools/call", call.Method)
	require.Equal(t, map[string]any{
		"name":      "formatter",
		"arguments": map[string]any{"path": "main.go"},
	}, call.Params)

	read := ReadResource("rr-1", "file:///tmp/x")
	require.Equal(t, "resources/read", read.Method)
	require.Equal(t, map[string]any{"uri": "file:///tmp/x"}, read.Params)

	init := Initialize("i-1", map[string]any{"tools": true})
	require.Equal(t, "initialize", init.Method)
	require.NotNil(t, init.Params)
}

func TestProgressPercentage(t *testing.T) {
	total := uint64(200)
	notif := Progress("tok", 50, &total)

	params, ok := notif.Params.(map[string]any)
	require.True(t, ok)

	value, ok := params["value"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, uint8(25), value["percentage"])

	// No total known: percentage reports zero.
	notif = Progress("tok", 50, nil)
	params = notif.Params.(map[string]any)
	value = params["value"].(map[string]any)
	require.Equal(t, uint8(0), value["percentage"])
}

func TestLogMessageBuilder(t *testing.T) {
	notif := LogMessage(LogLevelInfo, "cache warmed", nil)
	require.Equal(t, MethodLogNotification, notif.Method)

	params := notif.Params.(map[string]any)
	require.Equal(t, LogLevelInfo, params["level"])
	require.Equal(t, "cache warmed", params["data"])
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ts := int64(1700000000)

	cases := []struct {
		name string
		msg  Message
	}{
		{"request with params", &Request{ID: "r-1", Method: "tools/call", Params: map[string]any{"name": "fmt"}}},
		{"request without params", &Request{ID: "r-2", Method: "ping"}},
		{"success response", &Response{ID: "r-1", Result: map[string]any{"pong": true}}},
		{"error response", &Response{ID: "r-3", Err: &ErrorObject{Code: -32601, Message: "Method not found"}}},
		{"notification with params", &Notification{Method: "notifications/progress", Params: map[string]any{"token": "t"}, Timestamp: &ts}},
		{"notification without params", &Notification{Method: "heartbeat", Timestamp: &ts}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Encode(tc.msg)
			require.NoError(t, err)

			decoded, err := Decode(data)
			require.NoError(t, err)
			require.Equal(t, tc.msg, decoded)
		})
	}
}

func TestEncodeIncludesDiscriminator(t *testing.T) {
	data, err := Encode(Ping("p-1"))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"Request","id":"p-1","method":"ping"}`, string(data))
}

func TestDecodeUnknownDiscriminator(t *testing.T) {
	_, err := Decode([]byte(`{"type":"Heartbeat","method":"x"}`))
	require.Error(t, err)

	var serErr *errors.SerializationError
	require.ErrorAs(t, err, &serErr)
}

func TestDecodeMissingDiscriminator(t *testing.T) {
	_, err := Decode([]byte(`{"id":"r-1","method":"ping"}`))
	require.Error(t, err)

	var serErr *errors.SerializationError
	require.ErrorAs(t, err, &serErr)
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"type":"Request",`))
	require.Error(t, err)

	var serErr *errors.SerializationError
	require.ErrorAs(t, err, &serErr)
}
