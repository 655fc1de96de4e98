// Package envelope defines the three MCP-style message kinds and their
// wire representation.
//
// Every message serializes to a single JSON object carrying a "type"
// discriminator (Request, Response, or Notification). Decoding an object
// with an unrecognized discriminator fails loudly rather than producing a
// zero value.
package envelope

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sagex/mcp-client-go/internal/errors"
)

// Kind identifies the message kind on the wire.
type Kind string

const (
	// KindRequest solicits an action from the remote peer.
	KindRequest Kind = "Request"
	// KindResponse answers a request with the same id.
	KindResponse Kind = "Response"
	// KindNotification is a one-way message with no correlated reply.
	KindNotification Kind = "Notification"
)

// Message is implemented by Request, Response, and Notification.
type Message interface {
	// Kind reports the message kind.
	Kind() Kind
}

// Compile-time verification of the three message kinds.
var (
	_ Message = (*Request)(nil)
	_ Message = (*Response)(nil)
	_ Message = (*Notification)(nil)
)

// Request solicits an action from the remote peer.
type Request struct {
	// ID is the caller-chosen correlation id linking this request to its
	// eventual response.
	ID string `json:"id"`

	// Method names the operation to perform.
	Method string `json:"method"`

	// Params carries optional method arguments.
	Params any `json:"params,omitempty"`
}

// Kind implements Message.
func (*Request) Kind() Kind { return KindRequest }

// ErrorObject is the error payload of a failed response.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Response answers a request. Exactly one of Result and Err is set.
type Response struct {
	// ID matches the correlation id of the originating request.
	ID string `json:"id"`

	// Result carries the success payload.
	Result any `json:"result,omitempty"`

	// Err carries the failure payload.
	Err *ErrorObject `json:"error,omitempty"`
}

// Kind implements Message.
func (*Response) Kind() Kind { return KindResponse }

// IsSuccess reports whether the response carries a result rather than an
// error.
func (r *Response) IsSuccess() bool { return r.Err == nil }

// IsError reports whether the response carries an error.
func (r *Response) IsError() bool { return r.Err != nil }

// Notification is a fire-and-forget message with no correlated reply.
type Notification struct {
	// Method names the event being announced.
	Method string `json:"method"`

	// Params carries optional event data.
	Params any `json:"params,omitempty"`

	// Timestamp is the wall-clock emission time in unix seconds.
	Timestamp *int64 `json:"timestamp,omitempty"`
}

// Kind implements Message.
func (*Notification) Kind() Kind { return KindNotification }

// NewRequest constructs a request with the given correlation id, method,
// and optional params (nil for none).
func NewRequest(id, method string, params any) *Request {
	return &Request{ID: id, Method: method, Params: params}
}

// NewSuccessResponse constructs a response carrying a result.
func NewSuccessResponse(id string, result any) *Response {
	return &Response{ID: id, Result: result}
}

// NewErrorResponse constructs a response carrying an error.
func NewErrorResponse(id string, errObj ErrorObject) *Response {
	return &Response{ID: id, Err: &errObj}
}

// NewNotification constructs a notification stamped with the current
// wall-clock time.
func NewNotification(method string, params any) *Notification {
	now := time.Now().Unix()

	return &Notification{Method: method, Params: params, Timestamp: &now}
}

// ID returns the correlation id of a request or response. Notifications
// have no id.
func ID(m Message) (string, bool) {
	switch msg := m.(type) {
	case *Request:
		return msg.ID, true
	case *Response:
		return msg.ID, true
	default:
		return "", false
	}
}

// Method returns the method of a request or notification. Responses have
// no method.
func Method(m Message) (string, bool) {
	switch msg := m.(type) {
	case *Request:
		return msg.Method, true
	case *Notification:
		return msg.Method, true
	default:
		return "", false
	}
}

// IsRequest reports whether m is a request.
func IsRequest(m Message) bool { return m.Kind() == KindRequest }

// IsResponse reports whether m is a response.
func IsResponse(m Message) bool { return m.Kind() == KindResponse }

// IsNotification reports whether m is a notification.
func IsNotification(m Message) bool { return m.Kind() == KindNotification }

// wireMessage is the flattened on-wire shape shared by all three kinds.
type wireMessage struct {
	Type      Kind         `json:"type"`
	ID        string       `json:"id,omitempty"`
	Method    string       `json:"method,omitempty"`
	Params    any          `json:"params,omitempty"`
	Result    any          `json:"result,omitempty"`
	Err       *ErrorObject `json:"error,omitempty"`
	Timestamp *int64       `json:"timestamp,omitempty"`
}

// Encode serializes a message to its wire representation.
func Encode(m Message) ([]byte, error) {
	var wire wireMessage

	switch msg := m.(type) {
	case *Request:
		wire = wireMessage{Type: KindRequest, ID: msg.ID, Method: msg.Method, Params: msg.Params}
	case *Response:
		wire = wireMessage{Type: KindResponse, ID: msg.ID, Result: msg.Result, Err: msg.Err}
	case *Notification:
		wire = wireMessage{Type: KindNotification, Method: msg.Method, Params: msg.Params, Timestamp: msg.Timestamp}
	default:
		return nil, &errors.SerializationError{
			Op:  "encode",
			Err: fmt.Errorf("unsupported message type %T", m),
		}
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return nil, &errors.SerializationError{Op: "encode", Err: err}
	}

	return data, nil
}

// Decode parses a wire representation back into a typed message. An
// unrecognized or missing "type" discriminator is a decode failure, not a
// silent default.
func Decode(data []byte) (Message, error) {
	var wire wireMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, &errors.SerializationError{Op: "decode", Err: err}
	}

	switch wire.Type {
	case KindRequest:
		return &Request{ID: wire.ID, Method: wire.Method, Params: wire.Params}, nil
	case KindResponse:
		return &Response{ID: wire.ID, Result: wire.Result, Err: wire.Err}, nil
	case KindNotification:
		return &Notification{Method: wire.Method, Params: wire.Params, Timestamp: wire.Timestamp}, nil
	default:
		return nil, &errors.SerializationError{
			Op:  "decode",
			Err: fmt.Errorf("unknown message discriminator %q", wire.Type),
		}
	}
}
