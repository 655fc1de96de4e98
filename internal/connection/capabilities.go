package connection

// ProtocolVersion is the protocol version this client speaks.
const ProtocolVersion = "1.0.0"

// Capabilities is the feature set negotiated during the handshake.
// Once negotiated it is read-only for the connection's lifetime.
type Capabilities struct {
	ProtocolVersion string         `json:"protocol_version"`
	Tools           bool           `json:"tools"`
	Resources       bool           `json:"resources"`
	Prompts         bool           `json:"prompts"`
	Notifications   bool           `json:"notifications"`
	Streaming       bool           `json:"streaming"`
	Logging         bool           `json:"logging"`
	Extensions      map[string]any `json:"extensions,omitempty"`
}

// DefaultCapabilities returns the capability set advertised when the
// caller does not supply one.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		ProtocolVersion: ProtocolVersion,
		Tools:           true,
		Resources:       true,
		Prompts:         true,
		Notifications:   true,
		Streaming:       false,
		Logging:         true,
	}
}
