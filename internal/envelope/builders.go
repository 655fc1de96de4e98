package envelope

// Well-known method names exchanged with the remote server.
const (
	MethodPing          = "ping"
	MethodInitialize    = "initialize"
	MethodCapabilities  = "capabilities"
	MethodListTools     = "tools/list"
	MethodCallTool      = "tools/call"
	MethodListResources = "resources/list"
	MethodReadResource  = "resources/read"

	MethodProgressNotification = "notifications/progress"
	MethodLogNotification      = "notifications/message"
	MethodResourceUpdated      = "notifications/resources/updated"
)

// LogLevel is the severity attached to log notifications.
type LogLevel string

// Log levels in increasing severity.
const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// Ping builds a ping request.
func Ping(id string) *Request {
	return NewRequest(id, MethodPing, nil)
}

// Initialize builds the handshake request carrying the local capabilities.
func Initialize(id string, capabilities any) *Request {
	return NewRequest(id, MethodInitialize, capabilities)
}

// ListTools builds a tools/list request.
func ListTools(id string) *Request {
	return NewRequest(id, MethodListTools, nil)
}

// CallTool builds a tools/call request for the named tool.
func CallTool(id, name string, arguments any) *Request {
	return NewRequest(id, MethodCallTool, map[string]any{
		"name":      name,
		"arguments": arguments,
	})
}

// ListResources builds a resources/list request.
func ListResources(id string) *Request {
	return NewRequest(id, MethodListResources, nil)
}

// ReadResource builds a resources/read request for the given URI.
func ReadResource(id, uri string) *Request {
	return NewRequest(id, MethodReadResource, map[string]any{"uri": uri})
}

// Progress builds a progress notification. The percentage is a display
// convenience: done/total*100 truncated to an unsigned byte, or 0 when no
// total is known.
func Progress(token string, done uint64, total *uint64) *Notification {
	var percentage uint8
	if total != nil && *total > 0 {
		percentage = uint8(float64(done) / float64(*total) * 100)
	}

	return NewNotification(MethodProgressNotification, map[string]any{
		"progressToken": token,
		"value": map[string]any{
			"kind":       "report",
			"percentage": percentage,
		},
	})
}

// LogMessage builds a log notification.
func LogMessage(level LogLevel, message string, data any) *Notification {
	return NewNotification(MethodLogNotification, map[string]any{
		"level":  level,
		"logger": "sage-mcp",
		"data":   message,
		"extra":  data,
	})
}

// ResourceUpdated builds a notification announcing that the resource at
// uri changed.
func ResourceUpdated(uri string) *Notification {
	return NewNotification(MethodResourceUpdated, map[string]any{"uri": uri})
}
