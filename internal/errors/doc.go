// Package errors defines error types for the sage MCP client.
//
// This package provides structured error types for the failure classes of
// the protocol layer: connection, timeout, protocol, serialization,
// configuration, and validation. All error types support error unwrapping
// and can be checked using errors.Is and errors.As.
package errors
