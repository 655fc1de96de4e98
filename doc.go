// Package sagemcp provides a Go client for MCP-style development servers.
//
// The client speaks a JSON message protocol with three message kinds
// (requests, responses, notifications) over a pluggable transport, and
// layers session tracking, a local tool/resource registry and an internal
// event loop on top of the protocol connection.
//
// Basic usage:
//
//	client, err := sagemcp.NewClient(
//	    sagemcp.WithLogger(slog.Default()),
//	    sagemcp.WithTransportType(sagemcp.TransportHTTP),
//	    sagemcp.WithTransportConfig(sagemcp.TransportConfig{"base_url": "http://localhost:8080"}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	if err := client.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	sessionID, err := client.StartSession(ctx, sagemcp.SessionContext{
//	    WorkingDirectory: "/home/dev/project",
//	    ProjectName:      "my-project",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.EndSession()
//
//	resp, err := client.ExecuteTool(ctx, "analyze_code", map[string]any{"path": "main.go"})
//
// All errors returned by the client implement the SageMCPError interface
// and can be inspected with errors.As. Only connection and timeout errors
// are recoverable; see Recoverable.
package sagemcp
