package sagemcp

import (
	"github.com/google/jsonschema-go/jsonschema"

	interrors "github.com/sagex/mcp-client-go/internal/errors"
)

// Tool describes a tool the client advertises. InputSchema documents the
// arguments the tool accepts.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	InputSchema *jsonschema.Schema `json:"input_schema,omitempty"`
	Metadata    map[string]any     `json:"metadata,omitempty"`
}

// Resource describes a resource the client advertises, addressed by URI.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
}

// SimpleSchema builds a jsonschema.Schema for an object with the given
// property names and primitive types ("string", "number", "boolean").
// All properties are required.
func SimpleSchema(props map[string]string) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(props)),
	}

	for name, typ := range props {
		schema.Properties[name] = &jsonschema.Schema{Type: typ}
		schema.Required = append(schema.Required, name)
	}

	return schema
}

// RegisterTool adds a tool to the local registry. Names must be unique.
func (c *Client) RegisterTool(tool Tool) error {
	if tool.Name == "" {
		return &interrors.ValidationError{Field: "tool_name", Message: "must not be empty"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range c.tools {
		if t.Name == tool.Name {
			return &interrors.ValidationError{Field: "tool_name", Message: "tool already registered"}
		}
	}

	c.tools = append(c.tools, tool)

	return nil
}

// RegisterResource adds a resource to the local registry. URIs must be
// unique.
func (c *Client) RegisterResource(resource Resource) error {
	if resource.URI == "" {
		return &interrors.ValidationError{Field: "resource_uri", Message: "must not be empty"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range c.resources {
		if r.URI == resource.URI {
			return &interrors.ValidationError{Field: "resource_uri", Message: "resource already registered"}
		}
	}

	c.resources = append(c.resources, resource)

	return nil
}

// ListTools returns the locally registered tools in registration order.
func (c *Client) ListTools() []Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]Tool(nil), c.tools...)
}

// ListResources returns the locally registered resources in registration
// order.
func (c *Client) ListResources() []Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]Resource(nil), c.resources...)
}
