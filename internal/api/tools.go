package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mcpherd/mcpherd/internal/contracts"
	"github.com/mcpherd/mcpherd/internal/supervisor"
)

// Tool represents a tool exposed by an MCP server.
type Tool struct {
	// Name of the tool.
	Name string `doc:"Name of the tool" json:"name"`

	// Description is a human-readable description of the tool.
	// It can be thought of like a "hint" to the model.
	Description string `doc:"Description of what the tool does" json:"description,omitempty"`

	// InputSchema is JSONSchema defining the expected parameters for the tool.
	InputSchema *JSONSchema `doc:"Input parameters schema" json:"inputSchema,omitempty"`
}

// JSONSchema defines the structure for a JSON schema object.
type JSONSchema struct {
	// Type defines the type for this schema, e.g. "object".
	Type string `json:"type"`

	// Properties represents a property name and associated object definition.
	Properties map[string]any `json:"properties,omitempty"`

	// Required lists the (keys of) Properties that are required.
	Required []string `json:"required,omitempty"`
}

// DomainTool wraps supervisor.ToolDefinition for conversion to Tool via ToAPIType.
type DomainTool supervisor.ToolDefinition

// ToolsResponse represents the wrapped API response for a list of tools.
type ToolsResponse struct {
	Body struct {
		Tools []Tool `doc:"Tools exposed by the server" json:"tools"`
	}
}

// ToolCallRequest represents the incoming API request to call a tool on a particular server.
type ToolCallRequest struct {
	Server string         `doc:"Name of the server"       example:"time"             path:"server"`
	Tool   string         `doc:"Name of the tool to call" example:"get_current_time" path:"tool"`
	Body   map[string]any `doc:"Arguments for the tool"`
}

// ToolCallResponse represents the wrapped API response for calling a tool.
type ToolCallResponse struct {
	Body json.RawMessage
}

// ToAPIType converts a wrapped domain type to Tool.
func (d DomainTool) ToAPIType() (Tool, error) {
	var inputSchema *JSONSchema
	if len(d.InputSchema) > 0 {
		inputSchema = &JSONSchema{}
		if err := json.Unmarshal(d.InputSchema, inputSchema); err != nil {
			return Tool{}, fmt.Errorf("malformed input schema for tool '%s': %w", d.Name, err)
		}
	}

	return Tool{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: inputSchema,
	}, nil
}

// RegisterToolRoutes sets up tool-related API endpoint routes.
func RegisterToolRoutes(routerAPI huma.API, sup contracts.ServerSupervisor) {
	tags := []string{"Tools"}

	huma.Register(
		routerAPI,
		huma.Operation{
			OperationID: "listTools",
			Method:      http.MethodGet,
			Path:        "/{name}/tools",
			Summary:     "List server tools",
			Tags:        tags,
		},
		func(ctx context.Context, input *ServerRequest) (*ToolsResponse, error) {
			return handleServerTools(ctx, sup, input.Name)
		},
	)

	huma.Register(
		routerAPI,
		huma.Operation{
			OperationID: "callTool",
			Method:      http.MethodPost,
			Path:        "/{server}/tools/{tool}",
			Summary:     "Call a tool for a server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ToolCallRequest) (*ToolCallResponse, error) {
			return handleServerToolCall(ctx, sup, input.Server, input.Tool, input.Body)
		},
	)
}

// handleServerTools returns the tool definitions exposed by a given server.
func handleServerTools(ctx context.Context, sup contracts.ServerSupervisor, name string) (*ToolsResponse, error) {
	tools, err := sup.Tools(ctx, name)
	if err != nil {
		return nil, err
	}

	apiTools := make([]Tool, 0, len(tools))
	for _, t := range tools {
		data, err := DomainTool(t).ToAPIType()
		if err != nil {
			return nil, err
		}
		apiTools = append(apiTools, data)
	}

	resp := &ToolsResponse{}
	resp.Body.Tools = apiTools

	return resp, nil
}

// handleServerToolCall handles making a call to a specific tool which exists on an MCP server.
func handleServerToolCall(
	ctx context.Context,
	sup contracts.ServerSupervisor,
	server string,
	tool string,
	args map[string]any,
) (*ToolCallResponse, error) {
	rawArgs, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool arguments: %w", err)
	}

	result, err := sup.CallTool(ctx, server, tool, rawArgs)
	if err != nil {
		return nil, err
	}

	return &ToolCallResponse{Body: result}, nil
}
