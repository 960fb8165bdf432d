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

// Prompt represents a prompt template exposed by an MCP server.
type Prompt struct {
	Name        string           `doc:"Name of the prompt"            json:"name"`
	Description string           `doc:"Description of the prompt"     json:"description,omitempty"`
	Arguments   []PromptArgument `doc:"Arguments the prompt accepts"  json:"arguments,omitempty"`
}

// PromptArgument describes a single argument accepted by a prompt template.
type PromptArgument struct {
	Name        string `doc:"Name of the argument"        json:"name"`
	Description string `doc:"Description of the argument" json:"description,omitempty"`
	Required    bool   `doc:"Whether the argument must be provided" json:"required,omitempty"`
}

// DomainPrompt wraps supervisor.PromptDescriptor for conversion to Prompt via ToAPIType.
type DomainPrompt supervisor.PromptDescriptor

// PromptsResponse represents the wrapped API response for a list of prompts.
type PromptsResponse struct {
	Body struct {
		Prompts []Prompt `doc:"Prompt templates exposed by the server" json:"prompts"`
	}
}

// PromptGetRequest represents the incoming API request to render a prompt template on a server.
type PromptGetRequest struct {
	Server string            `doc:"Name of the server"            example:"git"           path:"server"`
	Prompt string            `doc:"Name of the prompt to render"  example:"commit_message" path:"prompt"`
	Body   map[string]string `doc:"Arguments for the prompt"`
}

// PromptGetResponse represents the wrapped API response for rendering a prompt.
type PromptGetResponse struct {
	Body json.RawMessage
}

// ToAPIType converts a wrapped domain type to Prompt.
func (d DomainPrompt) ToAPIType() (Prompt, error) {
	var args []PromptArgument
	if len(d.Arguments) > 0 {
		if err := json.Unmarshal(d.Arguments, &args); err != nil {
			return Prompt{}, fmt.Errorf("malformed argument list for prompt '%s': %w", d.Name, err)
		}
	}

	return Prompt{
		Name:        d.Name,
		Description: d.Description,
		Arguments:   args,
	}, nil
}

// RegisterPromptRoutes sets up prompt-related API endpoint routes.
func RegisterPromptRoutes(routerAPI huma.API, sup contracts.ServerSupervisor) {
	tags := []string{"Prompts"}

	huma.Register(
		routerAPI,
		huma.Operation{
			OperationID: "listPrompts",
			Method:      http.MethodGet,
			Path:        "/{name}/prompts",
			Summary:     "List server prompts",
			Tags:        tags,
		},
		func(ctx context.Context, input *ServerRequest) (*PromptsResponse, error) {
			return handleServerPrompts(ctx, sup, input.Name)
		},
	)

	huma.Register(
		routerAPI,
		huma.Operation{
			OperationID: "getPrompt",
			Method:      http.MethodPost,
			Path:        "/{server}/prompts/{prompt}",
			Summary:     "Render a prompt template on a server",
			Tags:        tags,
		},
		func(ctx context.Context, input *PromptGetRequest) (*PromptGetResponse, error) {
			return handleServerPromptGet(ctx, sup, input.Server, input.Prompt, input.Body)
		},
	)
}

// handleServerPrompts returns the prompt templates exposed by a given server.
func handleServerPrompts(ctx context.Context, sup contracts.ServerSupervisor, name string) (*PromptsResponse, error) {
	prompts, err := sup.Prompts(ctx, name)
	if err != nil {
		return nil, err
	}

	apiPrompts := make([]Prompt, 0, len(prompts))
	for _, p := range prompts {
		data, err := DomainPrompt(p).ToAPIType()
		if err != nil {
			return nil, err
		}
		apiPrompts = append(apiPrompts, data)
	}

	resp := &PromptsResponse{}
	resp.Body.Prompts = apiPrompts

	return resp, nil
}

// handleServerPromptGet renders a prompt template with the supplied arguments.
func handleServerPromptGet(
	ctx context.Context,
	sup contracts.ServerSupervisor,
	server string,
	prompt string,
	args map[string]string,
) (*PromptGetResponse, error) {
	var rawArgs json.RawMessage
	if len(args) > 0 {
		encoded, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("failed to encode prompt arguments: %w", err)
		}
		rawArgs = encoded
	}

	result, err := sup.GetPrompt(ctx, server, prompt, rawArgs)
	if err != nil {
		return nil, err
	}

	return &PromptGetResponse{Body: result}, nil
}
