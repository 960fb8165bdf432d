package supervisor

import (
	"encoding/json"
	"fmt"
)

const (
	// StateRunning indicates a live registered process for the server.
	StateRunning State = "running"

	// StateStopped indicates no live process for the server.
	StateStopped State = "stopped"

	// StateError indicates a live registered process whose post-start probe or
	// discovery failed. The state is advisory: the server remains callable.
	StateError State = "error"
)

// State is the lifecycle state of a configured server.
type State string

// ServerStatus is the externally visible status of one configured server,
// including the tool catalog discovered from it when running.
type ServerStatus struct {
	Name  string           `json:"name"`
	State State            `json:"state"`
	Tools []ToolDefinition `json:"tools,omitempty"`
	Error string           `json:"error,omitempty"`
}

// ToolDefinition describes a tool exposed by a running server.
// The schema is an opaque JSON document owned by the server; it is recomputed
// on every discovery call rather than cached authoritatively.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// ResourceDescriptor describes a resource exposed by a running server.
type ResourceDescriptor struct {
	URI         string `json:"uri"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	MIMEType    string `json:"mimeType,omitempty"`
}

// PromptDescriptor describes a prompt template exposed by a running server.
// Arguments is the server's opaque argument declaration.
type PromptDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Arguments   json.RawMessage `json:"arguments,omitempty"`
}

// Summary aggregates counts across all configured and running servers.
type Summary struct {
	TotalServers   int `json:"totalServers"`
	RunningServers int `json:"runningServers"`
	TotalTools     int `json:"totalTools"`
	TotalResources int `json:"totalResources"`
	TotalPrompts   int `json:"totalPrompts"`
}

func parseToolList(result json.RawMessage) ([]ToolDefinition, error) {
	var payload struct {
		Tools []ToolDefinition `json:"tools"`
	}
	if err := json.Unmarshal(result, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode tool list: %w", err)
	}
	return payload.Tools, nil
}

func parseResourceList(result json.RawMessage) ([]ResourceDescriptor, error) {
	var payload struct {
		Resources []ResourceDescriptor `json:"resources"`
	}
	if err := json.Unmarshal(result, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode resource list: %w", err)
	}
	return payload.Resources, nil
}

func parsePromptList(result json.RawMessage) ([]PromptDescriptor, error) {
	var payload struct {
		Prompts []PromptDescriptor `json:"prompts"`
	}
	if err := json.Unmarshal(result, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode prompt list: %w", err)
	}
	return payload.Prompts, nil
}
