package contracts

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mcpherd/mcpherd/internal/domain"
	"github.com/mcpherd/mcpherd/internal/supervisor"
)

// MCPHealthMonitor provides a way to interact with the health status of MCP servers.
type MCPHealthMonitor interface {
	// Status returns the health status for a single tracked server.
	Status(name string) (domain.ServerHealth, error)

	// List returns a copy of all known server health records.
	List() []domain.ServerHealth

	// Update records a health check for a tracked server.
	Update(name string, status domain.HealthStatus, latency *time.Duration) error
}

// ServerSupervisor provides lifecycle control and RPC access to supervised
// MCP server processes.
type ServerSupervisor interface {
	// Names returns all configured server names, sorted.
	Names() []string

	// Running returns the names of servers with a live process, sorted.
	Running() []string

	// Start launches the named server and discovers its capabilities.
	Start(ctx context.Context, name string) (supervisor.ServerStatus, error)

	// Stop terminates the named server.
	// It reports false when the server was not running.
	Stop(ctx context.Context, name string) (bool, error)

	// StopAll stops every running server. Used on daemon shutdown.
	StopAll(ctx context.Context)

	// Restart stops and then starts the named server.
	Restart(ctx context.Context, name string) (supervisor.ServerStatus, error)

	// Status reports the lifecycle state of a configured server.
	Status(ctx context.Context, name string) (supervisor.ServerStatus, error)

	// Tools lists the tools currently exposed by the named running server.
	Tools(ctx context.Context, name string) ([]supervisor.ToolDefinition, error)

	// CallTool invokes a tool on the named running server.
	CallTool(ctx context.Context, name, tool string, args json.RawMessage) (json.RawMessage, error)

	// Resources lists the resources exposed by the named running server.
	Resources(ctx context.Context, name string) ([]supervisor.ResourceDescriptor, error)

	// ReadResource reads a single resource by URI.
	ReadResource(ctx context.Context, name, uri string) (json.RawMessage, error)

	// Prompts lists the prompt templates exposed by the named running server.
	Prompts(ctx context.Context, name string) ([]supervisor.PromptDescriptor, error)

	// GetPrompt renders a prompt template on the named running server.
	GetPrompt(ctx context.Context, name, prompt string, args json.RawMessage) (json.RawMessage, error)

	// Ping measures a round trip to the named running server.
	Ping(ctx context.Context, name string) (time.Duration, error)

	// Summary aggregates totals across all configured and running servers.
	Summary(ctx context.Context) supervisor.Summary
}
