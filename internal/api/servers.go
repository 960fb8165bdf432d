package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mcpherd/mcpherd/internal/contracts"
	"github.com/mcpherd/mcpherd/internal/supervisor"
)

// DomainServerStatus is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainServerStatus supervisor.ServerStatus

// ServerState represents the lifecycle state of a supervised MCP server.
type ServerState string

const (
	ServerStateRunning ServerState = "running"
	ServerStateStopped ServerState = "stopped"
	ServerStateError   ServerState = "error"
)

// ServerInfo is a single configured server and whether it currently has a live process.
type ServerInfo struct {
	Name    string `doc:"Name of the configured server" json:"name"`
	Running bool   `doc:"Whether the server has a live process" json:"running"`
}

// ServerStatus describes the lifecycle state of a server including its discovered tools.
type ServerStatus struct {
	Name  string      `doc:"Name of the server"                     json:"name"`
	State ServerState `doc:"Lifecycle state"                        json:"state"`
	Tools []Tool      `doc:"Tools discovered on the running server" json:"tools,omitempty"`
	Error string      `doc:"Advisory error from discovery"          json:"error,omitempty"`
}

// ServersResponse represents the wrapped API response for a list of servers.
type ServersResponse struct {
	Body struct {
		Servers []ServerInfo `doc:"Configured MCP servers" json:"servers"`
	}
}

// ServerRequest represents an incoming API request that addresses a server by name.
type ServerRequest struct {
	Name string `doc:"Name of the server" example:"time" path:"name"`
}

// ServerStatusResponse represents the wrapped API response for a server's status.
type ServerStatusResponse struct {
	Body ServerStatus
}

// ServerStopResponse represents the wrapped API response for stopping a server.
type ServerStopResponse struct {
	Body struct {
		Stopped bool `doc:"Whether a running server was stopped" json:"stopped"`
	}
}

// SummaryResponse represents the wrapped API response for aggregate server statistics.
type SummaryResponse struct {
	Body struct {
		TotalServers   int `doc:"Number of configured servers"                json:"totalServers"`
		RunningServers int `doc:"Number of servers with a live process"       json:"runningServers"`
		TotalTools     int `doc:"Tools available across running servers"     json:"totalTools"`
		TotalResources int `doc:"Resources available across running servers" json:"totalResources"`
		TotalPrompts   int `doc:"Prompts available across running servers"   json:"totalPrompts"`
	}
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainServerStatus) ToAPIType() (ServerStatus, error) {
	state, err := parseServerState(d.State)
	if err != nil {
		return ServerStatus{}, err
	}

	tools := make([]Tool, 0, len(d.Tools))
	for _, t := range d.Tools {
		data, err := DomainTool(t).ToAPIType()
		if err != nil {
			return ServerStatus{}, err
		}
		tools = append(tools, data)
	}

	return ServerStatus{
		Name:  d.Name,
		State: state,
		Tools: tools,
		Error: d.Error,
	}, nil
}

// RegisterServerRoutes sets up server lifecycle API endpoint routes.
func RegisterServerRoutes(routerAPI huma.API, sup contracts.ServerSupervisor, apiPathPrefix string) {
	serversAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Servers"}

	// Route at the root of the group (no path specified).
	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "listServers",
			Method:      http.MethodGet,
			Summary:     "List all servers",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ServersResponse, error) {
			return handleServers(sup)
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "getServersSummary",
			Method:      http.MethodGet,
			Path:        "/summary",
			Summary:     "Aggregate statistics across all servers",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*SummaryResponse, error) {
			return handleServersSummary(ctx, sup)
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "getServerStatus",
			Method:      http.MethodGet,
			Path:        "/{name}",
			Summary:     "Get the status of a server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ServerRequest) (*ServerStatusResponse, error) {
			status, err := sup.Status(ctx, input.Name)
			return serverStatusResponse(status, err)
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "startServer",
			Method:      http.MethodPost,
			Path:        "/{name}/start",
			Summary:     "Start a server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ServerRequest) (*ServerStatusResponse, error) {
			status, err := sup.Start(ctx, input.Name)
			return serverStatusResponse(status, err)
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "stopServer",
			Method:      http.MethodPost,
			Path:        "/{name}/stop",
			Summary:     "Stop a server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ServerRequest) (*ServerStopResponse, error) {
			stopped, err := sup.Stop(ctx, input.Name)
			if err != nil {
				return nil, err
			}

			resp := &ServerStopResponse{}
			resp.Body.Stopped = stopped

			return resp, nil
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "restartServer",
			Method:      http.MethodPost,
			Path:        "/{name}/restart",
			Summary:     "Restart a server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ServerRequest) (*ServerStatusResponse, error) {
			status, err := sup.Restart(ctx, input.Name)
			return serverStatusResponse(status, err)
		},
	)
}

// handleServers returns the list of configured MCP servers with a running flag.
func handleServers(sup contracts.ServerSupervisor) (*ServersResponse, error) {
	running := make(map[string]struct{})
	for _, name := range sup.Running() {
		running[name] = struct{}{}
	}

	names := sup.Names()
	servers := make([]ServerInfo, 0, len(names))
	for _, name := range names {
		_, isRunning := running[name]
		servers = append(servers, ServerInfo{Name: name, Running: isRunning})
	}

	resp := &ServersResponse{}
	resp.Body.Servers = servers

	return resp, nil
}

// handleServersSummary aggregates capability counts across all running servers.
func handleServersSummary(ctx context.Context, sup contracts.ServerSupervisor) (*SummaryResponse, error) {
	sum := sup.Summary(ctx)

	resp := &SummaryResponse{}
	resp.Body.TotalServers = sum.TotalServers
	resp.Body.RunningServers = sum.RunningServers
	resp.Body.TotalTools = sum.TotalTools
	resp.Body.TotalResources = sum.TotalResources
	resp.Body.TotalPrompts = sum.TotalPrompts

	return resp, nil
}

func serverStatusResponse(status supervisor.ServerStatus, err error) (*ServerStatusResponse, error) {
	if err != nil {
		return nil, err
	}

	data, err := DomainServerStatus(status).ToAPIType()
	if err != nil {
		return nil, err
	}

	return &ServerStatusResponse{Body: data}, nil
}

func parseServerState(state supervisor.State) (ServerState, error) {
	switch state {
	case supervisor.StateRunning:
		return ServerStateRunning, nil
	case supervisor.StateStopped:
		return ServerStateStopped, nil
	case supervisor.StateError:
		return ServerStateError, nil
	default:
		return "", fmt.Errorf("unknown server state: %s", state)
	}
}
