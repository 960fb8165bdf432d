// Package supervisor launches and supervises MCP servers as child processes,
// multiplexing framed JSON-RPC exchanges against them with timeout
// enforcement. One misbehaving server cannot wedge the host: all pipe I/O is
// isolated behind per-handle reader goroutines and every exchange is bounded
// by a deadline.
package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/xeipuuv/gojsonschema"

	"github.com/mcpherd/mcpherd/internal/config"
	"github.com/mcpherd/mcpherd/internal/errors"
)

// Fixed lifecycle method names consumed by the supervisor. Everything else on
// the wire is opaque to it.
const (
	methodPing          = "ping"
	methodTerminate     = "terminate"
	methodToolsList     = "tools/list"
	methodToolsCall     = "tools/call"
	methodResourcesList = "resources/list"
	methodResourcesRead = "resources/read"
	methodPromptsList   = "prompts/list"
	methodPromptsGet    = "prompts/get"
)

// Supervisor is the lifecycle manager for configured MCP servers: it spawns
// them, registers the live handles, discovers their capabilities, dispatches
// tool calls, and tears processes down without leaving zombies.
type Supervisor struct {
	logger   hclog.Logger
	entries  map[string]config.ServerEntry
	registry *Registry
	engine   *Engine
	opts     Options
}

// NewSupervisor creates a supervisor for the given server entries.
func NewSupervisor(logger hclog.Logger, entries []config.ServerEntry, opt ...Option) (*Supervisor, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid supervisor options: %w", err)
	}

	byName := make(map[string]config.ServerEntry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}

	logger = logger.Named("supervisor")
	registry := NewRegistry()

	return &Supervisor{
		logger:   logger,
		entries:  byName,
		registry: registry,
		engine:   NewEngine(registry, logger),
		opts:     opts,
	}, nil
}

// Names returns the configured server names, sorted.
func (s *Supervisor) Names() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Running returns the names of servers with a live registered process.
func (s *Supervisor) Running() []string {
	names := s.registry.List()
	sort.Strings(names)
	return names
}

// Start launches the named server and discovers its tool catalog.
// Starting an already-running server is a benign no-op that returns the
// current status. Spawn failure leaves no registry entry behind. Discovery
// failure after a successful spawn does not roll back registration; the
// status carries StateError and the server remains callable.
func (s *Supervisor) Start(ctx context.Context, name string) (ServerStatus, error) {
	entry, ok := s.entries[name]
	if !ok {
		return ServerStatus{}, fmt.Errorf("%w: '%s'", errors.ErrServerNotFound, name)
	}

	if s.registry.Has(name) {
		s.logger.Debug("Start requested for running server", "server", name)
		return s.runningStatus(ctx, name), nil
	}

	s.logger.Info("Starting MCP server", "server", name, "command", entry.Command, "args", entry.Args)

	h, err := spawn(entry, s.logger)
	if err != nil {
		return ServerStatus{}, err
	}

	if !s.registry.Add(name, h) {
		// Lost a start race; the winner's process is the one that counts.
		h.Close()
		return s.runningStatus(ctx, name), nil
	}

	if err := sleepCtx(ctx, s.opts.SettleDelay); err != nil {
		return ServerStatus{Name: name, State: StateRunning}, nil
	}

	// Best-effort readiness probe; not all servers implement ping.
	if _, err := s.engine.Call(ctx, name, methodPing, nil, s.opts.PingTimeout).Result(); err != nil {
		s.logger.Debug("Readiness ping failed", "server", name, "error", err)
	}

	return s.runningStatus(ctx, name), nil
}

// runningStatus builds the status for a registered server by discovering its
// tools. Discovery failure is advisory and does not unregister the server.
func (s *Supervisor) runningStatus(ctx context.Context, name string) ServerStatus {
	tools, err := s.Tools(ctx, name)
	if err != nil {
		s.logger.Warn("Capability discovery failed", "server", name, "error", err)
		return ServerStatus{Name: name, State: StateError, Error: err.Error()}
	}
	return ServerStatus{Name: name, State: StateRunning, Tools: tools}
}

// Stop terminates the named server: the handle is removed from the registry
// first so no new call can reach it, then a best-effort graceful terminate is
// sent before the process is killed and reaped. It reports false when the
// server was not running; stopping a stopped server is idempotent success.
func (s *Supervisor) Stop(ctx context.Context, name string) (bool, error) {
	h, ok := s.registry.Remove(name)
	if !ok {
		s.logger.Debug("Stop requested for server that is not running", "server", name)
		return false, nil
	}

	s.logger.Info("Stopping MCP server", "server", name)

	// Best-effort graceful shutdown; failure never propagates to the caller.
	if _, err := s.engine.exchange(ctx, h, methodTerminate, nil, s.opts.PingTimeout).Result(); err != nil {
		s.logger.Debug("Graceful terminate not acknowledged", "server", name, "error", err)
	}

	_ = sleepCtx(ctx, s.opts.StopGrace)

	h.Close()
	s.logger.Info("MCP server stopped", "server", name)

	return true, nil
}

// StopAll stops every running server. Used on daemon shutdown.
func (s *Supervisor) StopAll(ctx context.Context) {
	for _, name := range s.Running() {
		if _, err := s.Stop(ctx, name); err != nil {
			s.logger.Error("Failed to stop server during shutdown", "server", name, "error", err)
		}
	}
}

// Restart stops the named server (best-effort), waits briefly, then starts it
// again, returning the fresh status exactly as Start would.
func (s *Supervisor) Restart(ctx context.Context, name string) (ServerStatus, error) {
	if _, err := s.Stop(ctx, name); err != nil {
		return ServerStatus{}, err
	}
	if err := sleepCtx(ctx, s.opts.RestartGap); err != nil {
		return ServerStatus{}, err
	}
	return s.Start(ctx, name)
}

// Status reports the lifecycle state of a configured server, including its
// discovered tool catalog when running.
func (s *Supervisor) Status(ctx context.Context, name string) (ServerStatus, error) {
	if _, ok := s.entries[name]; !ok {
		return ServerStatus{}, fmt.Errorf("%w: '%s'", errors.ErrServerNotFound, name)
	}
	if !s.registry.Has(name) {
		return ServerStatus{Name: name, State: StateStopped}, nil
	}
	return s.runningStatus(ctx, name), nil
}

// Tools lists the tools currently exposed by the named running server.
// The catalog is recomputed on every call; staleness between calls is
// acceptable and no cache is kept.
func (s *Supervisor) Tools(ctx context.Context, name string) ([]ToolDefinition, error) {
	out := s.engine.Call(ctx, name, methodToolsList, nil, s.opts.DiscoveryTimeout)
	result, err := out.Result()
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", errors.ErrToolListFailed, name, err)
	}

	tools, err := parseToolList(result)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", errors.ErrToolListFailed, name, err)
	}
	return tools, nil
}

// CallTool invokes a tool on the named running server.
// When enabled, arguments are validated against the tool's discovered input
// schema before dispatch; a validation failure never reaches the server.
func (s *Supervisor) CallTool(ctx context.Context, name, tool string, args json.RawMessage) (json.RawMessage, error) {
	if strings.TrimSpace(tool) == "" {
		return nil, fmt.Errorf("%w: tool name cannot be empty", errors.ErrBadRequest)
	}
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	if s.opts.ValidateToolArgs {
		if err := s.validateToolArgs(ctx, name, tool, args); err != nil {
			return nil, err
		}
	}

	params := struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}{Name: tool, Arguments: args}

	out := s.engine.Call(ctx, name, methodToolsCall, params, s.opts.CallTimeout)
	result, err := out.Result()
	if err != nil {
		return nil, fmt.Errorf("%w: '%s' on '%s': %w", errors.ErrToolCallFailed, tool, name, err)
	}
	return result, nil
}

// validateToolArgs checks args against the tool's input schema when the
// server declares one. Discovery failure skips validation rather than
// blocking the call.
func (s *Supervisor) validateToolArgs(ctx context.Context, name, tool string, args json.RawMessage) error {
	tools, err := s.Tools(ctx, name)
	if err != nil {
		s.logger.Debug("Skipping argument validation, discovery failed", "server", name, "error", err)
		return nil
	}

	for _, t := range tools {
		if t.Name != tool || len(t.InputSchema) == 0 {
			continue
		}

		result, err := gojsonschema.Validate(
			gojsonschema.NewBytesLoader(t.InputSchema),
			gojsonschema.NewBytesLoader(args),
		)
		if err != nil {
			// An unloadable schema is the server's problem, not the caller's.
			s.logger.Debug("Skipping argument validation, schema unusable", "server", name, "tool", tool, "error", err)
			return nil
		}

		if !result.Valid() {
			msgs := make([]string, 0, len(result.Errors()))
			for _, e := range result.Errors() {
				msgs = append(msgs, e.String())
			}
			return fmt.Errorf("%w: '%s': %s", errors.ErrToolArgsInvalid, tool, strings.Join(msgs, "; "))
		}
		return nil
	}

	return nil
}

// Resources lists the resources exposed by the named running server.
func (s *Supervisor) Resources(ctx context.Context, name string) ([]ResourceDescriptor, error) {
	out := s.engine.Call(ctx, name, methodResourcesList, nil, s.opts.DiscoveryTimeout)
	result, err := out.Result()
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", errors.ErrResourceListFailed, name, err)
	}

	resources, err := parseResourceList(result)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", errors.ErrResourceListFailed, name, err)
	}
	return resources, nil
}

// ReadResource reads a single resource by URI from the named running server.
func (s *Supervisor) ReadResource(ctx context.Context, name, uri string) (json.RawMessage, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("%w: resource uri cannot be empty", errors.ErrBadRequest)
	}

	out := s.engine.Call(ctx, name, methodResourcesRead, map[string]string{"uri": uri}, s.opts.CallTimeout)
	result, err := out.Result()
	if err != nil {
		return nil, fmt.Errorf("%w: '%s' from '%s': %w", errors.ErrResourceReadFailed, uri, name, err)
	}
	return result, nil
}

// Prompts lists the prompt templates exposed by the named running server.
func (s *Supervisor) Prompts(ctx context.Context, name string) ([]PromptDescriptor, error) {
	out := s.engine.Call(ctx, name, methodPromptsList, nil, s.opts.DiscoveryTimeout)
	result, err := out.Result()
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", errors.ErrPromptListFailed, name, err)
	}

	prompts, err := parsePromptList(result)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", errors.ErrPromptListFailed, name, err)
	}
	return prompts, nil
}

// GetPrompt renders a prompt template on the named running server.
// Arguments are optional and passed through opaquely.
func (s *Supervisor) GetPrompt(ctx context.Context, name, prompt string, args json.RawMessage) (json.RawMessage, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: prompt name cannot be empty", errors.ErrBadRequest)
	}

	params := struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments,omitempty"`
	}{Name: prompt, Arguments: args}

	out := s.engine.Call(ctx, name, methodPromptsGet, params, s.opts.CallTimeout)
	result, err := out.Result()
	if err != nil {
		return nil, fmt.Errorf("%w: '%s' from '%s': %w", errors.ErrPromptGetFailed, prompt, name, err)
	}
	return result, nil
}

// Ping measures a round trip to the named running server.
func (s *Supervisor) Ping(ctx context.Context, name string) (time.Duration, error) {
	start := time.Now()
	out := s.engine.Call(ctx, name, methodPing, nil, s.opts.PingTimeout)
	if _, err := out.Result(); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// Summary aggregates totals across all configured and running servers.
// Per-server discovery failures are skipped rather than failing the whole
// aggregation.
func (s *Supervisor) Summary(ctx context.Context) Summary {
	sum := Summary{
		TotalServers: len(s.entries),
	}

	for _, name := range s.Running() {
		sum.RunningServers++

		if tools, err := s.Tools(ctx, name); err == nil {
			sum.TotalTools += len(tools)
		}
		if resources, err := s.Resources(ctx, name); err == nil {
			sum.TotalResources += len(resources)
		}
		if prompts, err := s.Prompts(ctx, name); err == nil {
			sum.TotalPrompts += len(prompts)
		}
	}

	return sum
}

// sleepCtx waits for d or until ctx is canceled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
