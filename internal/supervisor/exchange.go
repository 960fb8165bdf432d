package supervisor

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/mcpherd/mcpherd/internal/errors"
	"github.com/mcpherd/mcpherd/internal/jsonrpc"
)

// Engine performs single request/response exchanges against running servers.
// Each call is one full cycle: registry lookup, envelope encode, locked write,
// deadline-bounded read, and outcome classification. The engine owns the
// request ID source; IDs are unique across all servers it talks to.
type Engine struct {
	registry *Registry
	ids      *jsonrpc.RequestIDSource
	logger   hclog.Logger
}

// NewEngine creates an exchange engine over the given registry.
func NewEngine(registry *Registry, logger hclog.Logger) *Engine {
	return &Engine{
		registry: registry,
		ids:      jsonrpc.NewRequestIDSource(),
		logger:   logger.Named("engine"),
	}
}

// Call performs one exchange against the named server.
// Calling never spawns a process: an unregistered name is a transport-level
// "server not running" outcome. The timeout bounds the wait for the response;
// on expiry the pending read is abandoned, not the server process.
func (e *Engine) Call(ctx context.Context, server, method string, params any, timeout time.Duration) jsonrpc.Outcome {
	h, ok := e.registry.Get(server)
	if !ok {
		return jsonrpc.TransportOutcome(fmt.Errorf("%w: '%s'", errors.ErrServerNotRunning, server))
	}
	return e.exchange(ctx, h, method, params, timeout)
}

// exchange runs the call against an already-resolved handle. Stop paths use
// it directly for the graceful terminate call, after the handle has been
// removed from the registry.
func (e *Engine) exchange(ctx context.Context, h *Handle, method string, params any, timeout time.Duration) jsonrpc.Outcome {
	id := e.ids.Next()

	frame, err := jsonrpc.EncodeFrame(jsonrpc.NewRequest(id, method, params))
	if err != nil {
		return jsonrpc.TransportOutcome(fmt.Errorf("%w: %w", errors.ErrTransportFailed, err))
	}

	// Both stream halves are held for the whole exchange so concurrent
	// callers against the same server serialize cleanly. Lock order is
	// always write half then read half.
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	h.readMu.Lock()
	defer h.readMu.Unlock()

	if err := h.writeFrame(frame); err != nil {
		return jsonrpc.TransportOutcome(err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return jsonrpc.TransportOutcome(fmt.Errorf("%w: call to '%s' %q: %w", errors.ErrTransportFailed, h.Name(), method, ctx.Err()))

		case <-timer.C:
			return jsonrpc.TransportOutcome(fmt.Errorf("%w: no response from '%s' to %q within %s", errors.ErrRequestTimeout, h.Name(), method, timeout))

		case <-h.done:
			return jsonrpc.TransportOutcome(h.failErr)

		case resp := <-h.frames:
			switch {
			case resp.ID == id:
				if resp.Error != nil {
					return jsonrpc.ApplicationOutcome(resp.Error)
				}
				return jsonrpc.SuccessOutcome(resp.Result)

			case resp.ID < id:
				// A response abandoned by an earlier timed-out call.
				// Discard and keep waiting rather than misattributing it.
				e.logger.Warn("Discarding stale response", "server", h.Name(), "staleID", resp.ID, "wantID", id)

			default:
				return jsonrpc.TransportOutcome(fmt.Errorf(
					"%w: response id %d from '%s' does not match request id %d",
					errors.ErrTransportFailed, resp.ID, h.Name(), id,
				))
			}
		}
	}
}
