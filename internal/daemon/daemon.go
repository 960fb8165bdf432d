// Package daemon runs the long-lived mcpherd process: it launches the
// configured MCP servers, keeps their health tracked with periodic pings, and
// exposes the HTTP control API.
package daemon

import (
	"context"
	stdErrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/mcpherd/mcpherd/internal/contracts"
	"github.com/mcpherd/mcpherd/internal/domain"
	"github.com/mcpherd/mcpherd/internal/errors"
)

// Daemon supervises MCP servers and serves the control API.
// NewDaemon should be used to create instances of Daemon.
type Daemon struct {
	logger        hclog.Logger
	supervisor    contracts.ServerSupervisor
	healthTracker *HealthTracker
	apiServer     *APIServer
	opts          Options
}

// NewDaemon creates a daemon from validated dependencies and options.
func NewDaemon(deps Dependencies, opt ...Option) (*Daemon, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies for daemon: %w", err)
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid daemon options: %w", err)
	}

	healthTracker := NewHealthTracker(deps.Supervisor.Names())

	apiDeps, err := NewAPIDependencies(deps.Logger, deps.Supervisor, healthTracker, deps.APIAddr)
	if err != nil {
		return nil, err
	}

	apiServer, err := NewAPIServer(apiDeps, opts.APIOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create daemon API server: %w", err)
	}

	return &Daemon{
		logger:        deps.Logger.Named("daemon"),
		supervisor:    deps.Supervisor,
		healthTracker: healthTracker,
		apiServer:     apiServer,
		opts:          opts,
	}, nil
}

// StartAndManage launches all configured MCP servers, starts the health check
// loop and the API server, and blocks until the context is canceled or a
// SIGINT/SIGTERM arrives. All supervised servers are stopped on the way out.
func (d *Daemon) StartAndManage(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	d.startConfiguredServers(ctx)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.healthCheckLoop(gCtx)
		return nil
	})
	g.Go(func() error {
		return d.apiServer.Start(gCtx)
	})

	err := g.Wait()

	// The signal context is already done; bound the teardown separately.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), d.opts.ShutdownTimeout)
	defer cancel()

	d.logger.Info("Shutting down all servers...")
	d.supervisor.StopAll(shutdownCtx)

	if err != nil && !stdErrors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// startConfiguredServers launches every configured server with bounded
// concurrency. Individual launch failures are logged and do not prevent the
// daemon from serving the rest.
func (d *Daemon) startConfiguredServers(ctx context.Context) {
	names := d.supervisor.Names()
	d.logger.Info(fmt.Sprintf("Starting %d configured MCP server(s)", len(names)))

	g := new(errgroup.Group)
	g.SetLimit(d.opts.StartupConcurrency)

	for _, name := range names {
		g.Go(func() error {
			if _, err := d.supervisor.Start(ctx, name); err != nil {
				d.logger.Error("Failed to start server", "server", name, "error", err)
				return nil
			}
			d.logger.Info("Server started", "server", name)
			return nil
		})
	}

	_ = g.Wait()
	d.logger.Info(fmt.Sprintf("%d of %d MCP server(s) running", len(d.supervisor.Running()), len(names)))
}

// healthCheckLoop pings all running servers on a fixed interval until the
// context is canceled. The first round runs immediately.
func (d *Daemon) healthCheckLoop(ctx context.Context) {
	ticker := time.NewTicker(d.opts.HealthCheckInterval)
	defer ticker.Stop()

	d.pingAllServers(ctx)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Stopping MCP server health checks")
			return
		case <-ticker.C:
			d.pingAllServers(ctx)
		}
	}
}

// pingAllServers records a health check result for every running server.
func (d *Daemon) pingAllServers(ctx context.Context) {
	for _, name := range d.supervisor.Running() {
		go func(name string) {
			pingCtx, cancel := context.WithTimeout(ctx, d.opts.HealthCheckTimeout)
			defer cancel()

			latency, err := d.supervisor.Ping(pingCtx, name)

			status := domain.HealthStatusOK
			var recordedLatency *time.Duration
			switch {
			case err == nil:
				recordedLatency = &latency
			case stdErrors.Is(err, errors.ErrRequestTimeout):
				status = domain.HealthStatusTimeout
			default:
				status = domain.HealthStatusUnreachable
			}

			if err != nil {
				d.logger.Debug("Health check failed", "server", name, "status", status, "error", err)
			}

			if updateErr := d.healthTracker.Update(name, status, recordedLatency); updateErr != nil {
				d.logger.Warn("Failed to record health check", "server", name, "error", updateErr)
			}
		}(name)
	}
}
