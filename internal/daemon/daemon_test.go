package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/mcpherd/mcpherd/internal/domain"
	"github.com/mcpherd/mcpherd/internal/errors"
	"github.com/mcpherd/mcpherd/internal/supervisor"
)

// fakeSupervisor implements contracts.ServerSupervisor with canned ping
// behavior keyed by server name.
type fakeSupervisor struct {
	names    []string
	running  []string
	pingErrs map[string]error
}

func (f *fakeSupervisor) Names() []string   { return f.names }
func (f *fakeSupervisor) Running() []string { return f.running }

func (f *fakeSupervisor) Start(_ context.Context, name string) (supervisor.ServerStatus, error) {
	return supervisor.ServerStatus{Name: name, State: supervisor.StateRunning}, nil
}

func (f *fakeSupervisor) Stop(context.Context, string) (bool, error) { return false, nil }

func (f *fakeSupervisor) StopAll(context.Context) {}

func (f *fakeSupervisor) Restart(_ context.Context, name string) (supervisor.ServerStatus, error) {
	return supervisor.ServerStatus{Name: name, State: supervisor.StateRunning}, nil
}

func (f *fakeSupervisor) Status(_ context.Context, name string) (supervisor.ServerStatus, error) {
	return supervisor.ServerStatus{Name: name, State: supervisor.StateStopped}, nil
}

func (f *fakeSupervisor) Tools(context.Context, string) ([]supervisor.ToolDefinition, error) {
	return nil, nil
}

func (f *fakeSupervisor) CallTool(context.Context, string, string, json.RawMessage) (json.RawMessage, error) {
	return nil, nil
}

func (f *fakeSupervisor) Resources(context.Context, string) ([]supervisor.ResourceDescriptor, error) {
	return nil, nil
}

func (f *fakeSupervisor) ReadResource(context.Context, string, string) (json.RawMessage, error) {
	return nil, nil
}

func (f *fakeSupervisor) Prompts(context.Context, string) ([]supervisor.PromptDescriptor, error) {
	return nil, nil
}

func (f *fakeSupervisor) GetPrompt(context.Context, string, string, json.RawMessage) (json.RawMessage, error) {
	return nil, nil
}

func (f *fakeSupervisor) Ping(_ context.Context, name string) (time.Duration, error) {
	if err := f.pingErrs[name]; err != nil {
		return 0, err
	}
	return 5 * time.Millisecond, nil
}

func (f *fakeSupervisor) Summary(context.Context) supervisor.Summary {
	return supervisor.Summary{TotalServers: len(f.names), RunningServers: len(f.running)}
}

func TestValidateAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{name: "host and numeric port", addr: "localhost:8090"},
		{name: "empty host", addr: ":8090"},
		{name: "all interfaces", addr: "0.0.0.0:8090"},
		{name: "named port", addr: "localhost:http"},
		{name: "missing port", addr: "localhost", wantErr: true},
		{name: "bogus port", addr: "localhost:notaport", wantErr: true},
		{name: "empty", addr: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := validateAddr(tc.addr)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewDaemon_InvalidDependencies(t *testing.T) {
	t.Parallel()

	logger := hclog.NewNullLogger()
	sup := &fakeSupervisor{names: []string{"time"}}

	tests := []struct {
		name string
		deps Dependencies
	}{
		{
			name: "nil logger",
			deps: Dependencies{APIAddr: "localhost:8090", Supervisor: sup},
		},
		{
			name: "nil supervisor",
			deps: Dependencies{APIAddr: "localhost:8090", Logger: logger},
		},
		{
			name: "bad address",
			deps: Dependencies{APIAddr: "nope", Logger: logger, Supervisor: sup},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewDaemon(tc.deps)
			require.Error(t, err)
		})
	}
}

func TestNewDaemon_TracksConfiguredServers(t *testing.T) {
	t.Parallel()

	sup := &fakeSupervisor{names: []string{"time", "fetch"}}
	deps, err := NewDependencies(hclog.NewNullLogger(), sup, "localhost:8090")
	require.NoError(t, err)

	d, err := NewDaemon(deps)
	require.NoError(t, err)

	health := d.healthTracker.List()
	require.Len(t, health, 2)
	for _, h := range health {
		require.Equal(t, domain.HealthStatusUnknown, h.Status)
	}
}

func TestDaemon_PingAllServersClassifiesResults(t *testing.T) {
	t.Parallel()

	sup := &fakeSupervisor{
		names:   []string{"healthy", "slow", "gone", "stopped"},
		running: []string{"healthy", "slow", "gone"},
		pingErrs: map[string]error{
			"slow": fmt.Errorf("%w: ping", errors.ErrRequestTimeout),
			"gone": fmt.Errorf("%w: broken pipe", errors.ErrTransportFailed),
		},
	}

	deps, err := NewDependencies(hclog.NewNullLogger(), sup, "localhost:8090")
	require.NoError(t, err)

	d, err := NewDaemon(deps)
	require.NoError(t, err)

	d.pingAllServers(context.Background())

	expect := map[string]domain.HealthStatus{
		"healthy": domain.HealthStatusOK,
		"slow":    domain.HealthStatusTimeout,
		"gone":    domain.HealthStatusUnreachable,
	}

	require.Eventually(t, func() bool {
		for name, want := range expect {
			health, err := d.healthTracker.Status(name)
			if err != nil || health.Status != want {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)

	// Running servers with a successful ping record a latency.
	health, err := d.healthTracker.Status("healthy")
	require.NoError(t, err)
	require.NotNil(t, health.Latency)

	// A configured server with no live process is never pinged.
	health, err = d.healthTracker.Status("stopped")
	require.NoError(t, err)
	require.Equal(t, domain.HealthStatusUnknown, health.Status)
}

func TestNewAPIOptions(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		opts, err := NewAPIOptions()
		require.NoError(t, err)
		require.False(t, opts.CORS.Enabled)
		require.Equal(t, DefaultAPIShutdownTimeout(), opts.ShutdownTimeout)
		require.Equal(t, DefaultCORSAllowMethods(), opts.CORS.AllowMethods)
	})

	t.Run("options override defaults", func(t *testing.T) {
		t.Parallel()

		opts, err := NewAPIOptions(
			WithCORSEnabled(true),
			WithCORSAllowOrigins([]string{"https://example.com"}),
			WithShutdownTimeout(time.Second),
		)
		require.NoError(t, err)
		require.True(t, opts.CORS.Enabled)
		require.Equal(t, []string{"https://example.com"}, opts.CORS.AllowOrigins)
		require.Equal(t, time.Second, opts.ShutdownTimeout)
	})

	t.Run("invalid shutdown timeout", func(t *testing.T) {
		t.Parallel()

		_, err := NewAPIOptions(WithShutdownTimeout(0))
		require.Error(t, err)
	})
}
