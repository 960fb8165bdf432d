package server

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	internalcmd "github.com/mcpherd/mcpherd/internal/cmd"
	"github.com/mcpherd/mcpherd/internal/config"
)

// unreachableAddr returns an address nothing is listening on.
func unreachableAddr(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	return addr
}

// fakeDaemon serves the two server routes the remove command talks to.
func fakeDaemon(t *testing.T, name, state string, stopStatus int) (addr string, stops *atomic.Int32) {
	t.Helper()

	stops = &atomic.Int32{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/servers/"+name, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"name":%q,"state":%q}`, name, state)
	})
	mux.HandleFunc("POST /api/v1/servers/"+name+"/stop", func(w http.ResponseWriter, _ *http.Request) {
		stops.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(stopStatus)
		fmt.Fprint(w, `{"stopped":true}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return strings.TrimPrefix(srv.URL, "http://"), stops
}

func addServer(t *testing.T, name string) {
	t.Helper()

	cmd, err := NewAddCmd(&internalcmd.BaseCmd{})
	require.NoError(t, err)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{name, "--cmd", "uvx", "--arg", "mcp-server-" + name})
	require.NoError(t, cmd.Execute())
}

func runRemove(t *testing.T, addr string, args ...string) (string, error) {
	t.Helper()

	cmd, err := NewRemoveCmd(&internalcmd.BaseCmd{})
	require.NoError(t, err)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(append(args, "--addr", addr))

	err = cmd.Execute()
	return out.String(), err
}

func TestRemoveCmd_NoDaemonRunning(t *testing.T) {
	path := withTempConfig(t)
	addServer(t, "fetch")

	out, err := runRemove(t, unreachableAddr(t), "fetch")
	require.NoError(t, err)
	require.Contains(t, out, "Removed server 'fetch'")

	cfg, err := (&config.DefaultLoader{}).Load(path)
	require.NoError(t, err)
	require.Empty(t, cfg.ListServers())
}

func TestRemoveCmd_StopsRunningInstanceFirst(t *testing.T) {
	path := withTempConfig(t)
	addServer(t, "fetch")

	addr, stops := fakeDaemon(t, "fetch", "running", http.StatusOK)

	_, err := runRemove(t, addr, "fetch")
	require.NoError(t, err)
	require.Equal(t, int32(1), stops.Load(), "live instance must be stopped before removal")

	cfg, err := (&config.DefaultLoader{}).Load(path)
	require.NoError(t, err)
	require.Empty(t, cfg.ListServers())
}

func TestRemoveCmd_RefusesWhenStopFails(t *testing.T) {
	path := withTempConfig(t)
	addServer(t, "fetch")

	addr, stops := fakeDaemon(t, "fetch", "running", http.StatusInternalServerError)

	_, err := runRemove(t, addr, "fetch")
	require.ErrorContains(t, err, "refused to stop")
	require.Equal(t, int32(1), stops.Load())

	cfg, err := (&config.DefaultLoader{}).Load(path)
	require.NoError(t, err)

	_, ok := cfg.Server("fetch")
	require.True(t, ok, "entry must survive when the live instance could not be stopped")
}

func TestRemoveCmd_StoppedInstanceNeedsNoStop(t *testing.T) {
	path := withTempConfig(t)
	addServer(t, "fetch")

	addr, stops := fakeDaemon(t, "fetch", "stopped", http.StatusOK)

	_, err := runRemove(t, addr, "fetch")
	require.NoError(t, err)
	require.Zero(t, stops.Load())

	cfg, err := (&config.DefaultLoader{}).Load(path)
	require.NoError(t, err)
	require.Empty(t, cfg.ListServers())
}

func TestRemoveCmd_DaemonDoesNotKnowServer(t *testing.T) {
	path := withTempConfig(t)
	addServer(t, "fetch")

	// Daemon is up but has no such server registered.
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	_, err := runRemove(t, strings.TrimPrefix(srv.URL, "http://"), "fetch")
	require.NoError(t, err)

	cfg, err := (&config.DefaultLoader{}).Load(path)
	require.NoError(t, err)
	require.Empty(t, cfg.ListServers())
}

func TestRemoveCmd_UnknownServer(t *testing.T) {
	withTempConfig(t)

	_, err := runRemove(t, unreachableAddr(t), "missing")
	require.Error(t, err)
}
