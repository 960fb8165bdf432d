package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	internalcmd "github.com/mcpherd/mcpherd/internal/cmd"
	"github.com/mcpherd/mcpherd/internal/config"
	"github.com/mcpherd/mcpherd/internal/flags"
)

// RemoveCmd should be used to represent the 'remove' command.
type RemoveCmd struct {
	*internalcmd.BaseCmd
	Addr      string
	cfgLoader config.Loader
	client    *http.Client
}

// NewRemoveCmd creates a newly configured (Cobra) command.
func NewRemoveCmd(baseCmd *internalcmd.BaseCmd) (*cobra.Command, error) {
	c := &RemoveCmd{
		BaseCmd:   baseCmd,
		cfgLoader: &config.DefaultLoader{},
		client:    &http.Client{Timeout: 10 * time.Second},
	}

	cobraCommand := &cobra.Command{
		Use:   "remove <server-name>",
		Short: "Removes an MCP server from the project configuration.",
		Long: "Removes an MCP server from the project configuration.\n" +
			"A live instance managed by a running daemon is stopped before the entry is removed.",
		RunE: c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.Addr,
		"addr",
		"localhost:8090",
		"Address of the running daemon's HTTP API (checked for a live instance)",
	)

	return cobraCommand, nil
}

// run is configured (via NewRemoveCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *RemoveCmd) run(cmd *cobra.Command, args []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("server name is required and cannot be empty")
	}
	name := strings.TrimSpace(args[0])

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}

	// No running instance may remain once the entry is gone.
	if err := c.ensureNotRunning(logger, name); err != nil {
		return err
	}

	if err := cfg.RemoveServer(name); err != nil {
		return err
	}

	logger.Debug("Server removed", "name", name)

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed server '%s'\n", name)
	return err
}

// ensureNotRunning stops a live instance of the named server via the daemon's
// API before the config entry is removed. An unreachable daemon, or one that
// does not know the server, means there is nothing running to stop.
func (c *RemoveCmd) ensureNotRunning(logger hclog.Logger, name string) error {
	resp, err := c.client.Get(c.serverURL(name, ""))
	if err != nil {
		logger.Debug("No reachable daemon, removing config entry only", "addr", c.Addr)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %s while checking '%s'", resp.Status, name)
	}

	var status struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode daemon response for '%s': %w", name, err)
	}

	// Stopped entries have no live process; anything else does.
	if status.State == "stopped" {
		return nil
	}

	stopResp, err := c.client.Post(c.serverURL(name, "/stop"), "application/json", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to stop running server '%s' before removal: %w", name, err)
	}
	defer func() { _ = stopResp.Body.Close() }()

	if stopResp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon refused to stop '%s' before removal: %s", name, stopResp.Status)
	}

	logger.Info("Stopped running server before removal", "name", name)

	return nil
}

// serverURL builds a daemon API URL for the named server, with an optional
// action suffix such as "/stop".
func (c *RemoveCmd) serverURL(name, action string) string {
	endpoint := url.URL{
		Scheme: "http",
		Host:   strings.TrimSpace(c.Addr),
		Path:   "/api/v1/servers/" + url.PathEscape(name) + action,
	}
	return endpoint.String()
}
