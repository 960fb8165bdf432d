package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	internalcmd "github.com/mcpherd/mcpherd/internal/cmd"
	"github.com/mcpherd/mcpherd/internal/config"
	"github.com/mcpherd/mcpherd/internal/daemon"
	"github.com/mcpherd/mcpherd/internal/files"
	"github.com/mcpherd/mcpherd/internal/flags"
	"github.com/mcpherd/mcpherd/internal/supervisor"
)

// DaemonCmd should be used to represent the 'daemon' command.
type DaemonCmd struct {
	*internalcmd.BaseCmd
	Dev            bool
	Addr           string
	CORSEnabled    bool
	CORSOrigins    []string
	HealthInterval time.Duration
	HealthTimeout  time.Duration
	cfgLoader      config.Loader
}

// NewDaemonCmd creates a newly configured (Cobra) command.
func NewDaemonCmd(baseCmd *internalcmd.BaseCmd) (*cobra.Command, error) {
	c := &DaemonCmd{
		BaseCmd:   baseCmd,
		cfgLoader: &config.DefaultLoader{},
	}

	cobraCommand := &cobra.Command{
		Use:   "daemon [--dev] [--addr]",
		Short: "Launches an `mcpherd` daemon instance",
		Long:  "Launches an `mcpherd` daemon instance, which starts MCP servers and provides routing via HTTP API",
		RunE:  c.run,
	}

	cobraCommand.Flags().BoolVar(
		&c.Dev,
		"dev",
		false,
		"Run the daemon in development-focused mode",
	)

	cobraCommand.Flags().StringVar(
		&c.Addr,
		"addr",
		"0.0.0.0:8090",
		"Address for the daemon to bind (not applicable in --dev mode)",
	)

	cobraCommand.Flags().BoolVar(
		&c.CORSEnabled,
		"cors-enable",
		false,
		"Enable CORS headers on the HTTP API",
	)

	cobraCommand.Flags().StringSliceVar(
		&c.CORSOrigins,
		"cors-origin",
		nil,
		"Allowed CORS origin (can be repeated, implies --cors-enable)",
	)

	cobraCommand.Flags().DurationVar(
		&c.HealthInterval,
		"health-interval",
		daemon.DefaultHealthCheckInterval(),
		"Interval between MCP server health check pings",
	)

	cobraCommand.Flags().DurationVar(
		&c.HealthTimeout,
		"health-timeout",
		daemon.DefaultHealthCheckTimeout(),
		"Timeout for a single MCP server health check ping",
	)

	cobraCommand.MarkFlagsMutuallyExclusive("dev", "addr")

	return cobraCommand, nil
}

// run is configured (via NewDaemonCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *DaemonCmd) run(cmd *cobra.Command, _ []string) error {
	// Dev mode logs somewhere useful by default instead of discarding.
	if c.Dev && flags.LogPath == "" && os.Getenv(flags.EnvVarLogPath) == "" {
		logDir, err := files.UserSpecificLogDir()
		if err != nil {
			return err
		}
		flags.LogPath = filepath.Join(logDir, "mcpherd-dev.log")
	}

	logger, err := c.Logger()
	if err != nil {
		return err
	}

	addr := strings.TrimSpace(c.Addr)

	// Override address for dev mode.
	if c.Dev {
		devAddr := "localhost:8090"
		logger.Info("Development-focused mode", "addr", addr, "override", devAddr)
		addr = devAddr
	}

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}

	sup, err := supervisor.NewSupervisor(logger, cfg.ListServers())
	if err != nil {
		return fmt.Errorf("failed to create supervisor: %w", err)
	}

	deps, err := daemon.NewDependencies(logger, sup, addr)
	if err != nil {
		return err
	}

	corsEnabled := c.CORSEnabled || len(c.CORSOrigins) > 0

	d, err := daemon.NewDaemon(
		deps,
		daemon.WithHealthCheckInterval(c.HealthInterval),
		daemon.WithHealthCheckTimeout(c.HealthTimeout),
		daemon.WithAPIOptions(
			daemon.WithCORSEnabled(corsEnabled),
			daemon.WithCORSAllowOrigins(c.CORSOrigins),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create mcpherd daemon instance: %w", err)
	}

	if c.Dev {
		banner := fmt.Sprintf("mcpherd daemon running in 'dev' mode.\n\n"+
			"  Local API:\thttp://%s/api/v1\n"+
			"  OpenAPI UI:\thttp://%s/docs\n"+
			"  Config file:\t%s\n",
			addr, addr, flags.ConfigFile)

		if flags.LogPath != "" {
			banner += fmt.Sprintf("  Log file:\t%s => (%s)\n", flags.LogPath, flags.LogLevel)
		}

		banner += "\nPress Ctrl+C to stop.\n\n"
		fmt.Fprint(cmd.OutOrStdout(), banner)
	}

	return d.StartAndManage(context.Background())
}
