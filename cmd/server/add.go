// Package server contains the CLI commands that manage MCP server entries in
// the project configuration file.
package server

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	internalcmd "github.com/mcpherd/mcpherd/internal/cmd"
	"github.com/mcpherd/mcpherd/internal/config"
	"github.com/mcpherd/mcpherd/internal/flags"
)

// AddCmd should be used to represent the 'add' command.
type AddCmd struct {
	*internalcmd.BaseCmd
	Command   string
	Args      []string
	Env       []string
	cfgLoader config.Loader
}

// NewAddCmd creates a newly configured (Cobra) command.
func NewAddCmd(baseCmd *internalcmd.BaseCmd) (*cobra.Command, error) {
	c := &AddCmd{
		BaseCmd:   baseCmd,
		cfgLoader: &config.DefaultLoader{},
	}

	cobraCommand := &cobra.Command{
		Use:   "add <server-name> --cmd <command> [--arg value]... [--env KEY=VALUE]...",
		Short: "Adds an MCP server to the project configuration.",
		Long:  c.longDescription(),
		RunE:  c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.Command,
		"cmd",
		"",
		"Executable used to launch the server process (e.g. uvx, npx)",
	)
	cobraCommand.Flags().StringArrayVar(
		&c.Args,
		"arg",
		nil,
		"Argument passed to the server command (can be repeated, order preserved)",
	)
	cobraCommand.Flags().StringArrayVar(
		&c.Env,
		"env",
		nil,
		"KEY=VALUE environment override for the server process (can be repeated)",
	)

	if err := cobraCommand.MarkFlagRequired("cmd"); err != nil {
		return nil, err
	}

	return cobraCommand, nil
}

// longDescription returns the long version of the command description.
func (c *AddCmd) longDescription() string {
	return `Adds an MCP server to the project configuration.
The server is launched by the daemon as a child process speaking MCP over stdio,
using the configured command, arguments and environment overrides.`
}

// run is configured (via NewAddCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *AddCmd) run(cmd *cobra.Command, args []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("server name is required and cannot be empty")
	}
	name := strings.TrimSpace(args[0])

	env, err := parseEnv(c.Env)
	if err != nil {
		return err
	}

	entry := config.ServerEntry{
		Name:      name,
		Transport: config.TransportStdio,
		Command:   strings.TrimSpace(c.Command),
		Args:      c.Args,
		Env:       env,
	}

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}

	if err := cfg.AddServer(entry); err != nil {
		return err
	}

	logger.Debug("Server added", "name", name, "command", entry.Command, "args", entry.Args)

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added server '%s' (%s %s)\n",
		name, entry.Command, strings.Join(entry.Args, " "))
	return err
}

// parseEnv converts KEY=VALUE pairs into a map, rejecting malformed entries.
func parseEnv(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("invalid environment override '%s', expected KEY=VALUE", pair)
		}
		env[key] = value
	}

	return env, nil
}
