package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcpherd/mcpherd/cmd/server"
	internalcmd "github.com/mcpherd/mcpherd/internal/cmd"
	"github.com/mcpherd/mcpherd/internal/flags"
)

// RootCmd should be used to represent the root 'mcpherd' command.
type RootCmd struct {
	*internalcmd.BaseCmd
}

// Execute runs the CLI, exiting non-zero on any error.
func Execute() {
	rootCmd, err := NewRootCmd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating root command: %s\n", err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a newly configured (Cobra) command.
func NewRootCmd() (*cobra.Command, error) {
	baseCmd := &internalcmd.BaseCmd{}
	c := &RootCmd{
		BaseCmd: baseCmd,
	}

	rootCmd := &cobra.Command{
		Use:          "mcpherd <command> [args]",
		Short:        "'mcpherd' supervises local MCP servers and routes requests to them.",
		Long:         c.longDescription(),
		SilenceUsage: true,
		Version:      internalcmd.Version(),
	}

	// Global flags.
	flags.InitFlags(rootCmd.PersistentFlags())

	initCmd, err := NewInitCmd(baseCmd)
	if err != nil {
		return nil, err
	}
	daemonCmd, err := NewDaemonCmd(baseCmd)
	if err != nil {
		return nil, err
	}
	statusCmd, err := NewStatusCmd(baseCmd)
	if err != nil {
		return nil, err
	}

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(statusCmd)

	// Commands from specific resource packages remain top-level commands in the CLI's usage.
	addCmd, err := server.NewAddCmd(baseCmd)
	if err != nil {
		return nil, err
	}
	removeCmd, err := server.NewRemoveCmd(baseCmd)
	if err != nil {
		return nil, err
	}
	listCmd, err := server.NewListCmd(baseCmd)
	if err != nil {
		return nil, err
	}

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(listCmd)

	return rootCmd, nil
}

func (c *RootCmd) longDescription() string {
	return `The 'mcpherd' CLI manages a herd of local MCP servers: it launches them as
child processes, keeps them healthy, and exposes their tools, resources and
prompts over a local HTTP API.`
}
