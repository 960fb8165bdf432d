package server

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	internalcmd "github.com/mcpherd/mcpherd/internal/cmd"
	"github.com/mcpherd/mcpherd/internal/config"
	"github.com/mcpherd/mcpherd/internal/filter"
	"github.com/mcpherd/mcpherd/internal/flags"
)

// ListCmd should be used to represent the 'list' command.
type ListCmd struct {
	*internalcmd.BaseCmd
	Format    internalcmd.OutputFormat
	Name      string
	Command   string
	cfgLoader config.Loader
}

// NewListCmd creates a newly configured (Cobra) command.
func NewListCmd(baseCmd *internalcmd.BaseCmd) (*cobra.Command, error) {
	c := &ListCmd{
		BaseCmd:   baseCmd,
		Format:    internalcmd.FormatText,
		cfgLoader: &config.DefaultLoader{},
	}

	cobraCommand := &cobra.Command{
		Use:   "list",
		Short: "Lists the MCP servers in the project configuration.",
		RunE:  c.run,
	}

	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Output format, one of: %s", internalcmd.AllowedOutputFormats().String()),
	)
	cobraCommand.Flags().StringVar(
		&c.Name,
		"name",
		"",
		"Only list servers whose name contains this value",
	)
	cobraCommand.Flags().StringVar(
		&c.Command,
		"cmd",
		"",
		"Only list servers launched by this command",
	)

	return cobraCommand, nil
}

// run is configured (via NewListCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *ListCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}

	servers, err := c.filterServers(cfg.ListServers())
	if err != nil {
		return err
	}

	if c.Format != internalcmd.FormatText {
		payload := struct {
			Servers []config.ServerEntry `json:"servers" yaml:"servers"`
		}{Servers: servers}
		return internalcmd.WriteOutput(cmd.OutOrStdout(), c.Format, payload)
	}

	if len(servers) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No servers configured.")
		return err
	}

	for _, s := range servers {
		if _, err := fmt.Fprintf(
			cmd.OutOrStdout(),
			"%-20s %s %s\n", s.Name, s.Command, strings.Join(s.Args, " "),
		); err != nil {
			return err
		}
	}

	return nil
}

// filterServers applies the name and command flags to the configured entries.
func (c *ListCmd) filterServers(servers []config.ServerEntry) ([]config.ServerEntry, error) {
	filters := map[string]string{}
	if strings.TrimSpace(c.Name) != "" {
		filters["name"] = c.Name
	}
	if strings.TrimSpace(c.Command) != "" {
		filters["cmd"] = c.Command
	}
	if len(filters) == 0 {
		return servers, nil
	}

	matchers := filter.WithMatchers(map[string]filter.Predicate[config.ServerEntry]{
		"name": filter.Partial(func(s config.ServerEntry) string { return s.Name }),
		"cmd":  filter.Equals(func(s config.ServerEntry) string { return s.Command }),
	})

	matched := make([]config.ServerEntry, 0, len(servers))
	for _, s := range servers {
		ok, err := filter.Match(s, filters, matchers)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, s)
		}
	}

	return matched, nil
}
