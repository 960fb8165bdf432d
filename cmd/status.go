package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	internalcmd "github.com/mcpherd/mcpherd/internal/cmd"
)

// StatusCmd should be used to represent the 'status' command.
// It queries a running daemon's HTTP API rather than touching the config file.
type StatusCmd struct {
	*internalcmd.BaseCmd
	Addr   string
	Format internalcmd.OutputFormat
	client *http.Client
}

// statusReport is the aggregate view printed by the status command.
type statusReport struct {
	Servers []statusServer `json:"servers"         yaml:"servers"`
	Summary statusSummary  `json:"summary"         yaml:"summary"`
}

type statusServer struct {
	Name    string  `json:"name"              yaml:"name"`
	Running bool    `json:"running"           yaml:"running"`
	Health  string  `json:"health,omitempty"  yaml:"health,omitempty"`
	Latency *string `json:"latency,omitempty" yaml:"latency,omitempty"`
}

type statusSummary struct {
	TotalServers   int `json:"totalServers"   yaml:"totalServers"`
	RunningServers int `json:"runningServers" yaml:"runningServers"`
	TotalTools     int `json:"totalTools"     yaml:"totalTools"`
	TotalResources int `json:"totalResources" yaml:"totalResources"`
	TotalPrompts   int `json:"totalPrompts"   yaml:"totalPrompts"`
}

// NewStatusCmd creates a newly configured (Cobra) command.
func NewStatusCmd(baseCmd *internalcmd.BaseCmd) (*cobra.Command, error) {
	c := &StatusCmd{
		BaseCmd: baseCmd,
		Format:  internalcmd.FormatText,
		client:  &http.Client{Timeout: 10 * time.Second},
	}

	cobraCommand := &cobra.Command{
		Use:   "status",
		Short: "Shows the status of servers managed by a running `mcpherd` daemon",
		RunE:  c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.Addr,
		"addr",
		"localhost:8090",
		"Address of the running daemon's HTTP API",
	)

	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Output format, one of: %s", internalcmd.AllowedOutputFormats().String()),
	)

	return cobraCommand, nil
}

// run is configured (via NewStatusCmd) to be called by the Cobra framework when the command is executed.
func (c *StatusCmd) run(cmd *cobra.Command, _ []string) error {
	report, err := c.fetchReport()
	if err != nil {
		return err
	}

	if c.Format == internalcmd.FormatText {
		return c.printText(cmd, report)
	}

	return internalcmd.WriteOutput(cmd.OutOrStdout(), c.Format, report)
}

func (c *StatusCmd) fetchReport() (*statusReport, error) {
	var servers struct {
		Servers []struct {
			Name    string `json:"name"`
			Running bool   `json:"running"`
		} `json:"servers"`
	}
	if err := c.getJSON("/servers", &servers); err != nil {
		return nil, err
	}

	var health struct {
		Servers []struct {
			Name    string  `json:"name"`
			Status  string  `json:"status"`
			Latency *string `json:"latency"`
		} `json:"servers"`
	}
	if err := c.getJSON("/health/servers", &health); err != nil {
		return nil, err
	}

	var summary statusSummary
	if err := c.getJSON("/servers/summary", &summary); err != nil {
		return nil, err
	}

	healthByName := make(map[string]struct {
		status  string
		latency *string
	}, len(health.Servers))
	for _, h := range health.Servers {
		healthByName[h.Name] = struct {
			status  string
			latency *string
		}{status: h.Status, latency: h.Latency}
	}

	report := &statusReport{Summary: summary}
	for _, s := range servers.Servers {
		entry := statusServer{Name: s.Name, Running: s.Running}
		if h, ok := healthByName[s.Name]; ok {
			entry.Health = h.status
			entry.Latency = h.latency
		}
		report.Servers = append(report.Servers, entry)
	}

	return report, nil
}

// getJSON fetches an API route relative to /api/v1 and decodes the response body.
func (c *StatusCmd) getJSON(route string, v any) error {
	endpoint := url.URL{
		Scheme: "http",
		Host:   strings.TrimSpace(c.Addr),
		Path:   "/api/v1" + route,
	}

	resp, err := c.client.Get(endpoint.String())
	if err != nil {
		return fmt.Errorf("failed to reach daemon at %s (is it running?): %w", c.Addr, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %s for %s", resp.Status, endpoint.Path)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode daemon response for %s: %w", endpoint.Path, err)
	}

	return nil
}

func (c *StatusCmd) printText(cmd *cobra.Command, report *statusReport) error {
	out := cmd.OutOrStdout()

	for _, s := range report.Servers {
		state := "stopped"
		if s.Running {
			state = "running"
		}

		line := fmt.Sprintf("%-20s %-8s", s.Name, state)
		if s.Health != "" {
			line += fmt.Sprintf(" health=%s", s.Health)
		}
		if s.Latency != nil {
			line += fmt.Sprintf(" latency=%s", *s.Latency)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(out,
		"\n%d/%d running, %d tools, %d resources, %d prompts\n",
		report.Summary.RunningServers,
		report.Summary.TotalServers,
		report.Summary.TotalTools,
		report.Summary.TotalResources,
		report.Summary.TotalPrompts,
	)
	return err
}
