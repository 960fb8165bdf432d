package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/mcpherd/mcpherd/internal/files"
	"github.com/mcpherd/mcpherd/internal/flags"
	"github.com/mcpherd/mcpherd/internal/perms"
)

// BaseCmd carries shared behavior for CLI commands, primarily logger setup.
type BaseCmd struct {
	logger hclog.Logger
}

// SetLogger updates the command's logger.
func (c *BaseCmd) SetLogger(logger hclog.Logger) {
	c.logger = logger
}

// Logger returns the current logger for the command, building one from flags
// and environment on first use.
func (c *BaseCmd) Logger() (hclog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}

	// Log level from flags first, then environment, then default.
	logLevel := flags.LogLevel
	if logLevel == "" {
		logLevel = strings.ToLower(os.Getenv(flags.EnvVarLogLevel))
		if logLevel == "" {
			logLevel = flags.DefaultLogLevel
		}
	}

	// Log path from flags first, then environment.
	logPath := flags.LogPath
	if logPath == "" {
		logPath = strings.TrimSpace(os.Getenv(flags.EnvVarLogPath))
	}

	// CLI output stays clean unless a log path is configured.
	var output io.Writer = io.Discard
	if logPath != "" {
		// Create the log directory when missing; existing directories are
		// left alone so shared locations like /tmp remain usable.
		if dir := filepath.Dir(logPath); dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := files.EnsureAtLeastRegularDir(dir); err != nil {
					return nil, fmt.Errorf("failed to prepare log directory for (%s): %w", logPath, err)
				}
			}
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, perms.RegularFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file (%s): %w", logPath, err)
		}
		output = f
	}

	c.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "mcpherd",
		Level:  hclog.LevelFromString(logLevel),
		Output: output,
	})

	return c.logger, nil
}
