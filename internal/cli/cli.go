// Package cli implements the catimg command-line interface.
//
// The CLI is built using cobra and logs through charmbracelet/log. Status
// lines go to stdout, logs and the spinner to stderr.
//
// # Commands
//
//   - grid: Compose the images in a directory into one grid image
//   - config: Print the effective or default configuration
//   - completion: Generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports per-stage timings. Loggers are passed through context.Context.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/catimg/pkg/config"
	"github.com/matzehuels/catimg/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "catimg"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by the persistent --config flag.
	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.verbose = level <= log.DebugLevel
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}

// loadConfig reads the file named by --config, or the per-user default when
// the flag is unset. Only an explicitly named file has to exist.
func (c *CLI) loadConfig() (config.Config, error) {
	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Default(), nil
		}
		path = p
	}
	cfg, err := config.Load(path, !explicit)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	c.Logger.Debug("loaded config", "path", path)
	return cfg, nil
}
