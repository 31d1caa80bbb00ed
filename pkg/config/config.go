// Package config loads catimg settings from a TOML file.
//
// Settings are layered: [Default] values, then the file, then whatever the
// caller applies on top (the CLI applies flags the user set explicitly).
// Integer bounds use 0 for "unset".
//
//	[grid]
//	per_row = 3
//	ratio = "consistency"
//	output_size = "contain"
//	max_width = 0
//	max_height = 0
//	square_size = 0
//	filter = "linear"
//	workers = 0
//
//	[output]
//	path = "merge.jpg"
//	quality = 95
//	strict = false
package config

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/catimg/pkg/compose"
	"github.com/matzehuels/catimg/pkg/errors"
	"github.com/matzehuels/catimg/pkg/imageio"
	"github.com/matzehuels/catimg/pkg/pipeline"
	"github.com/matzehuels/catimg/pkg/raster"
)

// AppName names the per-user config directory.
const AppName = "catimg"

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// Config is the on-disk configuration.
type Config struct {
	Grid   Grid   `toml:"grid"`
	Output Output `toml:"output"`
}

// Grid holds composition settings.
type Grid struct {
	PerRow     int    `toml:"per_row"`
	Ratio      string `toml:"ratio"`
	OutputSize string `toml:"output_size"`
	MaxWidth   int    `toml:"max_width"`
	MaxHeight  int    `toml:"max_height"`
	SquareSize int    `toml:"square_size"`
	Filter     string `toml:"filter"`
	Workers    int    `toml:"workers"`
}

// Output holds encoding settings.
type Output struct {
	Path    string `toml:"path"`
	Quality int    `toml:"quality"`
	Strict  bool   `toml:"strict"`
}

// Default returns the built-in configuration.
func Default() Config {
	p := compose.DefaultPolicy()
	return Config{
		Grid: Grid{
			PerRow:     p.PerRow,
			Ratio:      p.Ratio.String(),
			OutputSize: p.OutputSize.String(),
			Filter:     raster.DefaultFilter,
		},
		Output: Output{
			Path:    pipeline.DefaultOutput,
			Quality: imageio.DefaultQuality,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/catimg/config.toml, falling back to
// ~/.config/catimg/config.toml.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName, FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, FileName), nil
}

// Load reads path over the defaults. A missing file is an error unless
// optional is set, in which case the defaults are returned.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config").WithStage(errors.StageConfig)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path).WithStage(errors.StageConfig)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", ")).
			WithStage(errors.StageConfig)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path).WithStage(errors.StageConfig)
	}
	return cfg, nil
}

// Validate checks every setting, including the derived policy.
func (c Config) Validate() error {
	p, err := c.Policy()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return errors.New(errors.ErrCodeInvalidConfig, "output.quality must be between 1 and 100, got %d", c.Output.Quality)
	}
	if c.Output.Path != "" {
		if _, err := imageio.OutputFormat(c.Output.Path); err != nil {
			return err
		}
	}
	return nil
}

// Policy converts the grid settings into a compose.Policy. Mode names are
// parsed; numeric ranges are left to Policy.Validate.
func (c Config) Policy() (compose.Policy, error) {
	p := compose.DefaultPolicy()
	p.PerRow = c.Grid.PerRow
	p.Filter = c.Grid.Filter
	p.Workers = c.Grid.Workers
	p.MaxWidth = optional(c.Grid.MaxWidth)
	p.MaxHeight = optional(c.Grid.MaxHeight)
	p.SquareSize = optional(c.Grid.SquareSize)

	if c.Grid.Ratio != "" {
		m, err := compose.ParseRatioMode(c.Grid.Ratio)
		if err != nil {
			return compose.Policy{}, err
		}
		p.Ratio = m
	}
	if c.Grid.OutputSize != "" {
		m, err := compose.ParseOutputSizeMode(c.Grid.OutputSize)
		if err != nil {
			return compose.Policy{}, err
		}
		p.OutputSize = m
	}
	return p, nil
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func optional(v int) *int {
	if v == 0 {
		return nil
	}
	return compose.IntPtr(v)
}
