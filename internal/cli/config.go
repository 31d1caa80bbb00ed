package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/catimg/pkg/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	var (
		defaults bool
		showPath bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Long: `Print the effective configuration as TOML.

Settings come from built-in defaults, then the config file. Flags given to
'grid' override both for that run. Redirect the output to start a config file:

  $ catimg config --default > ~/.config/catimg/config.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showPath {
				path := c.configPath
				if path == "" {
					p, err := config.DefaultPath()
					if err != nil {
						return fmt.Errorf("get config path: %w", err)
					}
					path = p
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}

			cfg := config.Default()
			if !defaults {
				var err error
				if cfg, err = c.loadConfig(); err != nil {
					return err
				}
			}
			return cfg.Write(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&defaults, "default", false, "print the built-in defaults, ignoring any config file")
	cmd.Flags().BoolVar(&showPath, "path", false, "print the config file path instead")

	return cmd
}
