package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/catimg/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The logger is attached to the command context before any subcommand runs
// and can be retrieved with loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "catimg tiles a directory of images into one grid",
		Long: `catimg concatenates every image in a directory into a single grid image.

Images are read in filename order, optionally squared to a common aspect ratio,
resized to a shared per-image size and laid out a fixed number per row.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.Logger.Debug("starting", "version", buildinfo.Version, "commit", buildinfo.Commit)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/catimg/config.toml)")
	_ = root.MarkPersistentFlagFilename("config", "toml")

	root.AddCommand(c.gridCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
