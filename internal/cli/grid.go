package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/catimg/pkg/config"
	"github.com/matzehuels/catimg/pkg/errors"
	"github.com/matzehuels/catimg/pkg/imageio"
	"github.com/matzehuels/catimg/pkg/pipeline"
	"github.com/matzehuels/catimg/pkg/raster"
)

// gridFlags holds the command-line flags for the grid command. A flag only
// overrides the config file when the user set it.
type gridFlags struct {
	output     string
	perRow     int
	maxWidth   int
	maxHeight  int
	squareSize int
	ratio      string
	outputSize string
	filter     string
	workers    int
	quality    int
	strict     bool
	dryRun     bool
}

// gridCommand creates the grid command that composes a directory of images.
func (c *CLI) gridCommand() *cobra.Command {
	var flags gridFlags
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "grid [source-dir]",
		Short: "Compose the images in a directory into a grid",
		Long: `Compose the images in a directory into a grid.

Supported inputs are ` + strings.Join(imageio.SupportedExtensions, " ") + `, read in filename
order. Unreadable files are skipped with a warning unless --strict is set.

With --ratio consistency (the default) every image is first resized to a
square whose side is the smallest shorter side in the set (or --square-size). --output-size decides how rows of different widths are made
equal: contain pads short rows on the right with black, cover scales every
row down to the narrowest one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd, &cfg)
			opts, err := gridOptions(args[0], cfg, flags.dryRun)
			if err != nil {
				return err
			}
			return c.runGrid(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", defaults.Output.Path, "output file; the extension picks the format")
	cmd.Flags().IntVarP(&flags.perRow, "per-row", "n", defaults.Grid.PerRow, "images per row")
	cmd.Flags().IntVar(&flags.maxWidth, "max-width", 0, "maximum width of each image")
	cmd.Flags().IntVar(&flags.maxHeight, "max-height", 0, "maximum height of each image")
	cmd.Flags().IntVar(&flags.squareSize, "square-size", 0, "side length for --ratio consistency (default: smallest shorter side)")
	cmd.Flags().StringVar(&flags.ratio, "ratio", defaults.Grid.Ratio, "aspect ratio mode: consistency, keep")
	cmd.Flags().StringVar(&flags.outputSize, "output-size", defaults.Grid.OutputSize, "row width mode: contain, cover")
	cmd.Flags().StringVar(&flags.filter, "filter", defaults.Grid.Filter, "resampling filter: "+strings.Join(raster.FilterNames(), ", "))
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "parallel decode and resize workers (0 or 1 runs sequentially)")
	cmd.Flags().IntVar(&flags.quality, "quality", defaults.Output.Quality, "JPEG quality (1-100)")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail on the first unreadable image")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "plan the layout from image headers without writing output")

	_ = cmd.RegisterFlagCompletionFunc("ratio", cobra.FixedCompletions([]string{"consistency", "keep"}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("output-size", cobra.FixedCompletions([]string{"contain", "cover"}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("filter", cobra.FixedCompletions(raster.FilterNames(), cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.MarkFlagFilename("output", "jpg", "jpeg", "png", "gif", "tif", "tiff", "bmp")

	return cmd
}

// apply copies every flag the user set onto cfg.
func (f gridFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("output") {
		cfg.Output.Path = f.output
	}
	if set("quality") {
		cfg.Output.Quality = f.quality
	}
	if set("strict") {
		cfg.Output.Strict = f.strict
	}
	if set("per-row") {
		cfg.Grid.PerRow = f.perRow
	}
	if set("max-width") {
		cfg.Grid.MaxWidth = f.maxWidth
	}
	if set("max-height") {
		cfg.Grid.MaxHeight = f.maxHeight
	}
	if set("square-size") {
		cfg.Grid.SquareSize = f.squareSize
	}
	if set("ratio") {
		cfg.Grid.Ratio = f.ratio
	}
	if set("output-size") {
		cfg.Grid.OutputSize = f.outputSize
	}
	if set("filter") {
		cfg.Grid.Filter = f.filter
	}
	if set("workers") {
		cfg.Grid.Workers = f.workers
	}
}

// gridOptions builds validated pipeline options from the merged config.
func gridOptions(source string, cfg config.Config, dryRun bool) (pipeline.Options, error) {
	if err := cfg.Validate(); err != nil {
		return pipeline.Options{}, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Source:  source,
		Output:  cfg.Output.Path,
		Quality: cfg.Output.Quality,
		Policy:  policy,
		Strict:  cfg.Output.Strict,
		DryRun:  dryRun,
	}
	return opts, opts.ValidateAndSetDefaults()
}

// runGrid lists the source, runs the pipeline and reports the result.
func (c *CLI) runGrid(ctx context.Context, opts pipeline.Options) error {
	files, err := imageio.ListImages(opts.Source)
	if err != nil {
		return err
	}
	logger := loggerFromContext(ctx)
	opts.Files = files
	opts.Logger = logger
	printInfo("Found %s images in %s", StyleHighlight.Render(fmt.Sprint(len(files))), opts.Source)

	msg := fmt.Sprintf("Composing %d images (%d per row, ratio %s)...", len(files), opts.Policy.PerRow, opts.Policy.Ratio)
	if opts.DryRun {
		msg = fmt.Sprintf("Reading %d image headers...", len(files))
	}
	// Debug logs stream in verbose mode, so the spinner would only garble them.
	var spinner *Spinner
	if c.verbose {
		logger.Debug(msg)
	} else {
		spinner = newSpinnerWithContext(ctx, msg)
		spinner.Start()
	}
	prog := newProgress(logger)

	result, err := c.newRunner().Execute(ctx, opts)
	if err != nil {
		if spinner != nil {
			spinner.StopWithError("Composition failed")
		}
		return fmt.Errorf("grid: %w", err)
	}
	if spinner != nil {
		spinner.Stop()
	}
	if c.verbose {
		prog.done("processed images", "images", result.Stats.Images, "skipped", result.Stats.Skipped)
	}

	for _, s := range result.Skipped {
		printWarning("Skipped %s: %s", s.Path, errors.UserMessage(s.Err))
	}

	if opts.DryRun {
		printLayout(result)
		printNextStep("Compose it with", "catimg grid "+opts.Source)
		return nil
	}

	printSuccess("Saved composite")
	printFile(result.Output)
	printStats(result.Stats.Images, result.Stats.Skipped, result.Stats.Rows, result.Stats.Width, result.Stats.Height)
	return nil
}

// printLayout shows a dry-run plan.
func printLayout(result *pipeline.Result) {
	l := result.Layout
	printSuccess("Planned layout")
	if l.SquareSide > 0 {
		printKeyValue("square", fmt.Sprintf("%dx%d", l.SquareSide, l.SquareSide))
	}
	printKeyValue("image size", fmt.Sprintf("%dx%d", l.Target.Width, l.Target.Height))
	printKeyValue("rows", fmt.Sprint(l.Rows))
	printStats(result.Stats.Images, result.Stats.Skipped, result.Stats.Rows, 0, 0)
	if last := l.Rows[len(l.Rows)-1]; len(l.Rows) > 1 && last < l.Rows[0] {
		printDetail("last row holds %d of %d images", last, l.Rows[0])
	}
}
