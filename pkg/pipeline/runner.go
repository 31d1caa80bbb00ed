package pipeline

import (
	"context"
	"image"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/catimg/pkg/compose"
	"github.com/matzehuels/catimg/pkg/errors"
	"github.com/matzehuels/catimg/pkg/imageio"
	"github.com/matzehuels/catimg/pkg/observability"
	"github.com/matzehuels/catimg/pkg/raster"
)

// Runner executes pipeline runs. It holds no per-run state, so one Runner
// can serve concurrent runs with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger uses log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs list → decode → compose → encode, or list → probe → plan
// when opts.DryRun is set.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID[:8])

	files, err := r.List(opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("found images", "images", len(files), "source", opts.Source)

	if opts.DryRun {
		return r.plan(ctx, logger, files, opts, result)
	}

	// Stage 1: Decode
	hooks := observability.Pipeline()
	decodeStart := time.Now()
	hooks.OnDecodeStart(ctx, len(files))
	images, kept, skipped, err := r.Decode(ctx, files, opts)
	result.Stats.DecodeTime = time.Since(decodeStart)
	hooks.OnDecodeComplete(ctx, len(images), len(skipped), result.Stats.DecodeTime, err)
	result.Skipped = skipped
	if err != nil {
		return nil, err
	}
	result.Files = kept
	for _, s := range skipped {
		logger.Debug("skipped image", "path", s.Path, "err", s.Err)
	}
	logger.Debug("decoded images", "images", len(images), "skipped", len(skipped), "duration", result.Stats.DecodeTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Compose
	layout, err := compose.Plan(compose.Sizes(images), opts.Policy)
	if err != nil {
		return nil, err
	}
	result.Layout = layout
	logger.Debug("composing",
		"images", len(images),
		"rows", len(layout.Rows),
		"per_row", opts.Policy.PerRow,
		"ratio", opts.Policy.Ratio,
		"output_size", opts.Policy.OutputSize)

	composeStart := time.Now()
	hooks.OnComposeStart(ctx, len(images), opts.Policy.PerRow)
	composite, err := compose.Compose(images, opts.Policy)
	result.Stats.ComposeTime = time.Since(composeStart)
	if err != nil {
		hooks.OnComposeComplete(ctx, 0, 0, result.Stats.ComposeTime, err)
		return nil, err
	}
	hooks.OnComposeComplete(ctx, composite.Width(), composite.Height(), result.Stats.ComposeTime, nil)
	result.Composite = composite
	r.fillStats(result, len(images))
	logger.Debug("composed grid",
		"width", composite.Width(),
		"height", composite.Height(),
		"duration", result.Stats.ComposeTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Encode
	encodeStart := time.Now()
	hooks.OnEncodeStart(ctx, opts.Output)
	err = imageio.Encode(composite, opts.Output, opts.Quality)
	result.Stats.EncodeTime = time.Since(encodeStart)
	hooks.OnEncodeComplete(ctx, opts.Output, result.Stats.EncodeTime, err)
	if err != nil {
		return nil, err
	}
	result.Output = opts.Output
	logger.Debug("saved composite", "path", opts.Output, "width", composite.Width(), "height", composite.Height())

	return result, nil
}

// List returns opts.Files when set, otherwise the images in opts.Source.
func (r *Runner) List(opts Options) ([]string, error) {
	if len(opts.Files) > 0 {
		return opts.Files, nil
	}
	return imageio.ListImages(opts.Source)
}

// Decode decodes files with up to the policy's worker count in flight.
// Images come back in input order. Unreadable files are returned as skipped
// unless opts.Strict is set, in which case the first failure is returned.
// If nothing decodes, the error is EMPTY_INPUT wrapping the first failure.
func (r *Runner) Decode(ctx context.Context, files []string, opts Options) ([]*raster.Image, []string, []Skipped, error) {
	decoded := make([]*raster.Image, len(files))
	failed := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := imageio.Decode(path)
			if err != nil {
				if opts.Strict {
					return err
				}
				failed[i] = err
				return nil
			}
			decoded[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}

	var (
		images  []*raster.Image
		kept    []string
		skipped []Skipped
	)
	for i, path := range files {
		if failed[i] != nil {
			skipped = append(skipped, Skipped{Path: path, Err: failed[i]})
			continue
		}
		images = append(images, decoded[i])
		kept = append(kept, path)
	}
	if len(images) == 0 {
		return nil, nil, skipped, errors.Wrap(errors.ErrCodeEmptyInput, skipped[0].Err,
			"none of the %d images could be decoded", len(files)).WithStage(errors.StageDecode)
	}
	return images, kept, skipped, nil
}

// plan is the dry-run path: header sizes only, no pixels and no output.
// Probed sizes ignore EXIF orientation.
func (r *Runner) plan(ctx context.Context, logger *log.Logger, files []string, opts Options, result *Result) (*Result, error) {
	sizes := make([]image.Point, len(files))
	failed := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			size, err := imageio.Probe(path)
			if err != nil {
				if opts.Strict {
					return err
				}
				failed[i] = err
				return nil
			}
			sizes[i] = size
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var probed []image.Point
	for i, path := range files {
		if failed[i] != nil {
			result.Skipped = append(result.Skipped, Skipped{Path: path, Err: failed[i]})
			logger.Debug("skipped image", "path", path, "err", failed[i])
			continue
		}
		probed = append(probed, sizes[i])
		result.Files = append(result.Files, path)
	}
	if len(probed) == 0 {
		return nil, errors.Wrap(errors.ErrCodeEmptyInput, result.Skipped[0].Err,
			"none of the %d images could be read", len(files)).WithStage(errors.StageDecode)
	}

	layout, err := compose.Plan(probed, opts.Policy)
	if err != nil {
		return nil, err
	}
	result.Layout = layout
	result.Stats.Images = len(probed)
	result.Stats.Skipped = len(result.Skipped)
	result.Stats.Rows = len(layout.Rows)
	logger.Debug("planned layout",
		"images", len(probed),
		"rows", len(layout.Rows),
		"target", errors.Size{Width: layout.Target.Width, Height: layout.Target.Height},
		"widest_row", lo.Max(layout.Rows))
	return result, nil
}

func (r *Runner) fillStats(result *Result, images int) {
	result.Stats.Images = images
	result.Stats.Skipped = len(result.Skipped)
	result.Stats.Rows = len(result.Layout.Rows)
	if result.Composite != nil {
		result.Stats.Width = result.Composite.Width()
		result.Stats.Height = result.Composite.Height()
	}
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
