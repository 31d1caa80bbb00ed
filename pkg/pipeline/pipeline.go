// Package pipeline runs catimg end to end: list the source directory, decode
// every image, compose the grid and encode the result.
//
// The CLI is a thin layer over [Runner]; anything that wants the same
// behavior (logging, hooks, skip-on-decode-failure) should go through it
// rather than calling [compose.Compose] directly.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    Source: "photos/",
//	    Output: "merge.jpg",
//	    Policy: compose.DefaultPolicy(),
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Stats.Width, result.Stats.Height)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/catimg/pkg/compose"
	"github.com/matzehuels/catimg/pkg/errors"
	"github.com/matzehuels/catimg/pkg/imageio"
	"github.com/matzehuels/catimg/pkg/raster"
)

// DefaultOutput is the output path used when none is given.
const DefaultOutput = "merge.jpg"

// Options contains all configuration for one pipeline run.
type Options struct {
	// Source is the directory scanned for images. Ignored when Files is set.
	Source string
	// Files is an explicit, already ordered input list.
	Files []string

	// Output is the composite path; its extension picks the format.
	Output string
	// Quality is the JPEG quality (1-100). Zero means imageio.DefaultQuality.
	Quality int

	Policy compose.Policy

	// Strict makes the first undecodable image fatal instead of skipped.
	Strict bool
	// DryRun probes image headers and plans the layout without decoding
	// pixels or writing output.
	DryRun bool

	Logger *log.Logger

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in log lines.
	RunID string

	// Files are the inputs that made it into the composite, in order.
	Files []string
	// Skipped are inputs dropped because they could not be read.
	Skipped []Skipped

	Layout compose.Layout

	// Composite is nil for dry runs.
	Composite *raster.Image
	// Output is the written path, empty for dry runs.
	Output string

	Stats Stats
}

// Skipped records an input that was dropped and why.
type Skipped struct {
	Path string
	Err  error
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Images      int
	Skipped     int
	Rows        int
	Width       int
	Height      int
	DecodeTime  time.Duration
	ComposeTime time.Duration
	EncodeTime  time.Duration
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Files) == 0 {
		if err := errors.ValidatePath(o.Source); err != nil {
			return errors.AtStage(err, errors.StageValidate)
		}
	}
	if o.Output == "" {
		o.Output = DefaultOutput
	}
	if _, err := imageio.OutputFormat(o.Output); err != nil {
		return err
	}
	if o.Quality == 0 {
		o.Quality = imageio.DefaultQuality
	}
	if o.Quality < 1 || o.Quality > 100 {
		return errors.New(errors.ErrCodeInvalidConfig, "quality must be between 1 and 100, got %d", o.Quality).
			WithStage(errors.StageValidate)
	}
	if err := o.Policy.Validate(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// workers is the decode fan-out; the policy's worker count applies to every
// parallel stage.
func (o *Options) workers() int {
	if o.Policy.Workers < 1 {
		return 1
	}
	return o.Policy.Workers
}
