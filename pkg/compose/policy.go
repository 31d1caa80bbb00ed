package compose

import (
	"fmt"
	"strings"

	"github.com/matzehuels/catimg/pkg/errors"
	"github.com/matzehuels/catimg/pkg/raster"
)

// RatioMode selects whether images keep their own aspect ratio or are
// squared before dimension resolution.
type RatioMode int

const (
	// RatioKeep preserves each image's aspect ratio.
	RatioKeep RatioMode = iota
	// RatioConsistency reshapes every image to a common square first.
	RatioConsistency
)

var ratioNames = map[RatioMode]string{
	RatioKeep:        "keep",
	RatioConsistency: "consistency",
}

// String returns the mode's flag/config spelling.
func (m RatioMode) String() string {
	if s, ok := ratioNames[m]; ok {
		return s
	}
	return fmt.Sprintf("RatioMode(%d)", int(m))
}

// ParseRatioMode parses "keep" or "consistency" (case-insensitive).
func ParseRatioMode(s string) (RatioMode, error) {
	for m, name := range ratioNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidPolicy, "invalid ratio: %q (must be one of: keep, consistency)", s).
		WithStage(errors.StageValidate)
}

// OutputSizeMode selects how rows of different widths are made equal before
// they are stacked.
type OutputSizeMode int

const (
	// OutputCover shrinks every row to the narrowest row's width.
	OutputCover OutputSizeMode = iota
	// OutputContain pads every row on the right to the widest row's width.
	OutputContain
)

var outputSizeNames = map[OutputSizeMode]string{
	OutputCover:   "cover",
	OutputContain: "contain",
}

// String returns the mode's flag/config spelling.
func (m OutputSizeMode) String() string {
	if s, ok := outputSizeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("OutputSizeMode(%d)", int(m))
}

// ParseOutputSizeMode parses "cover" or "contain" (case-insensitive).
func ParseOutputSizeMode(s string) (OutputSizeMode, error) {
	for m, name := range outputSizeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidPolicy, "invalid output size: %q (must be one of: cover, contain)", s).
		WithStage(errors.StageValidate)
}

// DefaultPerRow is the number of images per row when none is given.
const DefaultPerRow = 3

// Policy carries every setting that shapes a composite. It is passed
// explicitly to each call; there is no package-level configuration.
type Policy struct {
	Ratio      RatioMode
	OutputSize OutputSizeMode

	// MaxWidth and MaxHeight bound the per-image target size. Leaving both
	// nil uses the bounding box of the image set; setting one derives the
	// other from that bounding box's aspect ratio.
	MaxWidth  *int
	MaxHeight *int

	// PerRow is the number of images per row. Must be at least 1.
	PerRow int

	// SquareSize overrides the side used by RatioConsistency. Nil uses the
	// smallest shorter side in the set.
	SquareSize *int

	// Filter names the resampling filter (see raster.FilterNames).
	Filter string

	// Workers bounds per-image and per-row fan-out. Values below 2 run
	// sequentially; the output is identical either way.
	Workers int
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		Ratio:      RatioConsistency,
		OutputSize: OutputContain,
		PerRow:     DefaultPerRow,
		Filter:     raster.DefaultFilter,
	}
}

// Validate checks the policy without looking at any image.
func (p Policy) Validate() error {
	if err := errors.ValidatePositive("per-row", p.PerRow); err != nil {
		return err
	}
	if err := errors.ValidateOptionalPositive("max-width", p.MaxWidth); err != nil {
		return err
	}
	if err := errors.ValidateOptionalPositive("max-height", p.MaxHeight); err != nil {
		return err
	}
	if err := errors.ValidateOptionalPositive("square-size", p.SquareSize); err != nil {
		return err
	}
	if _, ok := ratioNames[p.Ratio]; !ok {
		return errors.New(errors.ErrCodeInvalidPolicy, "unknown ratio mode %d", int(p.Ratio)).
			WithStage(errors.StageValidate)
	}
	if _, ok := outputSizeNames[p.OutputSize]; !ok {
		return errors.New(errors.ErrCodeInvalidPolicy, "unknown output size mode %d", int(p.OutputSize)).
			WithStage(errors.StageValidate)
	}
	if _, err := raster.ParseFilter(p.Filter); err != nil {
		return errors.AtStage(err, errors.StageValidate)
	}
	return nil
}

// IntPtr returns a pointer to v, for filling optional Policy fields.
func IntPtr(v int) *int {
	return &v
}
