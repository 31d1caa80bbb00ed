package compose

import (
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/catimg/pkg/errors"
	"github.com/matzehuels/catimg/pkg/raster"
)

// assembler holds the per-call settings shared by the row and grid passes.
type assembler struct {
	filter  raster.Filter
	workers int
}

// each runs fn for 0..n-1. With more than one worker the calls run on an
// errgroup bounded to a.workers; fn must write its result by index so the
// outcome does not depend on scheduling.
func (a assembler) each(n int, fn func(i int) error) error {
	if a.workers < 2 || n < 2 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	g.SetLimit(a.workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}

// Partition splits items into consecutive chunks of perRow, preserving
// order. The last chunk may be shorter; nothing is padded.
func Partition[T any](items []T, perRow int) ([][]T, error) {
	if err := errors.ValidatePositive("per-row", perRow); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return lo.Chunk(items, perRow), nil
}

// AssembleRow resizes each image in two passes and joins them left to right.
//
// The first pass fixes the width to d.Width and derives the height from the
// image's own aspect ratio. The second pass fixes the height to d.Height and
// derives the width from the first pass's result. Only the height is exact;
// integer truncation can leave an image a little off d.Width either way.
func AssembleRow(images []*raster.Image, d Dimensions, f raster.Filter) (*raster.Image, error) {
	return assembler{filter: f}.row(images, d)
}

func (a assembler) row(images []*raster.Image, d Dimensions) (*raster.Image, error) {
	if len(images) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "row has no images").WithStage(errors.StageRow)
	}
	if _, err := checkDimensions(d); err != nil {
		return nil, err
	}

	resized := make([]*raster.Image, len(images))
	err := a.each(len(images), func(i int) error {
		m := images[i]
		h1 := raster.ScaleDim(m.Height(), d.Width, m.Width())
		wide, err := raster.Resize(m, d.Width, h1, a.filter)
		if err != nil {
			return errors.AtStage(err, errors.StageRow)
		}
		w2 := raster.ScaleDim(wide.Width(), d.Height, wide.Height())
		tall, err := raster.Resize(wide, w2, d.Height, a.filter)
		if err != nil {
			return errors.AtStage(err, errors.StageRow)
		}
		resized[i] = tall
		return nil
	})
	if err != nil {
		return nil, err
	}

	row, err := raster.HConcat(resized...)
	if err != nil {
		return nil, errors.AtStage(err, errors.StageRow)
	}
	return row, nil
}

// AssembleGrid makes all rows the same width according to mode and stacks
// them top to bottom.
//
// OutputCover resizes each row to the narrowest row's width, keeping the
// row's aspect ratio (its height may change). OutputContain pads each
// narrower row on the right with opaque black, leaving its pixels and height
// untouched.
func AssembleGrid(rows []*raster.Image, mode OutputSizeMode, f raster.Filter) (*raster.Image, error) {
	return assembler{filter: f}.grid(rows, mode)
}

func (a assembler) grid(rows []*raster.Image, mode OutputSizeMode) (*raster.Image, error) {
	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyGrid, "no rows to stack").WithStage(errors.StageGrid)
	}

	widths := lo.Map(rows, func(r *raster.Image, _ int) int { return r.Width() })
	shaped := make([]*raster.Image, len(rows))

	var shape func(r *raster.Image) (*raster.Image, error)
	switch mode {
	case OutputCover:
		target := lo.Min(widths)
		shape = func(r *raster.Image) (*raster.Image, error) {
			return raster.Resize(r, target, raster.ScaleDim(r.Height(), target, r.Width()), a.filter)
		}
	case OutputContain:
		target := lo.Max(widths)
		shape = func(r *raster.Image) (*raster.Image, error) {
			return raster.PadRight(r, target, raster.Black)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidPolicy, "unknown output size mode %d", int(mode)).
			WithStage(errors.StageGrid)
	}

	err := a.each(len(rows), func(i int) error {
		out, err := shape(rows[i])
		if err != nil {
			return errors.AtStage(err, errors.StageGrid)
		}
		shaped[i] = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	grid, err := raster.VConcat(shaped...)
	if err != nil {
		return nil, errors.AtStage(err, errors.StageGrid)
	}
	return grid, nil
}
