// Package compose assembles a set of differently-sized images into one grid
// composite with a fixed number of images per row.
//
// # Pipeline
//
// [Compose] runs the stages in order:
//
//  1. Validate the [Policy] and reject an empty image set
//  2. Square every image ([NormalizeAspect]) when the ratio mode is
//     [RatioConsistency]
//  3. Resolve the per-image target size ([ResolveDimensions])
//  4. Partition into rows of Policy.PerRow and build each row ([AssembleRow])
//  5. Equalize row widths and stack them ([AssembleGrid])
//
// Steps 1 to 3 run on sizes alone (see [Plan]), so a bad policy fails before
// any pixel is resampled.
//
// Compose is a pure function: the same images and policy always produce
// byte-identical output, with or without Policy.Workers.
package compose

import (
	"image"

	"github.com/matzehuels/catimg/pkg/errors"
	"github.com/matzehuels/catimg/pkg/raster"
)

// Layout is the size-only plan for a composite.
type Layout struct {
	// SquareSide is the side images are squared to, or 0 for RatioKeep.
	SquareSide int
	// Target is the resolved per-image size.
	Target Dimensions
	// Rows holds the number of images in each row.
	Rows []int
}

// Plan validates p against the given image sizes and computes the layout
// without touching pixels.
func Plan(sizes []image.Point, p Policy) (Layout, error) {
	if err := p.Validate(); err != nil {
		return Layout{}, err
	}
	if len(sizes) == 0 {
		return Layout{}, errors.New(errors.ErrCodeEmptyInput, "no images to compose").WithStage(errors.StageValidate)
	}

	var l Layout
	work := sizes
	if p.Ratio == RatioConsistency {
		side, err := SquareSide(sizes, p.SquareSize)
		if err != nil {
			return Layout{}, err
		}
		l.SquareSide = side
		work = make([]image.Point, len(sizes))
		for i := range work {
			work[i] = image.Pt(side, side)
		}
	}

	target, err := ResolveDimensions(work, p.MaxWidth, p.MaxHeight)
	if err != nil {
		return Layout{}, err
	}
	l.Target = target

	chunks, err := Partition(sizes, p.PerRow)
	if err != nil {
		return Layout{}, err
	}
	l.Rows = make([]int, len(chunks))
	for i, c := range chunks {
		l.Rows[i] = len(c)
	}
	return l, nil
}

// Compose builds the grid composite for images under policy p.
func Compose(images []*raster.Image, p Policy) (*raster.Image, error) {
	layout, err := Plan(Sizes(images), p)
	if err != nil {
		return nil, err
	}
	f, err := raster.ParseFilter(p.Filter)
	if err != nil {
		return nil, err
	}
	a := assembler{filter: f, workers: p.Workers}

	work := images
	if p.Ratio == RatioConsistency {
		if work, err = a.normalize(images, layout.SquareSide); err != nil {
			return nil, err
		}
	}

	chunks, err := Partition(work, p.PerRow)
	if err != nil {
		return nil, err
	}

	// Rows fan out; images within a row are resized sequentially.
	inner := assembler{filter: f}
	rows := make([]*raster.Image, len(chunks))
	err = a.each(len(chunks), func(i int) error {
		row, err := inner.row(chunks[i], layout.Target)
		if err != nil {
			return err
		}
		rows[i] = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	return a.grid(rows, p.OutputSize)
}
