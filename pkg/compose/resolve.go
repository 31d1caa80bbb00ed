package compose

import (
	"image"

	"github.com/samber/lo"

	"github.com/matzehuels/catimg/pkg/errors"
	"github.com/matzehuels/catimg/pkg/raster"
)

// Dimensions is the per-image target size used by row assembly.
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) size() errors.Size {
	return errors.Size{Width: d.Width, Height: d.Height}
}

// Sizes returns the width/height of each image as image.Point{X: w, Y: h}.
func Sizes(images []*raster.Image) []image.Point {
	return lo.Map(images, func(m *raster.Image, _ int) image.Point {
		return image.Pt(m.Width(), m.Height())
	})
}

// ResolveDimensions computes the target width and height for a set of image
// sizes.
//
// The defaults are the bounding box of the whole set (widest width, tallest
// height). A supplied bound replaces its default. When exactly one bound is
// supplied the other is derived from the bounding box's aspect ratio and
// truncated: with only maxW set, height = defaultH * maxW / defaultW.
func ResolveDimensions(sizes []image.Point, maxW, maxH *int) (Dimensions, error) {
	if maxW != nil && maxH != nil {
		return checkDimensions(Dimensions{Width: *maxW, Height: *maxH})
	}
	if len(sizes) == 0 {
		return Dimensions{}, invalidDimension("no images to derive default dimensions from", Dimensions{})
	}

	defW := lo.Max(lo.Map(sizes, func(p image.Point, _ int) int { return p.X }))
	defH := lo.Max(lo.Map(sizes, func(p image.Point, _ int) int { return p.Y }))
	if defW <= 0 || defH <= 0 {
		return Dimensions{}, invalidDimension("image set has an empty bounding box", Dimensions{Width: defW, Height: defH})
	}

	d := Dimensions{Width: defW, Height: defH}
	switch {
	case maxW != nil:
		d.Width = *maxW
		d.Height = defH * *maxW / defW
	case maxH != nil:
		d.Height = *maxH
		d.Width = defW * *maxH / defH
	}
	return checkDimensions(d)
}

func checkDimensions(d Dimensions) (Dimensions, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return Dimensions{}, invalidDimension("resolved target size must be positive", d)
	}
	return d, nil
}

// invalidDimension reports an INVALID_DIMENSION failure inside an
// INVALID_POLICY error so callers can match either code.
func invalidDimension(msg string, d Dimensions) error {
	inner := errors.New(errors.ErrCodeInvalidDimension, "%s", msg).WithDims(d.size())
	return errors.Wrap(errors.ErrCodeInvalidPolicy, inner, "unresolvable target dimensions").
		WithStage(errors.StageResolve)
}
