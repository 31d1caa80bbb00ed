package compose

import (
	"image"

	"github.com/samber/lo"

	"github.com/matzehuels/catimg/pkg/errors"
	"github.com/matzehuels/catimg/pkg/raster"
)

// SquareSide returns the side used to square an image set: override when
// given, otherwise the smallest shorter side across all sizes.
func SquareSide(sizes []image.Point, override *int) (int, error) {
	if override != nil {
		if *override < 1 {
			return 0, errors.New(errors.ErrCodeInvalidPolicy, "square-size must be at least 1, got %d", *override).
				WithStage(errors.StageNormalize)
		}
		return *override, nil
	}
	if len(sizes) == 0 {
		return 0, errors.New(errors.ErrCodeEmptyInput, "no images to square").WithStage(errors.StageNormalize)
	}
	side := lo.Min(lo.Map(sizes, func(p image.Point, _ int) int { return min(p.X, p.Y) }))
	if side < 1 {
		return 0, errors.New(errors.ErrCodeInvalidDimension, "image set contains an empty image").
			WithStage(errors.StageNormalize)
	}
	return side, nil
}

// NormalizeAspect resizes every image to an s×s square, where s comes from
// SquareSide. Images that are already s×s keep their pixels, so applying it
// twice is the same as applying it once.
func NormalizeAspect(images []*raster.Image, override *int, f raster.Filter) ([]*raster.Image, error) {
	side, err := SquareSide(Sizes(images), override)
	if err != nil {
		return nil, err
	}
	return assembler{filter: f}.normalize(images, side)
}

func (a assembler) normalize(images []*raster.Image, side int) ([]*raster.Image, error) {
	out := make([]*raster.Image, len(images))
	err := a.each(len(images), func(i int) error {
		m, err := raster.Resize(images[i], side, side, a.filter)
		if err != nil {
			return errors.AtStage(err, errors.StageNormalize)
		}
		out[i] = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
