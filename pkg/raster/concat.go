package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/matzehuels/catimg/pkg/errors"
)

// HConcat joins images left to right. All images must share one height; a
// mismatch is reported as CONCAT_MISMATCH and never corrected.
func HConcat(images ...*Image) (*Image, error) {
	if len(images) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyGrid, "nothing to concatenate horizontally")
	}
	height := images[0].Height()
	width := 0
	for _, m := range images {
		if m.Height() != height {
			return nil, errors.New(errors.ErrCodeConcatMismatch,
				"horizontal concatenation needs equal heights").WithDims(sizes(images)...)
		}
		width += m.Width()
	}

	dst := imaging.New(width, height, color.Transparent)
	x := 0
	for _, m := range images {
		r := image.Rect(x, 0, x+m.Width(), height)
		draw.Draw(dst, r, m.pix, image.Point{}, draw.Src)
		x += m.Width()
	}
	return &Image{pix: dst}, nil
}

// VConcat joins images top to bottom. All images must share one width.
func VConcat(images ...*Image) (*Image, error) {
	if len(images) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyGrid, "nothing to concatenate vertically")
	}
	width := images[0].Width()
	height := 0
	for _, m := range images {
		if m.Width() != width {
			return nil, errors.New(errors.ErrCodeConcatMismatch,
				"vertical concatenation needs equal widths").WithDims(sizes(images)...)
		}
		height += m.Height()
	}

	dst := imaging.New(width, height, color.Transparent)
	y := 0
	for _, m := range images {
		r := image.Rect(0, y, width, y+m.Height())
		draw.Draw(dst, r, m.pix, image.Point{}, draw.Src)
		y += m.Height()
	}
	return &Image{pix: dst}, nil
}

// PadRight places m at the left edge of a width-wide canvas filled with c.
// The height is unchanged and no resampling happens.
func PadRight(m *Image, width int, c color.Color) (*Image, error) {
	if width < m.Width() {
		return nil, errors.New(errors.ErrCodeConcatMismatch,
			"cannot pad to a narrower width %d", width).WithDims(m.Size())
	}
	if width == m.Width() {
		return &Image{pix: imaging.Clone(m.pix)}, nil
	}
	filler, err := New(width-m.Width(), m.Height(), c)
	if err != nil {
		return nil, err
	}
	return HConcat(m, filler)
}

func sizes(images []*Image) []errors.Size {
	out := make([]errors.Size, len(images))
	for i, m := range images {
		out[i] = m.Size()
	}
	return out
}
