// Package raster provides the immutable in-memory image buffer that flows
// through the compositing pipeline.
//
// Every buffer is stored as 8-bit non-premultiplied RGBA with its origin at
// (0, 0) and a tight stride, so two images with the same size and pixels
// always have byte-identical [Image.Bytes]. No operation in this package
// modifies its inputs: resizing, concatenation and padding all allocate a
// fresh buffer owned by the returned [Image].
//
// # Operations
//
//   - [Resize]: resample to an exact size with a named [Filter]
//   - [HConcat]: join equal-height images left to right
//   - [VConcat]: join equal-width images top to bottom
//   - [PadRight]: extend an image to a wider canvas with a solid filler
package raster

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/catimg/pkg/errors"
)

// Channels is the channel depth of every buffer (R, G, B, A).
const Channels = 4

// Black is the opaque filler color used for padding.
var Black = color.NRGBA{A: 0xff}

// Image is an immutable raster buffer.
type Image struct {
	pix *image.NRGBA
}

// FromImage copies src into a new Image. The source is not retained.
func FromImage(src image.Image) *Image {
	return &Image{pix: imaging.Clone(src)}
}

// New returns a width×height Image filled with c.
func New(width, height int, c color.Color) (*Image, error) {
	if width < 1 || height < 1 {
		return nil, errors.New(errors.ErrCodeInvalidDimension, "image size must be positive").
			WithDims(errors.Size{Width: width, Height: height})
	}
	return &Image{pix: imaging.New(width, height, c)}, nil
}

// Width returns the width in pixels.
func (m *Image) Width() int { return m.pix.Rect.Dx() }

// Height returns the height in pixels.
func (m *Image) Height() int { return m.pix.Rect.Dy() }

// Channels returns the channel depth.
func (m *Image) Channels() int { return Channels }

// Size returns the dimensions as an errors.Size for reporting.
func (m *Image) Size() errors.Size {
	return errors.Size{Width: m.Width(), Height: m.Height()}
}

// At returns the pixel at (x, y).
func (m *Image) At(x, y int) color.NRGBA {
	return m.pix.NRGBAAt(x, y)
}

// Bytes returns a copy of the pixel buffer in row-major RGBA order.
func (m *Image) Bytes() []byte {
	out := make([]byte, len(m.pix.Pix))
	copy(out, m.pix.Pix)
	return out
}

// Image exposes the buffer to encoders. Callers must not modify it.
func (m *Image) Image() image.Image {
	return m.pix
}

// Equal reports whether both images have the same size and pixels.
func (m *Image) Equal(o *Image) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.pix.Rect.Eq(o.pix.Rect) && bytes.Equal(m.pix.Pix, o.pix.Pix)
}

// Sub returns a copy of the rectangle r of m.
func (m *Image) Sub(r image.Rectangle) *Image {
	return &Image{pix: imaging.Crop(m.pix, r)}
}
