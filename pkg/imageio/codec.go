package imageio

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/catimg/pkg/errors"
	"github.com/matzehuels/catimg/pkg/raster"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 95

// Decode reads and decodes the image at path, applying EXIF orientation.
func Decode(path string) (*raster.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode %s", path).WithStage(errors.StageDecode)
	}
	m := raster.FromImage(img)
	if m.Width() < 1 || m.Height() < 1 {
		return nil, errors.New(errors.ErrCodeDecode, "decode %s: image is empty", path).
			WithStage(errors.StageDecode).WithDims(m.Size())
	}
	return m, nil
}

// Probe reads only the image header and returns the stored width and height.
// EXIF orientation is not applied.
func Probe(path string) (image.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Point{}, errors.Wrap(errors.ErrCodeDecode, err, "open %s", path).WithStage(errors.StageDecode)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Point{}, errors.Wrap(errors.ErrCodeDecode, err, "read header of %s", path).
			WithStage(errors.StageDecode)
	}
	return image.Pt(cfg.Width, cfg.Height), nil
}

// OutputFormat returns the encoder format for path's extension.
func OutputFormat(path string) (imaging.Format, error) {
	if err := errors.ValidatePath(path); err != nil {
		return 0, errors.AtStage(err, errors.StageEncode)
	}
	f, err := imaging.FormatFromFilename(path)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeEncode, err,
			"unsupported output format %q (use .jpg, .png, .gif, .tif or .bmp)", filepath.Ext(path)).
			WithStage(errors.StageEncode)
	}
	return f, nil
}

// Encode writes m to path in the format implied by its extension. quality
// applies to JPEG output; values outside 1..100 fall back to DefaultQuality.
//
// The image is written to a temporary file next to path and renamed into
// place, so path never holds a partial composite.
func Encode(m *raster.Image, path string, quality int) (err error) {
	format, err := OutputFormat(path)
	if err != nil {
		return err
	}
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}

	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", strings.TrimPrefix(filepath.Base(path), "."), uuid.NewString()))
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "create %s", path).WithStage(errors.StageEncode)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err := imaging.Encode(f, m.Image(), format, imaging.JPEGQuality(quality)); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeEncode, err, "encode %s", path).
			WithStage(errors.StageEncode).WithDims(m.Size())
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "write %s", path).WithStage(errors.StageEncode)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "rename into %s", path).WithStage(errors.StageEncode)
	}
	return nil
}
