// Package imageio is the filesystem and codec boundary of catimg: it finds
// candidate images in a directory, decodes them into raster buffers and
// writes the finished composite.
//
// Decoding goes through github.com/disintegration/imaging (JPEG, PNG, GIF,
// TIFF, BMP) with WebP input registered from golang.org/x/image/webp.
// Encoding supports every format imaging can write, chosen by extension.
package imageio

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matzehuels/catimg/pkg/errors"
)

// SupportedExtensions lists the lowercase input extensions ListImages picks up.
var SupportedExtensions = []string{".bmp", ".gif", ".jpeg", ".jpg", ".png", ".tif", ".tiff", ".webp"}

// IsSupported reports whether path has a supported input extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ListImages returns the supported image files directly inside dir, sorted
// lexicographically by path. Subdirectories are not descended into.
func ListImages(dir string) ([]string, error) {
	if err := errors.ValidatePath(dir); err != nil {
		return nil, errors.AtStage(err, errors.StageList)
	}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeInvalidPath, "source directory does not exist: %s", dir).
			WithStage(errors.StageList)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "stat %s", dir).WithStage(errors.StageList)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "source is not a directory: %s", dir).
			WithStage(errors.StageList)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", dir).WithStage(errors.StageList)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsSupported(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		// Stat follows symlinks so linked images are included.
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "no image files found in: %s", dir).
			WithStage(errors.StageList)
	}
	return files, nil
}
