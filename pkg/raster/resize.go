package raster

import (
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/catimg/pkg/errors"
)

// DefaultFilter is the filter used when none is named. Bilinear matches the
// interpolation most desktop tools apply by default.
const DefaultFilter = "linear"

// Filter is a named resampling filter.
type Filter struct {
	name string
	rf   imaging.ResampleFilter
}

// Name returns the filter's registered name.
func (f Filter) Name() string { return f.name }

var filters = map[string]imaging.ResampleFilter{
	"nearest":    imaging.NearestNeighbor,
	"box":        imaging.Box,
	"linear":     imaging.Linear,
	"hermite":    imaging.Hermite,
	"mitchell":   imaging.MitchellNetravali,
	"catmullrom": imaging.CatmullRom,
	"bspline":    imaging.BSpline,
	"gaussian":   imaging.Gaussian,
	"bartlett":   imaging.Bartlett,
	"lanczos":    imaging.Lanczos,
	"hann":       imaging.Hann,
	"hamming":    imaging.Hamming,
	"blackman":   imaging.Blackman,
	"welch":      imaging.Welch,
	"cosine":     imaging.Cosine,
}

// ParseFilter looks up a filter by name (case-insensitive). An empty name
// selects DefaultFilter.
func ParseFilter(name string) (Filter, error) {
	if name == "" {
		name = DefaultFilter
	}
	key := strings.ToLower(name)
	rf, ok := filters[key]
	if !ok {
		return Filter{}, errors.New(errors.ErrCodeInvalidPolicy,
			"unknown resampling filter %q (must be one of: %s)", name, strings.Join(FilterNames(), ", "))
	}
	return Filter{name: key, rf: rf}, nil
}

// MustFilter is ParseFilter for names known at compile time.
func MustFilter(name string) Filter {
	f, err := ParseFilter(name)
	if err != nil {
		panic(err)
	}
	return f
}

// FilterNames returns the registered filter names in sorted order.
func FilterNames() []string {
	names := make([]string, 0, len(filters))
	for n := range filters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resize resamples m to exactly width×height. The result always owns a new
// buffer, even when the size is unchanged.
func Resize(m *Image, width, height int, f Filter) (*Image, error) {
	if width < 1 || height < 1 {
		return nil, errors.New(errors.ErrCodeInvalidDimension, "resize target must be positive").
			WithDims(m.Size(), errors.Size{Width: width, Height: height})
	}
	if f.name == "" {
		f = MustFilter(DefaultFilter)
	}
	if width == m.Width() && height == m.Height() {
		return &Image{pix: imaging.Clone(m.pix)}, nil
	}
	return &Image{pix: imaging.Resize(m.pix, width, height, f.rf)}, nil
}

// ScaleDim returns v*num/den truncated toward zero, clamped to at least 1.
// It is the integer aspect-ratio rule used for every derived dimension.
func ScaleDim(v, num, den int) int {
	if den == 0 {
		return 1
	}
	out := v * num / den
	if out < 1 {
		return 1
	}
	return out
}
