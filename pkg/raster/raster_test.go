package raster

import (
	stderrors "errors"
	"image"
	"image/color"
	"testing"

	"github.com/matzehuels/catimg/pkg/errors"
)

var (
	red   = color.NRGBA{R: 0xff, A: 0xff}
	green = color.NRGBA{G: 0xff, A: 0xff}
	blue  = color.NRGBA{B: 0xff, A: 0xff}
)

func solid(t *testing.T, w, h int, c color.NRGBA) *Image {
	t.Helper()
	m, err := New(w, h, c)
	if err != nil {
		t.Fatalf("New(%d, %d): %v", w, h, err)
	}
	return m
}

func TestFromImageCopies(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 14, 13))
	src.SetNRGBA(10, 10, red)

	m := FromImage(src)
	if m.Width() != 4 || m.Height() != 3 {
		t.Fatalf("size = %dx%d, want 4x3", m.Width(), m.Height())
	}
	if m.At(0, 0) != red {
		t.Errorf("At(0,0) = %v, want %v", m.At(0, 0), red)
	}

	// Mutating the source must not leak into the copy.
	src.SetNRGBA(10, 10, blue)
	if m.At(0, 0) != red {
		t.Error("FromImage retained the source buffer")
	}
	if m.Channels() != 4 {
		t.Errorf("Channels() = %d, want 4", m.Channels())
	}
	if len(m.Bytes()) != 4*3*4 {
		t.Errorf("len(Bytes()) = %d, want %d", len(m.Bytes()), 4*3*4)
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(0, 5, red); !errors.Is(err, errors.ErrCodeInvalidDimension) {
		t.Errorf("New(0, 5) error = %v, want INVALID_DIMENSION", err)
	}
}

func TestResize(t *testing.T) {
	m := solid(t, 40, 20, green)

	out, err := Resize(m, 10, 7, MustFilter("lanczos"))
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if out.Width() != 10 || out.Height() != 7 {
		t.Errorf("size = %dx%d, want 10x7", out.Width(), out.Height())
	}

	same, err := Resize(m, 40, 20, Filter{})
	if err != nil {
		t.Fatalf("Resize same size: %v", err)
	}
	if !same.Equal(m) {
		t.Error("same-size resize should keep pixels")
	}
	if same == m {
		t.Error("same-size resize should return a new Image")
	}

	if _, err := Resize(m, 0, 10, MustFilter("linear")); !errors.Is(err, errors.ErrCodeInvalidDimension) {
		t.Errorf("Resize(0, 10) error = %v, want INVALID_DIMENSION", err)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", DefaultFilter, false},
		{"linear", "linear", false},
		{"Lanczos", "lanczos", false},
		{"nearest", "nearest", false},
		{"sinc", "", true},
	}

	for _, tt := range tests {
		f, err := ParseFilter(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFilter(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, errors.ErrCodeInvalidPolicy) {
				t.Errorf("ParseFilter(%q) code = %v, want INVALID_POLICY", tt.name, errors.GetCode(err))
			}
			continue
		}
		if f.Name() != tt.want {
			t.Errorf("ParseFilter(%q).Name() = %q, want %q", tt.name, f.Name(), tt.want)
		}
	}

	names := FilterNames()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("FilterNames() not sorted: %v", names)
		}
	}
}

func TestHConcat(t *testing.T) {
	a := solid(t, 3, 2, red)
	b := solid(t, 5, 2, blue)

	out, err := HConcat(a, b)
	if err != nil {
		t.Fatalf("HConcat: %v", err)
	}
	if out.Width() != 8 || out.Height() != 2 {
		t.Fatalf("size = %dx%d, want 8x2", out.Width(), out.Height())
	}
	if out.At(2, 1) != red || out.At(3, 0) != blue || out.At(7, 1) != blue {
		t.Error("HConcat placed pixels in the wrong columns")
	}
}

func TestHConcatMismatch(t *testing.T) {
	_, err := HConcat(solid(t, 3, 2, red), solid(t, 3, 3, red))
	if !errors.Is(err, errors.ErrCodeConcatMismatch) {
		t.Fatalf("error = %v, want CONCAT_MISMATCH", err)
	}
	var e *errors.Error
	if !stderrors.As(err, &e) || len(e.Dims) != 2 {
		t.Errorf("mismatch error should report both sizes: %v", err)
	}
}

func TestVConcat(t *testing.T) {
	out, err := VConcat(solid(t, 4, 1, red), solid(t, 4, 2, green))
	if err != nil {
		t.Fatalf("VConcat: %v", err)
	}
	if out.Width() != 4 || out.Height() != 3 {
		t.Fatalf("size = %dx%d, want 4x3", out.Width(), out.Height())
	}
	if out.At(0, 0) != red || out.At(3, 2) != green {
		t.Error("VConcat placed pixels in the wrong rows")
	}

	if _, err := VConcat(solid(t, 4, 1, red), solid(t, 5, 1, red)); !errors.Is(err, errors.ErrCodeConcatMismatch) {
		t.Errorf("VConcat mismatch error = %v, want CONCAT_MISMATCH", err)
	}
	if _, err := VConcat(); !errors.Is(err, errors.ErrCodeEmptyGrid) {
		t.Errorf("VConcat() error = %v, want EMPTY_GRID", err)
	}
}

func TestPadRight(t *testing.T) {
	m := solid(t, 3, 2, green)

	out, err := PadRight(m, 7, Black)
	if err != nil {
		t.Fatalf("PadRight: %v", err)
	}
	if out.Width() != 7 || out.Height() != 2 {
		t.Fatalf("size = %dx%d, want 7x2", out.Width(), out.Height())
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if out.At(x, y) != green {
				t.Fatalf("content at (%d,%d) changed to %v", x, y, out.At(x, y))
			}
		}
		for x := 3; x < 7; x++ {
			if out.At(x, y) != Black {
				t.Fatalf("filler at (%d,%d) = %v, want black", x, y, out.At(x, y))
			}
		}
	}

	if _, err := PadRight(m, 2, Black); !errors.Is(err, errors.ErrCodeConcatMismatch) {
		t.Errorf("PadRight narrower error = %v, want CONCAT_MISMATCH", err)
	}
}

func TestScaleDim(t *testing.T) {
	tests := []struct {
		v, num, den, want int
	}{
		{300, 200, 400, 150},
		{301, 200, 400, 150},
		{1, 1, 1000, 1},
		{10, 5, 0, 1},
	}
	for _, tt := range tests {
		if got := ScaleDim(tt.v, tt.num, tt.den); got != tt.want {
			t.Errorf("ScaleDim(%d, %d, %d) = %d, want %d", tt.v, tt.num, tt.den, got, tt.want)
		}
	}
}

func TestSub(t *testing.T) {
	out, _ := HConcat(solid(t, 2, 2, red), solid(t, 2, 2, blue))
	right := out.Sub(image.Rect(2, 0, 4, 2))
	if !right.Equal(solid(t, 2, 2, blue)) {
		t.Error("Sub returned the wrong region")
	}
}
