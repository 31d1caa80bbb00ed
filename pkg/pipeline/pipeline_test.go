package pipeline

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/catimg/pkg/compose"
	"github.com/matzehuels/catimg/pkg/errors"
	"github.com/matzehuels/catimg/pkg/imageio"
	"github.com/matzehuels/catimg/pkg/observability"
)

// writeImages creates one PNG per size in dir, named so that listing order
// matches argument order.
func writeImages(t *testing.T, dir string, sizes ...[2]int) []string {
	t.Helper()
	var paths []string
	for i, s := range sizes {
		path := filepath.Join(dir, string(rune('a'+i))+".png")
		if err := imaging.Save(imaging.New(s[0], s[1], color.White), path); err != nil {
			t.Fatalf("save %s: %v", path, err)
		}
		paths = append(paths, path)
	}
	return paths
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Source: "photos", Policy: compose.DefaultPolicy()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("valid options should pass: %v", err)
	}
	if opts.Output != DefaultOutput {
		t.Errorf("Output = %q, want %q", opts.Output, DefaultOutput)
	}
	if opts.Quality != imageio.DefaultQuality {
		t.Errorf("Quality = %d, want %d", opts.Quality, imageio.DefaultQuality)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidate(t *testing.T) {
	badPolicy := compose.DefaultPolicy()
	badPolicy.PerRow = 0

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing source", Options{Policy: compose.DefaultPolicy()}, errors.ErrCodeInvalidPath},
		{"bad output format", Options{Source: "x", Output: "out.svg", Policy: compose.DefaultPolicy()}, errors.ErrCodeEncode},
		{"quality too high", Options{Source: "x", Quality: 101, Policy: compose.DefaultPolicy()}, errors.ErrCodeInvalidConfig},
		{"bad policy", Options{Source: "x", Policy: badPolicy}, errors.ErrCodeInvalidPolicy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	src := t.TempDir()
	writeImages(t, src, [2]int{40, 30}, [2]int{30, 40}, [2]int{50, 50})
	out := filepath.Join(t.TempDir(), "grid.png")

	p := compose.DefaultPolicy()
	p.PerRow = 2
	res, err := NewRunner(nil).Execute(context.Background(), Options{Source: src, Output: out, Policy: p})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.RunID == "" {
		t.Error("RunID should be set")
	}
	if res.Stats.Images != 3 || res.Stats.Rows != 2 {
		t.Errorf("stats = %+v, want 3 images in 2 rows", res.Stats)
	}
	if res.Stats.Width != 60 || res.Stats.Height != 60 {
		t.Errorf("composite = %dx%d, want 60x60", res.Stats.Width, res.Stats.Height)
	}
	if res.Output != out {
		t.Errorf("Output = %q, want %q", res.Output, out)
	}

	m, err := imageio.Decode(out)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if !m.Equal(res.Composite) {
		t.Error("written PNG differs from the in-memory composite")
	}
}

func TestExecuteSkipsUndecodable(t *testing.T) {
	src := t.TempDir()
	writeImages(t, src, [2]int{10, 10}, [2]int{10, 10})
	bad := filepath.Join(src, "z.jpg")
	if err := os.WriteFile(bad, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "out.png")

	p := compose.DefaultPolicy()
	res, err := NewRunner(nil).Execute(context.Background(), Options{Source: src, Output: out, Policy: p})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Path != bad {
		t.Fatalf("Skipped = %+v, want only %s", res.Skipped, bad)
	}
	if !errors.Is(res.Skipped[0].Err, errors.ErrCodeDecode) {
		t.Errorf("skip reason = %v, want DECODE_ERROR", res.Skipped[0].Err)
	}
	if len(res.Files) != 2 || res.Stats.Width != 20 || res.Stats.Height != 10 {
		t.Errorf("files %v, composite %dx%d; want 2 files, 20x10", res.Files, res.Stats.Width, res.Stats.Height)
	}

	// Strict mode fails on the same input.
	_, err = NewRunner(nil).Execute(context.Background(), Options{Source: src, Output: out, Policy: p, Strict: true})
	if !errors.Is(err, errors.ErrCodeDecode) {
		t.Errorf("strict Execute error = %v, want DECODE_ERROR", err)
	}
}

func TestExecuteNothingDecodes(t *testing.T) {
	src := t.TempDir()
	for _, name := range []string{"a.png", "b.jpg"} {
		if err := os.WriteFile(filepath.Join(src, name), []byte("nope"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	out := filepath.Join(t.TempDir(), "out.png")

	_, err := NewRunner(nil).Execute(context.Background(), Options{Source: src, Output: out, Policy: compose.DefaultPolicy()})
	if !errors.Is(err, errors.ErrCodeEmptyInput) {
		t.Errorf("Execute error = %v, want EMPTY_INPUT", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("no output should be written when nothing decodes")
	}
}

func TestExecuteEmptySource(t *testing.T) {
	_, err := NewRunner(nil).Execute(context.Background(), Options{Source: t.TempDir(), Policy: compose.DefaultPolicy()})
	if !errors.Is(err, errors.ErrCodeEmptyInput) {
		t.Errorf("Execute error = %v, want EMPTY_INPUT", err)
	}
}

func TestExecuteCanceled(t *testing.T) {
	src := t.TempDir()
	writeImages(t, src, [2]int{10, 10}, [2]int{10, 10})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := filepath.Join(t.TempDir(), "out.png")
	_, err := NewRunner(nil).Execute(ctx, Options{Source: src, Output: out, Policy: compose.DefaultPolicy()})
	if err != context.Canceled {
		t.Errorf("Execute error = %v, want context.Canceled", err)
	}
}

func TestExecuteDryRun(t *testing.T) {
	src := t.TempDir()
	files := writeImages(t, src, [2]int{64, 48}, [2]int{64, 48}, [2]int{64, 48}, [2]int{64, 48})
	out := filepath.Join(t.TempDir(), "out.png")

	p := compose.DefaultPolicy()
	p.Ratio = compose.RatioKeep
	p.MaxWidth = compose.IntPtr(32)
	res, err := NewRunner(nil).Execute(context.Background(), Options{
		Files:  files,
		Output: out,
		Policy: p,
		DryRun: true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Composite != nil || res.Output != "" {
		t.Error("dry run should not compose or write")
	}
	if res.Layout.Target != (compose.Dimensions{Width: 32, Height: 24}) {
		t.Errorf("Target = %+v, want 32x24", res.Layout.Target)
	}
	if len(res.Layout.Rows) != 2 || res.Layout.Rows[0] != 3 || res.Layout.Rows[1] != 1 {
		t.Errorf("Rows = %v, want [3 1]", res.Layout.Rows)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("dry run wrote output")
	}
}

func TestExecuteDeterministicAcrossWorkers(t *testing.T) {
	src := t.TempDir()
	writeImages(t, src, [2]int{31, 17}, [2]int{12, 40}, [2]int{25, 25}, [2]int{60, 9}, [2]int{8, 8})
	dir := t.TempDir()

	run := func(workers int) *Result {
		p := compose.DefaultPolicy()
		p.Ratio = compose.RatioKeep
		p.OutputSize = compose.OutputCover
		p.PerRow = 2
		p.Workers = workers
		res, err := NewRunner(nil).Execute(context.Background(), Options{
			Source: src,
			Output: filepath.Join(dir, "out.png"),
			Policy: p,
		})
		if err != nil {
			t.Fatalf("Execute(workers=%d): %v", workers, err)
		}
		return res
	}

	seq, par := run(0), run(4)
	if !seq.Composite.Equal(par.Composite) {
		t.Error("parallel run produced a different composite")
	}
}

func TestExecuteCallsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	src := t.TempDir()
	writeImages(t, src, [2]int{10, 10})
	out := filepath.Join(t.TempDir(), "out.png")
	if _, err := NewRunner(nil).Execute(context.Background(), Options{Source: src, Output: out, Policy: compose.DefaultPolicy()}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []string{"decode-start", "decode", "compose-start", "compose", "encode-start", "encode"}
	if len(hooks.events) != len(want) {
		t.Fatalf("events = %v, want %v", hooks.events, want)
	}
	for i := range want {
		if hooks.events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, hooks.events[i], want[i])
		}
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) add(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnDecodeStart(context.Context, int) { h.add("decode-start") }
func (h *recordingHooks) OnDecodeComplete(context.Context, int, int, time.Duration, error) {
	h.add("decode")
}
func (h *recordingHooks) OnComposeStart(context.Context, int, int) { h.add("compose-start") }
func (h *recordingHooks) OnComposeComplete(context.Context, int, int, time.Duration, error) {
	h.add("compose")
}
func (h *recordingHooks) OnEncodeStart(context.Context, string) { h.add("encode-start") }
func (h *recordingHooks) OnEncodeComplete(context.Context, string, time.Duration, error) {
	h.add("encode")
}
