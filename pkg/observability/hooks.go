// Package observability provides hooks for metrics, tracing, and logging.
//
// The compositing pipeline reports decode, compose and encode events through
// a small hook registry instead of depending on a particular backend.
// Consumers register hooks at startup; the defaults do nothing.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnDecodeStart(ctx, len(files))
//	// ... decode ...
//	observability.Pipeline().OnDecodeComplete(ctx, decoded, skipped, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the compositing pipeline.
type PipelineHooks interface {
	// Decode events
	OnDecodeStart(ctx context.Context, files int)
	OnDecodeComplete(ctx context.Context, decoded, skipped int, duration time.Duration, err error)

	// Compose events. Width and height are zero when composition failed.
	OnComposeStart(ctx context.Context, images, perRow int)
	OnComposeComplete(ctx context.Context, width, height int, duration time.Duration, err error)

	// Encode events
	OnEncodeStart(ctx context.Context, path string)
	OnEncodeComplete(ctx context.Context, path string, duration time.Duration, err error)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnDecodeStart(context.Context, int)                                {}
func (NoopPipelineHooks) OnDecodeComplete(context.Context, int, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnComposeStart(context.Context, int, int)                          {}
func (NoopPipelineHooks) OnComposeComplete(context.Context, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnEncodeStart(context.Context, string)                             {}
func (NoopPipelineHooks) OnEncodeComplete(context.Context, string, time.Duration, error)    {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Reset restores the no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
}
