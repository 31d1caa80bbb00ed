package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/catimg/pkg/observability"
)

// logHooks reports pipeline stage timings at debug level.
type logHooks struct {
	logger *log.Logger
}

// NewLogHooks returns pipeline hooks that log through l.
func NewLogHooks(l *log.Logger) observability.PipelineHooks {
	return logHooks{logger: l}
}

func (h logHooks) OnDecodeStart(_ context.Context, files int) {
	h.logger.Debug("decode started", "files", files)
}

func (h logHooks) OnDecodeComplete(_ context.Context, decoded, skipped int, d time.Duration, err error) {
	h.done("decode", err, "images", decoded, "skipped", skipped, "duration", d)
}

func (h logHooks) OnComposeStart(_ context.Context, images, perRow int) {
	h.logger.Debug("compose started", "images", images, "per_row", perRow)
}

func (h logHooks) OnComposeComplete(_ context.Context, width, height int, d time.Duration, err error) {
	h.done("compose", err, "width", width, "height", height, "duration", d)
}

func (h logHooks) OnEncodeStart(_ context.Context, path string) {
	h.logger.Debug("encode started", "path", path)
}

func (h logHooks) OnEncodeComplete(_ context.Context, path string, d time.Duration, err error) {
	h.done("encode", err, "path", path, "duration", d)
}

func (h logHooks) done(stage string, err error, kv ...any) {
	if err != nil {
		h.logger.Debug(stage+" failed", append(kv, "err", err)...)
		return
	}
	h.logger.Debug(stage+" finished", kv...)
}
