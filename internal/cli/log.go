package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/datamapper/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, rounded to the millisecond.
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logHooks reports engine events to the CLI logger at debug level.
type logHooks struct {
	logger *log.Logger
}

func installHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetBuildHooks(h)
	observability.SetMutationHooks(h)
	observability.SetStoreHooks(h)
	observability.SetCacheHooks(h)
}

func (h *logHooks) OnBuildStart(_ context.Context, root string) {}

func (h *logHooks) OnBuildComplete(_ context.Context, root string, nodes, links, errs int, d time.Duration) {
	h.logger.Debug("build", "root", root, "nodes", nodes, "links", links, "errors", errs, "elapsed", d)
}

func (h *logHooks) OnMutationStart(_ context.Context, op, target string) {
	h.logger.Debug("mutation start", "op", op, "target", target)
}

func (h *logHooks) OnMutationComplete(_ context.Context, op, target string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("mutation failed", "op", op, "target", target, "elapsed", d, "err", err)
		return
	}
	h.logger.Debug("mutation done", "op", op, "target", target, "elapsed", d)
}

func (h *logHooks) OnLoad(_ context.Context, backend, root string, d time.Duration, err error) {
	h.logger.Debug("store load", "backend", backend, "root", root, "elapsed", d, "err", err)
}

func (h *logHooks) OnSave(_ context.Context, backend, root string, size int, d time.Duration, err error) {
	h.logger.Debug("store save", "backend", backend, "root", root, "bytes", size, "elapsed", d, "err", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
