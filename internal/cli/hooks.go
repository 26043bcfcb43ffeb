package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treewalk/pkg/observability"
)

// logHooks writes observability events as debug log lines.
type logHooks struct {
	observability.NoopRenderHooks
	logger *log.Logger
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
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

func (h *logHooks) OnRenderComplete(_ context.Context, nodes int, d time.Duration, err error) {
	if err != nil {
		return
	}
	h.logger.Debug("layout computed", "nodes", nodes, "duration", d.Round(time.Microsecond))
}

func (h *logHooks) OnAnimationStart(_ context.Context, sessionID string, steps int) {
	h.logger.Debug("animation started", "session", sessionID, "steps", steps)
}

func (h *logHooks) OnAnimationStep(_ context.Context, sessionID string, step int, node string) {
	h.logger.Debug("animation step", "session", sessionID, "step", step, "node", node)
}

func (h *logHooks) OnAnimationEnd(_ context.Context, sessionID, state string, err error) {
	if err != nil {
		h.logger.Debug("animation ended", "session", sessionID, "state", state, "err", err)
		return
	}
	h.logger.Debug("animation ended", "session", sessionID, "state", state)
}
