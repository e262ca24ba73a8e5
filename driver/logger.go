// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler silently discards all log records.
// Enabled returns false so callers skip message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// loggerPtr stores the package's active logger.
// Accessed atomically so SetLogger can be called concurrently
// with logging from any goroutine, including backend packages.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by package driver and by
// every registered backend (driver/vk, driver/dx12).
// By default the core produces no log output. Debug builds are
// expected to call SetLogger and install a driver validation
// callback that routes messages here (spec.md §7).
//
// SetLogger is safe for concurrent use. Passing nil restores the
// silent default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the logger currently in use.
// Backend packages call this instead of keeping their own
// logger so that a single SetLogger call reconfigures all of
// them without introducing an import cycle.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
