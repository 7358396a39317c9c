// Package logging holds the engine-wide structured logger.
//
// By default the engine produces no log output. Call SetLogger with a configured
// *zap.Logger to enable it; every engine package reads the logger through Logger so a
// single call reconfigures all of them.
package logging

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// loggerPtr stores the active logger. Accessed atomically so that SetLogger can be called
// from setup code while the presence client goroutine is already logging.
var loggerPtr atomic.Pointer[zap.Logger]

func init() {
	loggerPtr.Store(zap.NewNop())
}

// SetLogger configures the logger used by the engine and all its sub-packages.
// Pass nil to restore the silent default.
//
// Log levels used by the engine:
//   - Debug: per-frame diagnostics (uniform uploads, buffer roles)
//   - Info: lifecycle events (program created, window opened, client joined)
//   - Warn: non-fatal lookup failures (unknown program, unknown uniform)
//   - Error: shader compile/link failures and transport errors
//
// Parameters:
//   - l: the logger to install, or nil to disable logging
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l)
}

// Logger returns the current engine logger. It never returns nil.
//
// Returns:
//   - *zap.Logger: the active logger
func Logger() *zap.Logger {
	return loggerPtr.Load()
}

// Named returns a child of the current logger scoped to the given subsystem name.
//
// Parameters:
//   - name: the subsystem name, e.g. "renderer" or "presence"
//
// Returns:
//   - *zap.Logger: the named child logger
func Named(name string) *zap.Logger {
	return Logger().Named(name)
}
