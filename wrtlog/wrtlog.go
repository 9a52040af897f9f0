// Package wrtlog holds the process-wide *zap.Logger that the engine and
// component packages log through, defaulting to a no-op logger. This mirrors
// wippyai-wasm-runtime's linker.Logger()/linker.SetLogger() pattern: a
// package-level logger that callers may override before doing any work,
// never a required constructor argument.
package wrtlog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu     sync.RWMutex
	logger *zap.Logger = zap.NewNop()
)

// Logger returns the process-wide logger used by the engine and
// component packages.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger installs l as the process-wide logger. Call before
// instantiating any engine or component manager; changing it mid-run is
// safe but may interleave log lines from concurrent instances.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}
