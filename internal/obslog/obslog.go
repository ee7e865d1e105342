// Package obslog provides the structured logging used across the module.
package obslog

import (
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	logger  = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
)

// SetDefault replaces the package-level logger. Callers embedding this
// module in a larger application should call this once at startup.
func SetDefault(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// For returns a logger scoped to a single component, e.g. "locate" or
// "netlogon".
func For(component string) *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger.With("component", component)
}
