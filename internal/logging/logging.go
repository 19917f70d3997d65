// Package logging provides radioflow's structured logger: a single
// *zap.SugaredLogger built once and shared, with per-run correlation
// fields attached via With rather than recreated per call site.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once   sync.Once
	logger *zap.SugaredLogger
)

// NewLogger returns the process-wide structured logger. It is safe to call
// repeatedly; the underlying zap.Logger is built once.
func NewLogger() *zap.SugaredLogger {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.TimeKey = "ts"
		z, err := cfg.Build()
		if err != nil {
			logger = zap.NewNop().Sugar()
			return
		}
		logger = z.Sugar()
	})
	return logger
}

// With returns a child logger tagged with the given key/value pairs,
// typically a run id and/or node id.
func With(kv ...any) *zap.SugaredLogger {
	return NewLogger().With(kv...)
}
