package control

import (
	"github.com/google/uuid"

	"radioflow/internal/logging"
)

// zapLogger is a thin Context-scoped wrapper so every log line this
// package emits carries the run's correlation id without every call
// site repeating it.
type zapLogger struct {
	s sugared
}

type sugared = loggerIface

// loggerIface is the subset of *zap.SugaredLogger's API this package
// calls, kept narrow so tests can swap in a no-op logger if needed.
type loggerIface interface {
	Infow(msg string, kv ...any)
}

func newZapLogger(id uuid.UUID) *zapLogger {
	return &zapLogger{s: logging.With("run_id", id.String())}
}

func (l *zapLogger) Infow(msg string, kv ...any) { l.s.Infow(msg, kv...) }
