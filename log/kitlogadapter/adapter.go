// Package kitlogadapter provides a logger that writes to a
// github.com/go-kit/log.Logger.
package kitlogadapter

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jackc/pgpipe"
)

// Logger adapts a go-kit logger to the pgpipe.Logger interface.
type Logger struct {
	l log.Logger
}

// NewLogger wraps l.
func NewLogger(l log.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, lvl pgpipe.LogLevel, msg string, data map[string]any) {
	logger := l.l
	for k, v := range data {
		logger = log.With(logger, k, v)
	}

	switch lvl {
	case pgpipe.LogLevelTrace:
		logger.Log("PGPIPE_LOG_LEVEL", lvl, "msg", msg)
	case pgpipe.LogLevelDebug:
		level.Debug(logger).Log("msg", msg)
	case pgpipe.LogLevelInfo:
		level.Info(logger).Log("msg", msg)
	case pgpipe.LogLevelWarn:
		level.Warn(logger).Log("msg", msg)
	case pgpipe.LogLevelError:
		level.Error(logger).Log("msg", msg)
	default:
		level.Error(logger).Log("INVALID_PGPIPE_LOG_LEVEL", lvl, "msg", msg)
	}
}
