// Package log15adapter provides a logger that writes to a
// gopkg.in/inconshreveable/log15.v2.Logger.
package log15adapter

import (
	"context"

	"github.com/jackc/pgpipe"
	log "gopkg.in/inconshreveable/log15.v2"
)

// Logger adapts a log15.Logger to the pgpipe.Logger interface.
type Logger struct {
	l log.Logger
}

// NewLogger wraps l.
func NewLogger(l log.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level pgpipe.LogLevel, msg string, data map[string]any) {
	logArgs := make([]any, 0, len(data)*2)
	for k, v := range data {
		logArgs = append(logArgs, k, v)
	}

	switch level {
	case pgpipe.LogLevelTrace:
		logArgs = append(logArgs, "PGPIPE_LOG_LEVEL", level)
		l.l.Debug(msg, logArgs...)
	case pgpipe.LogLevelDebug:
		l.l.Debug(msg, logArgs...)
	case pgpipe.LogLevelInfo:
		l.l.Info(msg, logArgs...)
	case pgpipe.LogLevelWarn:
		l.l.Warn(msg, logArgs...)
	case pgpipe.LogLevelError:
		l.l.Error(msg, logArgs...)
	default:
		logArgs = append(logArgs, "INVALID_PGPIPE_LOG_LEVEL", level)
		l.l.Error(msg, logArgs...)
	}
}
