// Package logrusadapter provides a logger that writes to a
// github.com/sirupsen/logrus.Logger.
package logrusadapter

import (
	"context"

	"github.com/jackc/pgpipe"
	"github.com/sirupsen/logrus"
)

// Logger adapts a logrus.FieldLogger to the pgpipe.Logger interface.
type Logger struct {
	l logrus.FieldLogger
}

// NewLogger wraps l.
func NewLogger(l logrus.FieldLogger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level pgpipe.LogLevel, msg string, data map[string]any) {
	var logger logrus.FieldLogger
	if data != nil {
		logger = l.l.WithFields(logrus.Fields(data))
	} else {
		logger = l.l
	}

	switch level {
	case pgpipe.LogLevelTrace:
		logger.WithField("PGPIPE_LOG_LEVEL", level).Debug(msg)
	case pgpipe.LogLevelDebug:
		logger.Debug(msg)
	case pgpipe.LogLevelInfo:
		logger.Info(msg)
	case pgpipe.LogLevelWarn:
		logger.Warn(msg)
	case pgpipe.LogLevelError:
		logger.Error(msg)
	default:
		logger.WithField("INVALID_PGPIPE_LOG_LEVEL", level).Error(msg)
	}
}
