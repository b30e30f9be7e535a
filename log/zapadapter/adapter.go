// Package zapadapter provides a logger that writes to a go.uber.org/zap.Logger.
package zapadapter

import (
	"context"

	"github.com/jackc/pgpipe"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger adapts a zap.Logger to the pgpipe.Logger interface.
type Logger struct {
	logger *zap.Logger
}

// NewLogger wraps logger.
func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (pl *Logger) Log(ctx context.Context, level pgpipe.LogLevel, msg string, data map[string]any) {
	fields := make([]zapcore.Field, len(data))
	i := 0
	for k, v := range data {
		fields[i] = zap.Any(k, v)
		i++
	}

	switch level {
	case pgpipe.LogLevelTrace:
		pl.logger.Debug(msg, append(fields, zap.Stringer("PGPIPE_LOG_LEVEL", level))...)
	case pgpipe.LogLevelDebug:
		pl.logger.Debug(msg, fields...)
	case pgpipe.LogLevelInfo:
		pl.logger.Info(msg, fields...)
	case pgpipe.LogLevelWarn:
		pl.logger.Warn(msg, fields...)
	case pgpipe.LogLevelError:
		pl.logger.Error(msg, fields...)
	default:
		pl.logger.Error(msg, append(fields, zap.Stringer("INVALID_PGPIPE_LOG_LEVEL", level))...)
	}
}
