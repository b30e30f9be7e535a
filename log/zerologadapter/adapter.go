// Package zerologadapter provides a logger that writes to a
// github.com/rs/zerolog.
package zerologadapter

import (
	"context"

	"github.com/jackc/pgpipe"
	"github.com/rs/zerolog"
)

// Logger adapts a zerolog.Logger to the pgpipe.Logger interface.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger accepts a zerolog.Logger as input and returns a new custom pgpipe
// logging facade as output.
func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{
		logger: logger.With().Str("module", "pgpipe").Logger(),
	}
}

func (pl *Logger) Log(ctx context.Context, level pgpipe.LogLevel, msg string, data map[string]any) {
	var zlevel zerolog.Level
	switch level {
	case pgpipe.LogLevelNone:
		zlevel = zerolog.NoLevel
	case pgpipe.LogLevelError:
		zlevel = zerolog.ErrorLevel
	case pgpipe.LogLevelWarn:
		zlevel = zerolog.WarnLevel
	case pgpipe.LogLevelInfo:
		zlevel = zerolog.InfoLevel
	default:
		zlevel = zerolog.DebugLevel
	}

	pgpipelog := pl.logger.With().Fields(data).Logger()
	pgpipelog.WithLevel(zlevel).Msg(msg)
}
