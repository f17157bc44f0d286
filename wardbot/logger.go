package wardbot

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// logger is the minimal logging interface shared by the database layer and the bot
type logger interface {
	Log(args ...interface{})
	LogError(msg string, err error)
}

// ZeroLogger routes bot diagnostics through a zerolog logger
type ZeroLogger struct {
	log zerolog.Logger
}

// NewZeroLogger creates a console logger, with debug-level output when requested
func NewZeroLogger(debug bool) *ZeroLogger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).Level(level).With().Timestamp().Logger()
	return &ZeroLogger{l}
}

// Log writes an informational message
func (l *ZeroLogger) Log(args ...interface{}) {
	l.log.Info().Msg(fmt.Sprint(args...))
}

// LogError writes an error with the given context message, ignoring nil errors
func (l *ZeroLogger) LogError(msg string, err error) {
	if err != nil {
		l.log.Error().Err(err).Msg(msg)
	}
}
