package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var console atomic.Bool

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger writes to stderr so that predictions printed on stdout
// stay machine readable.
func NewZerologLogger(component string) Logger {
	return NewZerologLoggerTo(os.Stderr, component)
}

// NewZerologLoggerTo is NewZerologLogger writing to w. Every entry carries the
// component field.
func NewZerologLoggerTo(w io.Writer, component string) Logger {
	if console.Load() {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

// Configure sets the global minimum level and the output format of loggers
// created afterwards. format is "json" or "console"; empty values keep the
// current setting.
func Configure(level, format string) error {
	if err := SetLevel(level); err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case "":
	case "json":
		console.Store(false)
	case "console":
		console.Store(true)
	default:
		return fmt.Errorf("invalid log format %q", format)
	}
	return nil
}

// SetLevel sets the global minimum level, one of debug, info, warn, error
// or disabled. An empty level keeps the current one.
func SetLevel(level string) error {
	if level == "" {
		return nil
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(l)
	return nil
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

// Debugw logs msg with fields. Fields are added in sorted order by zerolog's
// Fields helper.
func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
