// Package logger wraps zerolog with the job/phase-scoped fields the rest of
// the pipeline needs.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a thin wrapper around zerolog.Logger so call sites depend on
// this package rather than zerolog directly.
type Logger struct {
	zl zerolog.Logger
}

// Config controls the process-wide logger.
type Config struct {
	Level  string
	Pretty bool
}

// New builds a Logger from Config. With Pretty set it writes human-readable
// console output (useful for local development); otherwise it writes JSON.
func New(cfg Config) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// With returns a child logger carrying the given key/value pair, used to
// scope every subsequent log line to a job, phase, or scenario.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.event(l.zl.Debug(), msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.event(l.zl.Info(), msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.event(l.zl.Warn(), msg, kv...) }

// Error logs msg with err attached under the "error" field.
func (l *Logger) Error(msg string, err error, kv ...interface{}) {
	l.event(l.zl.Error().Err(err), msg, kv...)
}

func (l *Logger) event(e *zerolog.Event, msg string, kv ...interface{}) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}

var defaultLogger = New(Config{Level: "info"})

// Default returns the process-wide logger.
func Default() *Logger { return defaultLogger }

// SetDefault replaces the process-wide logger, normally called once at
// startup after config.Load().
func SetDefault(l *Logger) { defaultLogger = l }
