// Package log provides the structured logger used across mdb-index-sync.
//
// It is a thin layer over zerolog: a scoped [Logger] obtained with [New] or [Ctx],
// printf-style helpers, and [Attr] values that attach namespace, index, count and
// duration fields.
package log

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a scoped zerolog logger.
type Logger struct {
	zl *zerolog.Logger
}

// Attr adds fields to a logger context.
type Attr func(zerolog.Context) zerolog.Context

// InitGlobals configures the global logger writing to stderr and returns it.
// The returned logger is also the fallback for [Ctx] when a context carries none.
func InitGlobals(level zerolog.Level, json, noColor bool) *Logger {
	return initGlobals(os.Stderr, level, json, noColor)
}

func initGlobals(w io.Writer, level zerolog.Level, json, noColor bool) *Logger {
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if !json {
		w = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    noColor,
			TimeFormat: "2006-01-02 15:04:05.000",
		}
	}

	zl := zerolog.New(w).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &zl

	return &Logger{zl: &zl}
}

// New returns the global logger with the scope field set.
func New(scope string) *Logger {
	base := zerolog.DefaultContextLogger
	if base == nil {
		nop := zerolog.Nop()
		base = &nop
	}

	zl := base.With().Str("s", scope).Logger()

	return &Logger{zl: &zl}
}

// Ctx returns the logger stored in ctx, or the global logger.
func Ctx(ctx context.Context) *Logger {
	return &Logger{zl: zerolog.Ctx(ctx)}
}

// With returns a child logger with the attributes added.
func (l *Logger) With(attrs ...Attr) *Logger {
	c := l.zl.With()
	for _, attr := range attrs {
		c = attr(c)
	}

	zl := c.Logger()

	return &Logger{zl: &zl}
}

// WithContext returns a copy of ctx carrying the logger.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.zl.WithContext(ctx)
}

// Zerolog exposes the underlying logger.
func (l *Logger) Zerolog() *zerolog.Logger {
	return l.zl
}

func (l *Logger) Trace(msg string) {
	l.zl.Trace().Msg(msg)
}

func (l *Logger) Tracef(format string, args ...any) {
	l.zl.Trace().Msgf(format, args...)
}

func (l *Logger) Debug(msg string) {
	l.zl.Debug().Msg(msg)
}

func (l *Logger) Debugf(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

func (l *Logger) Info(msg string) {
	l.zl.Info().Msg(msg)
}

func (l *Logger) Infof(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

func (l *Logger) Warn(msg string) {
	l.zl.Warn().Msg(msg)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs msg at error level with err attached. err may be nil.
func (l *Logger) Error(err error, msg string) {
	l.zl.Error().Err(err).Msg(msg)
}

// Errorf logs a formatted message at error level with err attached.
func (l *Logger) Errorf(err error, format string, args ...any) {
	l.zl.Error().Err(err).Msgf(format, args...)
}

// DebugErr logs msg at debug level with err attached.
func (l *Logger) DebugErr(err error, msg string) {
	l.zl.Debug().Err(err).Msg(msg)
}

// Scope sets the scope field.
func Scope(s string) Attr {
	return func(c zerolog.Context) zerolog.Context {
		return c.Str("s", s)
	}
}

// NS sets the namespace field. An empty coll logs the database only.
func NS(db, coll string) Attr {
	ns := db
	if coll != "" {
		ns += "." + coll
	}

	return func(c zerolog.Context) zerolog.Context {
		return c.Str("ns", ns)
	}
}

// Index sets the index name field.
func Index(name string) Attr {
	return func(c zerolog.Context) zerolog.Context {
		return c.Str("index", name)
	}
}

// Count sets the count field.
func Count(n int64) Attr {
	return func(c zerolog.Context) zerolog.Context {
		return c.Int64("count", n)
	}
}

// Elapsed sets the elapsed duration field in milliseconds.
func Elapsed(d time.Duration) Attr {
	return func(c zerolog.Context) zerolog.Context {
		return c.Int64("elapsed_ms", d.Milliseconds())
	}
}
