// Package log keeps the slog.Logger of a texmath operation in its context.
package log

import (
	"context"
	stdlog "log"
	"os"
	"testing"

	"cdr.dev/slog"
	"cdr.dev/slog/sloggers/sloghuman"
	"cdr.dev/slog/sloggers/slogtest"

	"oss.terrastruct.com/texmath/lib/env"
)

// _default serves contexts that never went through Stderr or WithTB, such as a library
// caller's context.Background().
var _default = newStderr().Named("texmath")

func init() {
	stdlog.SetOutput(slog.Stdlib(context.Background(), _default, slog.LevelInfo).Writer())
}

type loggerKey struct{}

func from(ctx context.Context) slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(slog.Logger); ok {
		return l
	}
	return _default
}

func with(ctx context.Context, l slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func newStderr() slog.Logger {
	l := slog.Make(sloghuman.Sink(os.Stderr))
	if env.Debug() {
		l = l.Leveled(slog.LevelDebug)
	}
	return l
}

// Stderr returns a context logging human readable lines to stderr and routes the
// standard library logger through it. DEBUG=1 enables debug logs.
func Stderr(ctx context.Context) context.Context {
	l := newStderr()
	stdlog.SetOutput(slog.Stdlib(ctx, l, slog.LevelInfo).Writer())
	return with(ctx, l)
}

// WithTB logs to t. Entries at error level fail the test unless opts ignore them.
func WithTB(ctx context.Context, t testing.TB, opts *slogtest.Options) context.Context {
	l := slogtest.Make(t, opts)
	if env.Debug() {
		l = l.Leveled(slog.LevelDebug)
	}
	return with(ctx, l)
}

func Leveled(ctx context.Context, level slog.Level) context.Context {
	return with(ctx, from(ctx).Leveled(level))
}

func Debug(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	from(ctx).Debug(ctx, msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	from(ctx).Info(ctx, msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	from(ctx).Warn(ctx, msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	from(ctx).Error(ctx, msg, fields...)
}
