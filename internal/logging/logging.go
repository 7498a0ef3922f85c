// Package logging provides the small structured-logging wrapper every
// protocol role (Bob, Tumbler, Alice) uses to report FSM progress and
// session-fatal errors, grounded on the teacher's pkg/cbmpc/logging Logger
// interface and Redacted() attribute helper.
package logging

import (
	"context"
	"log/slog"
)

const redactedPlaceholder = "[redacted]"

// Logger is the subset of slog functionality a session handler depends on.
// The interface is intentionally small so tests can swap in a recording
// implementation without dragging in slog's full surface.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}

// New returns a Logger backed by the given slog.Logger. Passing nil binds to
// slog.Default().
func New(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogLogger{logger: logger}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

func (l *slogLogger) Info(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

func (l *slogLogger) Error(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...)}
}

// Redacted marks an attribute whose real value must never reach a log line,
// e.g. a scalar witness or a Paillier secret key component.
func Redacted(key string) slog.Attr {
	return slog.String(key, redactedPlaceholder)
}

// Phase returns a "phase" attribute naming an FSM transition (e.g.
// "S1_PromiseStarted->S2_AwaitPromiseSign"), in the same form as
// a2lerr.Error's Phase field. The role packages' current log lines do not
// attach it.
func Phase(name string) slog.Attr {
	return slog.String("phase", name)
}
