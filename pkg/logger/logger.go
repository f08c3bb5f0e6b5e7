// Package logger wraps zerolog with context-carried fields. Middleware tags
// the request context once and every later log call inherits those fields.
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

type Options struct {
	ServiceName string
	Level       zerolog.Level
	WarnStack   bool
	// Format is FormatJSON (default) or FormatConsole.
	Format string
	Output io.Writer
}

type Logger struct {
	root      zerolog.Logger
	warnStack bool
}

func New(opts Options) *Logger {
	w := opts.Output
	if w == nil {
		w = os.Stdout
	}
	if strings.EqualFold(strings.TrimSpace(opts.Format), FormatConsole) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	level := opts.Level
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	root := zerolog.New(w).Level(level).With().Timestamp().Str("service", opts.ServiceName).Logger()
	return &Logger{root: root, warnStack: opts.WarnStack}
}

// ParseLevel maps a config string to a zerolog level. Unknown values give info.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// scoped is the logger stored on a context by the With* helpers.
type scoped struct{}

func (l *Logger) current(ctx context.Context) zerolog.Logger {
	if ctx != nil {
		if zl, ok := ctx.Value(scoped{}).(zerolog.Logger); ok {
			return zl
		}
	}
	return l.root
}

func (l *Logger) extend(ctx context.Context, add func(zerolog.Context) zerolog.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scoped{}, add(l.current(ctx).With()).Logger())
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.extend(ctx, func(c zerolog.Context) zerolog.Context { return c.Interface(key, value) })
}

func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	return l.extend(ctx, func(c zerolog.Context) zerolog.Context { return c.Fields(fields) })
}

func (l *Logger) tag(ctx context.Context, key, value string) context.Context {
	return l.extend(ctx, func(c zerolog.Context) zerolog.Context { return c.Str(key, value) })
}

func (l *Logger) WithRequestID(ctx context.Context, id string) context.Context {
	return l.tag(ctx, "request_id", id)
}

func (l *Logger) WithAdminID(ctx context.Context, id string) context.Context {
	return l.tag(ctx, "admin_id", id)
}

func (l *Logger) WithCustomerID(ctx context.Context, id string) context.Context {
	return l.tag(ctx, "customer_id", id)
}

func (l *Logger) WithOrderID(ctx context.Context, id string) context.Context {
	return l.tag(ctx, "order_id", id)
}

func (l *Logger) WithFeedProductID(ctx context.Context, id string) context.Context {
	return l.tag(ctx, "feed_product_id", id)
}

// WithActorRole records whether an admin, a customer or the system acted.
func (l *Logger) WithActorRole(ctx context.Context, role string) context.Context {
	return l.tag(ctx, "actor_role", role)
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	zl := l.current(ctx)
	zl.Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	zl := l.current(ctx)
	zl.Info().Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	zl := l.current(ctx)
	ev := zl.Warn()
	if l.warnStack {
		ev = ev.Str("stack", stack())
	}
	ev.Msg(msg)
}

// Error always carries a stack. Typed errors also log their code.
func (l *Logger) Error(ctx context.Context, msg string, err error) {
	zl := l.current(ctx)
	ev := zl.Error().Str("stack", stack())
	if err != nil {
		ev = ev.Err(err)
		if typed := pkgerrors.As(err); typed != nil {
			ev = ev.Str("error_code", string(typed.Code()))
		}
	}
	ev.Msg(msg)
}

func stack() string {
	return strings.TrimSpace(string(debug.Stack()))
}
