// Package logger provides a thin wrapper around zerolog.Logger with
// context-aware helpers used throughout the service.
package logger

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog"
)

// Logger embeds zerolog.Logger so the full zerolog API is available while the
// application can hang helpers off its own type.
type Logger struct {
	zerolog.Logger
}

// New constructs a JSON stdout logger tagged with the given role label
// (e.g. "server", "migrate") for filtering multi-process deployments.
func New(role string) *Logger {
	l := zerolog.New(os.Stdout).With().
		Str("role", role).
		Timestamp().
		Logger()
	return &Logger{l}
}

// Nop returns a Logger that discards everything. For tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

type ctxKey struct{}

// WithContext returns a context carrying l for request-scoped logging.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or a Nop logger so call sites
// never have to nil-check.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return Nop()
}

// FromRequest returns the logger carried by the request context.
func FromRequest(r *http.Request) *Logger {
	return FromContext(r.Context())
}
