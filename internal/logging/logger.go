// Package logging defines the structured logger the sync reconciler, the
// apply pipeline and the fiber server log through. The slog adapter is the
// only implementation; the interface keeps tests free to discard output.
package logging

import "context"

// Logger is a context-aware structured logger. Variadic args are slog-style
// alternating keys and values:
//
//	log.Info(ctx, "sync pass complete", "pushed", n, "device", code)
type Logger interface {
	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions, such as a rejected
	// operation that will be retried.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger carrying the given key-value pairs on
	// every record.
	With(args ...any) Logger
}
