// log прокладывает request-scoped *slog.Logger через context.Context:
// middleware шлюза кладут логгер с request_id и сессией, клиент и сервисы достают его.
package log

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// Into кладёт логгер в контекст.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// From достаёт логгер из контекста; без него или при nil возвращает slog.Default().
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}

	return slog.Default()
}

// With дополняет логгер контекста атрибутами и возвращает новый контекст вместе с логгером.
func With(ctx context.Context, args ...any) (context.Context, *slog.Logger) {
	l := From(ctx).With(args...)
	return Into(ctx, l), l
}
