// log переносит request-scoped *slog.Logger через context.Context.
//
// Логгер кладётся в контекст на входе в обработчик (HTTP-мидлвар, интерсептор
// очереди) и достаётся глубже по стеку через From. Если логгера в контексте нет,
// используется slog.Default(), поэтому From никогда не возвращает nil.
package log

import (
	"context"
	"io"
	"log/slog"
)

type ctxKey struct{}

// Into кладёт логгер в контекст.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From достаёт логгер из контекста (или возвращает slog.Default()).
func From(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}

	return slog.Default()
}

// With обогащает логгер из контекста атрибутами и кладёт результат обратно.
// Удобно, когда нужно и вернуть новый ctx, и сразу писать в обогащённый логгер.
func With(ctx context.Context, args ...any) (context.Context, *slog.Logger) {
	l := From(ctx).With(args...)
	return Into(ctx, l), l
}

// Discard возвращает логгер, который ничего не пишет (тесты, no-op зависимости).
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
