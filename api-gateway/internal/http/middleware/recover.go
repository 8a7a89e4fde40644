package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	apierrors "github.com/pribylovaa/go-food-delivery/api-gateway/internal/errors"
	"github.com/pribylovaa/go-food-delivery/pkg/log"
)

var errPanic = errors.New("panic")

// Recover превращает панику хендлера в 500 с конвертом ошибки.
// http.ErrAbortHandler пробрасывается дальше: это штатный обрыв ответа.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.From(r.Context()).Error("http_panic",
					slog.String("op", "middleware/Recover"),
					slog.String("path", r.URL.Path),
					slog.Any("reason", rec),
					slog.String("stack", string(debug.Stack())),
				)

				apierrors.WriteError(w, r, errPanic)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
