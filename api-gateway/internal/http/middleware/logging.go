package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/go-food-delivery/pkg/log"
)

// Logging кладёт в контекст логгер запроса (с request_id) и пишет итог:
// 5xx - error, 4xx - warn, остальное - info.
func Logging(l *slog.Logger) Middleware {
	if l == nil {
		l = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rl := l
			if id := RequestIDFrom(r.Context()); id != "" {
				rl = rl.With(slog.String("request_id", id))
			}

			r = r.WithContext(log.Into(r.Context(), rl))

			sw := wrap(w)
			start := time.Now()
			next.ServeHTTP(sw, r)

			rl.LogAttrs(r.Context(), levelFor(sw.Status()), "http_request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.Status()),
				slog.Int("bytes", sw.bytes),
				slog.Duration("dur", time.Since(start)),
			)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
