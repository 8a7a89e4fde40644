package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/go-food-delivery/api-gateway/internal/errors"
)

type requestIDKey struct{}

// maxRequestIDLen - входящий id длиннее считается мусором и заменяется.
const maxRequestIDLen = 128

// RequestID гарантирует X-Request-Id: берёт входящий или генерирует UUIDv4.
// id кладётся в заголовки запроса и ответа и в контекст.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(apierrors.HeaderRequestID)
			if id == "" || len(id) > maxRequestIDLen {
				id = uuid.NewString()
				r.Header.Set(apierrors.HeaderRequestID, id)
			}

			w.Header().Set(apierrors.HeaderRequestID, id)

			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFrom возвращает id запроса или "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)

	return id
}
