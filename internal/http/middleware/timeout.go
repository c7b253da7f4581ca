package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout ограничивает обработку запроса временем d (включая обновление токенов и повтор).
// Более ранний дедлайн входящего контекста сохраняется. d<=0 — без ограничения.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
