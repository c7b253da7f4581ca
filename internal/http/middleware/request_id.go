package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/pharma-portal/internal/apiclient/interceptors"
)

// maxRequestIDLen — длиннее входящий X-Request-Id не принимается и заменяется своим.
const maxRequestIDLen = 128

// RequestID берёт X-Request-Id входящего запроса или выдаёт новый (uuid без дефисов)
// и отражает его в ответе, в заголовке запроса и в контексте (interceptors.CtxRequestID):
// оттуда его забирает клиент бэкенда, так что id сквозной до REST-бэкенда.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(interceptors.HeaderRequestID)
			if id == "" || len(id) > maxRequestIDLen {
				id = strings.ReplaceAll(uuid.NewString(), "-", "")
				r.Header.Set(interceptors.HeaderRequestID, id)
			}
			w.Header().Set(interceptors.HeaderRequestID, id)

			ctx := context.WithValue(r.Context(), interceptors.CtxRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
