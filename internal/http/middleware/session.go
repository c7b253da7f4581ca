package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/pharma-portal/internal/errors"
	"github.com/pribylovaa/pharma-portal/internal/portal"
	logctx "github.com/pribylovaa/pharma-portal/pkg/log"
	"github.com/pribylovaa/pharma-portal/pkg/redact"
)

// SessionOptions — параметры cookie сессии шлюза.
type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session находит (или заводит) сессию по cookie и кладёт её портал в контекст.
// Новая сессия получает uuid и HttpOnly cookie.
func Session(reg *portal.Registry, opts SessionOptions) Middleware {
	if opts.CookieName == "" {
		opts.CookieName = "portal_sid"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(opts.CookieName); err == nil && validSessionID(c.Value) {
				id = c.Value
			}

			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     opts.CookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(opts.TTL / time.Second),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			p, err := reg.Get(id)
			if err != nil {
				logctx.From(r.Context()).Error("session_init_failed", slog.String("err", err.Error()))
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := portal.Into(r.Context(), p)
			ctx, _ = logctx.With(ctx, slog.String("session", redact.SessionID(id)))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validSessionID — принимаем только uuid, чтобы произвольная строка не стала ключом в Redis.
func validSessionID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}
