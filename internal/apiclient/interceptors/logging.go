package interceptors

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	logctx "github.com/pribylovaa/pharma-portal/pkg/log"
)

// Logging — логирование исходящих запросов.
// Поведение:
//   - берёт X-Request-Id из запроса (или генерирует UUID и добавляет заголовок);
//   - кладёт обогащённый логгер (request_id, method, path) в контекст запроса;
//   - пишет одну итоговую запись уровня Info: msg="http_client", status, dur.
//
// base == nil — логгер берётся из контекста запроса (pkg/log).
// Не логирует тело и заголовки Authorization/Cookie.
func Logging(base *slog.Logger) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			lg := base
			if lg == nil {
				lg = logctx.From(r.Context())
			}

			rid := r.Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}

			l := lg.With(
				slog.String("request_id", rid),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)

			r = r.Clone(logctx.Into(r.Context(), l))
			r.Header.Set(HeaderRequestID, rid)

			resp, err := next.RoundTrip(r)
			if err != nil {
				l.Warn("http_client",
					slog.String("status", "-"),
					slog.Duration("dur", time.Since(start)),
					slog.String("err", err.Error()),
				)
				return nil, err
			}

			l.Info("http_client",
				slog.Int("status", resp.StatusCode),
				slog.Duration("dur", time.Since(start)),
			)

			return resp, nil
		})
	}
}
