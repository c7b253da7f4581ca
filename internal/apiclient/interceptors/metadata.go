package interceptors

import (
	"net/http"
)

// WithMetadata добавляет в исходящий запрос:
//   - X-Request-Id (если есть в контексте и не задан явно);
//   - User-Agent (если передан параметром).
func WithMetadata(userAgent string) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			rid, _ := r.Context().Value(CtxRequestID).(string)
			needRID := rid != "" && r.Header.Get(HeaderRequestID) == ""

			if !needRID && userAgent == "" {
				return next.RoundTrip(r)
			}

			r = r.Clone(r.Context())
			if needRID {
				r.Header.Set(HeaderRequestID, rid)
			}
			if userAgent != "" {
				r.Header.Set("User-Agent", userAgent)
			}

			return next.RoundTrip(r)
		})
	}
}
