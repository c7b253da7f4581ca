package middleware

import (
	"net/http"
	"strings"

	"github.com/pribylovaa/pharma-portal/internal/portal"
)

// GuardOptions — защищённые страницы и страницы входа.
type GuardOptions struct {
	SignInURL string
	HomeURL   string
	Protected []string
	AuthPages []string
}

// DefaultGuard — /cart, /profile, /dashboard требуют входа; /signin и /signup — только без него.
func DefaultGuard() GuardOptions {
	return GuardOptions{
		SignInURL: "/signin",
		HomeURL:   "/",
		Protected: []string{"/cart", "/profile", "/dashboard"},
		AuthPages: []string{"/signin", "/signup"},
	}
}

// Guard перенаправляет по наличию access-токена в сессии:
//   - без токена на защищённую страницу - 302 на SignInURL;
//   - с токеном на страницу входа - 302 на HomeURL.
//
// Срок токена не проверяется: просроченный токен обновит клиент при первом запросе.
// Требует Session выше по цепочке.
func Guard(opts GuardOptions) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			protected := underAny(path, opts.Protected)
			authPage := underAny(path, opts.AuthPages)

			if !protected && !authPage {
				next.ServeHTTP(w, r)
				return
			}

			authed := false
			if p := portal.FromRequest(r); p != nil {
				authed = p.Session.Authenticated(r.Context())
			}

			switch {
			case protected && !authed:
				http.Redirect(w, r, opts.SignInURL, http.StatusFound)
			case authPage && authed:
				http.Redirect(w, r, opts.HomeURL, http.StatusFound)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// underAny — path совпадает с одним из корней или вложен в него по границе сегмента:
// /cart и /cart/items да, /cartography нет.
func underAny(path string, roots []string) bool {
	for _, root := range roots {
		root = strings.TrimSuffix(root, "/")
		if path == root || strings.HasPrefix(path, root+"/") {
			return true
		}
	}
	return false
}
