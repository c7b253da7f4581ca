package credentials

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// CookieStore хранит пару в http.CookieJar под именами accessToken/refreshToken.
//
// Тот же jar используется HTTP-клиентом (withCredentials), поэтому Set-Cookie,
// выставленные бэкендом при /auth/refresh, сразу видны через Get.
type CookieStore struct {
	jar  http.CookieJar
	base *url.URL
	ttl  time.Duration
	now  func() time.Time
}

// NewCookieStore привязывает jar к базовому URL бэкенда. ttl <= 0 — DefaultTTL.
func NewCookieStore(jar http.CookieJar, baseURL string, ttl time.Duration) (*CookieStore, error) {
	const op = "credentials.NewCookieStore"

	if jar == nil {
		return nil, fmt.Errorf("%s: nil cookie jar", op)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: base url %q must be absolute", op, baseURL)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &CookieStore{
		jar:  jar,
		base: &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"},
		ttl:  ttl,
		now:  time.Now,
	}, nil
}

// Jar — jar, в котором живут cookie; его же нужно отдать http.Client.
func (s *CookieStore) Jar() http.CookieJar { return s.jar }

func (s *CookieStore) Get(_ context.Context) (Pair, error) {
	var p Pair
	for _, c := range s.jar.Cookies(s.base) {
		switch c.Name {
		case AccessTokenName:
			p.AccessToken = c.Value
		case RefreshTokenName:
			p.RefreshToken = c.Value
		}
	}

	if p.IsZero() {
		return Pair{}, ErrNotFound
	}

	return p, nil
}

func (s *CookieStore) Set(_ context.Context, p Pair) error {
	expires := s.now().Add(s.ttl)

	s.jar.SetCookies(s.base, []*http.Cookie{
		s.cookie(AccessTokenName, p.AccessToken, expires),
		s.cookie(RefreshTokenName, p.RefreshToken, expires),
	})

	return nil
}

func (s *CookieStore) Clear(_ context.Context) error {
	s.jar.SetCookies(s.base, []*http.Cookie{
		{Name: AccessTokenName, Path: "/", MaxAge: -1},
		{Name: RefreshTokenName, Path: "/", MaxAge: -1},
	})

	return nil
}

// cookie — пустое значение превращается в удаление cookie.
func (s *CookieStore) cookie(name, value string, expires time.Time) *http.Cookie {
	if value == "" {
		return &http.Cookie{Name: name, Path: "/", MaxAge: -1}
	}

	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		SameSite: http.SameSiteLaxMode,
	}
}
