package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/pharma-portal/internal/credentials"
)

// fakeBackend — REST-бэкенд для тестов клиента:
//   - /orders/history отвечает 200, если запрос несёт validToken (Bearer или cookie), иначе 401
//     (rejectAll — всегда 401);
//   - /auth/refresh выдаёт next и делает его валидным либо отвечает refreshStatus;
//   - /missing и /boom — 404 и 500 с сообщениями в формате бэкенда.
type fakeBackend struct {
	srv *httptest.Server

	mu            sync.Mutex
	validToken    string
	next          credentials.Pair
	refreshStatus int
	cookieMode    bool
	rejectAll     bool
	authHeaders   []string
	refreshBodies []string

	// holdRefresh выполняется перед ответом /auth/refresh.
	holdRefresh func()

	refreshCalls  atomic.Int32
	resourceCalls atomic.Int32
	unauthorized  atomic.Int32
}

type order struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

var historyBody = []order{{ID: 1, Status: "shipped"}, {ID: 2, Status: "pending"}}

func newBackend(t *testing.T, validToken string) *fakeBackend {
	t.Helper()

	b := &fakeBackend{
		validToken: validToken,
		next:       credentials.Pair{AccessToken: "at-new", RefreshToken: "rt-new"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/orders/history", b.history)
	mux.HandleFunc("/auth/refresh", b.refresh)
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		writeBody(w, http.StatusNotFound, `{"statusCode":404,"message":"Product not found","error":"Not Found"}`)
	})
	mux.HandleFunc("/boom", func(w http.ResponseWriter, _ *http.Request) {
		writeBody(w, http.StatusInternalServerError, `{"message":["db down","retry later"]}`)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)

	return b
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (b *fakeBackend) history(w http.ResponseWriter, r *http.Request) {
	b.resourceCalls.Add(1)

	auth := r.Header.Get("Authorization")

	b.mu.Lock()
	b.authHeaders = append(b.authHeaders, auth)
	valid := b.validToken
	rejectAll := b.rejectAll
	b.mu.Unlock()

	ok := auth == "Bearer "+valid
	if c, err := r.Cookie(credentials.AccessTokenName); err == nil && c.Value == valid {
		ok = true
	}
	if rejectAll {
		ok = false
	}

	if !ok {
		b.unauthorized.Add(1)
		writeBody(w, http.StatusUnauthorized, `{"statusCode":401,"message":"Unauthorized"}`)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(historyBody)
}

func (b *fakeBackend) refresh(w http.ResponseWriter, r *http.Request) {
	b.refreshCalls.Add(1)

	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.refreshBodies = append(b.refreshBodies, strings.TrimSpace(string(body)))
	status := b.refreshStatus
	next := b.next
	cookieMode := b.cookieMode
	hold := b.holdRefresh
	b.mu.Unlock()

	if hold != nil {
		hold()
	}

	if status != 0 {
		writeBody(w, status, `{"statusCode":401,"message":"Invalid refresh token"}`)
		return
	}

	b.mu.Lock()
	b.validToken = next.AccessToken
	b.mu.Unlock()

	if cookieMode {
		http.SetCookie(w, &http.Cookie{Name: credentials.AccessTokenName, Value: next.AccessToken, Path: "/", HttpOnly: true})
		http.SetCookie(w, &http.Cookie{Name: credentials.RefreshTokenName, Value: next.RefreshToken, Path: "/", HttpOnly: true})
		writeBody(w, http.StatusOK, `{}`)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"accessToken":  next.AccessToken,
		"refreshToken": next.RefreshToken,
		"user":         map[string]string{"id": "u-1", "email": "doctor@clinic.test"},
	})
}

// set меняет поведение бэкенда под мьютексом.
func (b *fakeBackend) set(fn func(*fakeBackend)) {
	b.mu.Lock()
	fn(b)
	b.mu.Unlock()
}

func (b *fakeBackend) setRefreshStatus(status int) {
	b.set(func(b *fakeBackend) { b.refreshStatus = status })
}

func (b *fakeBackend) headers() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string(nil), b.authHeaders...)
}

func (b *fakeBackend) bodies() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string(nil), b.refreshBodies...)
}

// newTestClient — клиент на собственном транспорте, чтобы после теста закрыть keep-alive соединения.
func newTestClient(t *testing.T, b *fakeBackend, store credentials.Store, mutate func(*Options)) *Client {
	t.Helper()

	tr := &http.Transport{}
	t.Cleanup(tr.CloseIdleConnections)

	opts := Options{
		BaseURL:    b.srv.URL,
		HTTPClient: &http.Client{Transport: tr},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if mutate != nil {
		mutate(&opts)
	}

	c, err := New(opts, store)
	require.NoError(t, err)

	return c
}

// capHandler — тестовый slog.Handler: запоминает сообщения и атрибуты последней записи.
type capHandler struct {
	mu    sync.Mutex
	base  []slog.Attr
	msgs  []string
	attrs map[string]any
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]any, len(h.base)+8)
	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})

	h.msgs = append(h.msgs, r.Message)
	h.attrs = out

	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.base = append(h.base, attrs...)
	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func (h *capHandler) messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]string(nil), h.msgs...)
}
