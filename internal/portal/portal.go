// portal — клиенты и состояние сессий шлюза.
//
// Каждая сессия браузера (cookie portal_sid) получает собственный apiclient.Client
// со своим Budget и хранилищем пары токенов, а поверх него ресурсные API и сервисы.
// Порталы живут в Registry и вытесняются после простоя; пара токенов при этом
// остаётся в Redis и подхватывается при следующем запросе. Хранилище в памяти
// процесса забывается вместе с порталом.
package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pribylovaa/pharma-portal/internal/api"
	"github.com/pribylovaa/pharma-portal/internal/apiclient"
	"github.com/pribylovaa/pharma-portal/internal/credentials"
	"github.com/pribylovaa/pharma-portal/internal/service"
)

// DefaultIdle — простой, после которого портал сессии вытесняется.
const DefaultIdle = 30 * time.Minute

// Portal — всё, что нужно обработчикам одной сессии.
type Portal struct {
	ID string

	// API — ручки с политикой throw (JSON API шлюза).
	API *api.API
	// Pages — те же ручки с политикой redirect (страницы).
	Pages *api.API

	Session    *service.Session
	Storefront *service.Storefront

	client   *apiclient.Client
	lastSeen atomic.Int64
}

// Client — клиент сессии (Budget, хранилище).
func (p *Portal) Client() *apiclient.Client { return p.client }

func (p *Portal) touch(now time.Time) { p.lastSeen.Store(now.UnixNano()) }

// Registry создаёт и кэширует порталы по идентификатору сессии.
type Registry struct {
	opts     apiclient.Options
	sessions credentials.Sessions
	idle     time.Duration
	now      func() time.Time

	mu    sync.Mutex
	items map[string]*Portal
}

// NewRegistry — opts задают общие параметры клиентов (BaseURL, транспорт, метрики...);
// Budget и Redirector у каждой сессии свои. idle<=0 — DefaultIdle.
//
// В cookie-транспорте пара живёт в cookie jar сессии (в памяти процесса),
// в bearer-header — в sessions.
func NewRegistry(opts apiclient.Options, sessions credentials.Sessions, idle time.Duration) (*Registry, error) {
	const op = "portal.NewRegistry"

	if sessions == nil && opts.CredentialTransport != apiclient.TransportCookie {
		return nil, fmt.Errorf("%s: nil sessions", op)
	}
	if idle <= 0 {
		idle = DefaultIdle
	}

	return &Registry{
		opts:     opts,
		sessions: sessions,
		idle:     idle,
		now:      time.Now,
		items:    make(map[string]*Portal),
	}, nil
}

// Get возвращает портал сессии, создавая его при первом обращении.
func (r *Registry) Get(id string) (*Portal, error) {
	const op = "portal.Registry.Get"

	if id == "" {
		return nil, fmt.Errorf("%s: empty session id", op)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if p, ok := r.items[id]; ok {
		p.touch(now)
		return p, nil
	}

	p, err := r.build(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.touch(now)
	r.items[id] = p

	return p, nil
}

// Drop забывает портал сессии (после выхода).
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	delete(r.items, id)
	r.forget(id)
	r.mu.Unlock()
}

// Len — число живых порталов.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.items)
}

// Sweep вытесняет порталы, простаивающие дольше idle; возвращает их число.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idle).UnixNano()
	n := 0
	for id, p := range r.items {
		if p.lastSeen.Load() < cutoff {
			delete(r.items, id)
			r.forget(id)
			n++
		}
	}

	return n
}

// forget освобождает пару сессии, если она живёт в памяти процесса.
// Вызывается под r.mu.
func (r *Registry) forget(id string) {
	if f, ok := r.sessions.(credentials.Forgetter); ok {
		f.Forget(id)
	}
}

// Run периодически вызывает Sweep до отмены ctx.
func (r *Registry) Run(ctx context.Context, log *slog.Logger) {
	t := time.NewTicker(r.idle / 2)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				log.Debug("portal_sweep", slog.Int("evicted", n), slog.Int("alive", r.Len()))
			}
		}
	}
}

func (r *Registry) build(id string) (*Portal, error) {
	store, err := r.store(id)
	if err != nil {
		return nil, err
	}

	opts := r.opts
	opts.Budget = nil
	opts.OnUnauthorized = apiclient.PolicyThrow
	opts.Redirector = PageRedirector

	c, err := apiclient.New(opts, store)
	if err != nil {
		return nil, err
	}

	throwing, err := api.New(c)
	if err != nil {
		return nil, err
	}

	redirecting, err := c.WithPolicy(apiclient.PolicyRedirect, PageRedirector)
	if err != nil {
		return nil, err
	}
	pages, err := api.New(redirecting)
	if err != nil {
		return nil, err
	}

	return &Portal{
		ID:         id,
		API:        throwing,
		Pages:      pages,
		Session:    service.NewSession(throwing.Auth, store),
		Storefront: service.NewStorefront(throwing.Products),
		client:     c,
	}, nil
}

func (r *Registry) store(id string) (credentials.Store, error) {
	if r.opts.CredentialTransport == apiclient.TransportCookie {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}

		return credentials.NewCookieStore(jar, r.opts.BaseURL, credentials.DefaultTTL)
	}

	return r.sessions.ForSession(id), nil
}

// ErrNoSink — редирект запрошен вне страницы.
var ErrNoSink = errors.New("no redirect sink in context")

// Sink запоминает адрес редиректа, запрошенного клиентом во время обработки страницы.
type Sink struct {
	mu       sync.Mutex
	location string
}

func (s *Sink) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.location
}

type sinkKey struct{}

// WithSink кладёт в контекст новый Sink.
func WithSink(ctx context.Context) (context.Context, *Sink) {
	s := &Sink{}
	return context.WithValue(ctx, sinkKey{}, s), s
}

// PageRedirector записывает адрес в Sink из контекста; сам ответ пишет обработчик страницы.
var PageRedirector apiclient.Redirector = apiclient.RedirectorFunc(func(ctx context.Context, location string) error {
	s, ok := ctx.Value(sinkKey{}).(*Sink)
	if !ok {
		return ErrNoSink
	}

	s.mu.Lock()
	if s.location == "" {
		s.location = location
	}
	s.mu.Unlock()

	return nil
})

type ctxKey struct{}

// Into кладёт портал запроса в контекст.
func Into(ctx context.Context, p *Portal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// From достаёт портал запроса; nil, если Session-мидлвар не подключён.
func From(ctx context.Context) *Portal {
	p, _ := ctx.Value(ctxKey{}).(*Portal)
	return p
}

// FromRequest — From для *http.Request.
func FromRequest(r *http.Request) *Portal { return From(r.Context()) }
