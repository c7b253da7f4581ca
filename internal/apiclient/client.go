// apiclient — HTTP-клиент REST-бэкенда портала с прозрачным обновлением токенов.
//
// Протокол для одного логического запроса:
//  1. запрос уходит с текущим access-токеном (bearer-header) или с cookie (cookie);
//  2. 401 на первой попытке: дескриптор помечается retried, расходуется одна попытка
//     из Budget и вызывается POST /auth/refresh;
//  3. успех: новая пара сохраняется в credentials.Store, Budget обнуляется,
//     исходный запрос повторяется ровно один раз;
//  4. отказ обновления или исчерпанный Budget: хранилище очищается,
//     дальше действует Policy (redirect / return-empty / throw).
//
// Любой другой статус, 401 на повторе и 401 анонимного запроса возвращаются
// как *HTTPError без изменений.
// Конкурентные обновления схлопываются в один вызов /auth/refresh (singleflight).
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"reflect"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pribylovaa/pharma-portal/internal/apiclient/interceptors"
	"github.com/pribylovaa/pharma-portal/internal/credentials"
	logctx "github.com/pribylovaa/pharma-portal/pkg/log"
)

// maxBodySize — предел чтения тела ответа.
const maxBodySize = 10 << 20

const refreshKey = "refresh"

// Client — аутентифицированный клиент бэкенда. Безопасен для конкурентного использования.
type Client struct {
	opts   Options
	base   *url.URL
	store  credentials.Store
	hc     *http.Client
	budget *Budget
	sf     *singleflight.Group
}

// New собирает клиент. store обязателен: клиент не держит токены у себя.
func New(opts Options, store credentials.Store) (*Client, error) {
	const op = "apiclient.New"

	if store == nil {
		return nil, fmt.Errorf("%s: nil credentials store", op)
	}

	opts.applyDefaults()
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%s: base url %q must be absolute", op, opts.BaseURL)
	}

	hc, err := buildHTTPClient(opts, store)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Client{
		opts:   opts,
		base:   base,
		store:  store,
		hc:     hc,
		budget: opts.Budget,
		sf:     &singleflight.Group{},
	}, nil
}

// buildHTTPClient копирует базовый клиент и навешивает цепочку интерсепторов.
// Для cookie-транспорта нужен jar (withCredentials): берётся из CookieStore
// или создаётся новый.
func buildHTTPClient(opts Options, store credentials.Store) (*http.Client, error) {
	hc := &http.Client{}
	if opts.HTTPClient != nil {
		*hc = *opts.HTTPClient
	}

	if hc.Jar == nil {
		if cs, ok := store.(*credentials.CookieStore); ok {
			hc.Jar = cs.Jar()
		} else if opts.CredentialTransport == TransportCookie {
			jar, err := cookiejar.New(nil)
			if err != nil {
				return nil, err
			}
			hc.Jar = jar
		}
	}

	hc.Transport = interceptors.Chain(hc.Transport,
		interceptors.WithMetadata(opts.UserAgent),
		interceptors.WithTimeout(opts.Timeout),
		interceptors.Logging(opts.Logger),
	)

	return hc, nil
}

// WithPolicy возвращает клиент с другой политикой терминального отказа.
// Хранилище, Budget, singleflight и http.Client общие с исходным.
func (c *Client) WithPolicy(p Policy, r Redirector) (*Client, error) {
	const op = "apiclient.Client.WithPolicy"

	opts := c.opts
	opts.OnUnauthorized = p
	if r != nil {
		opts.Redirector = r
	}
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cp := *c
	cp.opts = opts

	return &cp, nil
}

// Budget — счётчик попыток обновления этого клиента.
func (c *Client) Budget() *Budget { return c.budget }

// Policy — текущая политика терминального отказа.
func (c *Client) Policy() Policy { return c.opts.OnUnauthorized }

// Store — хранилище учётных данных клиента.
func (c *Client) Store() credentials.Store { return c.store }

// Call — типизированная обёртка над Do.
func Call[T any](ctx context.Context, c *Client, req *Request) (T, error) {
	var out T
	err := c.Do(ctx, req, &out)

	return out, err
}

// Do выполняет запрос и декодирует JSON-ответ 2xx в out (nil — тело отбрасывается).
//
// При PolicyReturnEmpty терминальный отказ возвращает nil, а *out обнуляется.
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	const op = "apiclient.Client.Do"

	if req == nil {
		return fmt.Errorf("%s: %w: nil request", op, ErrInvalidRequest)
	}
	if err := req.prepare(); err != nil {
		return err
	}

	log := c.logger(ctx).With(
		slog.String("op", op),
		slog.String("method", req.Method),
		slog.String("path", req.Path),
	)
	st := &tracker{log: log, state: StateInitial}

	token, err := c.accessToken(ctx)
	if err != nil {
		st.to(StateFailure)
		return fmt.Errorf("%s: %w", op, err)
	}

	st.to(StateSent)
	resp, err := c.send(ctx, req, token)
	if err != nil {
		st.to(StateFailure)
		return err
	}

	if resp.StatusCode != http.StatusUnauthorized || req.retried || req.Anonymous {
		return c.finish(st, req, resp, out)
	}

	st.to(StateAuthFailed)
	drain(resp)
	req.retried = true

	st.to(StateRefreshing)
	pair, err := c.refreshForRetry(ctx)
	if err != nil {
		if !isTerminal(err) {
			st.to(StateFailure)
			return err
		}

		st.to(StateTerminalFailure)
		return c.terminal(ctx, log, err, out)
	}

	token = ""
	if c.opts.CredentialTransport == TransportBearer {
		token = pair.AccessToken
	}

	st.to(StateRetrySent)
	resp, err = c.send(ctx, req, token)
	if err != nil {
		st.to(StateFailure)
		return err
	}

	return c.finish(st, req, resp, out)
}

func (c *Client) logger(ctx context.Context) *slog.Logger {
	if c.opts.Logger != nil {
		return c.opts.Logger
	}

	return logctx.From(ctx)
}

// accessToken — токен для Authorization или "" (cookie-транспорт, токена нет).
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.opts.CredentialTransport != TransportBearer {
		return "", nil
	}

	p, err := c.store.Get(ctx)
	if err != nil {
		if errors.Is(err, credentials.ErrNotFound) {
			return "", nil
		}

		return "", err
	}

	return p.AccessToken, nil
}

func (c *Client) send(ctx context.Context, req *Request, token string) (*http.Response, error) {
	const op = "apiclient.Client.send"

	hr, err := req.build(ctx, c.base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if token != "" {
		hr.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.hc.Do(hr)
	if err != nil {
		c.opts.Metrics.observeRequest(req.Method, 0, time.Since(start))
		return nil, &NetworkError{Method: req.Method, Path: req.Path, Err: err}
	}
	c.opts.Metrics.observeRequest(req.Method, resp.StatusCode, time.Since(start))

	return resp, nil
}

// finish читает тело, превращает не-2xx в *HTTPError и декодирует успешный ответ.
func (c *Client) finish(st *tracker, req *Request, resp *http.Response, out any) error {
	const op = "apiclient.Client.finish"

	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		st.to(StateFailure)
		return &NetworkError{Method: req.Method, Path: req.Path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		st.to(StateFailure)
		return newHTTPError(req.Method, req.Path, resp.StatusCode, body)
	}

	st.to(StateSuccess)

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode %s %s: %w", op, req.Method, req.Path, err)
	}

	return nil
}

// terminal очищает хранилище и применяет Policy.
func (c *Client) terminal(ctx context.Context, log *slog.Logger, cause error, out any) error {
	if err := c.store.Clear(ctx); err != nil {
		log.Warn("credentials_clear_failed", slog.String("err", err.Error()))
	}

	c.opts.Metrics.observeReauth()
	log.Info("reauth_required",
		slog.String("policy", string(c.opts.OnUnauthorized)),
		slog.String("cause", cause.Error()),
	)

	rerr := &ReauthError{Cause: cause}

	switch c.opts.OnUnauthorized {
	case PolicyRedirect:
		if err := c.opts.Redirector.Redirect(ctx, c.opts.SignInURL); err != nil {
			log.Warn("redirect_failed", slog.String("err", err.Error()))
		}
		return rerr
	case PolicyReturnEmpty:
		resetOut(out)
		return nil
	default:
		return rerr
	}
}

// resetOut обнуляет значение, на которое указывает out.
func resetOut(out any) {
	if out == nil {
		return
	}

	v := reflect.ValueOf(out)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v.Elem().SetZero()
	}
}

// drain дочитывает и закрывает тело, чтобы соединение вернулось в пул.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
	_ = resp.Body.Close()
}

// tracker ведёт состояние логического запроса и пишет переходы в лог.
type tracker struct {
	log   *slog.Logger
	state State
}

func (t *tracker) to(s State) {
	t.log.Debug("request_state",
		slog.String("from", t.state.String()),
		slog.String("to", s.String()),
	)
	t.state = s
}
