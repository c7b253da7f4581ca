package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/pharma-portal/internal/credentials"
	"github.com/pribylovaa/pharma-portal/pkg/redact"
)

// refreshResponse — ответ /auth/refresh. Бэкенд отдаёт camelCase, часть ручек — snake_case.
type refreshResponse struct {
	AccessToken     string          `json:"accessToken"`
	RefreshToken    string          `json:"refreshToken"`
	AccessTokenAlt  string          `json:"access_token"`
	RefreshTokenAlt string          `json:"refresh_token"`
	User            json.RawMessage `json:"user,omitempty"`
}

func (r refreshResponse) pair() credentials.Pair {
	p := credentials.Pair{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
	if p.AccessToken == "" {
		p.AccessToken = r.AccessTokenAlt
	}
	if p.RefreshToken == "" {
		p.RefreshToken = r.RefreshTokenAlt
	}

	return p
}

// Refresh явно обновляет пару токенов (например, перед повторной загрузкой профиля).
// Budget не расходуется, но вызов разделяется с обновлениями из Do (singleflight).
// Хранилище при отказе не очищается: решение за вызывающим кодом.
func (c *Client) Refresh(ctx context.Context) (credentials.Pair, error) {
	return c.shared(ctx, func(ctx context.Context) (credentials.Pair, error) {
		p, err := c.refresh(ctx)
		if err != nil {
			c.opts.Metrics.observeRefresh(refreshFailure)
			return credentials.Pair{}, err
		}

		c.budget.Reset()
		c.opts.Metrics.observeRefresh(refreshSuccess)

		return p, nil
	})
}

// refreshForRetry — обновление из Do после первого 401, с учётом Budget.
func (c *Client) refreshForRetry(ctx context.Context) (credentials.Pair, error) {
	return c.shared(ctx, func(ctx context.Context) (credentials.Pair, error) {
		log := c.logger(ctx)

		// Без refresh-токена обновлять нечем: попытка не засчитывается.
		if err := c.ensureRefreshToken(ctx); err != nil {
			if errors.Is(err, ErrNoRefreshToken) {
				c.opts.Metrics.observeRefresh(refreshSkipped)
				log.Warn("refresh_skipped", slog.String("err", err.Error()))
			}
			return credentials.Pair{}, err
		}

		if !c.budget.acquire(c.opts.MaxRefreshAttempts) {
			c.opts.Metrics.observeRefresh(refreshSkipped)
			log.Warn("refresh_skipped", slog.Int("max_attempts", c.opts.MaxRefreshAttempts))
			return credentials.Pair{}, ErrRefreshBudgetExhausted
		}

		p, err := c.refresh(ctx)
		if err != nil {
			if c.opts.ResetBudgetOnRefreshFailure {
				c.budget.Reset()
			}
			c.opts.Metrics.observeRefresh(refreshFailure)
			return credentials.Pair{}, err
		}

		c.budget.Reset()
		c.opts.Metrics.observeRefresh(refreshSuccess)

		return p, nil
	})
}

// ensureRefreshToken проверяет, что в bearer-режиме в хранилище есть refresh-токен.
// В cookie-режиме токен лежит в HttpOnly cookie, и проверить его нельзя.
func (c *Client) ensureRefreshToken(ctx context.Context) error {
	if c.opts.CredentialTransport != TransportBearer {
		return nil
	}

	cur, err := c.store.Get(ctx)
	if err != nil && !errors.Is(err, credentials.ErrNotFound) {
		return fmt.Errorf("apiclient: reading credentials: %w", err)
	}
	if cur.RefreshToken == "" {
		return ErrNoRefreshToken
	}

	return nil
}

// shared выполняет fn не более одного раза для всех одновременных вызовов.
// Каждый ожидающий уважает свой ctx; сама операция не отменяется, если один из них ушёл.
func (c *Client) shared(ctx context.Context, fn func(context.Context) (credentials.Pair, error)) (credentials.Pair, error) {
	detached := context.WithoutCancel(ctx)

	ch := c.sf.DoChan(refreshKey, func() (any, error) {
		return fn(detached)
	})

	select {
	case <-ctx.Done():
		return credentials.Pair{}, fmt.Errorf("apiclient: waiting for refresh: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return credentials.Pair{}, res.Err
		}

		return res.Val.(credentials.Pair), nil
	}
}

// refresh вызывает POST /auth/refresh и сохраняет полученную пару.
func (c *Client) refresh(ctx context.Context) (credentials.Pair, error) {
	const op = "apiclient.Client.refresh"

	log := c.logger(ctx).With(slog.String("op", op))
	log.Info("refresh_started", slog.String("transport", string(c.opts.CredentialTransport)))

	var body any = struct{}{}
	if c.opts.CredentialTransport == TransportBearer {
		cur, err := c.store.Get(ctx)
		if err != nil && !errors.Is(err, credentials.ErrNotFound) {
			return credentials.Pair{}, fmt.Errorf("%s: %w", op, err)
		}
		if cur.RefreshToken == "" {
			log.Warn("refresh_failed", slog.String("err", ErrNoRefreshToken.Error()))
			return credentials.Pair{}, fmt.Errorf("%s: %w", op, ErrNoRefreshToken)
		}
		body = map[string]string{"refreshToken": cur.RefreshToken}
	}

	req := Post(c.opts.RefreshPath, body)
	if err := req.prepare(); err != nil {
		return credentials.Pair{}, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.send(ctx, req, "")
	if err != nil {
		log.Warn("refresh_failed", slog.String("err", err.Error()))
		return credentials.Pair{}, fmt.Errorf("%s: %w: %w", op, ErrRefreshRejected, err)
	}

	var rr refreshResponse
	st := &tracker{log: log, state: StateSent}
	if err := c.finish(st, req, resp, &rr); err != nil {
		log.Warn("refresh_failed", slog.String("err", err.Error()))
		return credentials.Pair{}, fmt.Errorf("%s: %w: %w", op, ErrRefreshRejected, err)
	}

	p := rr.pair()
	switch {
	case p.AccessToken != "":
		if err := c.store.Set(ctx, p); err != nil {
			return credentials.Pair{}, fmt.Errorf("%s: %w", op, err)
		}
	case c.opts.CredentialTransport == TransportCookie:
		// Токены пришли только в Set-Cookie и уже лежат в jar.
		p, _ = c.store.Get(ctx)
	default:
		log.Warn("refresh_failed", slog.String("err", "no access token in response"))
		return credentials.Pair{}, fmt.Errorf("%s: %w: no access token in response", op, ErrRefreshRejected)
	}

	attrs := []any{slog.String("access_token", redact.Token(p.AccessToken))}
	if claims, err := credentials.ParseClaims(p.AccessToken); err == nil && !claims.ExpiresAt.IsZero() {
		attrs = append(attrs, slog.Time("access_exp", claims.ExpiresAt))
	}
	log.Info("refresh_succeeded", attrs...)

	return p, nil
}

// isTerminal — ошибка обновления ведёт к очистке хранилища и Policy.
// Уход ожидающего по своему ctx и сбои самого хранилища терминальными не считаются.
func isTerminal(err error) bool {
	return errors.Is(err, ErrRefreshRejected) ||
		errors.Is(err, ErrRefreshBudgetExhausted) ||
		errors.Is(err, ErrNoRefreshToken)
}
