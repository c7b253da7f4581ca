package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore хранит пары браузерных сессий gateway.
// Ключ — prefix+sessionID, значение — Redis Hash с полями at/rt и TTL.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Пустой prefix — "portal:cred:", ttl <= 0 — DefaultTTL.
func NewRedisStore(ctx context.Context, redisURL, prefix string, ttl time.Duration) (*RedisStore, error) {
	const op = "credentials.NewRedisStore"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return NewRedisStoreFromClient(rdb, prefix, ttl), nil
}

// NewRedisStoreFromClient оборачивает готовый клиент.
func NewRedisStoreFromClient(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "portal:cred:"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

// ForSession возвращает Store для одной сессии.
func (s *RedisStore) ForSession(id string) Store {
	return &redisSession{st: s, key: s.prefix + id}
}

// Close закрывает клиент Redis.
func (s *RedisStore) Close() error { return s.rdb.Close() }

type redisSession struct {
	st  *RedisStore
	key string
}

func (r *redisSession) Get(ctx context.Context) (Pair, error) {
	const op = "credentials.RedisStore.Get"

	m, err := r.st.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return Pair{}, fmt.Errorf("%s: %w", op, err)
	}

	p := Pair{AccessToken: m["at"], RefreshToken: m["rt"]}
	if p.IsZero() {
		return Pair{}, ErrNotFound
	}

	return p, nil
}

func (r *redisSession) Set(ctx context.Context, p Pair) error {
	const op = "credentials.RedisStore.Set"

	pipe := r.st.rdb.TxPipeline()
	pipe.Del(ctx, r.key)
	pipe.HSet(ctx, r.key, map[string]string{"at": p.AccessToken, "rt": p.RefreshToken})
	pipe.Expire(ctx, r.key, r.st.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *redisSession) Clear(ctx context.Context) error {
	const op = "credentials.RedisStore.Clear"

	if err := r.st.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
