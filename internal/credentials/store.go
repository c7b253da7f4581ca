// credentials — хранилище пары access/refresh токенов клиента портала.
//
// HTTP-клиент (internal/apiclient) никогда не держит собственную копию пары дольше
// одного вызова: он читает и пишет её только через интерфейс Store.
//
// Реализации:
//   - MemoryStore — в памяти процесса (тесты, короткоживущие утилиты);
//   - CookieStore — поверх http.CookieJar, привязанного к базовому URL бэкенда;
//   - FileStore — JSON-файл с правами 0600 (CLI);
//   - RedisStore — по одной записи на браузерную сессию (portal-gateway).
package credentials

import (
	"context"
	"errors"
	"time"
)

// Имена значений совпадают с именами cookie, которые выставляет и читает бэкенд.
const (
	AccessTokenName  = "accessToken"
	RefreshTokenName = "refreshToken"
)

// DefaultTTL — срок жизни сохранённой пары (многодневные cookie).
const DefaultTTL = 7 * 24 * time.Hour

// ErrNotFound — в хранилище нет ни одного токена.
var ErrNotFound = errors.New("credentials not found")

// Pair — пара токенов.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// IsZero — в паре нет ни одного токена.
func (p Pair) IsZero() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// Store — контракт хранилища пары токенов.
type Store interface {
	// Get возвращает текущую пару или ErrNotFound.
	Get(ctx context.Context) (Pair, error)
	// Set перезаписывает пару целиком.
	Set(ctx context.Context, p Pair) error
	// Clear удаляет оба значения; отсутствие записи ошибкой не считается.
	Clear(ctx context.Context) error
}

// Sessions выдаёт Store, привязанный к идентификатору сессии.
type Sessions interface {
	ForSession(id string) Store
}

// Forgetter — Sessions, которые держат пары в памяти процесса и должны
// забывать сессию вместе с её клиентом. RedisStore полагается на TTL ключей.
type Forgetter interface {
	Forget(id string)
}
