package credentials

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken — access-токен не является JWT.
var ErrMalformedToken = errors.New("malformed access token")

// Claims — данные пользователя из access-токена.
type Claims struct {
	Subject   string
	Email     string
	Name      string
	ExpiresAt time.Time
}

type accessClaims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// ParseClaims декодирует access-токен БЕЗ проверки подписи.
// Подпись проверяет только бэкенд; клиенту claims нужны для отображения и логов.
func ParseClaims(accessToken string) (*Claims, error) {
	const op = "credentials.ParseClaims"

	var ac accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &ac); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformedToken)
	}

	c := &Claims{
		Subject: ac.Subject,
		Email:   ac.Email,
		Name:    ac.Name,
	}
	if c.Subject == "" {
		c.Subject = ac.ID
	}
	if ac.ExpiresAt != nil {
		c.ExpiresAt = ac.ExpiresAt.Time.UTC()
	}

	return c, nil
}

// Expired — срок истёк к моменту now. Токен без exp считается бессрочным.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}
