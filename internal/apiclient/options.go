package apiclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Policy — поведение при терминальном отказе (требуется повторный вход).
type Policy string

const (
	// PolicyRedirect — вызвать Redirector (переход на страницу входа) и вернуть ErrReauthRequired.
	PolicyRedirect Policy = "redirect"
	// PolicyReturnEmpty — вернуть nil, оставив out нулевым (некритичные чтения: корзина, закладки).
	PolicyReturnEmpty Policy = "return-empty"
	// PolicyThrow — вернуть ErrReauthRequired вызывающему коду.
	PolicyThrow Policy = "throw"
)

// ParsePolicy разбирает значение из конфигурации.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyRedirect, PolicyReturnEmpty, PolicyThrow:
		return p, nil
	case "":
		return PolicyThrow, nil
	default:
		return "", fmt.Errorf("unknown unauthorized policy %q", s)
	}
}

// Transport — способ доставки учётных данных до бэкенда.
type Transport string

const (
	// TransportCookie — httpOnly cookie, которыми управляет бэкенд; заголовок не ставится,
	// refresh-токен уходит cookie, тело /auth/refresh пустое.
	TransportCookie Transport = "cookie"
	// TransportBearer — клиент читает токены из Store и сам ставит Authorization,
	// refresh-токен передаётся в теле /auth/refresh.
	TransportBearer Transport = "bearer-header"
)

// ParseTransport разбирает значение из конфигурации.
func ParseTransport(s string) (Transport, error) {
	switch t := Transport(s); t {
	case TransportCookie, TransportBearer:
		return t, nil
	case "":
		return TransportBearer, nil
	default:
		return "", fmt.Errorf("unknown credential transport %q", s)
	}
}

// Redirector выполняет навигацию на страницу входа в режиме PolicyRedirect.
type Redirector interface {
	Redirect(ctx context.Context, location string) error
}

// RedirectorFunc — функция как Redirector.
type RedirectorFunc func(ctx context.Context, location string) error

func (f RedirectorFunc) Redirect(ctx context.Context, location string) error { return f(ctx, location) }

const (
	DefaultTimeout            = 15 * time.Second
	DefaultMaxRefreshAttempts = 3
	DefaultRefreshPath        = "/auth/refresh"
	DefaultSignInURL          = "/signin"
	DefaultUserAgent          = "pharma-portal"
)

// Options — параметры клиента. Нулевые значения заменяются значениями по умолчанию.
type Options struct {
	// BaseURL — абсолютный адрес REST-бэкенда (может содержать префикс пути).
	BaseURL string
	// Timeout — таймаут одной попытки HTTP, если у контекста нет дедлайна. <0 отключает.
	Timeout time.Duration

	OnUnauthorized      Policy
	CredentialTransport Transport

	// MaxRefreshAttempts — предел счётчика попыток обновления.
	MaxRefreshAttempts int
	// ResetBudgetOnRefreshFailure — обнулять счётчик и при неудачном обновлении.
	// По умолчанию неудачи накапливаются, и после MaxRefreshAttempts подряд
	// следующий 401 завершается без вызова /auth/refresh.
	ResetBudgetOnRefreshFailure bool

	RefreshPath string
	SignInURL   string
	UserAgent   string

	// Redirector обязателен для PolicyRedirect.
	Redirector Redirector
	// Budget — счётчик попыток; nil — собственный счётчик экземпляра.
	Budget *Budget
	// HTTPClient — базовый клиент (транспорт, jar). Не модифицируется: клиент копируется.
	HTTPClient *http.Client
	// Logger — nil означает логгер из контекста вызова (pkg/log).
	Logger  *slog.Logger
	Metrics *Metrics
}

func (o *Options) applyDefaults() {
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.OnUnauthorized == "" {
		o.OnUnauthorized = PolicyThrow
	}
	if o.CredentialTransport == "" {
		o.CredentialTransport = TransportBearer
	}
	if o.MaxRefreshAttempts <= 0 {
		o.MaxRefreshAttempts = DefaultMaxRefreshAttempts
	}
	if o.RefreshPath == "" {
		o.RefreshPath = DefaultRefreshPath
	}
	if o.SignInURL == "" {
		o.SignInURL = DefaultSignInURL
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Budget == nil {
		o.Budget = NewBudget()
	}
}

func (o *Options) validate() error {
	if _, err := ParsePolicy(string(o.OnUnauthorized)); err != nil {
		return err
	}
	if _, err := ParseTransport(string(o.CredentialTransport)); err != nil {
		return err
	}
	if o.OnUnauthorized == PolicyRedirect && o.Redirector == nil {
		return fmt.Errorf("policy %q requires a Redirector", PolicyRedirect)
	}

	return nil
}
