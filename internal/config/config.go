// config — загрузка конфигурации шлюза и CLI портала.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
//
// Перед чтением подхватывается ./.env (godotenv): уже заданные переменные окружения
// не перезаписываются.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/pribylovaa/pharma-portal/internal/apiclient"
)

type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	API      APIConfig     `yaml:"api"`
	Redis    RedisConfig   `yaml:"redis"`
	Session  SessionConfig `yaml:"session"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig — таймауты входящих запросов шлюза и остановки.
type TimeoutConfig struct {
	Request  time.Duration `yaml:"request"  env:"REQUEST_TIMEOUT"  env-default:"30s"`
	Shutdown time.Duration `yaml:"shutdown" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// HTTPConfig — публичный HTTP-сервер шлюза.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// APIConfig — REST-бэкенд и поведение клиента при 401.
type APIConfig struct {
	BaseURL             string        `yaml:"base_url"             env:"API_BASE_URL"             env-default:"http://localhost:3000"`
	Timeout             time.Duration `yaml:"timeout"              env:"API_TIMEOUT"              env-default:"15s"`
	RefreshPath         string        `yaml:"refresh_path"         env:"API_REFRESH_PATH"         env-default:"/auth/refresh"`
	SignInURL           string        `yaml:"sign_in_url"          env:"API_SIGN_IN_URL"          env-default:"/signin"`
	MaxRefreshAttempts  int           `yaml:"max_refresh_attempts" env:"API_MAX_REFRESH_ATTEMPTS" env-default:"3"`
	CredentialTransport string        `yaml:"credential_transport" env:"API_CREDENTIAL_TRANSPORT" env-default:"bearer-header"`
	OnUnauthorized      string        `yaml:"on_unauthorized"      env:"API_ON_UNAUTHORIZED"      env-default:"throw"`
	// ResetBudgetOnRefreshFailure — обнулять счётчик попыток и при неудачном обновлении.
	ResetBudgetOnRefreshFailure bool `yaml:"reset_budget_on_refresh_failure" env:"API_RESET_BUDGET_ON_REFRESH_FAILURE" env-default:"false"`
}

// Options — параметры apiclient без зависимостей времени выполнения
// (HTTP-клиент, логгер, метрики, Redirector задаёт вызывающий код).
func (a APIConfig) Options() (apiclient.Options, error) {
	policy, err := apiclient.ParsePolicy(a.OnUnauthorized)
	if err != nil {
		return apiclient.Options{}, err
	}

	transport, err := apiclient.ParseTransport(a.CredentialTransport)
	if err != nil {
		return apiclient.Options{}, err
	}

	return apiclient.Options{
		BaseURL:                     a.BaseURL,
		Timeout:                     a.Timeout,
		OnUnauthorized:              policy,
		CredentialTransport:         transport,
		MaxRefreshAttempts:          a.MaxRefreshAttempts,
		ResetBudgetOnRefreshFailure: a.ResetBudgetOnRefreshFailure,
		RefreshPath:                 a.RefreshPath,
		SignInURL:                   a.SignInURL,
	}, nil
}

// RedisConfig — хранилище сессий шлюза. Пустой URL — хранение в памяти процесса.
type RedisConfig struct {
	URL    string `yaml:"url"    env:"REDIS_URL"`
	Prefix string `yaml:"prefix" env:"REDIS_PREFIX" env-default:"portal:session:"`
}

// SessionConfig — cookie сессии шлюза.
type SessionConfig struct {
	CookieName string        `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"portal_sid"`
	TTL        time.Duration `yaml:"ttl"         env:"SESSION_TTL"         env-default:"168h"`
	Secure     bool          `yaml:"secure"      env:"SESSION_SECURE"      env-default:"false"`
}

// Validate проверяет значения, которые cleanenv не может проверить сам.
func (c *Config) Validate() error {
	const op = "config.Validate"

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s: api.base_url %q must be an absolute url", op, c.API.BaseURL)
	}
	if _, err := c.API.Options(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if c.API.MaxRefreshAttempts <= 0 {
		return fmt.Errorf("%s: api.max_refresh_attempts must be positive", op)
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("%s: session.cookie_name is empty", op)
	}

	return nil
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func read(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
