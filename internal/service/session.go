package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"

	"github.com/pribylovaa/pharma-portal/internal/credentials"
	"github.com/pribylovaa/pharma-portal/internal/models"
	logctx "github.com/pribylovaa/pharma-portal/pkg/log"
	"github.com/pribylovaa/pharma-portal/pkg/redact"
)

// Session — вход, выход и профиль пользователя одной сессии.
type Session struct {
	auth  AuthAPI
	store credentials.Store

	mu   sync.RWMutex
	user *models.User
}

// NewSession создаёт сессию поверх ручек авторизации и хранилища пары токенов.
// store должен быть тем же, что у клиента, через который ходит auth.
func NewSession(auth AuthAPI, store credentials.Store) *Session {
	return &Session{auth: auth, store: store}
}

// User — последний известный профиль.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return models.User{}, false
	}

	return *s.user, true
}

// Authenticated — в хранилище есть access-токен.
func (s *Session) Authenticated(ctx context.Context) bool {
	p, err := s.store.Get(ctx)
	return err == nil && p.AccessToken != ""
}

// Login входит по e-mail и паролю и сохраняет пару токенов.
// Бэкенд может отдавать токены как accessToken, так и access_token; нужны оба токена.
func (s *Session) Login(ctx context.Context, email, password string) (models.User, error) {
	const op = "service.Session.Login"

	log := logctx.From(ctx).With(slog.String("op", op), slog.String("email", redact.Email(email)))

	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil || password == "" {
		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}

	resp, err := s.auth.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		log.Warn("login_failed", slog.String("err", err.Error()))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.establish(ctx, resp)
	if err != nil {
		log.Warn("login_failed", slog.String("err", err.Error()))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("login_succeeded", slog.String("user_id", u.ID))

	return u, nil
}

// Signup регистрирует пользователя и сразу открывает сессию.
func (s *Session) Signup(ctx context.Context, in models.RegisterRequest) (models.User, error) {
	const op = "service.Session.Signup"

	log := logctx.From(ctx).With(slog.String("op", op), slog.String("email", redact.Email(in.Email)))

	if _, err := mail.ParseAddress(in.Email); err != nil || in.Password == "" {
		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}

	resp, err := s.auth.Register(ctx, in)
	if err != nil {
		log.Warn("signup_failed", slog.String("err", err.Error()))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.establish(ctx, resp)
	if err != nil {
		log.Warn("signup_failed", slog.String("err", err.Error()))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("signup_succeeded", slog.String("user_id", u.ID))

	return u, nil
}

// establish сохраняет пару из ответа и профиль пользователя.
func (s *Session) establish(ctx context.Context, resp models.AuthResponse) (models.User, error) {
	access, refresh := resp.Tokens()
	if access == "" {
		return models.User{}, fmt.Errorf("access: %w", ErrMissingToken)
	}
	if refresh == "" {
		return models.User{}, fmt.Errorf("refresh: %w", ErrMissingToken)
	}

	if err := s.store.Set(ctx, credentials.Pair{AccessToken: access, RefreshToken: refresh}); err != nil {
		return models.User{}, err
	}

	u := s.userFrom(resp.User, access)
	s.setUser(&u)

	return u, nil
}

// userFrom — профиль из ответа, а если его нет, из claims access-токена.
func (s *Session) userFrom(u *models.User, access string) models.User {
	if u != nil {
		out := *u
		out.Name = out.DisplayName()
		return out
	}

	claims, err := credentials.ParseClaims(access)
	if err != nil {
		return models.User{}
	}

	return models.User{ID: claims.Subject, Email: claims.Email, Name: claims.Name}
}

// Logout завершает сессию: сначала бэкенд, затем локальное хранилище.
// Ошибка бэкенда только логируется, локальная пара очищается всегда.
func (s *Session) Logout(ctx context.Context) error {
	const op = "service.Session.Logout"

	log := logctx.From(ctx).With(slog.String("op", op))

	if err := s.auth.Logout(ctx); err != nil {
		log.Warn("logout_backend_failed", slog.String("err", err.Error()))
	}

	s.setUser(nil)

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("logged_out")

	return nil
}

// Refresh явно обновляет пару; при отказе сессия закрывается локально.
func (s *Session) Refresh(ctx context.Context) error {
	const op = "service.Session.Refresh"

	if err := s.auth.Refresh(ctx); err != nil {
		s.dropLocal(ctx)
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// FetchProfile загружает профиль. При ошибке один раз обновляет токены и повторяет;
// если и это не помогло, сессия закрывается локально.
func (s *Session) FetchProfile(ctx context.Context) (models.User, error) {
	const op = "service.Session.FetchProfile"

	log := logctx.From(ctx).With(slog.String("op", op))

	u, err := s.auth.Profile(ctx)
	if err == nil {
		s.setUser(&u)
		return u, nil
	}

	log.Debug("profile_fetch_retry", slog.String("err", err.Error()))

	if rerr := s.auth.Refresh(ctx); rerr != nil {
		s.dropLocal(ctx)
		log.Info("profile_fetch_failed", slog.String("err", rerr.Error()))
		return models.User{}, fmt.Errorf("%s: %w", op, errors.Join(err, rerr))
	}

	u, err = s.auth.Profile(ctx)
	if err != nil {
		s.dropLocal(ctx)
		log.Info("profile_fetch_failed", slog.String("err", err.Error()))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	s.setUser(&u)

	return u, nil
}

// UpdateProfile меняет e-mail/имя и обновляет кэш профиля.
func (s *Session) UpdateProfile(ctx context.Context, in models.ProfileUpdate) (models.User, error) {
	const op = "service.Session.UpdateProfile"

	if in.Email != nil {
		if _, err := mail.ParseAddress(*in.Email); err != nil {
			return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidInput)
		}
	}

	u, err := s.auth.UpdateProfile(ctx, in)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	s.setUser(&u)

	return u, nil
}

// VerifyEmail активирует аккаунт по коду. Пара сохраняется, только если бэкенд вернул оба токена;
// второе значение сообщает, открыта ли сессия.
func (s *Session) VerifyEmail(ctx context.Context, code string) (models.User, bool, error) {
	const op = "service.Session.VerifyEmail"

	code = strings.TrimSpace(code)
	if code == "" {
		return models.User{}, false, fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}

	resp, err := s.auth.VerifyEmail(ctx, models.VerifyEmailRequest{Code: code})
	if err != nil {
		return models.User{}, false, fmt.Errorf("%s: %w", op, err)
	}

	access, refresh := resp.Tokens()
	if access == "" || refresh == "" {
		return models.User{}, false, nil
	}

	u, err := s.establish(ctx, resp)
	if err != nil {
		return models.User{}, false, fmt.Errorf("%s: %w", op, err)
	}

	return u, true, nil
}

func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	const op = "service.Session.ChangePassword"

	if current == "" || next == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}

	if err := s.auth.ChangePassword(ctx, models.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Session) ForgotPassword(ctx context.Context, email string) error {
	const op = "service.Session.ForgotPassword"

	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}

	if err := s.auth.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: email}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ResetPassword задаёт новый пароль по коду из письма.
func (s *Session) ResetPassword(ctx context.Context, code, password string) error {
	const op = "service.Session.ResetPassword"

	if code == "" || password == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}

	if err := s.auth.ResetPassword(ctx, models.ResetPasswordRequest{Code: code, Password: password}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// dropLocal закрывает сессию без вызова бэкенда.
func (s *Session) dropLocal(ctx context.Context) {
	s.setUser(nil)

	if err := s.store.Clear(ctx); err != nil {
		logctx.From(ctx).Warn("credentials_clear_failed", slog.String("err", err.Error()))
	}
}

func (s *Session) setUser(u *models.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}
