package api

import (
	"context"
	"fmt"

	"github.com/pribylovaa/pharma-portal/internal/apiclient"
	"github.com/pribylovaa/pharma-portal/internal/models"
)

// Auth — ручки /auth/*.
type Auth struct {
	c *apiclient.Client
}

func (a *Auth) Login(ctx context.Context, in models.LoginRequest) (models.AuthResponse, error) {
	const op = "api.Auth.Login"

	out, err := apiclient.Call[models.AuthResponse](ctx, a.c, anonymous(apiclient.Post("/auth/signin", in)))
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	a.established(out)

	return out, nil
}

func (a *Auth) Register(ctx context.Context, in models.RegisterRequest) (models.AuthResponse, error) {
	const op = "api.Auth.Register"

	out, err := apiclient.Call[models.AuthResponse](ctx, a.c, anonymous(apiclient.Post("/auth/signup", in)))
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	a.established(out)

	return out, nil
}

func (a *Auth) Logout(ctx context.Context) error {
	const op = "api.Auth.Logout"

	if err := a.c.Do(ctx, apiclient.Post("/auth/logout", nil), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *Auth) ForgotPassword(ctx context.Context, in models.ForgotPasswordRequest) error {
	const op = "api.Auth.ForgotPassword"

	if err := a.c.Do(ctx, anonymous(apiclient.Post("/auth/forgot-password", in)), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *Auth) ResetPassword(ctx context.Context, in models.ResetPasswordRequest) error {
	const op = "api.Auth.ResetPassword"

	if err := a.c.Do(ctx, anonymous(apiclient.Post("/auth/reset-password", in)), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *Auth) ChangePassword(ctx context.Context, in models.ChangePasswordRequest) error {
	const op = "api.Auth.ChangePassword"

	if err := a.c.Do(ctx, apiclient.Post("/auth/change-password", in), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Refresh — явное обновление пары через клиент (singleflight, без расхода Budget).
func (a *Auth) Refresh(ctx context.Context) error {
	const op = "api.Auth.Refresh"

	if _, err := a.c.Refresh(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *Auth) Profile(ctx context.Context) (models.User, error) {
	const op = "api.Auth.Profile"

	out, err := apiclient.Call[models.User](ctx, a.c, apiclient.Get("/auth/profile", nil))
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (a *Auth) UpdateProfile(ctx context.Context, in models.ProfileUpdate) (models.User, error) {
	const op = "api.Auth.UpdateProfile"

	out, err := apiclient.Call[models.User](ctx, a.c, apiclient.Put("/auth/profile", in))
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// VerifyEmail активирует аккаунт по коду из письма.
func (a *Auth) VerifyEmail(ctx context.Context, in models.VerifyEmailRequest) (models.AuthResponse, error) {
	const op = "api.Auth.VerifyEmail"

	out, err := apiclient.Call[models.AuthResponse](ctx, a.c, anonymous(apiclient.Post("/auth/activate-account", in)))
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	a.established(out)

	return out, nil
}

// established — новая пара токенов открывает новый бюджет обновлений,
// попытки гостя или прошлой сессии не переносятся.
func (a *Auth) established(resp models.AuthResponse) {
	if access, _ := resp.Tokens(); access != "" {
		a.c.Budget().Reset()
	}
}

// anonymous — ручки без сессии: неверный пароль не должен запускать обновление токенов.
func anonymous(r *apiclient.Request) *apiclient.Request {
	r.Anonymous = true
	return r
}
