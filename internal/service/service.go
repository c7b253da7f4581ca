// service содержит состояние пользовательской сессии и витрины поверх ресурсных API:
// вход/выход и хранение пары токенов, профиль, корзину и закладки.
//
// Основные аспекты:
//   - Session и Storefront привязаны к одному хранилищу учётных данных
//     (одна сессия браузера в шлюзе или один профиль CLI);
//   - экземпляры безопасны для конкурентного использования;
//   - ошибки бэкенда пробрасываются как есть (*apiclient.HTTPError и т.д.),
//     собственные ошибки пакета перечислены ниже.
package service

import (
	"context"
	"errors"

	"github.com/pribylovaa/pharma-portal/internal/models"
)

var (
	// ErrMissingToken — бэкенд не вернул access- или refresh-токен при входе/регистрации.
	ErrMissingToken = errors.New("token not received from server")

	// ErrInvalidInput — пустой e-mail, пароль или код.
	ErrInvalidInput = errors.New("invalid input")
)

// AuthAPI — ручки /auth/*, нужные Session.
type AuthAPI interface {
	Login(ctx context.Context, in models.LoginRequest) (models.AuthResponse, error)
	Register(ctx context.Context, in models.RegisterRequest) (models.AuthResponse, error)
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, in models.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, in models.ResetPasswordRequest) error
	ChangePassword(ctx context.Context, in models.ChangePasswordRequest) error
	Refresh(ctx context.Context) error
	Profile(ctx context.Context) (models.User, error)
	UpdateProfile(ctx context.Context, in models.ProfileUpdate) (models.User, error)
	VerifyEmail(ctx context.Context, in models.VerifyEmailRequest) (models.AuthResponse, error)
}

// ProductAPI — ручки /products/*, нужные Storefront.
type ProductAPI interface {
	Cart(ctx context.Context) (models.Cart, error)
	AddToCart(ctx context.Context, in models.AddToCartRequest) (models.Cart, error)
	UpdateCartItem(ctx context.Context, productID int, in models.UpdateCartItemRequest) (models.Cart, error)
	RemoveFromCart(ctx context.Context, productID int) (models.Cart, error)
	ClearCart(ctx context.Context) error
	Checkout(ctx context.Context, in models.CheckoutRequest) (models.CheckoutResponse, error)
	AddBookmark(ctx context.Context, productID int) error
	RemoveBookmark(ctx context.Context, productID int) error
	Bookmarks(ctx context.Context) (models.Wishlist, error)
	IsBookmarked(ctx context.Context, productID int) (bool, error)
}
