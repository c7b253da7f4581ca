package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/pharma-portal/internal/models"
	logctx "github.com/pribylovaa/pharma-portal/pkg/log"
)

// Storefront — корзина и закладки сессии с локальным кэшем.
//
// Кэш корзины всегда согласован с бэкендом: после add/update/remove корзина
// перечитывается целиком, а очистка и оформление заказа сбрасывают её в пустую.
type Storefront struct {
	products ProductAPI

	mu       sync.RWMutex
	cart     *models.Cart
	wishlist *models.Wishlist
}

func NewStorefront(products ProductAPI) *Storefront {
	return &Storefront{products: products}
}

// Summary — корзина и закладки, загруженные одновременно.
type Summary struct {
	Cart     models.Cart     `json:"cart"`
	Wishlist models.Wishlist `json:"wishlist"`
}

// CachedCart — последняя известная корзина.
func (s *Storefront) CachedCart() (models.Cart, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cart == nil {
		return models.Cart{}, false
	}

	return *s.cart, true
}

// CachedWishlist — последние известные закладки.
func (s *Storefront) CachedWishlist() (models.Wishlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.wishlist == nil {
		return models.Wishlist{}, false
	}

	return *s.wishlist, true
}

func (s *Storefront) FetchCart(ctx context.Context) (models.Cart, error) {
	const op = "service.Storefront.FetchCart"

	c, err := s.products.Cart(ctx)
	if err != nil {
		return models.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	s.setCart(c)

	return c, nil
}

func (s *Storefront) AddToCart(ctx context.Context, in models.AddToCartRequest) (models.Cart, error) {
	const op = "service.Storefront.AddToCart"

	if in.ProductID <= 0 || in.Quantity <= 0 {
		return models.Cart{}, fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}

	if _, err := s.products.AddToCart(ctx, in); err != nil {
		return models.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.reload(ctx, op)
}

func (s *Storefront) UpdateCartItem(ctx context.Context, productID int, in models.UpdateCartItemRequest) (models.Cart, error) {
	const op = "service.Storefront.UpdateCartItem"

	if in.Quantity != nil && *in.Quantity <= 0 {
		return models.Cart{}, fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}

	if _, err := s.products.UpdateCartItem(ctx, productID, in); err != nil {
		return models.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.reload(ctx, op)
}

func (s *Storefront) RemoveFromCart(ctx context.Context, productID int) (models.Cart, error) {
	const op = "service.Storefront.RemoveFromCart"

	if _, err := s.products.RemoveFromCart(ctx, productID); err != nil {
		return models.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.reload(ctx, op)
}

func (s *Storefront) ClearCart(ctx context.Context) (models.Cart, error) {
	const op = "service.Storefront.ClearCart"

	if err := s.products.ClearCart(ctx); err != nil {
		return models.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	empty := models.EmptyCart()
	s.setCart(empty)

	return empty, nil
}

// Checkout оформляет заказ; после успеха корзина пуста без повторного запроса.
func (s *Storefront) Checkout(ctx context.Context, in models.CheckoutRequest) (models.CheckoutResponse, error) {
	const op = "service.Storefront.Checkout"

	if in.PaymentMethod == "" {
		return models.CheckoutResponse{}, fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}

	resp, err := s.products.Checkout(ctx, in)
	if err != nil {
		return models.CheckoutResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	s.setCart(models.EmptyCart())

	logctx.From(ctx).Info("order_placed",
		slog.String("op", op),
		slog.Int("order_id", resp.OrderID),
		slog.String("status", resp.Status),
	)

	return resp, nil
}

func (s *Storefront) FetchWishlist(ctx context.Context) (models.Wishlist, error) {
	const op = "service.Storefront.FetchWishlist"

	w, err := s.products.Bookmarks(ctx)
	if err != nil {
		return models.Wishlist{}, fmt.Errorf("%s: %w", op, err)
	}

	s.setWishlist(w)

	return w, nil
}

func (s *Storefront) AddBookmark(ctx context.Context, productID int) (models.Wishlist, error) {
	const op = "service.Storefront.AddBookmark"

	if err := s.products.AddBookmark(ctx, productID); err != nil {
		return models.Wishlist{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.FetchWishlist(ctx)
}

func (s *Storefront) RemoveBookmark(ctx context.Context, productID int) (models.Wishlist, error) {
	const op = "service.Storefront.RemoveBookmark"

	if err := s.products.RemoveBookmark(ctx, productID); err != nil {
		return models.Wishlist{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.FetchWishlist(ctx)
}

func (s *Storefront) IsBookmarked(ctx context.Context, productID int) (bool, error) {
	const op = "service.Storefront.IsBookmarked"

	ok, err := s.products.IsBookmarked(ctx, productID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

// Summary загружает корзину и закладки параллельно; первая ошибка отменяет второй запрос.
func (s *Storefront) Summary(ctx context.Context) (Summary, error) {
	const op = "service.Storefront.Summary"

	var out Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c, err := s.FetchCart(gctx)
		out.Cart = c
		return err
	})
	g.Go(func() error {
		w, err := s.FetchWishlist(gctx)
		out.Wishlist = w
		return err
	})

	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// reload перечитывает корзину после изменения.
func (s *Storefront) reload(ctx context.Context, op string) (models.Cart, error) {
	c, err := s.products.Cart(ctx)
	if err != nil {
		return models.Cart{}, fmt.Errorf("%s: reload cart: %w", op, err)
	}

	s.setCart(c)

	return c, nil
}

func (s *Storefront) setCart(c models.Cart) {
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}

	s.mu.Lock()
	s.cart = &c
	s.mu.Unlock()
}

func (s *Storefront) setWishlist(w models.Wishlist) {
	if w.Items == nil {
		w.Items = []models.WishlistItem{}
	}

	s.mu.Lock()
	s.wishlist = &w
	s.mu.Unlock()
}
