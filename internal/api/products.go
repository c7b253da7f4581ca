package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pribylovaa/pharma-portal/internal/apiclient"
	"github.com/pribylovaa/pharma-portal/internal/models"
)

// Products — каталог, корзина, оформление и закладки (/products/*).
//
// Корзина, закладки и IsBookmarked читаются через quiet (return-empty):
// гость получает пустую корзину и пустой список закладок вместо ошибки.
type Products struct {
	c     *apiclient.Client
	quiet *apiclient.Client
}

func (p *Products) List(ctx context.Context) ([]models.Product, error) {
	const op = "api.Products.List"

	out, err := apiclient.Call[[]models.Product](ctx, p.c, apiclient.Get("/products", nil))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (p *Products) Get(ctx context.Context, id int) (models.Product, error) {
	const op = "api.Products.Get"

	out, err := apiclient.Call[models.Product](ctx, p.c, apiclient.Get(productPath(id, ""), nil))
	if err != nil {
		return models.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Search — постраничный поиск; пустые параметры в запрос не попадают.
func (p *Products) Search(ctx context.Context, params models.SearchParams) (models.ProductPage, error) {
	const op = "api.Products.Search"

	out, err := apiclient.Call[models.ProductPage](ctx, p.c, apiclient.Get("/products/search", params.Values()))
	if err != nil {
		return models.ProductPage{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (p *Products) Cart(ctx context.Context) (models.Cart, error) {
	const op = "api.Products.Cart"

	out, err := apiclient.Call[models.Cart](ctx, p.quiet, apiclient.Get("/products/cart", nil))
	if err != nil {
		return models.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	if out.Items == nil {
		out.Items = []models.CartItem{}
	}

	return out, nil
}

func (p *Products) AddToCart(ctx context.Context, in models.AddToCartRequest) (models.Cart, error) {
	const op = "api.Products.AddToCart"

	out, err := apiclient.Call[models.Cart](ctx, p.c, apiclient.Post("/products/cart/add", in))
	if err != nil {
		return models.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (p *Products) UpdateCartItem(ctx context.Context, productID int, in models.UpdateCartItemRequest) (models.Cart, error) {
	const op = "api.Products.UpdateCartItem"

	path := "/products/cart/update/" + strconv.Itoa(productID)
	out, err := apiclient.Call[models.Cart](ctx, p.c, apiclient.Patch(path, in))
	if err != nil {
		return models.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (p *Products) RemoveFromCart(ctx context.Context, productID int) (models.Cart, error) {
	const op = "api.Products.RemoveFromCart"

	path := "/products/cart/remove/" + strconv.Itoa(productID)
	out, err := apiclient.Call[models.Cart](ctx, p.c, apiclient.Delete(path))
	if err != nil {
		return models.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (p *Products) ClearCart(ctx context.Context) error {
	const op = "api.Products.ClearCart"

	if err := p.c.Do(ctx, apiclient.Post("/products/cart/clear", nil), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (p *Products) Checkout(ctx context.Context, in models.CheckoutRequest) (models.CheckoutResponse, error) {
	const op = "api.Products.Checkout"

	out, err := apiclient.Call[models.CheckoutResponse](ctx, p.c, apiclient.Post("/products/checkout", in))
	if err != nil {
		return models.CheckoutResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (p *Products) AddBookmark(ctx context.Context, productID int) error {
	const op = "api.Products.AddBookmark"

	body := map[string]int{"productId": productID}
	if err := p.c.Do(ctx, apiclient.Post("/products/bookmark", body), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (p *Products) RemoveBookmark(ctx context.Context, productID int) error {
	const op = "api.Products.RemoveBookmark"

	path := "/products/bookmark/" + strconv.Itoa(productID)
	if err := p.c.Do(ctx, apiclient.Delete(path), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (p *Products) Bookmarks(ctx context.Context) (models.Wishlist, error) {
	const op = "api.Products.Bookmarks"

	out, err := apiclient.Call[models.Wishlist](ctx, p.quiet, apiclient.Get("/products/bookmarks", nil))
	if err != nil {
		return models.Wishlist{}, fmt.Errorf("%s: %w", op, err)
	}
	if out.Items == nil {
		out.Items = []models.WishlistItem{}
	}

	return out, nil
}

func (p *Products) IsBookmarked(ctx context.Context, productID int) (bool, error) {
	const op = "api.Products.IsBookmarked"

	out, err := apiclient.Call[bool](ctx, p.quiet, apiclient.Get(productPath(productID, "/is-bookmarked"), nil))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func productPath(id int, suffix string) string {
	return "/products/" + strconv.Itoa(id) + suffix
}
