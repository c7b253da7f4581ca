package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/pharma-portal/internal/apiclient"
	"github.com/pribylovaa/pharma-portal/internal/models"
	"github.com/pribylovaa/pharma-portal/mocks"
)

var twoItems = models.Cart{
	Items: []models.CartItem{{ProductID: 7, Quantity: 2, Subtotal: 20}},
	Total: 20,
	Count: 2,
}

func newStorefront(t *testing.T) (*Storefront, *mocks.MockProductAPI) {
	t.Helper()

	ctrl := gomock.NewController(t)
	p := mocks.NewMockProductAPI(ctrl)

	return NewStorefront(p), p
}

// После изменения корзина перечитывается, ответ самой мутации не используется.
func TestStorefront_AddToCart_Reloads(t *testing.T) {
	t.Parallel()

	s, p := newStorefront(t)
	in := models.AddToCartRequest{ProductID: 7, Quantity: 2}

	gomock.InOrder(
		p.EXPECT().AddToCart(gomock.Any(), in).Return(models.Cart{Count: 999}, nil),
		p.EXPECT().Cart(gomock.Any()).Return(twoItems, nil),
	)

	c, err := s.AddToCart(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, twoItems, c)

	cached, ok := s.CachedCart()
	require.True(t, ok)
	require.Equal(t, 2, cached.Count)
}

func TestStorefront_UpdateAndRemove_Reload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, p := newStorefront(t)
	qty := 1

	p.EXPECT().UpdateCartItem(gomock.Any(), 7, models.UpdateCartItemRequest{Quantity: &qty}).Return(models.Cart{}, nil)
	p.EXPECT().RemoveFromCart(gomock.Any(), 7).Return(models.Cart{}, nil)
	p.EXPECT().Cart(gomock.Any()).Return(twoItems, nil).Times(2)

	_, err := s.UpdateCartItem(ctx, 7, models.UpdateCartItemRequest{Quantity: &qty})
	require.NoError(t, err)

	_, err = s.RemoveFromCart(ctx, 7)
	require.NoError(t, err)

	zero := 0
	_, err = s.UpdateCartItem(ctx, 7, models.UpdateCartItemRequest{Quantity: &zero})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestStorefront_AddToCart_FailureKeepsCache(t *testing.T) {
	t.Parallel()

	s, p := newStorefront(t)

	p.EXPECT().Cart(gomock.Any()).Return(twoItems, nil)
	_, err := s.FetchCart(context.Background())
	require.NoError(t, err)

	p.EXPECT().AddToCart(gomock.Any(), gomock.Any()).
		Return(models.Cart{}, &apiclient.HTTPError{Status: http.StatusBadRequest, Message: "Out of stock"})

	_, err = s.AddToCart(context.Background(), models.AddToCartRequest{ProductID: 8, Quantity: 1})
	require.Equal(t, http.StatusBadRequest, apiclient.StatusOf(err))

	cached, _ := s.CachedCart()
	require.Equal(t, twoItems, cached)

	_, err = s.AddToCart(context.Background(), models.AddToCartRequest{ProductID: 8})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestStorefront_ClearAndCheckout_EmptyCart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, p := newStorefront(t)

	p.EXPECT().ClearCart(gomock.Any()).Return(nil)
	c, err := s.ClearCart(ctx)
	require.NoError(t, err)
	require.Equal(t, models.EmptyCart(), c)

	p.EXPECT().Checkout(gomock.Any(), models.CheckoutRequest{PaymentMethod: "card"}).
		Return(models.CheckoutResponse{OrderID: 15, Status: "pending"}, nil)

	resp, err := s.Checkout(ctx, models.CheckoutRequest{PaymentMethod: "card"})
	require.NoError(t, err)
	require.Equal(t, 15, resp.OrderID)

	cached, ok := s.CachedCart()
	require.True(t, ok)
	require.NotNil(t, cached.Items)
	require.Empty(t, cached.Items)
	require.Zero(t, cached.Total)

	_, err = s.Checkout(ctx, models.CheckoutRequest{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestStorefront_Bookmarks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, p := newStorefront(t)
	wl := models.Wishlist{Items: []models.WishlistItem{{ID: 7}}, Count: 1}

	p.EXPECT().AddBookmark(gomock.Any(), 7).Return(nil)
	p.EXPECT().RemoveBookmark(gomock.Any(), 7).Return(nil)
	p.EXPECT().Bookmarks(gomock.Any()).Return(wl, nil)
	p.EXPECT().Bookmarks(gomock.Any()).Return(models.Wishlist{}, nil)
	p.EXPECT().IsBookmarked(gomock.Any(), 7).Return(true, nil)

	got, err := s.AddBookmark(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 1, got.Count)

	got, err = s.RemoveBookmark(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got.Items)
	require.Empty(t, got.Items)

	ok, err := s.IsBookmarked(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestStorefront_Summary(t *testing.T) {
	t.Parallel()

	s, p := newStorefront(t)
	wl := models.Wishlist{Items: []models.WishlistItem{{ID: 7}}, Count: 1}

	p.EXPECT().Cart(gomock.Any()).Return(twoItems, nil)
	p.EXPECT().Bookmarks(gomock.Any()).Return(wl, nil)

	sum, err := s.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, twoItems, sum.Cart)
	require.Equal(t, wl, sum.Wishlist)
}

func TestStorefront_Summary_FirstErrorWins(t *testing.T) {
	t.Parallel()

	s, p := newStorefront(t)
	boom := errors.New("boom")

	p.EXPECT().Cart(gomock.Any()).Return(models.Cart{}, boom)
	p.EXPECT().Bookmarks(gomock.Any()).DoAndReturn(func(ctx context.Context) (models.Wishlist, error) {
		<-ctx.Done()
		return models.Wishlist{}, ctx.Err()
	})

	_, err := s.Summary(context.Background())
	require.ErrorIs(t, err, boom)
}
