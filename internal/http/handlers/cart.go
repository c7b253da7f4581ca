package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/pharma-portal/internal/errors"
	"github.com/pribylovaa/pharma-portal/internal/models"
)

func (h *Handlers) Cart(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	out, err := p.Storefront.FetchCart(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	var in models.AddToCartRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	out, err := p.Storefront.AddToCart(r.Context(), in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in models.UpdateCartItemRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	out, err := p.Storefront.UpdateCartItem(r.Context(), id, in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := p.Storefront.RemoveFromCart(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	out, err := p.Storefront.ClearCart(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	var in models.CheckoutRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	out, err := p.Storefront.Checkout(r.Context(), in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) Bookmarks(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	out, err := p.Storefront.FetchWishlist(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) AddBookmark(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := p.Storefront.AddBookmark(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := p.Storefront.RemoveBookmark(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) IsBookmarked(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	marked, err := p.Storefront.IsBookmarked(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bookmarkedResponse{Bookmarked: marked})
}

// Basket — корзина и закладки одним ответом (загружаются параллельно).
func (h *Handlers) Basket(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	out, err := p.Storefront.Summary(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}
