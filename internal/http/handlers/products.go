package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	apierrors "github.com/pribylovaa/pharma-portal/internal/errors"
	"github.com/pribylovaa/pharma-portal/internal/models"
)

type bookmarkedResponse struct {
	Bookmarked bool `json:"bookmarked"`
}

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	out, err := p.API.Products.List(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) SearchProducts(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	params, err := searchParams(r.URL.Query())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := p.API.Products.Search(r.Context(), params)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := p.API.Products.Get(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// searchParams разбирает q, category, minPrice, maxPrice, page, limit, sortBy, sortOrder.
func searchParams(q url.Values) (models.SearchParams, error) {
	sp := models.SearchParams{
		Query:     q.Get("q"),
		Category:  q.Get("category"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}

	var err error
	if sp.MinPrice, err = optFloat(q.Get("minPrice")); err != nil {
		return sp, err
	}
	if sp.MaxPrice, err = optFloat(q.Get("maxPrice")); err != nil {
		return sp, err
	}
	if sp.Page, err = optInt(q.Get("page")); err != nil {
		return sp, err
	}
	if sp.Limit, err = optInt(q.Get("limit")); err != nil {
		return sp, err
	}

	switch sp.SortOrder {
	case "", "asc", "desc":
	default:
		return sp, apierrors.ErrInvalidArgument
	}

	return sp, nil
}

func optFloat(v string) (*float64, error) {
	if v == "" {
		return nil, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return nil, apierrors.ErrInvalidArgument
	}

	return &f, nil
}

func optInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apierrors.ErrInvalidArgument
	}

	return n, nil
}
