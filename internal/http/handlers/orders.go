package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/pharma-portal/internal/errors"
	"github.com/pribylovaa/pharma-portal/internal/models"
)

// OrderHistory и соседние списки не падают: при любой ошибке бэкенда отдаётся [].
func (h *Handlers) OrderHistory(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, p.API.Orders.History(r.Context()))
}

func (h *Handlers) AllOrders(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, p.API.Orders.All(r.Context()))
}

func (h *Handlers) OrdersByStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	status := chi.URLParam(r, "status")
	if status == "" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	writeJSON(w, http.StatusOK, p.API.Orders.ByStatus(r.Context(), status))
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := p.API.Orders.Get(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in models.OrderStatusUpdate
	if err := decodeStrict(r, &in); err != nil || in.Status == "" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	out, err := p.API.Orders.UpdateStatus(r.Context(), id, in.Status)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}
