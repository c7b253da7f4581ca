package handlers

import (
	"context"
	"net/http"

	apierrors "github.com/pribylovaa/pharma-portal/internal/errors"
	"github.com/pribylovaa/pharma-portal/internal/models"
	"github.com/pribylovaa/pharma-portal/internal/portal"
)

type dashboardPage struct {
	User   models.User    `json:"user"`
	Orders []models.Order `json:"orders"`
}

type authPage struct {
	Page string `json:"page"`
}

// page загружает данные страницы через клиент с политикой redirect:
// если сессию восстановить не удалось, вместо данных уходит 302 на страницу входа.
func page(w http.ResponseWriter, r *http.Request, load func(context.Context, *portal.Portal) (any, error)) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	ctx, sink := portal.WithSink(r.Context())
	out, err := load(ctx, p)
	if loc := sink.Location(); loc != "" {
		http.Redirect(w, r, loc, http.StatusFound)
		return
	}
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) DashboardPage(w http.ResponseWriter, r *http.Request) {
	page(w, r, func(ctx context.Context, p *portal.Portal) (any, error) {
		u, err := p.Pages.Auth.Profile(ctx)
		if err != nil {
			return nil, err
		}

		return dashboardPage{User: u, Orders: p.Pages.Orders.History(ctx)}, nil
	})
}

func (h *Handlers) ProfilePage(w http.ResponseWriter, r *http.Request) {
	page(w, r, func(ctx context.Context, p *portal.Portal) (any, error) {
		return p.Pages.Auth.Profile(ctx)
	})
}

func (h *Handlers) CartPage(w http.ResponseWriter, r *http.Request) {
	page(w, r, func(ctx context.Context, p *portal.Portal) (any, error) {
		return p.Pages.Products.Cart(ctx)
	})
}

// SignInPage и SignUpPage доступны только без сессии (см. middleware.Guard).
func (h *Handlers) SignInPage(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, authPage{Page: "signin"})
}

func (h *Handlers) SignUpPage(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, authPage{Page: "signup"})
}
