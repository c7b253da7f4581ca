package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/pribylovaa/pharma-portal/internal/apiclient"
	"github.com/pribylovaa/pharma-portal/internal/models"
)

// Orders — заказы (/orders/*).
//
// Списки не валят страницу: при отказе авторизации или любой другой ошибке
// возвращается пустой список, а ошибка только пишется в лог.
// Get и UpdateStatus ошибки пробрасывают.
type Orders struct {
	c     *apiclient.Client
	quiet *apiclient.Client
}

// History — заказы текущего пользователя.
func (o *Orders) History(ctx context.Context) []models.Order {
	return o.list(ctx, "/orders/history")
}

// All — все заказы (для администратора).
func (o *Orders) All(ctx context.Context) []models.Order {
	return o.list(ctx, "/orders")
}

func (o *Orders) ByStatus(ctx context.Context, status string) []models.Order {
	return o.list(ctx, "/orders/status/"+url.PathEscape(status))
}

func (o *Orders) Get(ctx context.Context, id int) (models.Order, error) {
	const op = "api.Orders.Get"

	out, err := apiclient.Call[models.Order](ctx, o.c, apiclient.Get("/orders/"+strconv.Itoa(id), nil))
	if err != nil {
		return models.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (o *Orders) UpdateStatus(ctx context.Context, id int, status string) (models.Order, error) {
	const op = "api.Orders.UpdateStatus"

	path := "/orders/" + strconv.Itoa(id) + "/status"
	out, err := apiclient.Call[models.Order](ctx, o.c, apiclient.Patch(path, models.OrderStatusUpdate{Status: status}))
	if err != nil {
		return models.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (o *Orders) list(ctx context.Context, path string) []models.Order {
	const op = "api.Orders.list"

	out, err := apiclient.Call[[]models.Order](ctx, o.quiet, apiclient.Get(path, nil))
	if err != nil {
		logger(ctx).Warn("orders_fetch_failed",
			slog.String("op", op),
			slog.String("path", path),
			slog.Int("status", apiclient.StatusOf(err)),
			slog.String("err", err.Error()),
		)
		return []models.Order{}
	}
	if out == nil {
		return []models.Order{}
	}

	return out
}
