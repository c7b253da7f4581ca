// api — типизированные ручки REST-бэкенда поверх apiclient.
package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/pharma-portal/internal/apiclient"
	logctx "github.com/pribylovaa/pharma-portal/pkg/log"
)

// API агрегирует ресурсные модули бэкенда.
type API struct {
	Auth     *Auth
	Products *Products
	Orders   *Orders
	Programs *Programs

	client *apiclient.Client
}

// New собирает модули поверх одного клиента.
// Некритичные чтения (списки заказов, корзина, закладки) идут через копию
// клиента с политикой return-empty.
func New(c *apiclient.Client) (*API, error) {
	const op = "internal/api/New"

	if c == nil {
		return nil, fmt.Errorf("%s: nil client", op)
	}

	quiet, err := c.WithPolicy(apiclient.PolicyReturnEmpty, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &API{
		Auth:     &Auth{c: c},
		Products: &Products{c: c, quiet: quiet},
		Orders:   &Orders{c: c, quiet: quiet},
		Programs: &Programs{c: c},
		client:   c,
	}, nil
}

// Client — клиент, поверх которого собраны модули.
func (a *API) Client() *apiclient.Client { return a.client }

func logger(ctx context.Context) *slog.Logger { return logctx.From(ctx) }
