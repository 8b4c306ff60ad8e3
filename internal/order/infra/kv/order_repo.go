package kv

import (
	"context"
	"encoding/json"
	"time"

	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/kvstore"
	"github.com/pkg/errors"
)

const DefaultKey = "orders_v1"

// storedOrder writes amounts as JSON numbers; domain.Order reads either form.
type storedOrder struct {
	ID        string                 `json:"id"`
	Items     cartdomain.StoredLines `json:"items"`
	Total     json.Number            `json:"total"`
	CreatedAt time.Time              `json:"createdAt"`
	Customer  domain.Customer        `json:"customer"`
}

// OrderRepo keeps the order history as a JSON array under a single key.
type OrderRepo struct {
	store kvstore.Store
	key   string
}

func NewOrderRepo(store kvstore.Store, key string) *OrderRepo {
	if key == "" {
		key = DefaultKey
	}
	return &OrderRepo{store: store, key: key}
}

func (r *OrderRepo) Load(ctx context.Context) ([]domain.Order, error) {
	raw, found, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, err
	}
	if !found || raw == "" {
		return []domain.Order{}, nil
	}

	var orders []domain.Order
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		return nil, errors.Wrap(app.ErrCorruptHistory, err.Error())
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (r *OrderRepo) Save(ctx context.Context, orders []domain.Order) error {
	stored := make([]storedOrder, len(orders))
	for i, o := range orders {
		items := o.Items
		if items == nil {
			items = cartdomain.Lines{}
		}
		stored[i] = storedOrder{
			ID:        o.ID,
			Items:     cartdomain.StoredLines(items),
			Total:     cartdomain.Number(o.Total),
			CreatedAt: o.CreatedAt,
			Customer:  o.Customer,
		}
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return errors.Wrap(err, "encode order history")
	}
	return r.store.Set(ctx, r.key, string(raw))
}
