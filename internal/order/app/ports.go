package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/order/domain"
)

// OrderRepo persists the whole order history as one list, newest first.
// Load returns an empty list when nothing has been saved yet.
type OrderRepo interface {
	Load(ctx context.Context) ([]domain.Order, error)
	Save(ctx context.Context, orders []domain.Order) error
}
