package app

import (
	"context"
	"sync"
	"time"

	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/metrics"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrEmptyCart = errors.New("cart is empty")

type CartReader interface {
	Snapshot(ctx context.Context) (cartdomain.Snapshot, error)
	RemoveOrdered(ordered cartdomain.Lines)
}

type OrderWriter interface {
	Append(ctx context.Context, o orderdomain.Order) error
}

type Service struct {
	Cart   CartReader
	Orders OrderWriter

	log   *logrus.Entry
	now   func() time.Time
	newID func() string

	// placing serializes PlaceOrder from snapshot to cart update.
	placing sync.Mutex
}

func NewService(cart CartReader, orders OrderWriter, log *logrus.Entry) *Service {
	return &Service{
		Cart:   cart,
		Orders: orders,
		log:    log.WithField("component", "checkout"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (s *Service) Quote(ctx context.Context) (domain.Quote, error) {
	snap, err := s.Cart.Snapshot(ctx)
	if err != nil {
		return domain.Quote{}, err
	}
	if len(snap.Items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}
	return domain.QuoteFrom(snap), nil
}

// PlaceOrder records the current cart as an order and takes the ordered lines
// off the cart. Only one order is placed at a time, so a repeated submit sees
// the emptied cart. The cart is left untouched when the order cannot be saved.
func (s *Service) PlaceOrder(ctx context.Context, form domain.CustomerForm) (orderdomain.Order, error) {
	customer, err := form.Validate()
	if err != nil {
		return orderdomain.Order{}, err
	}

	s.placing.Lock()
	defer s.placing.Unlock()

	snap, err := s.Cart.Snapshot(ctx)
	if err != nil {
		return orderdomain.Order{}, err
	}
	if len(snap.Items) == 0 {
		return orderdomain.Order{}, ErrEmptyCart
	}

	order := orderdomain.Order{
		ID:        s.newID(),
		Items:     snap.Items,
		Total:     snap.TotalPrice,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
		Customer:  customer,
	}

	if err := s.Orders.Append(ctx, order); err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Error("failed to place order")
		return orderdomain.Order{}, errors.Wrap(err, "place order")
	}

	s.Cart.RemoveOrdered(snap.Items)
	metrics.OrderPlaced()
	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"items":    order.TotalItems(),
		"total":    order.Total.String(),
	}).Info("order placed")
	return order, nil
}
