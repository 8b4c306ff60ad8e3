package app

import (
	"context"
	"sort"
	"sync"

	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/pkg/errors"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrCorruptHistory is returned when the stored history cannot be decoded.
	// The payload is left as is.
	ErrCorruptHistory = errors.New("order history is corrupt")
)

type Service struct {
	repo OrderRepo
	// mu serializes read-modify-write cycles on the single history slot.
	mu sync.Mutex
}

func NewService(repo OrderRepo) *Service {
	return &Service{repo: repo}
}

// Append puts o at the front of the history.
func (s *Service) Append(ctx context.Context, o domain.Order) error {
	if o.ID == "" {
		return errors.New("order id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load order history")
	}

	orders := make([]domain.Order, 0, len(existing)+1)
	orders = append(orders, o)
	orders = append(orders, existing...)

	if err := s.repo.Save(ctx, orders); err != nil {
		return errors.Wrap(err, "save order history")
	}
	return nil
}

// List returns every order, most recent first.
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	s.mu.Lock()
	orders, err := s.repo.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, errors.Wrap(err, "load order history")
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, errors.Wrapf(ErrOrderNotFound, "id %q", id)
}

func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(orders), nil
}
