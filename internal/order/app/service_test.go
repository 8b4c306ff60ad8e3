package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu      sync.Mutex
	orders  []domain.Order
	loadErr error
	saveErr error
	saves   int
}

func (r *memRepo) Load(ctx context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return append([]domain.Order{}, r.orders...), nil
}

func (r *memRepo) Save(ctx context.Context, orders []domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.orders = append([]domain.Order{}, orders...)
	return nil
}

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func order(id string, minutes int, total int64) domain.Order {
	return domain.Order{
		ID:        id,
		Total:     decimal.NewFromInt(total),
		CreatedAt: epoch.Add(time.Duration(minutes) * time.Minute),
		Customer:  domain.Customer{Name: "Ada", Email: "ada@example.com", Address: "1 Main St", City: "Lagos"},
	}
}

func TestAppendPrepends(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, order("a", 0, 1000)))
	require.NoError(t, svc.Append(ctx, order("b", 1, 2000)))

	require.Len(t, repo.orders, 2)
	assert.Equal(t, "b", repo.orders[0].ID)
	assert.Equal(t, "a", repo.orders[1].ID)
}

func TestAppendRequiresID(t *testing.T) {
	repo := &memRepo{}
	require.Error(t, NewService(repo).Append(context.Background(), domain.Order{}))
	assert.Zero(t, repo.saves)
}

func TestAppendDoesNotOverwriteUnreadableHistory(t *testing.T) {
	repo := &memRepo{loadErr: errors.Wrap(ErrCorruptHistory, "unexpected end of JSON input")}
	err := NewService(repo).Append(context.Background(), order("a", 0, 1000))

	assert.ErrorIs(t, err, ErrCorruptHistory)
	assert.Zero(t, repo.saves)
}

func TestListSortsNewestFirst(t *testing.T) {
	repo := &memRepo{orders: []domain.Order{order("old", 0, 1), order("new", 10, 1), order("mid", 5, 1)}}

	orders, err := NewService(repo).List(context.Background())
	require.NoError(t, err)

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
}

func TestGet(t *testing.T) {
	repo := &memRepo{orders: []domain.Order{order("a", 0, 1000), order("b", 1, 2000)}}
	svc := NewService(repo)

	o, err := svc.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", o.ID)

	_, err = svc.Get(context.Background(), "zzz")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSummary(t *testing.T) {
	repo := &memRepo{orders: []domain.Order{order("a", 0, 1000), order("b", 1, 2500)}}

	sum, err := NewService(repo).Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Count)
	assert.True(t, decimal.NewFromInt(3500).Equal(sum.TotalSpent))

	empty, err := NewService(&memRepo{}).Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Count)
	assert.True(t, empty.TotalSpent.IsZero())
}

func TestConcurrentAppendsKeepEveryOrder(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, svc.Append(context.Background(), order(string(rune('a'+i)), i, 1)))
		}(i)
	}
	wg.Wait()

	assert.Len(t, repo.orders, 20)
}
