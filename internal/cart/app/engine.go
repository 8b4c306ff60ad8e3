package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	DefaultStorageKey   = "cart_items_v1"
	DefaultDebounce     = 250 * time.Millisecond
	DefaultWriteTimeout = 5 * time.Second
)

type Options struct {
	StorageKey   string
	Debounce     time.Duration
	WriteTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.StorageKey == "" {
		o.StorageKey = DefaultStorageKey
	}
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
	return o
}

type mutation func(domain.Lines) domain.Lines

// Engine owns the cart for the running session. Mutations apply to memory
// synchronously; the full list is written back to the store once mutations
// have been quiet for the debounce window.
//
// Nothing is written until Hydrate has finished. Mutations made before that
// are kept and replayed on top of the stored lines.
type Engine struct {
	store Store
	opts  Options
	log   *logrus.Entry

	hydrateOnce sync.Once

	mu        sync.Mutex
	lines     domain.Lines
	hydrated  bool
	pending   []mutation
	timer     *time.Timer
	gen       uint64
	version   uint64
	observers map[int]func(domain.Snapshot)
	nextObs   int

	// notifyMu keeps observer calls in version order; delivered is the
	// newest version handed out.
	notifyMu  sync.Mutex
	delivered uint64

	// writeMu serializes writes; written is the newest generation on disk.
	writeMu sync.Mutex
	written uint64
}

func NewEngine(store Store, opts Options, log *logrus.Entry) *Engine {
	return &Engine{
		store:     store,
		opts:      opts.withDefaults(),
		log:       log,
		lines:     domain.Lines{},
		observers: make(map[int]func(domain.Snapshot)),
	}
}

func (e *Engine) AddItem(item domain.NewItem) {
	e.mutate("add", func(ls domain.Lines) domain.Lines { return ls.Add(item) })
}

func (e *Engine) RemoveItem(id string, customizations []domain.Customization) {
	e.mutate("remove", func(ls domain.Lines) domain.Lines { return ls.Remove(id, customizations) })
}

func (e *Engine) IncreaseQty(id string, customizations []domain.Customization) {
	e.mutate("increase", func(ls domain.Lines) domain.Lines { return ls.Increase(id, customizations) })
}

func (e *Engine) DecreaseQty(id string, customizations []domain.Customization) {
	e.mutate("decrease", func(ls domain.Lines) domain.Lines { return ls.Decrease(id, customizations) })
}

func (e *Engine) ClearCart() {
	e.mutate("clear", func(domain.Lines) domain.Lines { return domain.Lines{} })
}

// RemoveOrdered takes the quantities of a checked-out snapshot off the cart.
// Anything added after the snapshot was read stays in the cart.
func (e *Engine) RemoveOrdered(ordered domain.Lines) {
	e.mutate("checkout", func(ls domain.Lines) domain.Lines { return ls.Without(ordered) })
}

func (e *Engine) Items() domain.Lines {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lines.Clone()
}

func (e *Engine) TotalItems() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lines.TotalItems()
}

func (e *Engine) TotalPrice() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lines.TotalPrice()
}

// Snapshot returns items and totals read at the same instant.
func (e *Engine) Snapshot() domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() domain.Snapshot {
	snap := e.lines.Snapshot()
	snap.Version = e.version
	return snap
}

func (e *Engine) Hydrated() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hydrated
}

// Subscribe registers fn to receive a snapshot after every change. Snapshots
// arrive in version order; one overtaken by a newer state before delivery is
// skipped. fn must not call back into the engine. The returned func removes
// the subscription.
func (e *Engine) Subscribe(fn func(domain.Snapshot)) func() {
	e.mu.Lock()
	id := e.nextObs
	e.nextObs++
	e.observers[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.observers, id)
		e.mu.Unlock()
	}
}

func (e *Engine) mutate(op string, m mutation) {
	e.mu.Lock()
	e.lines = m(e.lines)
	e.version++
	if e.hydrated {
		e.scheduleLocked()
	} else {
		e.pending = append(e.pending, m)
	}
	snap, observers := e.snapshotLocked(), e.observersLocked()
	e.mu.Unlock()

	metrics.CartMutation(op)
	e.notify(observers, snap)
}

// Hydrate loads the stored cart once. Read failures and malformed payloads
// leave the cart empty. Later calls return immediately.
func (e *Engine) Hydrate(ctx context.Context) {
	e.hydrateOnce.Do(func() {
		stored := e.load(ctx)

		e.mu.Lock()
		lines := stored
		for _, m := range e.pending {
			lines = m(lines)
		}
		replay := len(e.pending) > 0
		e.pending = nil
		e.lines = lines
		e.version++
		e.hydrated = true
		if replay {
			e.scheduleLocked()
		}
		snap, observers := e.snapshotLocked(), e.observersLocked()
		e.mu.Unlock()

		e.notify(observers, snap)
	})
}

func (e *Engine) load(ctx context.Context) domain.Lines {
	log := e.log.WithField("key", e.opts.StorageKey)

	raw, found, err := e.store.Get(ctx, e.opts.StorageKey)
	if err != nil {
		log.WithError(err).Warn("failed to load cart from storage")
		metrics.CartHydration("error")
		return domain.Lines{}
	}
	if !found || raw == "" {
		metrics.CartHydration("empty")
		return domain.Lines{}
	}

	var lines domain.Lines
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		log.WithError(err).Warn("discarding malformed stored cart")
		metrics.CartHydration("malformed")
		return domain.Lines{}
	}

	metrics.CartHydration("ok")
	return lines.Normalize()
}

// scheduleLocked replaces any pending write with one carrying the current
// lines. Callers hold e.mu.
func (e *Engine) scheduleLocked() {
	e.gen++
	gen, data := e.gen, e.lines.Clone()

	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.opts.Debounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.opts.WriteTimeout)
		defer cancel()
		_ = e.persist(ctx, gen, data)
	})
}

// Flush cancels the pending write and stores the current lines right away.
// It does nothing before hydration or when the store is already current.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	if !e.hydrated {
		e.mu.Unlock()
		return nil
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	gen, data := e.gen, e.lines.Clone()
	e.mu.Unlock()

	return e.persist(ctx, gen, data)
}

func (e *Engine) persist(ctx context.Context, gen uint64, data domain.Lines) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if gen <= e.written {
		return nil
	}

	raw, err := json.Marshal(domain.StoredLines(data))
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}

	if err := e.store.Set(ctx, e.opts.StorageKey, string(raw)); err != nil {
		e.log.WithError(err).WithField("key", e.opts.StorageKey).Warn("failed to save cart to storage")
		metrics.CartPersist(false)
		return errors.Wrap(err, "save cart")
	}

	e.written = gen
	metrics.CartPersist(true)
	return nil
}

func (e *Engine) observersLocked() []func(domain.Snapshot) {
	if len(e.observers) == 0 {
		return nil
	}
	out := make([]func(domain.Snapshot), 0, len(e.observers))
	for _, fn := range e.observers {
		out = append(out, fn)
	}
	return out
}

func (e *Engine) notify(observers []func(domain.Snapshot), snap domain.Snapshot) {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()

	if snap.Version <= e.delivered {
		return
	}
	e.delivered = snap.Version
	for _, fn := range observers {
		fn(snap)
	}
}
