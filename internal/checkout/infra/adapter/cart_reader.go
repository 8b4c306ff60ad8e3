package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
)

// CartEngineReader lets checkout read the cart engine. Reads wait for
// hydration so an order never captures a cart that is still loading.
type CartEngineReader struct {
	engine *cartapp.Engine
}

func NewCartEngineReader(engine *cartapp.Engine) *CartEngineReader {
	return &CartEngineReader{engine: engine}
}

func (r *CartEngineReader) Snapshot(ctx context.Context) (cartdomain.Snapshot, error) {
	r.engine.Hydrate(ctx)
	if err := ctx.Err(); err != nil {
		return cartdomain.Snapshot{}, err
	}
	return r.engine.Snapshot(), nil
}

func (r *CartEngineReader) RemoveOrdered(ordered cartdomain.Lines) {
	r.engine.RemoveOrdered(ordered)
}
