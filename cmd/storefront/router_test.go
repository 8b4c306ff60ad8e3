package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dwikikusuma/storefront/internal/catalog/infra/fixture"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	checkoutadapter "github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/kvstore"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const catalogYAML = `
products:
  - $id: p1
    name: Classic Burger
    price: 2500
    categories: Burgers
categories:
  - $id: c1
    name: Extra Cheese
    price: 200
    type: topping
`

func testConfig(t *testing.T) config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o644))

	return config.Config{
		StoreDriver:             config.StoreMemory,
		CartStorageKey:          "cart_items_v1",
		OrdersStorageKey:        "orders_v1",
		AppwriteProductsColID:   "products",
		AppwriteCategoriesColID: "categories",
		CatalogFixture:          path,
	}
}

func newTestServices(t *testing.T, cfg config.Config, hydrate bool) services {
	t.Helper()
	log := logger.Discard()
	store := kvstore.NewMemory()

	source, err := newCatalogSource(cfg, log)
	require.NoError(t, err)

	engine := newEngine(cfg, store, log)
	if hydrate {
		engine.Hydrate(context.Background())
	}
	history := newHistory(cfg, store)

	return services{
		cart:     engine,
		catalog:  newCatalog(cfg, source, log),
		checkout: checkoutapp.NewService(checkoutadapter.NewCartEngineReader(engine), history, log),
		orders:   history,
	}
}

func call(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterWiring(t *testing.T) {
	svc := newTestServices(t, testConfig(t), true)
	h := newRouter(svc, routerOptions{}, logger.Discard())

	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/readyz", "").Code)

	rec := call(t, h, http.MethodGet, "/products?q=burger", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", gjson.Get(rec.Body.String(), "products.0.id").String())

	rec = call(t, h, http.MethodPost, "/cart/items", `{"id":"p1","name":"Classic Burger","price":2500}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h, http.MethodPost, "/checkout", `{"name":"Ada","phone":"0800","address":"1 Main St","city":"Lagos"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 0, svc.cart.TotalItems())

	rec = call(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_http_requests_total")
	assert.Contains(t, rec.Body.String(), "storefront_checkout_orders_placed_total")
}

func TestReadyzWaitsForHydration(t *testing.T) {
	svc := newTestServices(t, testConfig(t), false)
	h := newRouter(svc, routerOptions{}, logger.Discard())

	assert.Equal(t, http.StatusServiceUnavailable, call(t, h, http.MethodGet, "/readyz", "").Code)
	svc.cart.Hydrate(context.Background())
	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/readyz", "").Code)
}

func TestRouterRateLimit(t *testing.T) {
	svc := newTestServices(t, testConfig(t), true)
	h := newRouter(svc, routerOptions{rateLimit: 1, rateBurst: 1}, logger.Discard())

	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, call(t, h, http.MethodGet, "/healthz", "").Code)
}

func TestCatalogSourceSelection(t *testing.T) {
	cfg := testConfig(t)
	src, err := newCatalogSource(cfg, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &fixture.Source{}, src)

	cfg.CatalogFixture = ""
	_, err = newCatalogSource(cfg, logger.Discard())
	assert.Error(t, err)
}

func TestStartWarmup(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestServices(t, cfg, true)

	sched, err := startWarmup(context.Background(), "", svc.catalog, logger.Discard())
	require.NoError(t, err)
	assert.Nil(t, sched)

	_, err = startWarmup(context.Background(), "every other tuesday", svc.catalog, logger.Discard())
	assert.Error(t, err)

	sched, err = startWarmup(context.Background(), "@every 1h", svc.catalog, logger.Discard())
	require.NoError(t, err)
	<-sched.Stop().Done()
}

func TestOpenStoreFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreDriver = config.StoreFile
	cfg.StoreDir = t.TempDir()

	store, closeStore, err := openStore(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	defer closeStore()

	require.NoError(t, store.Set(context.Background(), "k", "v"))
	v, found, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)
}
