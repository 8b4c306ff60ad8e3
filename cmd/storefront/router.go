package main

import (
	"net/http"
	"time"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	carthttp "github.com/dwikikusuma/storefront/internal/cart/httpapi"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	cataloghttp "github.com/dwikikusuma/storefront/internal/catalog/httpapi"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	checkouthttp "github.com/dwikikusuma/storefront/internal/checkout/httpapi"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/pkg/httpx"
	"github.com/dwikikusuma/storefront/pkg/metrics"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type services struct {
	cart     *cartapp.Engine
	catalog  *catalogapp.Service
	checkout *checkoutapp.Service
	orders   *orderapp.Service
}

type routerOptions struct {
	rateLimit int
	rateBurst int
	rateIdle  time.Duration
}

func newRouter(svc services, opts routerOptions, log *logrus.Entry) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !svc.cart.Hydrated() {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "hydrating"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	carthttp.NewServer(svc.cart, log).Register(r)
	cataloghttp.NewServer(svc.catalog, log).Register(r)
	checkouthttp.NewServer(svc.checkout, svc.orders, log).Register(r)

	r.Use(httpx.LogRequests(log), metrics.InstrumentHandler)
	if opts.rateLimit > 0 {
		r.Use(httpx.NewRateLimiter(opts.rateLimit, opts.rateBurst, opts.rateIdle).Handler)
	}
	return r
}
