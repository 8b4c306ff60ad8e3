package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	checkoutadapter "github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	shutdownTimeout = 10 * time.Second
	warmTimeout     = 30 * time.Second
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the HTTP API",
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	cfg, log, err := setup(c, "storefront")
	if err != nil {
		return err
	}

	ctx, cancel := shutdown.WithSignals(c.Context, log)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	source, err := newCatalogSource(cfg, log)
	if err != nil {
		return err
	}

	engine := newEngine(cfg, store, log)
	engine.Hydrate(ctx)

	catalog := newCatalog(cfg, source, log)
	history := newHistory(cfg, store)
	checkout := checkoutapp.NewService(checkoutadapter.NewCartEngineReader(engine), history, log)

	scheduler, err := startWarmup(ctx, cfg.CatalogRefreshSchedule, catalog, log)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr: addr,
		Handler: newRouter(services{
			cart:     engine,
			catalog:  catalog,
			checkout: checkout,
			orders:   history,
		}, routerOptions{
			rateLimit: cfg.HTTPRateLimit,
			rateBurst: cfg.HTTPRateBurst,
			rateIdle:  cfg.HTTPRateLimitIdle,
		}, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.WithField("addr", addr).Info("http server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server error")
			cancel()
		}
	}()

	<-ctx.Done()

	teardown := shutdown.NewSequence(log)
	teardown.Add("http server", server.Shutdown)
	if scheduler != nil {
		teardown.Add("catalog scheduler", func(ctx context.Context) error {
			select {
			case <-scheduler.Stop().Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	teardown.Add("cart flush", engine.Flush)
	_ = teardown.Run(shutdownTimeout)

	wg.Wait()
	log.Info("bye")
	return nil
}

// startWarmup refreshes the catalog cache once now and then on the cron
// schedule. An empty schedule disables it.
func startWarmup(ctx context.Context, schedule string, catalog *catalogapp.Service, log *logrus.Entry) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}

	warm := func() {
		wctx, cancel := context.WithTimeout(ctx, warmTimeout)
		defer cancel()
		if err := catalog.Warm(wctx); err != nil {
			log.WithError(err).Warn("catalog warm-up failed")
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, warm); err != nil {
		return nil, errors.Wrapf(err, "invalid CATALOG_REFRESH_SCHEDULE %q", schedule)
	}
	scheduler.Start()
	go warm()

	return scheduler, nil
}
