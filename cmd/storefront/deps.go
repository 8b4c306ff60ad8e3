package main

import (
	"context"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/infra/appwrite"
	"github.com/dwikikusuma/storefront/internal/catalog/infra/fixture"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	orderkv "github.com/dwikikusuma/storefront/internal/order/infra/kv"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/kvstore"
	"github.com/dwikikusuma/storefront/pkg/kvstore/pgstore"
	"github.com/dwikikusuma/storefront/pkg/kvstore/redisstore"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func openStore(ctx context.Context, cfg config.Config, log *logrus.Entry) (kvstore.Store, func(), error) {
	log = log.WithField("driver", cfg.StoreDriver)

	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("using in-memory store, nothing survives a restart")
		return kvstore.NewMemory(), func() {}, nil

	case config.StoreFile:
		store, err := kvstore.NewFile(cfg.StoreDir)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("dir", cfg.StoreDir).Info("store ready")
		return store, func() {}, nil

	case config.StoreRedis:
		store := redisstore.New(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, errors.Wrap(err, "ping redis")
		}
		log.WithField("addr", cfg.RedisAddr).Info("store ready")
		return store, func() {
			if err := store.Close(); err != nil {
				log.WithError(err).Warn("close redis")
			}
		}, nil

	case config.StorePostgres:
		db, err := postgres.Open(postgres.Config{
			Host:    cfg.PostgresHost,
			Port:    cfg.PostgresPort,
			User:    cfg.PostgresUser,
			Pass:    cfg.PostgresPassword,
			DB:      cfg.PostgresDB,
			SSLMode: cfg.PostgresSSLMode,
		})
		if err != nil {
			return nil, nil, err
		}
		store := pgstore.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.WithField("host", cfg.PostgresHost).Info("store ready")
		return store, func() {
			if err := db.Close(); err != nil {
				log.WithError(err).Warn("close postgres")
			}
		}, nil
	}
	return nil, nil, errors.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func newCatalogSource(cfg config.Config, log *logrus.Entry) (catalogapp.DocumentSource, error) {
	if cfg.CatalogFixture != "" {
		log.WithField("path", cfg.CatalogFixture).Info("serving catalog from fixture")
		return fixture.Load(cfg.CatalogFixture)
	}

	client, err := appwrite.New(appwrite.Config{
		Endpoint:   cfg.AppwriteEndpoint,
		ProjectID:  cfg.AppwriteProjectID,
		APIKey:     cfg.AppwriteAPIKey,
		DatabaseID: cfg.AppwriteDatabaseID,
		Retries:    cfg.CatalogRetries,
		RPS:        cfg.CatalogRPS,
	}, log)
	if errors.Is(err, appwrite.ErrNotConfigured) {
		return nil, errors.Wrap(err, "set CATALOG_FIXTURE or APPWRITE_ENDPOINT")
	}
	return client, err
}

func newCatalog(cfg config.Config, source catalogapp.DocumentSource, log *logrus.Entry) *catalogapp.Service {
	return catalogapp.NewService(source, catalogapp.Options{
		ProductsCollection:   cfg.AppwriteProductsColID,
		CategoriesCollection: cfg.AppwriteCategoriesColID,
		ProductsTTL:          cfg.CatalogProductsTTL,
		CategoriesTTL:        cfg.CatalogCategoriesTTL,
		CacheSize:            cfg.CatalogCacheSize,
	}, log)
}

func newEngine(cfg config.Config, store kvstore.Store, log *logrus.Entry) *cartapp.Engine {
	return cartapp.NewEngine(store, cartapp.Options{
		StorageKey:   cfg.CartStorageKey,
		Debounce:     cfg.CartPersistDebounce,
		WriteTimeout: cfg.CartPersistTimeout,
	}, log)
}

func newHistory(cfg config.Config, store kvstore.Store) *orderapp.Service {
	return orderapp.NewService(orderkv.NewOrderRepo(store, cfg.OrdersStorageKey))
}
