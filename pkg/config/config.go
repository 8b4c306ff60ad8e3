package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	HTTPPort          int           `envconfig:"HTTP_PORT" default:"8080"`
	HTTPRateLimit     int           `envconfig:"HTTP_RATE_LIMIT" default:"50"`
	HTTPRateBurst     int           `envconfig:"HTTP_RATE_BURST" default:"100"`
	HTTPRateLimitIdle time.Duration `envconfig:"HTTP_RATE_LIMIT_IDLE" default:"10m"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"file"`
	StoreDir    string `envconfig:"STORE_DIR" default:"./data"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix   string `envconfig:"REDIS_PREFIX" default:"storefront:"`

	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"storefront"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"storefront"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"storefront"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`

	CartStorageKey      string        `envconfig:"CART_STORAGE_KEY" default:"cart_items_v1"`
	OrdersStorageKey    string        `envconfig:"ORDERS_STORAGE_KEY" default:"orders_v1"`
	CartPersistDebounce time.Duration `envconfig:"CART_PERSIST_DEBOUNCE" default:"250ms"`
	CartPersistTimeout  time.Duration `envconfig:"CART_PERSIST_TIMEOUT" default:"5s"`

	AppwriteEndpoint        string `envconfig:"APPWRITE_ENDPOINT"`
	AppwriteProjectID       string `envconfig:"APPWRITE_PROJECT_ID"`
	AppwriteAPIKey          string `envconfig:"APPWRITE_API_KEY"`
	AppwriteDatabaseID      string `envconfig:"APPWRITE_DATABASE_ID"`
	AppwriteProductsColID   string `envconfig:"APPWRITE_PRODUCTS_COLLECTION_ID" default:"products"`
	AppwriteCategoriesColID string `envconfig:"APPWRITE_CATEGORIES_COLLECTION_ID" default:"categories"`

	CatalogFixture         string        `envconfig:"CATALOG_FIXTURE"`
	CatalogProductsTTL     time.Duration `envconfig:"CATALOG_PRODUCTS_TTL" default:"5m"`
	CatalogCategoriesTTL   time.Duration `envconfig:"CATALOG_CATEGORIES_TTL" default:"10m"`
	CatalogCacheSize       int           `envconfig:"CATALOG_CACHE_SIZE" default:"256"`
	CatalogRetries         int           `envconfig:"CATALOG_RETRIES" default:"2"`
	CatalogRPS             float64       `envconfig:"CATALOG_RPS" default:"10"`
	CatalogRefreshSchedule string        `envconfig:"CATALOG_REFRESH_SCHEDULE" default:"@every 5m"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, errors.Wrapf(err, "load env file %s", f)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "process env")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreFile, StoreRedis, StorePostgres:
	default:
		return errors.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.CartPersistDebounce <= 0 {
		return errors.New("CART_PERSIST_DEBOUNCE must be positive")
	}
	if c.CatalogFixture == "" && c.AppwriteEndpoint != "" && c.AppwriteDatabaseID == "" {
		return errors.New("APPWRITE_DATABASE_ID is required when APPWRITE_ENDPOINT is set")
	}
	return nil
}
