package app

import (
	"context"
	"strings"
	"time"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

const (
	DefaultProductsTTL   = 5 * time.Minute
	DefaultCategoriesTTL = 10 * time.Minute
	DefaultCacheSize     = 256

	categoriesKey = "categories"
)

type Options struct {
	ProductsCollection   string
	CategoriesCollection string
	ProductsTTL          time.Duration
	CategoriesTTL        time.Duration
	CacheSize            int
}

func (o Options) withDefaults() Options {
	if o.ProductsCollection == "" {
		o.ProductsCollection = "products"
	}
	if o.CategoriesCollection == "" {
		o.CategoriesCollection = "categories"
	}
	if o.ProductsTTL <= 0 {
		o.ProductsTTL = DefaultProductsTTL
	}
	if o.CategoriesTTL <= 0 {
		o.CategoriesTTL = DefaultCategoriesTTL
	}
	if o.CacheSize <= 0 {
		o.CacheSize = DefaultCacheSize
	}
	return o
}

// Service answers catalog queries from a short-lived cache in front of the
// document store.
type Service struct {
	source DocumentSource
	opts   Options
	log    *logrus.Entry

	lists      *expirable.LRU[string, []domain.Product]
	products   *expirable.LRU[string, domain.Product]
	categories *expirable.LRU[string, []domain.CategoryItem]
	group      singleflight.Group
}

func NewService(source DocumentSource, opts Options, log *logrus.Entry) *Service {
	opts = opts.withDefaults()
	return &Service{
		source:     source,
		opts:       opts,
		log:        log.WithField("component", "catalog"),
		lists:      expirable.NewLRU[string, []domain.Product](opts.CacheSize, nil, opts.ProductsTTL),
		products:   expirable.NewLRU[string, domain.Product](opts.CacheSize, nil, opts.ProductsTTL),
		categories: expirable.NewLRU[string, []domain.CategoryItem](1, nil, opts.CategoriesTTL),
	}
}

// ListProducts returns the products matching f, in remote order unless a
// price sort is requested.
func (s *Service) ListProducts(ctx context.Context, f domain.Filter) ([]domain.Product, error) {
	key := f.Key()
	if cached, ok := s.lists.Get(key); ok {
		metrics.CatalogCacheLookup("products", true)
		return cached, nil
	}
	metrics.CatalogCacheLookup("products", false)

	all, ok := s.lists.Get(domain.Filter{}.Key())
	if !ok {
		var err error
		if all, err = s.allProducts(ctx); err != nil {
			return nil, err
		}
	}

	out := f.Apply(all)
	s.lists.Add(key, out)
	return out, nil
}

func (s *Service) allProducts(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := s.group.Do(domain.Filter{}.Key(), func() (any, error) {
		docs, err := s.source.ListDocuments(ctx, s.opts.ProductsCollection)
		if err != nil {
			return nil, errors.Wrap(err, "list products")
		}

		out := make([]domain.Product, 0, len(docs))
		for _, doc := range docs {
			p := domain.ProductFromDocument(doc)
			out = append(out, p)
			if p.ID != "" {
				s.products.Add(productKey(p.ID), p)
			}
		}
		s.lists.Add(domain.Filter{}.Key(), out)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, ErrInvalidInput
	}

	key := productKey(id)
	if cached, ok := s.products.Get(key); ok {
		metrics.CatalogCacheLookup("product", true)
		return cached, nil
	}
	metrics.CatalogCacheLookup("product", false)

	v, err, _ := s.group.Do(key, func() (any, error) {
		doc, err := s.source.GetDocument(ctx, s.opts.ProductsCollection, id)
		if err != nil {
			return nil, errors.Wrapf(err, "get product %s", id)
		}
		p := domain.ProductFromDocument(doc)
		s.products.Add(key, p)
		return p, nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return v.(domain.Product), nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.CategoryItem, error) {
	if cached, ok := s.categories.Get(categoriesKey); ok {
		metrics.CatalogCacheLookup("categories", true)
		return cached, nil
	}
	metrics.CatalogCacheLookup("categories", false)
	return s.allCategories(ctx)
}

func (s *Service) allCategories(ctx context.Context) ([]domain.CategoryItem, error) {
	v, err, _ := s.group.Do(categoriesKey, func() (any, error) {
		docs, err := s.source.ListDocuments(ctx, s.opts.CategoriesCollection)
		if err != nil {
			return nil, errors.Wrap(err, "list categories")
		}
		out := make([]domain.CategoryItem, 0, len(docs))
		for _, doc := range docs {
			out = append(out, domain.CategoryFromDocument(doc))
		}
		s.categories.Add(categoriesKey, out)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.CategoryItem), nil
}

// Warm refetches products and categories concurrently. Filtered results are
// dropped only once both fetches succeed, so a failed warm-up keeps serving
// what is cached.
func (s *Service) Warm(ctx context.Context) error {
	var (
		products   []domain.Product
		categories []domain.CategoryItem
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = s.allProducts(ctx)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.allCategories(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.lists.Purge()
	s.lists.Add(domain.Filter{}.Key(), products)

	s.log.WithFields(logrus.Fields{
		"products":   len(products),
		"categories": len(categories),
	}).Info("catalog cache warmed")
	return nil
}

func (s *Service) Invalidate() {
	s.lists.Purge()
	s.products.Purge()
	s.categories.Purge()
}

func productKey(id string) string { return "product|" + id }
