package httpapi

import (
	"context"
	"net/http"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/httpx"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Catalog interface {
	ListProducts(ctx context.Context, f domain.Filter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.CategoryItem, error)
}

type Server struct {
	catalog Catalog
	log     *logrus.Entry
}

func NewServer(catalog Catalog, log *logrus.Entry) *Server {
	return &Server{catalog: catalog, log: log}
}

func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", s.getProduct).Methods(http.MethodGet)
	r.HandleFunc("/categories", s.listCategories).Methods(http.MethodGet)
}

type productsResponse struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
}

type categoriesResponse struct {
	Categories []domain.CategoryItem `json:"categories"`
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.Filter{
		Category: q.Get("category"),
		Query:    q.Get("q"),
		Sort:     domain.Sort(q.Get("sort")),
	}

	products, err := s.catalog.ListProducts(r.Context(), f)
	if err != nil {
		s.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, productsResponse{Products: products, Count: len(products)})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.catalog.ListCategories(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, categoriesResponse{Categories: cats})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status, _, _ := httpx.StatusFromError(err, classify)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).Error("catalog request failed")
	}
	httpx.WriteError(w, err, classify)
}

func classify(err error) (int, string, bool) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_ARGUMENT", true
	case errors.Is(err, app.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", true
	}
	return 0, "", false
}
