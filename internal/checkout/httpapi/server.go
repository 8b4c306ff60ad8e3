package httpapi

import (
	"context"
	"net/http"

	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/httpx"
	"github.com/dwikikusuma/storefront/pkg/money"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var errBadBody = errors.New("malformed request body")

type Checkout interface {
	Quote(ctx context.Context) (domain.Quote, error)
	PlaceOrder(ctx context.Context, form domain.CustomerForm) (orderdomain.Order, error)
}

type Orders interface {
	List(ctx context.Context) ([]orderdomain.Order, error)
	Get(ctx context.Context, id string) (orderdomain.Order, error)
}

type Server struct {
	checkout Checkout
	orders   Orders
	log      *logrus.Entry
}

func NewServer(checkout Checkout, orders Orders, log *logrus.Entry) *Server {
	return &Server{checkout: checkout, orders: orders, log: log}
}

func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/checkout", s.quote).Methods(http.MethodGet)
	r.HandleFunc("/checkout", s.placeOrder).Methods(http.MethodPost)
	r.HandleFunc("/orders", s.listOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", s.getOrder).Methods(http.MethodGet)
}

type orderResponse struct {
	orderdomain.Order
	TotalItems     int    `json:"total_items"`
	TotalFormatted string `json:"total_formatted"`
}

func toOrderResponse(o orderdomain.Order) orderResponse {
	return orderResponse{Order: o, TotalItems: o.TotalItems(), TotalFormatted: money.FormatNaira(o.Total)}
}

type quoteResponse struct {
	domain.Quote
	TotalFormatted string `json:"total_formatted"`
}

type ordersResponse struct {
	Orders              []orderResponse `json:"orders"`
	Count               int             `json:"count"`
	TotalSpent          string          `json:"total_spent"`
	TotalSpentFormatted string          `json:"total_spent_formatted"`
}

func (s *Server) quote(w http.ResponseWriter, r *http.Request) {
	q, err := s.checkout.Quote(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, quoteResponse{Quote: q, TotalFormatted: money.FormatNaira(q.Total)})
}

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	var form domain.CustomerForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		s.fail(w, errors.Wrap(errBadBody, err.Error()))
		return
	}

	o, err := s.checkout.PlaceOrder(r.Context(), form)
	if err != nil {
		s.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}

	sum := orderdomain.Summarize(orders)
	resp := ordersResponse{
		Orders:              make([]orderResponse, 0, len(orders)),
		Count:               sum.Count,
		TotalSpent:          sum.TotalSpent.String(),
		TotalSpentFormatted: money.FormatNaira(sum.TotalSpent),
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(o))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := s.orders.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrderResponse(o))
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if status, _, _ := httpx.StatusFromError(err, classify); status >= http.StatusInternalServerError {
		s.log.WithError(err).Error("checkout request failed")
	}
	httpx.WriteError(w, err, classify)
}

func classify(err error) (int, string, bool) {
	switch {
	case errors.Is(err, errBadBody), errors.Is(err, domain.ErrInvalidCustomer):
		return http.StatusBadRequest, "INVALID_ARGUMENT", true
	case errors.Is(err, app.ErrEmptyCart):
		return http.StatusConflict, "EMPTY_CART", true
	case errors.Is(err, orderapp.ErrOrderNotFound):
		return http.StatusNotFound, "NOT_FOUND", true
	}
	return 0, "", false
}
