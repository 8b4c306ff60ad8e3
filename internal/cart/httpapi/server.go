package httpapi

import (
	"net/http"
	"strings"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/httpx"
	"github.com/dwikikusuma/storefront/pkg/money"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var errInvalidInput = errors.New("invalid input")

// Cart is the slice of the cart engine the transport needs.
type Cart interface {
	AddItem(item domain.NewItem)
	RemoveItem(id string, customizations []domain.Customization)
	IncreaseQty(id string, customizations []domain.Customization)
	DecreaseQty(id string, customizations []domain.Customization)
	ClearCart()
	Snapshot() domain.Snapshot
	Subscribe(fn func(domain.Snapshot)) func()
}

type Server struct {
	cart Cart
	log  *logrus.Entry
}

func NewServer(cart Cart, log *logrus.Entry) *Server {
	return &Server{cart: cart, log: log}
}

func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/cart", s.getCart).Methods(http.MethodGet)
	r.HandleFunc("/cart", s.clearCart).Methods(http.MethodDelete)
	r.HandleFunc("/cart/items", s.addItem).Methods(http.MethodPost)
	r.HandleFunc("/cart/items/increase", s.lineOp(s.cart.IncreaseQty)).Methods(http.MethodPost)
	r.HandleFunc("/cart/items/decrease", s.lineOp(s.cart.DecreaseQty)).Methods(http.MethodPost)
	r.HandleFunc("/cart/items/remove", s.lineOp(s.cart.RemoveItem)).Methods(http.MethodPost)
	r.HandleFunc("/cart/ws", s.watch).Methods(http.MethodGet)
}

type addItemRequest struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Price          decimal.Decimal        `json:"price"`
	ImageURL       string                 `json:"image_url"`
	Customizations []domain.Customization `json:"customizations"`
}

type lineRequest struct {
	ID             string                 `json:"id"`
	Customizations []domain.Customization `json:"customizations"`
}

type cartResponse struct {
	Items          domain.Lines    `json:"items"`
	TotalItems     int             `json:"total_items"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	TotalFormatted string          `json:"total_formatted"`
}

func toResponse(s domain.Snapshot) cartResponse {
	return cartResponse{
		Items:          s.Items,
		TotalItems:     s.TotalItems,
		TotalPrice:     s.TotalPrice,
		TotalFormatted: money.FormatNaira(s.TotalPrice),
	}
}

func (s *Server) getCart(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, toResponse(s.cart.Snapshot()))
}

func (s *Server) clearCart(w http.ResponseWriter, _ *http.Request) {
	s.cart.ClearCart()
	httpx.WriteJSON(w, http.StatusOK, toResponse(s.cart.Snapshot()))
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, errors.Wrap(errInvalidInput, err.Error()), classify)
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		httpx.WriteError(w, errors.Wrap(errInvalidInput, "id is required"), classify)
		return
	}
	if req.Price.IsNegative() {
		httpx.WriteError(w, errors.Wrap(errInvalidInput, "price cannot be negative"), classify)
		return
	}

	s.cart.AddItem(domain.NewItem{
		ID:             req.ID,
		Name:           req.Name,
		Price:          req.Price,
		ImageURL:       req.ImageURL,
		Customizations: req.Customizations,
	})
	httpx.WriteJSON(w, http.StatusOK, toResponse(s.cart.Snapshot()))
}

func (s *Server) lineOp(op func(string, []domain.Customization)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lineRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, errors.Wrap(errInvalidInput, err.Error()), classify)
			return
		}
		if strings.TrimSpace(req.ID) == "" {
			httpx.WriteError(w, errors.Wrap(errInvalidInput, "id is required"), classify)
			return
		}

		op(req.ID, req.Customizations)
		httpx.WriteJSON(w, http.StatusOK, toResponse(s.cart.Snapshot()))
	}
}

func classify(err error) (int, string, bool) {
	if errors.Is(err, errInvalidInput) {
		return http.StatusBadRequest, "INVALID_ARGUMENT", true
	}
	return 0, "", false
}
