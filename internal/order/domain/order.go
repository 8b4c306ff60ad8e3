package domain

import (
	"time"

	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/shopspring/decimal"
)

// Customer holds the delivery details captured at checkout. Phone and Email
// are optional individually but at least one is present on a placed order.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address"`
	City    string `json:"city"`
}

type Order struct {
	ID        string           `json:"id"`
	Items     cartdomain.Lines `json:"items"`
	Total     decimal.Decimal  `json:"total"`
	CreatedAt time.Time        `json:"createdAt"`
	Customer  Customer         `json:"customer"`
}

func (o Order) TotalItems() int { return o.Items.TotalItems() }

type Summary struct {
	Count      int             `json:"count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

func Summarize(orders []Order) Summary {
	s := Summary{Count: len(orders), TotalSpent: decimal.Zero}
	for _, o := range orders {
		s.TotalSpent = s.TotalSpent.Add(o.Total)
	}
	return s
}
