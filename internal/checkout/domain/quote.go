package domain

import (
	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/shopspring/decimal"
)

type QuoteLine struct {
	ProductID      string          `json:"product_id"`
	Name           string          `json:"name"`
	Customizations []string        `json:"customizations"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// Quote is the order summary shown before the customer confirms.
type Quote struct {
	Lines      []QuoteLine     `json:"lines"`
	TotalItems int             `json:"total_items"`
	Total      decimal.Decimal `json:"total"`
}

func QuoteFrom(s cartdomain.Snapshot) Quote {
	lines := make([]QuoteLine, 0, len(s.Items))
	for _, it := range s.Items {
		names := make([]string, 0, len(it.Customizations))
		for _, c := range it.Customizations {
			names = append(names, c.Name)
		}
		lines = append(lines, QuoteLine{
			ProductID:      it.ID,
			Name:           it.Name,
			Customizations: names,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice(),
			LineTotal:      it.Subtotal(),
		})
	}
	return Quote{Lines: lines, TotalItems: s.TotalItems, Total: s.TotalPrice}
}
