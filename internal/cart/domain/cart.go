package domain

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"
)

// Customization is a priced add-on attached to a line item. Its identity for
// merging purposes is ID alone.
type Customization struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Type  string          `json:"type"`
}

// LineItem is one cart entry. ID is the product id; the same product may
// appear on several lines with different customization sets.
type LineItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	ImageURL       string          `json:"image_url"`
	Quantity       int             `json:"quantity"`
	Customizations []Customization `json:"customizations"`
}

// NewItem is what callers hand to Add: a line item without a quantity.
type NewItem struct {
	ID             string
	Name           string
	Price          decimal.Decimal
	ImageURL       string
	Customizations []Customization
}

// SameCustomizations reports whether a and b hold the same customization ids,
// ignoring order. Name and price are not compared.
func SameCustomizations(a, b []Customization) bool {
	if len(a) != len(b) {
		return false
	}
	as, bs := sortedIDs(a), sortedIDs(b)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func sortedIDs(cs []Customization) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	sort.Strings(ids)
	return ids
}

func (l LineItem) Matches(id string, customizations []Customization) bool {
	return l.ID == id && SameCustomizations(l.Customizations, customizations)
}

// UnitPrice is the base price plus every customization price.
func (l LineItem) UnitPrice() decimal.Decimal {
	unit := l.Price
	for _, c := range l.Customizations {
		unit = unit.Add(c.Price)
	}
	return unit
}

func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l LineItem) clone() LineItem {
	cs := make([]Customization, len(l.Customizations))
	copy(cs, l.Customizations)
	l.Customizations = cs
	return l
}

// Lines is the ordered list of cart line items. Every operation returns a new
// slice and leaves the receiver untouched, so a Lines value can be handed out
// as a snapshot.
type Lines []LineItem

func (ls Lines) Clone() Lines {
	out := make(Lines, len(ls))
	for i, l := range ls {
		out[i] = l.clone()
	}
	return out
}

func (ls Lines) index(id string, customizations []Customization) int {
	for i, l := range ls {
		if l.Matches(id, customizations) {
			return i
		}
	}
	return -1
}

// Add increments the matching line or appends a new one with quantity 1.
func (ls Lines) Add(item NewItem) Lines {
	customizations := item.Customizations
	if customizations == nil {
		customizations = []Customization{}
	}

	if i := ls.index(item.ID, customizations); i >= 0 {
		return ls.adjust(i, 1)
	}

	out := ls.Clone()
	return append(out, LineItem{
		ID:             item.ID,
		Name:           item.Name,
		Price:          item.Price,
		ImageURL:       item.ImageURL,
		Quantity:       1,
		Customizations: append([]Customization{}, customizations...),
	})
}

// Remove drops the matching line whatever its quantity.
func (ls Lines) Remove(id string, customizations []Customization) Lines {
	out := make(Lines, 0, len(ls))
	for _, l := range ls {
		if l.Matches(id, customizations) {
			continue
		}
		out = append(out, l.clone())
	}
	return out
}

func (ls Lines) Increase(id string, customizations []Customization) Lines {
	i := ls.index(id, customizations)
	if i < 0 {
		return ls.Clone()
	}
	return ls.adjust(i, 1)
}

// Decrease decrements the matching line and drops it when it reaches zero.
func (ls Lines) Decrease(id string, customizations []Customization) Lines {
	i := ls.index(id, customizations)
	if i < 0 {
		return ls.Clone()
	}
	return ls.adjust(i, -1)
}

func (ls Lines) adjust(i, delta int) Lines {
	out := ls.Clone()
	out[i].Quantity += delta
	if out[i].Quantity > 0 {
		return out
	}
	return append(out[:i], out[i+1:]...)
}

// Without subtracts the quantities in ordered from the matching lines and
// drops lines that reach zero. Lines and quantities not in ordered stay.
func (ls Lines) Without(ordered Lines) Lines {
	out := make(Lines, 0, len(ls))
	for _, l := range ls {
		l = l.clone()
		for _, o := range ordered {
			if l.Matches(o.ID, o.Customizations) {
				l.Quantity -= o.Quantity
				break
			}
		}
		if l.Quantity > 0 {
			out = append(out, l)
		}
	}
	return out
}

func (ls Lines) TotalItems() int {
	total := 0
	for _, l := range ls {
		total += l.Quantity
	}
	return total
}

func (ls Lines) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range ls {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Normalize repairs a list read back from storage: lines below quantity 1 are
// dropped and missing customization lists become empty.
func (ls Lines) Normalize() Lines {
	out := make(Lines, 0, len(ls))
	for _, l := range ls {
		if l.Quantity < 1 {
			continue
		}
		l = l.clone()
		out = append(out, l)
	}
	return out
}

// Snapshot is a point-in-time view of the cart with its derived totals.
// Version orders snapshots taken from the same engine; a higher version is a
// newer state.
type Snapshot struct {
	Items      Lines           `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Version    uint64          `json:"-"`
}

func (ls Lines) Snapshot() Snapshot {
	items := ls.Clone()
	return Snapshot{
		Items:      items,
		TotalItems: items.TotalItems(),
		TotalPrice: items.TotalPrice(),
	}
}

// StoredLines is the persisted form of Lines: prices are written as bare JSON
// numbers, which is what older stored carts and orders hold. Lines reads
// both numbers and strings.
type StoredLines Lines

type storedCustomization struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
	Type  string      `json:"type"`
}

type storedLine struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Price          json.Number           `json:"price"`
	ImageURL       string                `json:"image_url"`
	Quantity       int                   `json:"quantity"`
	Customizations []storedCustomization `json:"customizations"`
}

func (s StoredLines) MarshalJSON() ([]byte, error) {
	out := make([]storedLine, len(s))
	for i, l := range s {
		cs := make([]storedCustomization, len(l.Customizations))
		for j, c := range l.Customizations {
			cs[j] = storedCustomization{ID: c.ID, Name: c.Name, Price: Number(c.Price), Type: c.Type}
		}
		out[i] = storedLine{
			ID:             l.ID,
			Name:           l.Name,
			Price:          Number(l.Price),
			ImageURL:       l.ImageURL,
			Quantity:       l.Quantity,
			Customizations: cs,
		}
	}
	return json.Marshal(out)
}

// Number renders d as an unquoted JSON number.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
