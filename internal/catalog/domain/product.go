package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const (
	DefaultCategory     = "General"
	DefaultProductName  = "Unnamed Product"
	DefaultCategoryName = "Uncategorized"
	AllCategories       = "all"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Rating      *float64        `json:"rating,omitempty"`
	InStock     *bool           `json:"inStock,omitempty"`
}

type CategoryItem struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Type  string          `json:"type"`
}

type Sort string

const (
	SortNone      Sort = ""
	SortPriceAsc  Sort = "price-asc"
	SortPriceDesc Sort = "price-desc"
)

type Filter struct {
	Category string
	Query    string
	Sort     Sort
}

// Key identifies the filter for caching.
func (f Filter) Key() string {
	return "products|" + f.Category + "|" + strings.ToLower(f.Query) + "|" + string(f.Sort)
}

// ProductFromDocument maps a remote document onto Product, filling defaults
// for anything missing or of the wrong type.
func ProductFromDocument(doc gjson.Result) Product {
	p := Product{
		ID:          doc.Get("$id").String(),
		Name:        stringOr(doc.Get("name"), DefaultProductName),
		Price:       number(doc.Get("price")),
		Image:       doc.Get("image_url").String(),
		Description: doc.Get("description").String(),
		Category:    CategoryOf(doc),
	}
	if r := doc.Get("rating"); r.Type == gjson.Number {
		v := r.Float()
		p.Rating = &v
	}
	if s := doc.Get("inStock"); s.IsBool() {
		v := s.Bool()
		p.InStock = &v
	}
	return p
}

// CategoryOf resolves the category of a product document. The store has held
// several shapes over time: a category_name string, a categories field that is
// a string, an array of strings or objects, or a single object, and finally a
// type field.
func CategoryOf(doc gjson.Result) string {
	if v := doc.Get("category_name"); v.Type == gjson.String && v.Str != "" {
		return v.Str
	}

	cats := doc.Get("categories")
	switch {
	case cats.Type == gjson.String && cats.Str != "":
		return cats.Str
	case cats.IsArray():
		if first := cats.Get("0"); first.Exists() {
			if first.Type == gjson.String && first.Str != "" {
				return first.Str
			}
			if c := objectCategory(first); c != "" {
				return c
			}
		}
	case cats.IsObject():
		if c := objectCategory(cats); c != "" {
			return c
		}
	}

	if v := doc.Get("type"); v.Type == gjson.String && v.Str != "" {
		return v.Str
	}
	return DefaultCategory
}

func objectCategory(obj gjson.Result) string {
	if !obj.IsObject() {
		return ""
	}
	if id := obj.Get("$id").String(); id != "" {
		return id
	}
	return obj.Get("name").String()
}

func CategoryFromDocument(doc gjson.Result) CategoryItem {
	id := doc.Get("id").String()
	if id == "" {
		id = doc.Get("$id").String()
	}
	return CategoryItem{
		ID:    id,
		Name:  stringOr(doc.Get("name"), DefaultCategoryName),
		Price: number(doc.Get("price")),
		Type:  stringOr(doc.Get("type"), DefaultCategory),
	}
}

func stringOr(v gjson.Result, def string) string {
	if v.Type == gjson.String {
		return v.Str
	}
	return def
}

func number(v gjson.Result) decimal.Decimal {
	if v.Type != gjson.Number {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v.Raw)
	if err != nil {
		return decimal.NewFromFloat(v.Num)
	}
	return d
}

// Apply filters by category and name, then sorts by price when asked.
// "all" or an empty category disables the category filter.
func (f Filter) Apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	q := strings.ToLower(f.Query)
	for _, p := range products {
		if f.Category != "" && f.Category != AllCategories && p.Category != f.Category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	}
	return out
}
