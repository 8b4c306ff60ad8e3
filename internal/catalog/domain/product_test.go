package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestCategoryOf(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"category_name wins", `{"category_name":"Burgers","categories":"Pizza"}`, "Burgers"},
		{"string", `{"categories":"Pizza"}`, "Pizza"},
		{"array of strings", `{"categories":["Drinks","Shakes"]}`, "Drinks"},
		{"array of objects with id", `{"categories":[{"$id":"cat-1","name":"Sides"}]}`, "cat-1"},
		{"array of objects with name", `{"categories":[{"name":"Sides"}]}`, "Sides"},
		{"object with id", `{"categories":{"$id":"cat-2","name":"Wraps"}}`, "cat-2"},
		{"object with name", `{"categories":{"name":"Wraps"}}`, "Wraps"},
		{"type fallback", `{"type":"Dessert"}`, "Dessert"},
		{"empty array falls back", `{"categories":[],"type":"Dessert"}`, "Dessert"},
		{"absent", `{"name":"Mystery"}`, DefaultCategory},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CategoryOf(gjson.Parse(c.doc)))
		})
	}
}

func TestProductFromDocument(t *testing.T) {
	t.Run("full document", func(t *testing.T) {
		p := ProductFromDocument(gjson.Parse(`{"$id":"p1","name":"Classic Burger","price":2500.5,"image_url":"https://img/p1","description":"Beef","categories":"Burgers","rating":4.5,"inStock":true}`))

		assert.Equal(t, "p1", p.ID)
		assert.Equal(t, "Classic Burger", p.Name)
		assert.True(t, decimal.RequireFromString("2500.5").Equal(p.Price))
		assert.Equal(t, "https://img/p1", p.Image)
		assert.Equal(t, "Beef", p.Description)
		assert.Equal(t, "Burgers", p.Category)
		require.NotNil(t, p.Rating)
		assert.Equal(t, 4.5, *p.Rating)
		require.NotNil(t, p.InStock)
		assert.True(t, *p.InStock)
	})

	t.Run("defaults", func(t *testing.T) {
		p := ProductFromDocument(gjson.Parse(`{"$id":"p2","price":"12"}`))

		assert.Equal(t, DefaultProductName, p.Name)
		assert.True(t, p.Price.IsZero())
		assert.Equal(t, "", p.Image)
		assert.Equal(t, DefaultCategory, p.Category)
		assert.Nil(t, p.Rating)
		assert.Nil(t, p.InStock)
	})
}

func TestCategoryFromDocument(t *testing.T) {
	c := CategoryFromDocument(gjson.Parse(`{"$id":"c1","name":"Extra Cheese","price":200,"type":"topping"}`))
	assert.Equal(t, CategoryItem{ID: "c1", Name: "Extra Cheese", Price: c.Price, Type: "topping"}, c)
	assert.True(t, decimal.NewFromInt(200).Equal(c.Price))

	d := CategoryFromDocument(gjson.Parse(`{"id":"own-id","$id":"c2"}`))
	assert.Equal(t, "own-id", d.ID)
	assert.Equal(t, DefaultCategoryName, d.Name)
	assert.Equal(t, DefaultCategory, d.Type)
	assert.True(t, d.Price.IsZero())
}

func products() []Product {
	mk := func(id, name, cat string, price int64) Product {
		return Product{ID: id, Name: name, Category: cat, Price: decimal.NewFromInt(price)}
	}
	return []Product{
		mk("1", "Classic Burger", "Burgers", 2500),
		mk("2", "Cheese Burger", "Burgers", 3000),
		mk("3", "Vanilla Shake", "Drinks", 1500),
		mk("4", "Double BURGER", "Burgers", 2500),
	}
}

func ids(ps []Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestFilterApply(t *testing.T) {
	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter keeps remote order", Filter{}, []string{"1", "2", "3", "4"}},
		{"all category", Filter{Category: AllCategories}, []string{"1", "2", "3", "4"}},
		{"category", Filter{Category: "Drinks"}, []string{"3"}},
		{"query is case-insensitive substring", Filter{Query: "burger"}, []string{"1", "2", "4"}},
		{"price ascending is stable", Filter{Sort: SortPriceAsc}, []string{"3", "1", "4", "2"}},
		{"price descending is stable", Filter{Sort: SortPriceDesc}, []string{"2", "1", "4", "3"}},
		{"unknown sort keeps order", Filter{Sort: "rating"}, []string{"1", "2", "3", "4"}},
		{"combined", Filter{Category: "Burgers", Query: "BURGER", Sort: SortPriceDesc}, []string{"2", "1", "4"}},
		{"nothing matches", Filter{Query: "pizza"}, []string{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ids(c.filter.Apply(products())))
		})
	}
}

func TestFilterKeyIgnoresQueryCase(t *testing.T) {
	assert.Equal(t, Filter{Query: "Burger"}.Key(), Filter{Query: "bURGER"}.Key())
	assert.NotEqual(t, Filter{Category: "a"}.Key(), Filter{Category: "b"}.Key())
}
