// Package fixture serves catalog documents from a local YAML file, for demos
// and offline development.
package fixture

import (
	"context"
	"encoding/json"
	"os"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Source holds every collection in memory, keyed by collection id.
//
//	products:
//	  - $id: p1
//	    name: Classic Burger
//	    price: 2500
//	    categories: Burgers
type Source struct {
	collections map[string][]gjson.Result
}

func Load(path string) (*Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog fixture")
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Source, error) {
	var doc map[string][]map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "parse catalog fixture")
	}

	s := &Source{collections: make(map[string][]gjson.Result, len(doc))}
	for collection, docs := range doc {
		out := make([]gjson.Result, 0, len(docs))
		for i, d := range docs {
			b, err := json.Marshal(d)
			if err != nil {
				return nil, errors.Wrapf(err, "%s[%d]", collection, i)
			}
			out = append(out, gjson.ParseBytes(b))
		}
		s.collections[collection] = out
	}
	return s, nil
}

func (s *Source) ListDocuments(ctx context.Context, collection string) ([]gjson.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.collections[collection], nil
}

func (s *Source) GetDocument(ctx context.Context, collection, id string) (gjson.Result, error) {
	if err := ctx.Err(); err != nil {
		return gjson.Result{}, err
	}
	for _, d := range s.collections[collection] {
		if d.Get("$id").String() == id {
			return d, nil
		}
	}
	return gjson.Result{}, app.ErrNotFound
}
