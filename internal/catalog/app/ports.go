package app

import (
	"context"

	"github.com/tidwall/gjson"
)

// DocumentSource reads raw documents from the remote catalog store.
// GetDocument returns ErrNotFound when the id does not exist.
type DocumentSource interface {
	ListDocuments(ctx context.Context, collection string) ([]gjson.Result, error)
	GetDocument(ctx context.Context, collection, id string) (gjson.Result, error)
}
