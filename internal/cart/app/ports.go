package app

import "context"

// Store is the durable key-value slot the engine persists into.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}
