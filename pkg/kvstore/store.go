// Package kvstore defines the durable key-value slot used for cart and order
// persistence, plus in-process implementations.
package kvstore

import "context"

// Store is a string key-value slot. Get reports found=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}
