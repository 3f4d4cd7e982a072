// Package kv provides durable key-value storage for progress records.
package kv

import "context"

// Store is a string-keyed blob store. Values are JSON documents owned by the
// caller; the store never inspects them.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
