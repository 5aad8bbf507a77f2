// Package kv is the key-value persistence layer behind the ledger store.
// Values are opaque byte slices; the store serialises its collections as JSON.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a key has never been written.
var ErrNotFound = errors.New("kv: key not found")

// Store persists values by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
