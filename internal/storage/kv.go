// Package storage implements the project persistence contract on top of a
// transactional key-value backend.
package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KV reads for absent keys.
var ErrKeyNotFound = errors.New("key not found")

// Txn is a read-write view inside a KV transaction. Writes become visible to
// other readers only when the transaction commits.
type Txn interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// KV is a durable key-value backend.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	// Update runs fn in a transaction. Either every write made by fn is
	// committed or none is.
	Update(ctx context.Context, fn func(tx Txn) error) error
}
