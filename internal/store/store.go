// Package store defines the keyed record store the engine persists into.
//
// A transaction reads records by key and buffers writes; the writes become
// visible together when the transaction function returns nil and are
// discarded otherwise. Implementations live in the memory, postgres and redis
// subpackages.
package store

import "context"

// Tx is the view of the store inside a transaction.
type Tx interface {
	// Get returns the stored value, or sentinel.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put buffers a write. Read-only transactions return sentinel.ErrReadOnly.
	Put(ctx context.Context, key string, value []byte) error
}

// Store runs functions against a consistent snapshot of the records.
type Store interface {
	// RunInTx commits every Put made by fn atomically, or none of them if fn
	// fails. A concurrent transaction touching the same keys makes the commit
	// fail with sentinel.ErrConflict.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Health(ctx context.Context) error
	Close() error
}
