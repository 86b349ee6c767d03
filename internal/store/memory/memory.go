// Package memory is an in-process record store. A single lock serialises
// transactions, which gives the all-or-nothing semantics the engine needs
// without conflict detection.
package memory

import (
	"context"
	"sync"
	"time"

	"trustscore/internal/store"
	dErrors "trustscore/pkg/domain-errors"
	"trustscore/pkg/platform/sentinel"
)

const defaultTxTimeout = 5 * time.Second

type Store struct {
	mu      sync.RWMutex
	records map[string][]byte
	timeout time.Duration
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{records: make(map[string][]byte), timeout: defaultTxTimeout}
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	// The wait for the lock may have outlived the deadline.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	tx := &memTx{records: s.records, writes: make(map[string][]byte)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for k, v := range tx.writes {
		s.records[k] = v
	}
	return nil
}

func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx, &memTx{records: s.records, readOnly: true})
}

func (s *Store) Health(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// Len reports the number of committed records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return ctx, cancel, nil
}

type memTx struct {
	records  map[string][]byte
	writes   map[string][]byte
	readOnly bool
}

func (t *memTx) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := t.writes[key]; ok {
		return clone(v), nil
	}
	v, ok := t.records[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(v), nil
}

func (t *memTx) Put(_ context.Context, key string, value []byte) error {
	if t.readOnly {
		return sentinel.ErrReadOnly
	}
	t.writes[key] = clone(value)
	return nil
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
