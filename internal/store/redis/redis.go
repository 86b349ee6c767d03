// Package redis stores records as plain string keys under a common prefix.
//
// RunInTx uses optimistic locking: every key read inside the transaction is
// WATCHed, and the buffered writes are applied in a single MULTI/EXEC. If any
// watched key changed in between, EXEC aborts and the transaction fails with
// sentinel.ErrConflict. Callers decide whether to retry.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trustscore/internal/store"
	dErrors "trustscore/pkg/domain-errors"
	"trustscore/pkg/platform/sentinel"
)

const (
	defaultPrefix    = "trustscore:"
	defaultTxTimeout = 5 * time.Second
)

type Store struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

var _ store.Store = (*Store)(nil)

type Option func(*Store)

// WithPrefix namespaces every record key.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

func New(client *redis.Client, opts ...Option) *Store {
	s := &Store{client: client, prefix: defaultPrefix, timeout: defaultTxTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	var fnErr error
	err = s.client.Watch(ctx, func(rtx *redis.Tx) error {
		tx := &redisTx{store: s, reader: rtx, rtx: rtx, writes: make(map[string][]byte)}
		if fnErr = fn(ctx, tx); fnErr != nil {
			return fnErr
		}
		if len(tx.writes) == 0 {
			return nil
		}
		_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for k, v := range tx.writes {
				pipe.Set(ctx, s.prefix+k, v, 0)
			}
			return nil
		})
		return err
	})
	if fnErr != nil {
		return fnErr
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return fmt.Errorf("exec: %w", sentinel.ErrConflict)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted")
	default:
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
}

// View reads keys without watching them. Reads are not isolated from
// concurrent commits.
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	return fn(ctx, &redisTx{store: s, reader: s.client, readOnly: true})
}

func (s *Store) Health(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
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

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type redisTx struct {
	store    *Store
	reader   getter
	rtx      *redis.Tx
	writes   map[string][]byte
	readOnly bool
}

func (t *redisTx) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := t.writes[key]; ok {
		return append([]byte(nil), v...), nil
	}
	full := t.store.prefix + key
	if t.rtx != nil {
		if err := t.rtx.Watch(ctx, full).Err(); err != nil {
			return nil, fmt.Errorf("watch %s: %w", key, err)
		}
	}
	raw, err := t.reader.Get(ctx, full).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return raw, nil
}

func (t *redisTx) Put(_ context.Context, key string, value []byte) error {
	if t.readOnly {
		return sentinel.ErrReadOnly
	}
	t.writes[key] = append([]byte(nil), value...)
	return nil
}
