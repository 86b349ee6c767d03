// Package storetest holds behaviour every store.Store implementation must
// satisfy. Backend tests run it against a freshly emptied store.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustscore/internal/store"
	"trustscore/pkg/platform/sentinel"
)

var errClaimed = errors.New("already claimed")

// Run exercises s. reset must leave the backend empty.
func Run(t *testing.T, s store.Store, reset func(t *testing.T)) {
	ctx := context.Background()

	t.Run("commit makes writes visible", func(t *testing.T) {
		reset(t)
		require.NoError(t, s.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
			return tx.Put(ctx, "registry", []byte(`{"min_score":1}`))
		}))
		require.NoError(t, s.View(ctx, func(ctx context.Context, tx store.Tx) error {
			got, err := tx.Get(ctx, "registry")
			require.NoError(t, err)
			assert.JSONEq(t, `{"min_score":1}`, string(got))
			return nil
		}))
	})

	t.Run("failed transaction writes nothing", func(t *testing.T) {
		reset(t)
		boom := errors.New("boom")
		err := s.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
			require.NoError(t, tx.Put(ctx, "a", []byte("1")))
			require.NoError(t, tx.Put(ctx, "b", []byte("2")))
			return boom
		})
		require.ErrorIs(t, err, boom)
		require.NoError(t, s.View(ctx, func(ctx context.Context, tx store.Tx) error {
			_, errA := tx.Get(ctx, "a")
			_, errB := tx.Get(ctx, "b")
			assert.ErrorIs(t, errA, sentinel.ErrNotFound)
			assert.ErrorIs(t, errB, sentinel.ErrNotFound)
			return nil
		}))
	})

	t.Run("overwrite replaces value", func(t *testing.T) {
		reset(t)
		for _, v := range []string{"1", "2"} {
			require.NoError(t, s.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
				_, err := tx.Get(ctx, "k")
				if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
					return err
				}
				return tx.Put(ctx, "k", []byte(v))
			}))
		}
		require.NoError(t, s.View(ctx, func(ctx context.Context, tx store.Tx) error {
			got, err := tx.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "2", string(got))
			return nil
		}))
	})

	t.Run("view rejects writes", func(t *testing.T) {
		reset(t)
		require.NoError(t, s.View(ctx, func(ctx context.Context, tx store.Tx) error {
			assert.ErrorIs(t, tx.Put(ctx, "k", []byte("v")), sentinel.ErrReadOnly)
			return nil
		}))
	})

	t.Run("concurrent claims of one key admit a single winner", func(t *testing.T) {
		reset(t)
		const workers = 8
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := range workers {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := s.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
					_, err := tx.Get(ctx, "attestation_nonce:x:1")
					if err == nil {
						return errClaimed
					}
					if !errors.Is(err, sentinel.ErrNotFound) {
						return err
					}
					return tx.Put(ctx, "attestation_nonce:x:1", []byte(fmt.Sprintf("%d", i)))
				})
				switch {
				case err == nil:
					mu.Lock()
					wins++
					mu.Unlock()
				case errors.Is(err, errClaimed), errors.Is(err, sentinel.ErrConflict):
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})
}
