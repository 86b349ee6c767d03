package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"trustscore/pkg/domain"
)

func TestAccessors(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults when unset", func(t *testing.T) {
		assert.True(t, Identity(ctx).IsZero())
		assert.Empty(t, RequestID(ctx))
		assert.Empty(t, TokenID(ctx))
		assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
	})

	t.Run("values round trip", func(t *testing.T) {
		wallet := domain.Identity{1}
		fixed := time.Unix(1_700_000_000, 0)
		c := WithTime(WithRequestID(WithTokenID(WithIdentity(ctx, wallet), "jti-1"), "req-1"), fixed)

		assert.Equal(t, wallet, Identity(c))
		assert.Equal(t, "jti-1", TokenID(c))
		assert.Equal(t, "req-1", RequestID(c))
		assert.Equal(t, fixed, Now(c))
	})
}
