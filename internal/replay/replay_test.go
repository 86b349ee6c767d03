package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustscore/internal/sources"
	"trustscore/pkg/domain"
	dErrors "trustscore/pkg/domain-errors"
)

var (
	alice    = domain.Identity{1}
	bob      = domain.Identity{2}
	registry = domain.Identity{3}
	nullHash = domain.Hash{0xaa}
)

func TestUseNonce(t *testing.T) {
	rec, err := UseNonce(nil, registry, 7, alice, 100)
	require.NoError(t, err)
	assert.Equal(t, &AttestationNonceRecord{Registry: registry, Nonce: 7, UsedBy: alice, UsedAt: 100}, rec)

	_, err = UseNonce(rec, registry, 7, bob, 200)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAttestationNonceAlreadyUsed))
}

func TestClaimNullifier(t *testing.T) {
	t.Run("first sighting claims", func(t *testing.T) {
		rec, err := ClaimNullifier(nil, sources.WorldID, nullHash, alice, domain.Hash{1}, 10)
		require.NoError(t, err)
		assert.Equal(t, alice, rec.ClaimedBy)
		assert.Equal(t, int64(10), rec.ClaimedAt)
		assert.False(t, rec.IsBurned)
	})

	t.Run("same claimant refreshes without moving claim time", func(t *testing.T) {
		first, err := ClaimNullifier(nil, sources.WorldID, nullHash, alice, domain.Hash{1}, 10)
		require.NoError(t, err)
		second, err := ClaimNullifier(first, sources.WorldID, nullHash, alice, domain.Hash{2}, 20)
		require.NoError(t, err)
		assert.Equal(t, domain.Hash{2}, second.LastProofHash)
		assert.Equal(t, int64(10), second.ClaimedAt)
		assert.Equal(t, domain.Hash{1}, first.LastProofHash, "input record is not mutated")
	})

	t.Run("another identity is a duplicate claim", func(t *testing.T) {
		first, err := ClaimNullifier(nil, sources.WorldID, nullHash, alice, domain.Hash{1}, 10)
		require.NoError(t, err)
		_, err = ClaimNullifier(first, sources.WorldID, nullHash, bob, domain.Hash{2}, 20)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeDuplicateIdentityClaim))
	})

	t.Run("burned is permanent for every caller", func(t *testing.T) {
		burned := &IdentityNullifierRecord{Source: sources.WorldID, Nullifier: nullHash, ClaimedBy: alice, IsBurned: true}
		for _, caller := range []domain.Identity{alice, bob} {
			_, err := ClaimNullifier(burned, sources.WorldID, nullHash, caller, domain.Hash{3}, 30)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeIdentityRevokedPermanent))
		}
	})

	t.Run("zero nullifier rejected", func(t *testing.T) {
		_, err := ClaimNullifier(nil, sources.Lens, domain.Hash{}, alice, domain.Hash{1}, 10)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidIdentityNullifier))
	})
}

func TestBurnNullifier(t *testing.T) {
	rec := &IdentityNullifierRecord{Source: sources.Lens, Nullifier: nullHash, ClaimedBy: alice}

	_, err := BurnNullifier(rec, bob)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = BurnNullifier(nil, alice)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	burned, err := BurnNullifier(rec, alice)
	require.NoError(t, err)
	assert.True(t, burned.IsBurned)
	assert.False(t, rec.IsBurned)

	_, err = BurnNullifier(burned, alice)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeIdentityRevokedPermanent))
}
