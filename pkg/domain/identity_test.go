package domain

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "trustscore/pkg/domain-errors"
)

// TestParseIdentity_Invariants covers the parsing invariant at trust
// boundaries: identities are 32-byte, non-zero, base58 keys.
func TestParseIdentity_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseIdentity("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects non-base58 characters", func(t *testing.T) {
		_, err := ParseIdentity("0OIl-not-base58")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := ParseIdentity(base58.Encode([]byte{1, 2, 3}))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects zero key", func(t *testing.T) {
		_, err := ParseIdentity(base58.Encode(make([]byte, IdentitySize)))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("accepts public key and round-trips", func(t *testing.T) {
		pub, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		id, err := IdentityFromPublicKey(pub)
		require.NoError(t, err)

		parsed, err := ParseIdentity(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
		assert.Equal(t, pub, parsed.PublicKey())
	})
}

func TestIdentity_JSON(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	id, err := IdentityFromPublicKey(pub)
	require.NoError(t, err)

	body, err := json.Marshal(map[string]Identity{"identity": id})
	require.NoError(t, err)
	assert.Contains(t, string(body), id.String())

	var decoded map[string]Identity
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, id, decoded["identity"])
}

func TestParseHash(t *testing.T) {
	valid := strings.Repeat("ab", HashSize)

	t.Run("accepts hex with and without prefix", func(t *testing.T) {
		h1, err := ParseHash(valid)
		require.NoError(t, err)
		h2, err := ParseHash("0x" + valid)
		require.NoError(t, err)
		assert.Equal(t, h1, h2)
		assert.Equal(t, valid, h1.String())
	})

	t.Run("rejects short digest", func(t *testing.T) {
		_, err := ParseHash("abcd")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects non-hex", func(t *testing.T) {
		_, err := ParseHash(strings.Repeat("zz", HashSize))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("zero digest parses but reports zero", func(t *testing.T) {
		h, err := ParseHash(strings.Repeat("00", HashSize))
		require.NoError(t, err)
		assert.True(t, h.IsZero())
	})
}

func TestIdentity_ZeroJSON(t *testing.T) {
	body, err := json.Marshal(struct {
		Pending Identity `json:"pending"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pending":""}`, string(body))

	var decoded struct {
		Pending Identity `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.True(t, decoded.Pending.IsZero())
}
