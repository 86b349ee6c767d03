package jwttoken

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustscore/pkg/domain"
	dErrors "trustscore/pkg/domain-errors"
)

const audience = "trustscore-test"

var now = time.Unix(1_700_000_000, 0)

func newKey(t *testing.T) (ed25519.PrivateKey, domain.Identity) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	id, err := domain.IdentityFromPublicKey(pub)
	require.NoError(t, err)
	return priv, id
}

func newService() *JWTService {
	return NewJWTService(audience, 15*time.Minute, WithClock(func() time.Time { return now }))
}

func Test_GenerateAndValidate(t *testing.T) {
	key, id := newKey(t)
	token, err := GenerateAccessToken(key, audience, now, 5*time.Minute)
	require.NoError(t, err)

	claims, err := newService().ValidateToken(token)
	require.NoError(t, err)
	got, err := claims.Identity()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.NotEmpty(t, claims.ID)
}

func Test_ValidateToken_Rejections(t *testing.T) {
	key, _ := newKey(t)
	svc := newService()

	t.Run("malformed", func(t *testing.T) {
		_, err := svc.ValidateToken("invalid-token-string")
		require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, ""))
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateAccessToken(key, audience, now.Add(-time.Hour), 5*time.Minute)
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.Equal(t, "token has expired", dErrors.MessageOf(err))
	})

	t.Run("wrong audience", func(t *testing.T) {
		token, err := GenerateAccessToken(key, "other", now, 5*time.Minute)
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("lifetime above maximum", func(t *testing.T) {
		token, err := GenerateAccessToken(key, audience, now, time.Hour)
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.Equal(t, "token lifetime exceeds maximum", dErrors.MessageOf(err))
	})

	t.Run("subject swapped for another wallet", func(t *testing.T) {
		_, other := newKey(t)
		forged := jwt.NewWithClaims(jwt.SigningMethodEdDSA, Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   other.String(),
			Audience:  []string{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		}})
		signed, err := forged.SignedString(key)
		require.NoError(t, err)
		_, err = svc.ValidateToken(signed)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("HMAC algorithm is refused", func(t *testing.T) {
		hmac := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "x"})
		signed, err := hmac.SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = svc.ValidateToken(signed)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("tampered signature", func(t *testing.T) {
		token, err := GenerateAccessToken(key, audience, now, time.Minute)
		require.NoError(t, err)
		parts := strings.Split(token, ".")
		parts[1] = parts[1] + "A"
		_, err = svc.ValidateToken(strings.Join(parts, "."))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func Test_Adapter(t *testing.T) {
	key, id := newKey(t)
	token, err := GenerateAccessToken(key, audience, now, time.Minute)
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(newService()).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.Identity)
	assert.NotEmpty(t, claims.JTI)
}
