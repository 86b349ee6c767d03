package testutil

import (
	"crypto/ed25519"
	"crypto/rand"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trustscore/pkg/domain"
	"trustscore/pkg/requestcontext"
)

// NewIdentity generates a wallet key pair and returns its identity.
func NewIdentity(t *testing.T) (domain.Identity, ed25519.PrivateKey) {
	t.Helper()
	pub, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	id, err := domain.IdentityFromPublicKey(pub)
	require.NoError(t, err)
	return id, key
}

// WithIdentity marks the request as authenticated by identity, the way the
// auth middleware does.
func WithIdentity(req *http.Request, identity domain.Identity) *http.Request {
	return req.WithContext(requestcontext.WithIdentity(req.Context(), identity))
}

// WithTime pins the request clock.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithRequestID attaches a request ID.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
