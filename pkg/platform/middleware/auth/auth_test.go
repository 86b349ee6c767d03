package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"trustscore/pkg/domain"
	"trustscore/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return s.claims, s.err
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	wallet := domain.Identity{4}

	var seen domain.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.Identity(r.Context())
		assert.Equal(t, "jti-1", requestcontext.TokenID(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})

	serve := func(v JWTValidator, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		RequireAuth(v, logger)(next).ServeHTTP(w, req)
		return w
	}

	t.Run("valid token sets caller identity", func(t *testing.T) {
		w := serve(stubValidator{claims: &JWTClaims{Identity: wallet, JTI: "jti-1"}}, "Bearer abc")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, wallet, seen)
	})

	t.Run("missing header", func(t *testing.T) {
		w := serve(stubValidator{}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"unauthorized","error_description":"Missing or invalid Authorization header"}`, w.Body.String())
	})

	t.Run("non-bearer scheme", func(t *testing.T) {
		w := serve(stubValidator{}, "Basic Zm9vOmJhcg==")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := serve(stubValidator{err: errors.New("bad signature")}, "Bearer abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid or expired token")
	})

	t.Run("zero identity is refused", func(t *testing.T) {
		w := serve(stubValidator{claims: &JWTClaims{}}, "Bearer abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
