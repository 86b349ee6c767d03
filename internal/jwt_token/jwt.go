// Package jwttoken issues and validates wallet bearer tokens.
//
// A wallet token is a short-lived JWT signed with EdDSA by the wallet's own
// ed25519 key. The subject is the base58 wallet identity, so the verification
// key is recovered from the token itself: possession of the private key is
// the only credential.
package jwttoken

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"trustscore/pkg/domain"
	dErrors "trustscore/pkg/domain-errors"
)

// Claims represents the JWT claims of a wallet token.
type Claims struct {
	jwt.RegisteredClaims
}

// Identity parses the subject as a wallet identity.
func (c *Claims) Identity() (domain.Identity, error) {
	return domain.ParseIdentity(c.Subject)
}

// JWTService validates wallet tokens for one audience.
type JWTService struct {
	audience string
	maxTTL   time.Duration
	clock    func() time.Time
}

type Option func(*JWTService)

// WithClock overrides the time source used for expiry checks.
func WithClock(clock func() time.Time) Option {
	return func(s *JWTService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewJWTService(audience string, maxTTL time.Duration, opts ...Option) *JWTService {
	s := &JWTService{
		audience: audience,
		maxTTL:   maxTTL,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateAccessToken signs a token for the wallet holding key.
func GenerateAccessToken(key ed25519.PrivateKey, audience string, issuedAt time.Time, expiresIn time.Duration) (string, error) {
	id, err := domain.IdentityFromPublicKey(key.Public().(ed25519.PublicKey))
	if err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			Audience:  []string{audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(expiresIn)),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(key)
	if err != nil {
		return "", err
	}
	return signed, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, s.subjectKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.clock),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.IssuedAt == nil || claims.ExpiresAt.Sub(claims.IssuedAt.Time) > s.maxTTL {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token lifetime exceeds maximum")
	}
	return claims, nil
}

// subjectKey resolves the verification key from the still-unverified subject.
// A forged subject fails signature verification.
func (s *JWTService) subjectKey(token *jwt.Token) (any, error) {
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	id, err := claims.Identity()
	if err != nil {
		return nil, jwt.ErrTokenUnverifiable
	}
	return id.PublicKey(), nil
}
