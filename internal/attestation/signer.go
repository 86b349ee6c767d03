package attestation

import (
	"crypto/ed25519"

	"trustscore/pkg/domain"
	dErrors "trustscore/pkg/domain-errors"
)

// Signer produces envelopes on behalf of a verifier key.
type Signer struct {
	key      ed25519.PrivateKey
	program  domain.Identity
	registry domain.Identity
}

// NewSigner wraps an ed25519 private key.
func NewSigner(key ed25519.PrivateKey, program, registry domain.Identity) (*Signer, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, dErrors.New(dErrors.CodeValidation, "verifier key must be 64 bytes")
	}
	return &Signer{key: key, program: program, registry: registry}, nil
}

// Identity is the verifier authority the registry must be configured with.
func (s *Signer) Identity() domain.Identity {
	var id domain.Identity
	copy(id[:], s.key.Public().(ed25519.PublicKey))
	return id
}

// Sign attests to f.
func (s *Signer) Sign(f Fields) Envelope {
	msg := CanonicalMessage(s.program, s.registry, f)
	pub := s.key.Public().(ed25519.PublicKey)
	return Envelope{
		Scheme:    SchemeEd25519,
		PublicKey: append([]byte(nil), pub...),
		Message:   msg,
		Signature: ed25519.Sign(s.key, msg),
	}
}
