// Package domain holds typed identifiers shared across bounded contexts.
//
// Identities are 32-byte ed25519 public keys rendered in base58, the way
// wallet addresses are displayed. Hashes are 32-byte digests rendered in hex.
package domain

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"

	"github.com/mr-tron/base58"

	dErrors "trustscore/pkg/domain-errors"
)

// IdentitySize is the byte length of an identity key.
const IdentitySize = 32

// Identity is a wallet-controlled principal (or a registry / program id).
type Identity [IdentitySize]byte

// ParseIdentity decodes a base58 identity. The all-zero key is rejected.
func ParseIdentity(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Identity{}, dErrors.New(dErrors.CodeValidation, "identity is required")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return Identity{}, dErrors.Wrap(err, dErrors.CodeValidation, "identity must be base58")
	}
	if len(raw) != IdentitySize {
		return Identity{}, dErrors.Newf(dErrors.CodeValidation, "identity must be %d bytes", IdentitySize)
	}
	var id Identity
	copy(id[:], raw)
	if id.IsZero() {
		return Identity{}, dErrors.New(dErrors.CodeValidation, "identity must not be the zero key")
	}
	return id, nil
}

// MustParseIdentity panics on malformed input. Intended for tests and constants.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IdentityFromPublicKey converts an ed25519 public key.
func IdentityFromPublicKey(pub ed25519.PublicKey) (Identity, error) {
	if len(pub) != ed25519.PublicKeySize {
		return Identity{}, dErrors.New(dErrors.CodeValidation, "public key must be 32 bytes")
	}
	var id Identity
	copy(id[:], pub)
	return id, nil
}

func (id Identity) IsZero() bool {
	return id == Identity{}
}

// PublicKey returns the identity as an ed25519 verification key.
func (id Identity) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(id[:])
}

func (id Identity) String() string {
	return base58.Encode(id[:])
}

// MarshalText renders the zero identity as an empty string so optional
// fields survive a round trip.
func (id Identity) MarshalText() ([]byte, error) {
	if id.IsZero() {
		return []byte{}, nil
	}
	return []byte(id.String()), nil
}

func (id *Identity) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*id = Identity{}
		return nil
	}
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// HashSize is the byte length of a digest.
const HashSize = 32

// Hash is an opaque 32-byte digest (proof hashes, nullifiers, payload hashes).
type Hash [HashSize]byte

// ParseHash decodes a hex digest, with or without a 0x prefix.
func ParseHash(s string) (Hash, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, dErrors.Wrap(err, dErrors.CodeValidation, "hash must be hex")
	}
	if len(raw) != HashSize {
		return Hash{}, dErrors.Newf(dErrors.CodeValidation, "hash must be %d bytes", HashSize)
	}
	var h Hash
	copy(h[:], raw)
	return h, nil
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
