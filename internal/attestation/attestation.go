// Package attestation binds an off-chain verifier's ed25519 signature to the
// exact fields of a proof submission.
//
// The verifier signs a fixed-width canonical message; the submitter relays the
// signature, public key and message alongside the submission in an Envelope.
// Verification rebuilds the message from the submitted fields and requires a
// byte-for-byte match, so a signature cannot be moved to another submitter,
// source, nonce, registry or deployment.
package attestation

import (
	"crypto/ed25519"
	"crypto/subtle"
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"trustscore/internal/sources"
	"trustscore/pkg/domain"
	dErrors "trustscore/pkg/domain-errors"
)

const (
	// DomainTag prefixes every attestation message.
	DomainTag = "trustscore:attestation:v1"
	// SchemeEd25519 is the only accepted signature scheme.
	SchemeEd25519 = "ed25519"

	payloadTag = "trustscore:payload:v1"
)

// MessageSize is the length of a canonical attestation message.
const MessageSize = len(DomainTag) + 3*domain.IdentitySize + 1 + domain.HashSize + 8 + 8 + 8 + domain.HashSize

// Fields are the submission values covered by the verifier's signature.
type Fields struct {
	Submitter         domain.Identity
	Source            sources.Source
	IdentityNullifier domain.Hash
	AttestationNonce  uint64
	BaseScore         uint64
	Timestamp         int64
	ProofHash         domain.Hash
}

// Envelope is the detached signature supplied with a submission.
type Envelope struct {
	Scheme    string
	PublicKey []byte
	Message   []byte
	Signature []byte
}

// CanonicalMessage encodes fields for signing. All parts are fixed-width so
// no separators are needed.
func CanonicalMessage(program, registry domain.Identity, f Fields) []byte {
	le := binary.LittleEndian
	buf := make([]byte, 0, MessageSize)
	buf = append(buf, DomainTag...)
	buf = append(buf, program[:]...)
	buf = append(buf, registry[:]...)
	buf = append(buf, f.Submitter[:]...)
	buf = append(buf, f.Source.Tag())
	buf = append(buf, f.IdentityNullifier[:]...)
	buf = le.AppendUint64(buf, f.AttestationNonce)
	buf = le.AppendUint64(buf, f.BaseScore)
	buf = le.AppendUint64(buf, uint64(f.Timestamp))
	buf = append(buf, f.ProofHash[:]...)
	return buf
}

// Verifier checks envelopes for one deployment (program) and registry.
type Verifier struct {
	Program  domain.Identity
	Registry domain.Identity
}

// NewVerifier returns a Verifier scoped to program and registry.
func NewVerifier(program, registry domain.Identity) *Verifier {
	return &Verifier{Program: program, Registry: registry}
}

// Verify requires env to be a well-formed ed25519 signature by authority over
// the canonical encoding of f.
func (v *Verifier) Verify(f Fields, authority domain.Identity, env Envelope) error {
	if env.Scheme != SchemeEd25519 {
		return dErrors.Newf(dErrors.CodeInvalidAttestationInstruction, "unsupported signature scheme %q", env.Scheme)
	}
	if len(env.PublicKey) != ed25519.PublicKeySize {
		return dErrors.New(dErrors.CodeInvalidAttestationInstruction, "attestation public key must be 32 bytes")
	}
	if len(env.Signature) != ed25519.SignatureSize {
		return dErrors.New(dErrors.CodeInvalidAttestationInstruction, "attestation signature must be 64 bytes")
	}
	if len(env.Message) == 0 {
		return dErrors.New(dErrors.CodeInvalidAttestationInstruction, "attestation message is required")
	}

	if subtle.ConstantTimeCompare(env.PublicKey, authority[:]) != 1 {
		return dErrors.New(dErrors.CodeInvalidAttestationMessage, "attestation not signed by the registry verifier")
	}
	expected := CanonicalMessage(v.Program, v.Registry, f)
	if subtle.ConstantTimeCompare(env.Message, expected) != 1 {
		return dErrors.New(dErrors.CodeInvalidAttestationMessage, "attestation message does not match submission")
	}
	if !ed25519.Verify(ed25519.PublicKey(env.PublicKey), env.Message, env.Signature) {
		return dErrors.New(dErrors.CodeInvalidAttestationMessage, "attestation signature is invalid")
	}
	return nil
}

// HashPayload returns the SHA3-256 proof hash of a payload's canonical
// encoding.
func HashPayload(p sources.Payload) (domain.Hash, error) {
	encoded, err := sources.Encode(p)
	if err != nil {
		return domain.Hash{}, err
	}
	h := sha3.New256()
	h.Write([]byte(payloadTag))
	h.Write(encoded)

	var out domain.Hash
	copy(out[:], h.Sum(nil))
	return out, nil
}
