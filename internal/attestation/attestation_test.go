package attestation

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/suite"

	"trustscore/internal/sources"
	"trustscore/pkg/domain"
	dErrors "trustscore/pkg/domain-errors"
)

type VerifierSuite struct {
	suite.Suite
	program  domain.Identity
	registry domain.Identity
	signer   *Signer
	verifier *Verifier
	fields   Fields
}

func TestVerifierSuite(t *testing.T) {
	suite.Run(t, new(VerifierSuite))
}

func newIdentity(s *suite.Suite) domain.Identity {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	s.Require().NoError(err)
	id, err := domain.IdentityFromPublicKey(pub)
	s.Require().NoError(err)
	return id
}

func (s *VerifierSuite) SetupTest() {
	s.program = newIdentity(&s.Suite)
	s.registry = newIdentity(&s.Suite)

	_, key, err := ed25519.GenerateKey(rand.Reader)
	s.Require().NoError(err)
	s.signer, err = NewSigner(key, s.program, s.registry)
	s.Require().NoError(err)
	s.verifier = NewVerifier(s.program, s.registry)

	s.fields = Fields{
		Submitter:         newIdentity(&s.Suite),
		Source:            sources.WorldID,
		IdentityNullifier: domain.Hash{1, 2, 3},
		AttestationNonce:  77,
		BaseScore:         80,
		Timestamp:         1_700_000_000,
		ProofHash:         domain.Hash{9, 9, 9},
	}
}

func (s *VerifierSuite) TestCanonicalMessageLayout() {
	msg := CanonicalMessage(s.program, s.registry, s.fields)
	s.Len(msg, MessageSize)
	s.Equal(DomainTag, string(msg[:len(DomainTag)]))

	off := len(DomainTag)
	s.Equal(s.program[:], msg[off:off+32])
	s.Equal(s.registry[:], msg[off+32:off+64])
	s.Equal(s.fields.Submitter[:], msg[off+64:off+96])
	s.Equal(sources.WorldID.Tag(), msg[off+96])
	nonceAt := off + 97 + 32
	s.Equal([]byte{77, 0, 0, 0, 0, 0, 0, 0}, msg[nonceAt:nonceAt+8])
}

func (s *VerifierSuite) TestVerify() {
	s.Run("accepts a matching attestation", func() {
		env := s.signer.Sign(s.fields)
		s.NoError(s.verifier.Verify(s.fields, s.signer.Identity(), env))
	})

	s.Run("rejects a signer that is not the registry verifier", func() {
		env := s.signer.Sign(s.fields)
		err := s.verifier.Verify(s.fields, newIdentity(&s.Suite), env)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAttestationMessage))
	})

	s.Run("any changed field invalidates the message", func() {
		env := s.signer.Sign(s.fields)
		mutations := map[string]func(f *Fields){
			"submitter": func(f *Fields) { f.Submitter = newIdentity(&s.Suite) },
			"source":    func(f *Fields) { f.Source = sources.Lens },
			"nullifier": func(f *Fields) { f.IdentityNullifier = domain.Hash{4} },
			"nonce":     func(f *Fields) { f.AttestationNonce++ },
			"score":     func(f *Fields) { f.BaseScore = 100 },
			"timestamp": func(f *Fields) { f.Timestamp-- },
			"hash":      func(f *Fields) { f.ProofHash = domain.Hash{8} },
		}
		for name, mutate := range mutations {
			f := s.fields
			mutate(&f)
			err := s.verifier.Verify(f, s.signer.Identity(), env)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidAttestationMessage), name)
		}
	})

	s.Run("attestation for another registry is rejected", func() {
		env := s.signer.Sign(s.fields)
		other := NewVerifier(s.program, newIdentity(&s.Suite))
		err := other.Verify(s.fields, s.signer.Identity(), env)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAttestationMessage))
	})

	s.Run("forged signature over the right message is rejected", func() {
		env := s.signer.Sign(s.fields)
		env.Signature = append([]byte(nil), env.Signature...)
		env.Signature[0] ^= 0xff
		err := s.verifier.Verify(s.fields, s.signer.Identity(), env)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAttestationMessage))
	})
}

func (s *VerifierSuite) TestMalformedEnvelope() {
	cases := map[string]func(e *Envelope){
		"scheme":    func(e *Envelope) { e.Scheme = "secp256k1" },
		"key":       func(e *Envelope) { e.PublicKey = e.PublicKey[:31] },
		"signature": func(e *Envelope) { e.Signature = e.Signature[:10] },
		"message":   func(e *Envelope) { e.Message = nil },
	}
	for name, mutate := range cases {
		env := s.signer.Sign(s.fields)
		mutate(&env)
		err := s.verifier.Verify(s.fields, s.signer.Identity(), env)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAttestationInstruction), name)
	}
}

func (s *VerifierSuite) TestNewSignerRejectsShortKey() {
	_, err := NewSigner(make([]byte, 10), s.program, s.registry)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *VerifierSuite) TestHashPayload() {
	a, err := HashPayload(sources.LensPayload{ProfileID: 1, HandleHash: domain.Hash{1}})
	s.Require().NoError(err)
	b, err := HashPayload(sources.LensPayload{ProfileID: 2, HandleHash: domain.Hash{1}})
	s.Require().NoError(err)
	again, err := HashPayload(sources.LensPayload{ProfileID: 1, HandleHash: domain.Hash{1}})
	s.Require().NoError(err)

	s.False(a.IsZero())
	s.NotEqual(a, b)
	s.Equal(a, again)
}
