package handler

import (
	"encoding/hex"
	"strings"

	"github.com/mr-tron/base58"

	"trustscore/internal/attestation"
	"trustscore/internal/engine"
	"trustscore/internal/registry"
	"trustscore/internal/sources"
	"trustscore/pkg/domain"
	dErrors "trustscore/pkg/domain-errors"
)

// InitializeRegistryRequest is the body for POST /v1/registry.
type InitializeRegistryRequest struct {
	MinScore              uint64 `json:"min_score"`
	CooldownPeriod        int64  `json:"cooldown_period"`
	DiversityBonusPercent uint8  `json:"diversity_bonus_percent"`
	ProofTTLSeconds       int64  `json:"proof_ttl_seconds"`
	VerifierAuthority     string `json:"verifier_authority"`

	params registry.Params
}

func (r *InitializeRegistryRequest) Validate() error {
	verifier, err := domain.ParseIdentity(r.VerifierAuthority)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "verifier_authority must be a base58 identity")
	}
	r.params = registry.Params{
		MinScore:              r.MinScore,
		CooldownPeriod:        r.CooldownPeriod,
		DiversityBonusPercent: r.DiversityBonusPercent,
		ProofTTLSeconds:       r.ProofTTLSeconds,
		VerifierAuthority:     verifier,
	}
	return nil
}

// Params returns the validated registry parameters.
func (r *InitializeRegistryRequest) Params() registry.Params {
	return r.params
}

// UpdateMinScoreRequest is the body for PUT /v1/registry/min-score.
type UpdateMinScoreRequest struct {
	MinScore *uint64 `json:"min_score"`
}

func (r *UpdateMinScoreRequest) Validate() error {
	if r.MinScore == nil {
		return dErrors.New(dErrors.CodeValidation, "min_score is required")
	}
	return nil
}

// UpdateRegistryConfigRequest is the body for PUT /v1/registry/config. All
// three values are replaced together.
type UpdateRegistryConfigRequest struct {
	CooldownPeriod        *int64 `json:"cooldown_period"`
	DiversityBonusPercent *uint8 `json:"diversity_bonus_percent"`
	ProofTTLSeconds       *int64 `json:"proof_ttl_seconds"`
}

func (r *UpdateRegistryConfigRequest) Validate() error {
	switch {
	case r.CooldownPeriod == nil:
		return dErrors.New(dErrors.CodeValidation, "cooldown_period is required")
	case r.DiversityBonusPercent == nil:
		return dErrors.New(dErrors.CodeValidation, "diversity_bonus_percent is required")
	case r.ProofTTLSeconds == nil:
		return dErrors.New(dErrors.CodeValidation, "proof_ttl_seconds is required")
	}
	return nil
}

// InitiateRotationRequest is the body for POST /v1/registry/verifier-rotation.
type InitiateRotationRequest struct {
	NewVerifier  string `json:"new_verifier"`
	DelaySeconds int64  `json:"delay_seconds"`

	parsedVerifier domain.Identity
}

func (r *InitiateRotationRequest) Validate() error {
	verifier, err := domain.ParseIdentity(r.NewVerifier)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "new_verifier must be a base58 identity")
	}
	r.parsedVerifier = verifier
	return nil
}

// ParsedVerifier returns the validated verifier identity.
func (r *InitiateRotationRequest) ParsedVerifier() domain.Identity {
	return r.parsedVerifier
}

// UpdateWeightRequest is the body for PUT /v1/scoring-config/{source}.
type UpdateWeightRequest struct {
	Weight *uint64 `json:"weight"`
}

func (r *UpdateWeightRequest) Validate() error {
	if r.Weight == nil {
		return dErrors.New(dErrors.CodeValidation, "weight is required")
	}
	return nil
}

// AttestationRequest is the verifier's detached signature. The public key is
// base58, message and signature are hex.
type AttestationRequest struct {
	Scheme    string `json:"scheme"`
	PublicKey string `json:"public_key"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

func (a AttestationRequest) envelope() (attestation.Envelope, error) {
	pub, err := base58.Decode(strings.TrimSpace(a.PublicKey))
	if err != nil {
		return attestation.Envelope{}, dErrors.Wrap(err, dErrors.CodeValidation, "attestation.public_key must be base58")
	}
	msg, err := hex.DecodeString(strings.TrimPrefix(a.Message, "0x"))
	if err != nil {
		return attestation.Envelope{}, dErrors.Wrap(err, dErrors.CodeValidation, "attestation.message must be hex")
	}
	sig, err := hex.DecodeString(strings.TrimPrefix(a.Signature, "0x"))
	if err != nil {
		return attestation.Envelope{}, dErrors.Wrap(err, dErrors.CodeValidation, "attestation.signature must be hex")
	}
	return attestation.Envelope{Scheme: a.Scheme, PublicKey: pub, Message: msg, Signature: sig}, nil
}

// SubmitProofRequest is the body for POST /v1/proofs.
type SubmitProofRequest struct {
	Source            string             `json:"source"`
	IdentityNullifier string             `json:"identity_nullifier"`
	AttestationNonce  uint64             `json:"attestation_nonce"`
	ProofData         sources.ProofData  `json:"proof_data"`
	BaseScore         uint64             `json:"base_score"`
	Timestamp         int64              `json:"timestamp"`
	Attestation       AttestationRequest `json:"attestation"`

	parsed engine.SubmitRequest
}

func (r *SubmitProofRequest) Validate() error {
	source, err := sources.ParseSource(r.Source)
	if err != nil {
		return err
	}
	if r.ProofData.Payload == nil {
		return dErrors.New(dErrors.CodeValidation, "proof_data is required")
	}
	nullifier, err := domain.ParseHash(r.IdentityNullifier)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "identity_nullifier must be a 32-byte hex digest")
	}
	env, err := r.Attestation.envelope()
	if err != nil {
		return err
	}
	r.parsed = engine.SubmitRequest{
		Source:            source,
		IdentityNullifier: nullifier,
		AttestationNonce:  r.AttestationNonce,
		Payload:           r.ProofData.Payload,
		BaseScore:         r.BaseScore,
		Timestamp:         r.Timestamp,
		Attestation:       env,
	}
	return nil
}

// Parsed returns the validated submission.
func (r *SubmitProofRequest) Parsed() engine.SubmitRequest {
	return r.parsed
}
