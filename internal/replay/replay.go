// Package replay implements the one-time-use guards checked on every proof
// submission: attestation nonces and identity nullifiers.
//
// Each guard takes the currently stored record (nil when absent) and returns
// the record to store. Nothing here persists anything.
package replay

import (
	"trustscore/internal/sources"
	"trustscore/pkg/domain"
	dErrors "trustscore/pkg/domain-errors"
)

// AttestationNonceRecord marks a verifier-issued nonce as spent for a registry.
type AttestationNonceRecord struct {
	Registry domain.Identity `json:"registry"`
	Nonce    uint64          `json:"nonce"`
	UsedBy   domain.Identity `json:"used_by"`
	UsedAt   int64           `json:"used_at"`
}

// IdentityNullifierRecord binds a (source, nullifier) pair to the first
// identity that presented it. A burned record can never be claimed again.
type IdentityNullifierRecord struct {
	Source        sources.Source  `json:"source"`
	Nullifier     domain.Hash     `json:"nullifier"`
	ClaimedBy     domain.Identity `json:"claimed_by"`
	IsBurned      bool            `json:"is_burned"`
	LastProofHash domain.Hash     `json:"last_proof_hash"`
	ClaimedAt     int64           `json:"claimed_at"`
}

// UseNonce spends nonce for registry.
func UseNonce(existing *AttestationNonceRecord, registry domain.Identity, nonce uint64, by domain.Identity, now int64) (*AttestationNonceRecord, error) {
	if existing != nil {
		return nil, dErrors.Newf(dErrors.CodeAttestationNonceAlreadyUsed, "attestation nonce %d already used", nonce)
	}
	return &AttestationNonceRecord{Registry: registry, Nonce: nonce, UsedBy: by, UsedAt: now}, nil
}

// ClaimNullifier claims (source, nullifier) for claimant, or refreshes an
// existing claim by the same identity.
func ClaimNullifier(existing *IdentityNullifierRecord, source sources.Source, nullifier domain.Hash, claimant domain.Identity, proofHash domain.Hash, now int64) (*IdentityNullifierRecord, error) {
	if nullifier.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidIdentityNullifier, "identity nullifier must be non-zero")
	}
	if existing == nil {
		return &IdentityNullifierRecord{
			Source:        source,
			Nullifier:     nullifier,
			ClaimedBy:     claimant,
			LastProofHash: proofHash,
			ClaimedAt:     now,
		}, nil
	}
	if existing.IsBurned {
		return nil, dErrors.Newf(dErrors.CodeIdentityRevokedPermanent, "%s identity was revoked and cannot be reused", source)
	}
	if existing.ClaimedBy != claimant {
		return nil, dErrors.Newf(dErrors.CodeDuplicateIdentityClaim, "%s identity is already claimed by another identity", source)
	}
	next := *existing
	next.LastProofHash = proofHash
	return &next, nil
}

// BurnNullifier permanently retires a claim. Only the claimant may burn it.
func BurnNullifier(existing *IdentityNullifierRecord, claimant domain.Identity) (*IdentityNullifierRecord, error) {
	if existing == nil || existing.ClaimedBy != claimant {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller does not hold the identity nullifier")
	}
	if existing.IsBurned {
		return nil, dErrors.New(dErrors.CodeIdentityRevokedPermanent, "identity nullifier already burned")
	}
	next := *existing
	next.IsBurned = true
	return &next, nil
}
