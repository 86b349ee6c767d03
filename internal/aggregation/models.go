package aggregation

import (
	"trustscore/internal/sources"
	"trustscore/pkg/domain"
)

// UserAggregateProof is the running score for one identity. It is created on
// the first accepted submission and never deleted.
type UserAggregateProof struct {
	Identity          domain.Identity `json:"identity"`
	AggregatedScore   uint64          `json:"aggregated_score"`
	ActiveSourceCount uint8           `json:"active_source_count"`
	LastSubmission    int64           `json:"last_submission"`
	ValidUntil        int64           `json:"valid_until"`
}

// IndividualSourceProof is the latest proof an identity submitted for one
// source. Revocation flags it rather than deleting it.
type IndividualSourceProof struct {
	Identity          domain.Identity   `json:"identity"`
	Source            sources.Source    `json:"source"`
	ProofHash         domain.Hash       `json:"proof_hash"`
	BaseScore         uint64            `json:"base_score"`
	WeightedScore     uint64            `json:"weighted_score"`
	IdentityNullifier domain.Hash       `json:"identity_nullifier"`
	ProofData         sources.ProofData `json:"proof_data"`
	VerifiedAt        int64             `json:"verified_at"`
	IsRevoked         bool              `json:"is_revoked"`
}

// Active reports whether the proof currently contributes to the aggregate.
func (p *IndividualSourceProof) Active() bool {
	return p != nil && !p.IsRevoked
}

// ProofStatus is the answer to "is this identity verified".
type ProofStatus struct {
	IsVerified      bool   `json:"is_verified"`
	AggregatedScore uint64 `json:"aggregated_score"`
	VerifiedAt      int64  `json:"verified_at"`
}
