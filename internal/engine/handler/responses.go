package handler

import (
	"trustscore/internal/aggregation"
	"trustscore/internal/engine"
	"trustscore/internal/registry"
	"trustscore/internal/sources"
	"trustscore/pkg/domain"
)

type RegistryResponse struct {
	Authority                   domain.Identity  `json:"authority"`
	VerifierAuthority           domain.Identity  `json:"verifier_authority"`
	PendingVerifierAuthority    *domain.Identity `json:"pending_verifier_authority,omitempty"`
	VerifierRotationAvailableAt int64            `json:"verifier_rotation_available_at,omitempty"`
	MinScore                    uint64           `json:"min_score"`
	CooldownPeriod              int64            `json:"cooldown_period"`
	DiversityBonusPercent       uint8            `json:"diversity_bonus_percent"`
	ProofTTLSeconds             int64            `json:"proof_ttl_seconds"`
	TotalVerifiedUsers          uint64           `json:"total_verified_users"`
}

func FromRegistry(reg *registry.Registry) *RegistryResponse {
	resp := &RegistryResponse{
		Authority:             reg.Authority,
		VerifierAuthority:     reg.VerifierAuthority,
		MinScore:              reg.MinScore,
		CooldownPeriod:        reg.CooldownPeriod,
		DiversityBonusPercent: reg.DiversityBonusPercent,
		ProofTTLSeconds:       reg.ProofTTLSeconds,
		TotalVerifiedUsers:    reg.TotalVerifiedUsers,
	}
	if reg.HasPendingRotation() {
		pending := reg.PendingVerifierAuthority
		resp.PendingVerifierAuthority = &pending
		resp.VerifierRotationAvailableAt = reg.VerifierRotationAvailableAt
	}
	return resp
}

// ScoringConfigResponse lists weights by source name.
type ScoringConfigResponse struct {
	Authority domain.Identity   `json:"authority"`
	Weights   map[string]uint64 `json:"weights"`
}

func FromScoringConfig(cfg *registry.ScoringConfig) *ScoringConfigResponse {
	weights := make(map[string]uint64, sources.Count)
	for _, s := range sources.All() {
		weights[s.String()] = cfg.Weight(s)
	}
	return &ScoringConfigResponse{Authority: cfg.Authority, Weights: weights}
}

type AggregateResponse struct {
	Identity          domain.Identity `json:"identity"`
	AggregatedScore   uint64          `json:"aggregated_score"`
	ActiveSourceCount uint8           `json:"active_source_count"`
	LastSubmission    int64           `json:"last_submission"`
	ValidUntil        int64           `json:"valid_until"`
}

func FromAggregate(agg *aggregation.UserAggregateProof) *AggregateResponse {
	return &AggregateResponse{
		Identity:          agg.Identity,
		AggregatedScore:   agg.AggregatedScore,
		ActiveSourceCount: agg.ActiveSourceCount,
		LastSubmission:    agg.LastSubmission,
		ValidUntil:        agg.ValidUntil,
	}
}

type ProofResponse struct {
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

func FromProof(p *aggregation.IndividualSourceProof) *ProofResponse {
	return &ProofResponse{
		Identity:          p.Identity,
		Source:            p.Source,
		ProofHash:         p.ProofHash,
		BaseScore:         p.BaseScore,
		WeightedScore:     p.WeightedScore,
		IdentityNullifier: p.IdentityNullifier,
		ProofData:         p.ProofData,
		VerifiedAt:        p.VerifiedAt,
		IsRevoked:         p.IsRevoked,
	}
}

// SubmitResponse is returned by POST /v1/proofs.
type SubmitResponse struct {
	Aggregate   *AggregateResponse `json:"aggregate"`
	Proof       *ProofResponse     `json:"proof"`
	NewIdentity bool               `json:"new_identity"`
}

func FromSubmitResult(res *engine.SubmitResult) *SubmitResponse {
	return &SubmitResponse{
		Aggregate:   FromAggregate(res.Aggregate),
		Proof:       FromProof(res.Proof),
		NewIdentity: res.NewIdentity,
	}
}

// RevokeResponse is returned by POST /v1/proofs/{source}/revoke.
type RevokeResponse struct {
	Aggregate *AggregateResponse `json:"aggregate"`
	Proof     *ProofResponse     `json:"proof"`
}

func FromRevokeResult(res *engine.RevokeResult) *RevokeResponse {
	return &RevokeResponse{Aggregate: FromAggregate(res.Aggregate), Proof: FromProof(res.Proof)}
}

type StatusResponse struct {
	Identity        domain.Identity `json:"identity"`
	IsVerified      bool            `json:"is_verified"`
	AggregatedScore uint64          `json:"aggregated_score"`
	VerifiedAt      int64           `json:"verified_at"`
}

func FromStatus(identity domain.Identity, st aggregation.ProofStatus) *StatusResponse {
	return &StatusResponse{
		Identity:        identity,
		IsVerified:      st.IsVerified,
		AggregatedScore: st.AggregatedScore,
		VerifiedAt:      st.VerifiedAt,
	}
}
