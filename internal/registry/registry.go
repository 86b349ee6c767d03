// Package registry holds the global engine configuration and the weight
// table, together with the owner-gated operations that change them.
package registry

import (
	"trustscore/internal/scoring"
	"trustscore/internal/sources"
	"trustscore/pkg/domain"
	dErrors "trustscore/pkg/domain-errors"
)

// MaxDiversityBonusPercent caps the multi-source bonus.
const MaxDiversityBonusPercent = 100

// Params are the values supplied when a registry is created.
type Params struct {
	MinScore              uint64
	CooldownPeriod        int64
	DiversityBonusPercent uint8
	ProofTTLSeconds       int64
	VerifierAuthority     domain.Identity
}

// Registry is the single global configuration record.
type Registry struct {
	Authority                   domain.Identity `json:"authority"`
	VerifierAuthority           domain.Identity `json:"verifier_authority"`
	PendingVerifierAuthority    domain.Identity `json:"pending_verifier_authority"`
	VerifierRotationAvailableAt int64           `json:"verifier_rotation_available_at"`
	MinScore                    uint64          `json:"min_score"`
	CooldownPeriod              int64           `json:"cooldown_period"`
	DiversityBonusPercent       uint8           `json:"diversity_bonus_percent"`
	ProofTTLSeconds             int64           `json:"proof_ttl_seconds"`
	TotalVerifiedUsers          uint64          `json:"total_verified_users"`
}

// New validates p and returns a registry owned by authority.
func New(authority domain.Identity, p Params) (*Registry, error) {
	if authority.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidConfig, "authority is required")
	}
	if err := validateConfig(p.CooldownPeriod, p.DiversityBonusPercent, p.ProofTTLSeconds); err != nil {
		return nil, err
	}
	if p.VerifierAuthority.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidConfig, "verifier authority is required")
	}
	return &Registry{
		Authority:             authority,
		VerifierAuthority:     p.VerifierAuthority,
		MinScore:              p.MinScore,
		CooldownPeriod:        p.CooldownPeriod,
		DiversityBonusPercent: p.DiversityBonusPercent,
		ProofTTLSeconds:       p.ProofTTLSeconds,
	}, nil
}

// Authorize fails unless caller is the registry authority.
func (r *Registry) Authorize(caller domain.Identity) error {
	if caller.IsZero() || caller != r.Authority {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the registry authority")
	}
	return nil
}

// UpdateMinScore sets the verification threshold and returns the old value.
func (r *Registry) UpdateMinScore(caller domain.Identity, minScore uint64) (uint64, error) {
	if err := r.Authorize(caller); err != nil {
		return 0, err
	}
	old := r.MinScore
	r.MinScore = minScore
	return old, nil
}

// UpdateConfig replaces the timing and bonus parameters.
func (r *Registry) UpdateConfig(caller domain.Identity, cooldown int64, bonusPercent uint8, ttl int64) error {
	if err := r.Authorize(caller); err != nil {
		return err
	}
	if err := validateConfig(cooldown, bonusPercent, ttl); err != nil {
		return err
	}
	r.CooldownPeriod = cooldown
	r.DiversityBonusPercent = bonusPercent
	r.ProofTTLSeconds = ttl
	return nil
}

// HasPendingRotation reports whether a verifier rotation is scheduled.
func (r *Registry) HasPendingRotation() bool {
	return !r.PendingVerifierAuthority.IsZero()
}

// InitiateVerifierRotation schedules next to replace the verifier after
// delaySeconds. A later initiation replaces an earlier pending one.
func (r *Registry) InitiateVerifierRotation(caller, next domain.Identity, delaySeconds, now int64) (int64, error) {
	if err := r.Authorize(caller); err != nil {
		return 0, err
	}
	if next.IsZero() {
		return 0, dErrors.New(dErrors.CodeInvalidConfig, "new verifier is required")
	}
	if delaySeconds < 1 {
		return 0, dErrors.New(dErrors.CodeInvalidConfig, "rotation delay must be at least one second")
	}
	activateAt, err := scoring.CheckedAddSeconds(now, delaySeconds)
	if err != nil {
		return 0, err
	}
	r.PendingVerifierAuthority = next
	r.VerifierRotationAvailableAt = activateAt
	return activateAt, nil
}

// FinalizeVerifierRotation swaps in the pending verifier once its timelock
// has elapsed and returns the old and new verifier.
func (r *Registry) FinalizeVerifierRotation(caller domain.Identity, now int64) (domain.Identity, domain.Identity, error) {
	if err := r.Authorize(caller); err != nil {
		return domain.Identity{}, domain.Identity{}, err
	}
	if !r.HasPendingRotation() {
		return domain.Identity{}, domain.Identity{}, dErrors.New(dErrors.CodeNoVerifierRotationPending, "no verifier rotation pending")
	}
	if now < r.VerifierRotationAvailableAt {
		return domain.Identity{}, domain.Identity{}, dErrors.Newf(dErrors.CodeVerifierRotationNotReady,
			"verifier rotation available at %d", r.VerifierRotationAvailableAt)
	}
	old := r.VerifierAuthority
	r.VerifierAuthority = r.PendingVerifierAuthority
	r.PendingVerifierAuthority = domain.Identity{}
	r.VerifierRotationAvailableAt = 0
	return old, r.VerifierAuthority, nil
}

// CountVerifiedUser records a first-time identity.
func (r *Registry) CountVerifiedUser() error {
	if r.TotalVerifiedUsers == ^uint64(0) {
		return dErrors.New(dErrors.CodeOverflow, "total verified users overflows")
	}
	r.TotalVerifiedUsers++
	return nil
}

func validateConfig(cooldown int64, bonusPercent uint8, ttl int64) error {
	if cooldown < 0 {
		return dErrors.New(dErrors.CodeInvalidConfig, "cooldown period must not be negative")
	}
	if bonusPercent > MaxDiversityBonusPercent {
		return dErrors.New(dErrors.CodeInvalidConfig, "diversity bonus must be at most 100 percent")
	}
	if ttl <= 0 {
		return dErrors.New(dErrors.CodeInvalidConfig, "proof ttl must be positive")
	}
	return nil
}

// DefaultWeight is the initial weight for every source, in percent.
const DefaultWeight uint64 = 100

// MaxWeight bounds a single source weight.
const MaxWeight uint64 = 10_000

// ScoringConfig maps each source to its weight.
type ScoringConfig struct {
	Authority domain.Identity       `json:"authority"`
	Weights   [sources.Count]uint64 `json:"weights"`
}

// NewScoringConfig returns a config with DefaultWeight for every source.
func NewScoringConfig(authority domain.Identity) (*ScoringConfig, error) {
	if authority.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidConfig, "authority is required")
	}
	c := &ScoringConfig{Authority: authority}
	for i := range c.Weights {
		c.Weights[i] = DefaultWeight
	}
	return c, nil
}

// Weight returns the configured weight for s.
func (c *ScoringConfig) Weight(s sources.Source) uint64 {
	if !s.Valid() {
		return 0
	}
	return c.Weights[s]
}

// SetWeight changes one source's weight.
func (c *ScoringConfig) SetWeight(caller domain.Identity, s sources.Source, weight uint64) error {
	if caller.IsZero() || caller != c.Authority {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the scoring config authority")
	}
	if !s.Valid() {
		return dErrors.New(dErrors.CodeInvalidConfig, "unknown source")
	}
	if weight > MaxWeight {
		return dErrors.Newf(dErrors.CodeInvalidConfig, "weight must be at most %d", MaxWeight)
	}
	c.Weights[s] = weight
	return nil
}
