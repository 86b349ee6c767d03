// Package aggregation maintains per-identity trust scores.
//
// The Engine is pure: each operation receives a snapshot of every record it
// may touch and returns the complete set of records to write. On error the
// outcome is nil and the caller must discard the transaction.
package aggregation

import (
	"trustscore/internal/attestation"
	"trustscore/internal/registry"
	"trustscore/internal/replay"
	"trustscore/internal/scoring"
	"trustscore/internal/sources"
	"trustscore/pkg/domain"
	dErrors "trustscore/pkg/domain-errors"
)

// MaxClockSkewSeconds is how far a submission timestamp may run ahead of the
// engine clock.
const MaxClockSkewSeconds int64 = 300

// SubmitInput is a proof submission as received from the submitter.
type SubmitInput struct {
	Submitter         domain.Identity
	Source            sources.Source
	IdentityNullifier domain.Hash
	AttestationNonce  uint64
	Payload           sources.Payload
	BaseScore         uint64
	Timestamp         int64
	Attestation       attestation.Envelope
}

// ProofHash is the content hash that identifies the submitted payload.
func (in SubmitInput) ProofHash() (domain.Hash, error) {
	return attestation.HashPayload(in.Payload)
}

// SubmitState is the stored state a submission reads. Nil means absent.
type SubmitState struct {
	Registry   *registry.Registry
	Scoring    *registry.ScoringConfig
	Aggregate  *UserAggregateProof
	Individual *IndividualSourceProof
	Nonce      *replay.AttestationNonceRecord
	Nullifier  *replay.IdentityNullifierRecord
}

// SubmitOutcome holds every record an accepted submission writes.
type SubmitOutcome struct {
	Registry    *registry.Registry
	Aggregate   *UserAggregateProof
	Individual  *IndividualSourceProof
	Nonce       *replay.AttestationNonceRecord
	Nullifier   *replay.IdentityNullifierRecord
	NewIdentity bool
	// Decayed is the contribution the new proof added to the aggregate.
	Decayed uint64
}

// RevokeInput names the proof being withdrawn.
type RevokeInput struct {
	Caller domain.Identity
	Source sources.Source
}

// RevokeState is the stored state a revocation reads.
type RevokeState struct {
	Registry   *registry.Registry
	Aggregate  *UserAggregateProof
	Individual *IndividualSourceProof
	Nullifier  *replay.IdentityNullifierRecord
}

// RevokeOutcome holds every record a revocation writes.
type RevokeOutcome struct {
	Aggregate  *UserAggregateProof
	Individual *IndividualSourceProof
	Nullifier  *replay.IdentityNullifierRecord
	// Removed is the contribution subtracted from the aggregate.
	Removed uint64
}

// Engine applies submissions and revocations.
type Engine struct {
	verifier *attestation.Verifier
}

// New returns an Engine that checks attestations with verifier.
func New(verifier *attestation.Verifier) *Engine {
	return &Engine{verifier: verifier}
}

// Registry is the registry identity nonces are scoped to.
func (e *Engine) Registry() domain.Identity {
	return e.verifier.Registry
}

// Submit admits a proof. Checks run in order: attestation, payload,
// nullifier binding, the nonce guard, the nullifier guards, timestamp
// bounds, cooldown. The proof hash is recorded on the proof but is not a
// guard: a refresh with unchanged evidence arrives under a new nonce.
func (e *Engine) Submit(in SubmitInput, st SubmitState, now int64) (*SubmitOutcome, error) {
	if st.Registry == nil || st.Scoring == nil {
		return nil, dErrors.New(dErrors.CodeNotInitialized, "registry and scoring config must be initialized")
	}
	if in.Submitter.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "submitter identity is required")
	}
	reg := st.Registry

	proofHash, err := in.ProofHash()
	if err != nil {
		return nil, err
	}
	fields := attestation.Fields{
		Submitter:         in.Submitter,
		Source:            in.Source,
		IdentityNullifier: in.IdentityNullifier,
		AttestationNonce:  in.AttestationNonce,
		BaseScore:         in.BaseScore,
		Timestamp:         in.Timestamp,
		ProofHash:         proofHash,
	}
	if err := e.verifier.Verify(fields, reg.VerifierAuthority, in.Attestation); err != nil {
		return nil, err
	}

	if err := sources.Validate(in.Source, in.Payload, in.BaseScore, now); err != nil {
		return nil, err
	}
	if sources.SupportsNullifier(in.Source) {
		extracted, err := sources.ExtractIdentityNullifier(in.Source, in.Payload)
		if err != nil {
			return nil, err
		}
		if extracted != in.IdentityNullifier {
			return nil, dErrors.New(dErrors.CodeInvalidIdentityNullifier, "attested nullifier does not match payload")
		}
	}

	nonce, err := replay.UseNonce(st.Nonce, e.verifier.Registry, in.AttestationNonce, in.Submitter, now)
	if err != nil {
		return nil, err
	}

	// An active proof stays bound to the nullifier it was admitted under, so
	// revoking it burns every nullifier the identity used for the source.
	if st.Individual.Active() && st.Individual.IdentityNullifier != in.IdentityNullifier {
		return nil, dErrors.Newf(dErrors.CodeInvalidIdentityNullifier, "active %s proof is bound to another identity nullifier", in.Source)
	}
	nullifier, err := replay.ClaimNullifier(st.Nullifier, in.Source, in.IdentityNullifier, in.Submitter, proofHash, now)
	if err != nil {
		return nil, err
	}

	if err := checkTimestamp(in.Timestamp, reg.ProofTTLSeconds, now); err != nil {
		return nil, err
	}
	if st.Aggregate != nil {
		readyAt, err := scoring.CheckedAddSeconds(st.Aggregate.LastSubmission, reg.CooldownPeriod)
		if err != nil {
			return nil, err
		}
		if now < readyAt {
			return nil, dErrors.Newf(dErrors.CodeCooldownPeriodActive, "next submission allowed at %d", readyAt)
		}
	}

	weighted, err := scoring.WeightedScore(in.BaseScore, st.Scoring.Weight(in.Source))
	if err != nil {
		return nil, err
	}
	decayed, err := scoring.DecayedScore(weighted, ageOf(now, in.Timestamp))
	if err != nil {
		return nil, err
	}
	var previous uint64
	if st.Individual.Active() {
		previous, err = scoring.DecayedScore(st.Individual.WeightedScore, ageOf(now, st.Individual.VerifiedAt))
		if err != nil {
			return nil, err
		}
	}

	isNew := st.Aggregate == nil
	agg := &UserAggregateProof{Identity: in.Submitter}
	if !isNew {
		*agg = *st.Aggregate
	}
	count := agg.ActiveSourceCount
	if !st.Individual.Active() {
		if count == ^uint8(0) {
			return nil, dErrors.New(dErrors.CodeOverflow, "active source count overflows")
		}
		count++
	}
	score, err := scoring.Replace(scoring.Replacement{
		Aggregate:       agg.AggregatedScore,
		OldActive:       agg.ActiveSourceCount,
		NewActive:       count,
		BonusPercent:    reg.DiversityBonusPercent,
		OldContribution: previous,
		NewContribution: decayed,
	})
	if err != nil {
		return nil, err
	}
	validUntil, err := scoring.CheckedAddSeconds(now, reg.ProofTTLSeconds)
	if err != nil {
		return nil, err
	}

	nextReg := *reg
	if isNew {
		if err := nextReg.CountVerifiedUser(); err != nil {
			return nil, err
		}
	}

	agg.AggregatedScore = score
	agg.ActiveSourceCount = count
	agg.LastSubmission = now
	agg.ValidUntil = validUntil

	return &SubmitOutcome{
		Registry:  &nextReg,
		Aggregate: agg,
		Individual: &IndividualSourceProof{
			Identity:          in.Submitter,
			Source:            in.Source,
			ProofHash:         proofHash,
			BaseScore:         in.BaseScore,
			WeightedScore:     weighted,
			IdentityNullifier: in.IdentityNullifier,
			ProofData:         sources.ProofData{Payload: in.Payload},
			VerifiedAt:        in.Timestamp,
		},
		Nonce:       nonce,
		Nullifier:   nullifier,
		NewIdentity: isNew,
		Decayed:     decayed,
	}, nil
}

// Revoke withdraws the caller's proof for a source and burns its nullifier.
func (e *Engine) Revoke(in RevokeInput, st RevokeState, now int64) (*RevokeOutcome, error) {
	if st.Registry == nil {
		return nil, dErrors.New(dErrors.CodeNotInitialized, "registry must be initialized")
	}
	if st.Individual == nil {
		return nil, dErrors.Newf(dErrors.CodeProofNotFound, "no %s proof on record", in.Source)
	}
	if in.Caller.IsZero() || st.Individual.Identity != in.Caller {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller does not own this proof")
	}
	if st.Individual.IsRevoked {
		return nil, dErrors.Newf(dErrors.CodeProofAlreadyRevoked, "%s proof already revoked", in.Source)
	}
	if st.Aggregate == nil {
		return nil, dErrors.New(dErrors.CodeProofNotFound, "no aggregate proof on record")
	}
	burned, err := replay.BurnNullifier(st.Nullifier, in.Caller)
	if err != nil {
		return nil, err
	}

	removed, err := scoring.DecayedScore(st.Individual.WeightedScore, ageOf(now, st.Individual.VerifiedAt))
	if err != nil {
		return nil, err
	}
	agg := *st.Aggregate
	count := agg.ActiveSourceCount
	if count > 0 {
		count--
	}
	score, err := scoring.Replace(scoring.Replacement{
		Aggregate:       agg.AggregatedScore,
		OldActive:       agg.ActiveSourceCount,
		NewActive:       count,
		BonusPercent:    st.Registry.DiversityBonusPercent,
		OldContribution: removed,
	})
	if err != nil {
		return nil, err
	}
	agg.AggregatedScore = score
	agg.ActiveSourceCount = count

	individual := *st.Individual
	individual.IsRevoked = true

	return &RevokeOutcome{
		Aggregate:  &agg,
		Individual: &individual,
		Nullifier:  burned,
		Removed:    removed,
	}, nil
}

// Verify answers whether an identity currently clears the registry minimum.
// A nil aggregate is reported as unverified.
func Verify(agg *UserAggregateProof, reg *registry.Registry, now int64) ProofStatus {
	if agg == nil {
		return ProofStatus{}
	}
	verified := agg.AggregatedScore >= reg.MinScore &&
		agg.AggregatedScore > 0 &&
		now <= agg.ValidUntil
	return ProofStatus{
		IsVerified:      verified,
		AggregatedScore: agg.AggregatedScore,
		VerifiedAt:      agg.LastSubmission,
	}
}

// Require turns an unverified status into CodeScoreBelowThreshold.
func (s ProofStatus) Require() error {
	if !s.IsVerified {
		return dErrors.New(dErrors.CodeScoreBelowThreshold, "identity is not verified")
	}
	return nil
}

func checkTimestamp(ts, ttl, now int64) error {
	latest, err := scoring.CheckedAddSeconds(now, MaxClockSkewSeconds)
	if err != nil {
		return err
	}
	if ts > latest {
		return dErrors.New(dErrors.CodeInvalidTimestamp, "timestamp is in the future")
	}
	earliest, err := scoring.CheckedAddSeconds(now, -ttl)
	if err != nil {
		return err
	}
	if ts < earliest {
		return dErrors.New(dErrors.CodeProofExpired, "proof is older than the registry ttl")
	}
	return nil
}

func ageOf(now, at int64) int64 {
	age := now - at
	if (at < 0 && age < now) || (at > 0 && age > now) {
		return 0
	}
	return age
}
