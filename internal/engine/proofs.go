package engine

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"trustscore/internal/aggregation"
	"trustscore/internal/attestation"
	"trustscore/internal/events"
	"trustscore/internal/sources"
	"trustscore/internal/store"
	"trustscore/pkg/domain"
	dErrors "trustscore/pkg/domain-errors"
	"trustscore/pkg/requestcontext"
)

// SubmitRequest is a proof submission. The submitter is the authenticated
// caller and is not part of the request.
type SubmitRequest struct {
	Source            sources.Source
	IdentityNullifier domain.Hash
	AttestationNonce  uint64
	Payload           sources.Payload
	BaseScore         uint64
	Timestamp         int64
	Attestation       attestation.Envelope
}

// SubmitResult is what an accepted submission left on record.
type SubmitResult struct {
	Aggregate   *aggregation.UserAggregateProof
	Proof       *aggregation.IndividualSourceProof
	NewIdentity bool
}

// RevokeResult is the state after a revocation.
type RevokeResult struct {
	Aggregate *aggregation.UserAggregateProof
	Proof     *aggregation.IndividualSourceProof
}

// SubmitProof admits a verifier-attested proof for the caller and folds it
// into the caller's aggregate score.
func (s *Service) SubmitProof(ctx context.Context, req SubmitRequest) (res *SubmitResult, err error) {
	ctx, done := s.begin(ctx, opSubmitProof, attribute.String("source", req.Source.String()))
	defer func() { err = done(err) }()

	submitter, err := callerOf(ctx)
	if err != nil {
		return nil, err
	}
	in := aggregation.SubmitInput{
		Submitter:         submitter,
		Source:            req.Source,
		IdentityNullifier: req.IdentityNullifier,
		AttestationNonce:  req.AttestationNonce,
		Payload:           req.Payload,
		BaseScore:         req.BaseScore,
		Timestamp:         req.Timestamp,
		Attestation:       req.Attestation,
	}
	now := unixNow(ctx)

	var out *aggregation.SubmitOutcome
	err = s.update(ctx, func(ctx context.Context, rec *store.Records) error {
		st, err := s.loadSubmitState(ctx, rec, in)
		if err != nil {
			return err
		}
		out, err = s.engine.Submit(in, st, now)
		if err != nil {
			return err
		}
		return writeSubmitOutcome(ctx, rec, out)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementSubmitted(req.Source.String())
	if out.NewIdentity {
		s.metrics.IncrementNewIdentities()
	}
	s.publisher.Publish(ctx, events.New(ctx, events.TypeProofSubmitted, submitter, events.ProofSubmitted{
		Identity:      submitter,
		ProofHash:     out.Individual.ProofHash,
		BaseScore:     out.Individual.BaseScore,
		WeightedScore: out.Individual.WeightedScore,
		Source:        req.Source,
		Timestamp:     req.Timestamp,
	}))
	s.logger.InfoContext(ctx, "proof submitted",
		"identity", submitter.String(),
		"source", req.Source.String(),
		"aggregated_score", out.Aggregate.AggregatedScore,
		"new_identity", out.NewIdentity,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &SubmitResult{Aggregate: out.Aggregate, Proof: out.Individual, NewIdentity: out.NewIdentity}, nil
}

// loadSubmitState reads every record a submission may touch.
func (s *Service) loadSubmitState(ctx context.Context, rec *store.Records, in aggregation.SubmitInput) (aggregation.SubmitState, error) {
	var (
		st  aggregation.SubmitState
		err error
	)
	if st.Registry, err = rec.Registry(ctx); err != nil {
		return st, err
	}
	if st.Scoring, err = rec.ScoringConfig(ctx); err != nil {
		return st, err
	}
	if st.Aggregate, err = rec.UserProof(ctx, in.Submitter); err != nil {
		return st, err
	}
	if st.Individual, err = rec.IndividualProof(ctx, in.Submitter, in.Source); err != nil {
		return st, err
	}
	if st.Nonce, err = rec.Nonce(ctx, s.engine.Registry(), in.AttestationNonce); err != nil {
		return st, err
	}
	if st.Nullifier, err = rec.Nullifier(ctx, in.Source, in.IdentityNullifier); err != nil {
		return st, err
	}
	return st, nil
}

func writeSubmitOutcome(ctx context.Context, rec *store.Records, out *aggregation.SubmitOutcome) error {
	// The registry only changes when the verified-user count does.
	if out.NewIdentity {
		if err := rec.PutRegistry(ctx, out.Registry); err != nil {
			return err
		}
	}
	if err := rec.PutUserProof(ctx, out.Aggregate); err != nil {
		return err
	}
	if err := rec.PutIndividualProof(ctx, out.Individual); err != nil {
		return err
	}
	if err := rec.PutNonce(ctx, out.Nonce); err != nil {
		return err
	}
	return rec.PutNullifier(ctx, out.Nullifier)
}

// RevokeProof withdraws the caller's proof for source. The proof's identity
// nullifier is burned and can never be claimed again.
func (s *Service) RevokeProof(ctx context.Context, source sources.Source) (res *RevokeResult, err error) {
	ctx, done := s.begin(ctx, opRevokeProof, attribute.String("source", source.String()))
	defer func() { err = done(err) }()

	caller, err := callerOf(ctx)
	if err != nil {
		return nil, err
	}
	now := unixNow(ctx)

	var out *aggregation.RevokeOutcome
	err = s.update(ctx, func(ctx context.Context, rec *store.Records) error {
		var (
			st  aggregation.RevokeState
			err error
		)
		if st.Registry, err = rec.Registry(ctx); err != nil {
			return err
		}
		if st.Individual, err = rec.IndividualProof(ctx, caller, source); err != nil {
			return err
		}
		if st.Aggregate, err = rec.UserProof(ctx, caller); err != nil {
			return err
		}
		if st.Individual != nil {
			if st.Nullifier, err = rec.Nullifier(ctx, source, st.Individual.IdentityNullifier); err != nil {
				return err
			}
		}
		out, err = s.engine.Revoke(aggregation.RevokeInput{Caller: caller, Source: source}, st, now)
		if err != nil {
			return err
		}
		if err := rec.PutUserProof(ctx, out.Aggregate); err != nil {
			return err
		}
		if err := rec.PutIndividualProof(ctx, out.Individual); err != nil {
			return err
		}
		return rec.PutNullifier(ctx, out.Nullifier)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementRevoked(source.String())
	s.publisher.Publish(ctx, events.New(ctx, events.TypeProofRevoked, caller, events.ProofRevoked{
		Identity:  caller,
		ProofHash: out.Individual.ProofHash,
		Source:    source,
	}))
	s.logger.InfoContext(ctx, "proof revoked",
		"identity", caller.String(),
		"source", source.String(),
		"removed", out.Removed,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &RevokeResult{Aggregate: out.Aggregate, Proof: out.Individual}, nil
}

// VerifyProof reports whether identity currently clears the registry
// minimum score. Identities with no proofs are reported as unverified.
func (s *Service) VerifyProof(ctx context.Context, identity domain.Identity) (status aggregation.ProofStatus, err error) {
	ctx, done := s.begin(ctx, opVerifyProof, attribute.String("identity", identity.String()))
	defer func() { err = done(err) }()

	now := unixNow(ctx)
	err = s.view(ctx, func(ctx context.Context, rec *store.Records) error {
		reg, err := rec.Registry(ctx)
		if err != nil {
			return err
		}
		if reg == nil {
			return errNotInitialized()
		}
		agg, err := rec.UserProof(ctx, identity)
		if err != nil {
			return err
		}
		status = aggregation.Verify(agg, reg, now)
		return nil
	})
	return status, err
}

// GetSourceProof returns identity's latest proof for source, revoked or not.
func (s *Service) GetSourceProof(ctx context.Context, identity domain.Identity, source sources.Source) (proof *aggregation.IndividualSourceProof, err error) {
	ctx, done := s.begin(ctx, opGetSourceProof,
		attribute.String("identity", identity.String()),
		attribute.String("source", source.String()),
	)
	defer func() { err = done(err) }()

	err = s.view(ctx, func(ctx context.Context, rec *store.Records) error {
		var err error
		proof, err = rec.IndividualProof(ctx, identity, source)
		if err != nil {
			return err
		}
		if proof == nil {
			return dErrors.Newf(dErrors.CodeProofNotFound, "no %s proof on record", source)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return proof, nil
}

func callerOf(ctx context.Context) (domain.Identity, error) {
	id := requestcontext.Identity(ctx)
	if id.IsZero() {
		return domain.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return id, nil
}

func errNotInitialized() error {
	return dErrors.New(dErrors.CodeNotInitialized, "registry is not initialized")
}
