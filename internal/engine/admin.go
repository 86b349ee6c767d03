package engine

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"trustscore/internal/events"
	"trustscore/internal/registry"
	"trustscore/internal/sources"
	"trustscore/internal/store"
	"trustscore/pkg/domain"
	dErrors "trustscore/pkg/domain-errors"
	"trustscore/pkg/requestcontext"
)

// InitializeRegistry creates the global registry with the caller as its
// authority.
func (s *Service) InitializeRegistry(ctx context.Context, params registry.Params) (reg *registry.Registry, err error) {
	ctx, done := s.begin(ctx, opInitializeRegistry)
	defer func() { err = done(err) }()

	caller, err := callerOf(ctx)
	if err != nil {
		return nil, err
	}
	err = s.update(ctx, func(ctx context.Context, rec *store.Records) error {
		existing, err := rec.Registry(ctx)
		if err != nil {
			return err
		}
		if existing != nil {
			return dErrors.New(dErrors.CodeAlreadyInitialized, "registry already initialized")
		}
		reg, err = registry.New(caller, params)
		if err != nil {
			return err
		}
		return rec.PutRegistry(ctx, reg)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.New(ctx, events.TypeRegistryInitialized, caller, events.RegistryInitialized{
		Authority:             reg.Authority,
		VerifierAuthority:     reg.VerifierAuthority,
		MinScore:              reg.MinScore,
		CooldownPeriod:        reg.CooldownPeriod,
		DiversityBonusPercent: reg.DiversityBonusPercent,
		ProofTTLSeconds:       reg.ProofTTLSeconds,
	}))
	s.logger.InfoContext(ctx, "registry initialized",
		"authority", caller.String(),
		"verifier", reg.VerifierAuthority.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return reg, nil
}

// InitializeScoringConfig creates the weight table with every source at the
// default weight and the caller as its authority.
func (s *Service) InitializeScoringConfig(ctx context.Context) (cfg *registry.ScoringConfig, err error) {
	ctx, done := s.begin(ctx, opInitializeScoringConfig)
	defer func() { err = done(err) }()

	caller, err := callerOf(ctx)
	if err != nil {
		return nil, err
	}
	err = s.update(ctx, func(ctx context.Context, rec *store.Records) error {
		existing, err := rec.ScoringConfig(ctx)
		if err != nil {
			return err
		}
		if existing != nil {
			return dErrors.New(dErrors.CodeAlreadyInitialized, "scoring config already initialized")
		}
		cfg, err = registry.NewScoringConfig(caller)
		if err != nil {
			return err
		}
		return rec.PutScoringConfig(ctx, cfg)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.New(ctx, events.TypeScoringConfigInitialized, caller,
		events.ScoringConfigInitialized{Authority: caller}))
	s.logger.InfoContext(ctx, "scoring config initialized",
		"authority", caller.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return cfg, nil
}

// UpdateMinScore changes the verification threshold.
func (s *Service) UpdateMinScore(ctx context.Context, minScore uint64) (*registry.Registry, error) {
	var old uint64
	reg, err := s.changeRegistry(ctx, opUpdateMinScore, func(reg *registry.Registry, caller domain.Identity, _ int64) error {
		var err error
		old, err = reg.UpdateMinScore(caller, minScore)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, events.New(ctx, events.TypeMinScoreUpdated, reg.Authority, events.MinScoreUpdated{
		OldMinScore: old,
		NewMinScore: minScore,
	}))
	return reg, nil
}

// UpdateRegistryConfig replaces the cooldown, diversity bonus and proof TTL.
func (s *Service) UpdateRegistryConfig(ctx context.Context, cooldown int64, bonusPercent uint8, ttl int64) (*registry.Registry, error) {
	reg, err := s.changeRegistry(ctx, opUpdateRegistryConfig, func(reg *registry.Registry, caller domain.Identity, _ int64) error {
		return reg.UpdateConfig(caller, cooldown, bonusPercent, ttl)
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, events.New(ctx, events.TypeRegistryConfigUpdated, reg.Authority, events.RegistryConfigUpdated{
		CooldownPeriod:        reg.CooldownPeriod,
		DiversityBonusPercent: reg.DiversityBonusPercent,
		ProofTTLSeconds:       reg.ProofTTLSeconds,
	}))
	return reg, nil
}

// InitiateVerifierRotation schedules next to become the verifier authority
// after delaySeconds.
func (s *Service) InitiateVerifierRotation(ctx context.Context, next domain.Identity, delaySeconds int64) (*registry.Registry, error) {
	var activateAt int64
	reg, err := s.changeRegistry(ctx, opInitiateVerifierRotation, func(reg *registry.Registry, caller domain.Identity, now int64) error {
		var err error
		activateAt, err = reg.InitiateVerifierRotation(caller, next, delaySeconds, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, events.New(ctx, events.TypeVerifierRotationInitiated, reg.Authority, events.VerifierRotationInitiated{
		CurrentVerifier: reg.VerifierAuthority,
		PendingVerifier: next,
		ActivateAt:      activateAt,
	}))
	return reg, nil
}

// FinalizeVerifierRotation swaps in the pending verifier once its timelock
// has passed.
func (s *Service) FinalizeVerifierRotation(ctx context.Context) (*registry.Registry, error) {
	var old, current domain.Identity
	reg, err := s.changeRegistry(ctx, opFinalizeVerifierRotation, func(reg *registry.Registry, caller domain.Identity, now int64) error {
		var err error
		old, current, err = reg.FinalizeVerifierRotation(caller, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, events.New(ctx, events.TypeVerifierRotationFinalized, reg.Authority, events.VerifierRotationFinalized{
		OldVerifier: old,
		NewVerifier: current,
	}))
	return reg, nil
}

// changeRegistry applies fn to a copy of the stored registry and writes the
// copy back. fn receives the authenticated caller and the request time.
func (s *Service) changeRegistry(ctx context.Context, op string, fn func(reg *registry.Registry, caller domain.Identity, now int64) error) (reg *registry.Registry, err error) {
	ctx, done := s.begin(ctx, op)
	defer func() { err = done(err) }()

	caller, err := callerOf(ctx)
	if err != nil {
		return nil, err
	}
	now := unixNow(ctx)
	err = s.update(ctx, func(ctx context.Context, rec *store.Records) error {
		stored, err := rec.Registry(ctx)
		if err != nil {
			return err
		}
		if stored == nil {
			return errNotInitialized()
		}
		next := *stored
		if err := fn(&next, caller, now); err != nil {
			return err
		}
		reg = &next
		return rec.PutRegistry(ctx, reg)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "registry updated",
		"operation", op,
		"authority", caller.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return reg, nil
}

// UpdateScoringConfig sets the weight applied to source.
func (s *Service) UpdateScoringConfig(ctx context.Context, source sources.Source, weight uint64) (cfg *registry.ScoringConfig, err error) {
	ctx, done := s.begin(ctx, opUpdateScoringConfig, attribute.String("source", source.String()))
	defer func() { err = done(err) }()

	caller, err := callerOf(ctx)
	if err != nil {
		return nil, err
	}
	err = s.update(ctx, func(ctx context.Context, rec *store.Records) error {
		stored, err := rec.ScoringConfig(ctx)
		if err != nil {
			return err
		}
		if stored == nil {
			return dErrors.New(dErrors.CodeNotInitialized, "scoring config is not initialized")
		}
		next := *stored
		if err := next.SetWeight(caller, source, weight); err != nil {
			return err
		}
		cfg = &next
		return rec.PutScoringConfig(ctx, cfg)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.New(ctx, events.TypeScoringConfigUpdated, caller, events.ScoringConfigUpdated{
		Source: source,
		Weight: weight,
	}))
	s.logger.InfoContext(ctx, "scoring weight updated",
		"source", source.String(),
		"weight", weight,
		"request_id", requestcontext.RequestID(ctx),
	)
	return cfg, nil
}

// GetRegistry returns the stored registry.
func (s *Service) GetRegistry(ctx context.Context) (reg *registry.Registry, err error) {
	ctx, done := s.begin(ctx, opGetRegistry)
	defer func() { err = done(err) }()

	err = s.view(ctx, func(ctx context.Context, rec *store.Records) error {
		var err error
		if reg, err = rec.Registry(ctx); err != nil {
			return err
		}
		if reg == nil {
			return errNotInitialized()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// GetScoringConfig returns the stored weight table.
func (s *Service) GetScoringConfig(ctx context.Context) (cfg *registry.ScoringConfig, err error) {
	ctx, done := s.begin(ctx, opGetScoringConfig)
	defer func() { err = done(err) }()

	err = s.view(ctx, func(ctx context.Context, rec *store.Records) error {
		var err error
		if cfg, err = rec.ScoringConfig(ctx); err != nil {
			return err
		}
		if cfg == nil {
			return dErrors.New(dErrors.CodeNotInitialized, "scoring config is not initialized")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
