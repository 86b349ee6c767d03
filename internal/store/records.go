package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"trustscore/internal/aggregation"
	"trustscore/internal/registry"
	"trustscore/internal/replay"
	"trustscore/internal/sources"
	"trustscore/pkg/domain"
	"trustscore/pkg/platform/sentinel"
)

// Records gives typed access to the engine's records inside a transaction.
// Getters return nil without error when a record is absent.
type Records struct {
	tx Tx
}

func NewRecords(tx Tx) *Records {
	return &Records{tx: tx}
}

func (r *Records) Registry(ctx context.Context) (*registry.Registry, error) {
	return get[registry.Registry](ctx, r.tx, KeyRegistry)
}

func (r *Records) PutRegistry(ctx context.Context, v *registry.Registry) error {
	return put(ctx, r.tx, KeyRegistry, v)
}

func (r *Records) ScoringConfig(ctx context.Context) (*registry.ScoringConfig, error) {
	return get[registry.ScoringConfig](ctx, r.tx, KeyScoringConfig)
}

func (r *Records) PutScoringConfig(ctx context.Context, v *registry.ScoringConfig) error {
	return put(ctx, r.tx, KeyScoringConfig, v)
}

func (r *Records) UserProof(ctx context.Context, id domain.Identity) (*aggregation.UserAggregateProof, error) {
	return get[aggregation.UserAggregateProof](ctx, r.tx, UserProofKey(id))
}

func (r *Records) PutUserProof(ctx context.Context, v *aggregation.UserAggregateProof) error {
	return put(ctx, r.tx, UserProofKey(v.Identity), v)
}

func (r *Records) IndividualProof(ctx context.Context, id domain.Identity, source sources.Source) (*aggregation.IndividualSourceProof, error) {
	return get[aggregation.IndividualSourceProof](ctx, r.tx, IndividualProofKey(id, source))
}

func (r *Records) PutIndividualProof(ctx context.Context, v *aggregation.IndividualSourceProof) error {
	return put(ctx, r.tx, IndividualProofKey(v.Identity, v.Source), v)
}

func (r *Records) Nullifier(ctx context.Context, source sources.Source, n domain.Hash) (*replay.IdentityNullifierRecord, error) {
	return get[replay.IdentityNullifierRecord](ctx, r.tx, NullifierKey(source, n))
}

func (r *Records) PutNullifier(ctx context.Context, v *replay.IdentityNullifierRecord) error {
	return put(ctx, r.tx, NullifierKey(v.Source, v.Nullifier), v)
}

func (r *Records) Nonce(ctx context.Context, registryID domain.Identity, nonce uint64) (*replay.AttestationNonceRecord, error) {
	return get[replay.AttestationNonceRecord](ctx, r.tx, NonceKey(registryID, nonce))
}

func (r *Records) PutNonce(ctx context.Context, v *replay.AttestationNonceRecord) error {
	return put(ctx, r.tx, NonceKey(v.Registry, v.Nonce), v)
}

func get[T any](ctx context.Context, tx Tx, key string) (*T, error) {
	raw, err := tx.Get(ctx, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &v, nil
}

func put[T any](ctx context.Context, tx Tx, key string, v *T) error {
	if v == nil {
		return fmt.Errorf("put %s: nil record", key)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := tx.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
