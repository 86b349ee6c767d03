// Package events carries engine events out of the process after commit.
//
// Publishing is fail-open: events are buffered in memory and flushed to a
// sink by a background worker. A slow or failing sink never blocks or fails
// an engine operation.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"trustscore/internal/sources"
	"trustscore/pkg/domain"
	"trustscore/pkg/requestcontext"
)

type Type string

const (
	TypeRegistryInitialized       Type = "registry_initialized"
	TypeScoringConfigInitialized  Type = "scoring_config_initialized"
	TypeProofSubmitted            Type = "proof_submitted"
	TypeProofRevoked              Type = "proof_revoked"
	TypeMinScoreUpdated           Type = "min_score_updated"
	TypeScoringConfigUpdated      Type = "scoring_config_updated"
	TypeRegistryConfigUpdated     Type = "registry_config_updated"
	TypeVerifierRotationInitiated Type = "verifier_rotation_initiated"
	TypeVerifierRotationFinalized Type = "verifier_rotation_finalized"
)

// Event is the envelope written to sinks. Subject is the identity the event
// is about and doubles as the partition key.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       Type            `json:"type"`
	Subject    domain.Identity `json:"subject"`
	OccurredAt time.Time       `json:"occurred_at"`
	RequestID  string          `json:"request_id,omitempty"`
	Data       any             `json:"data"`
}

// New stamps an event with a fresh ID, the request time and request ID.
func New(ctx context.Context, typ Type, subject domain.Identity, data any) Event {
	return Event{
		ID:         uuid.New(),
		Type:       typ,
		Subject:    subject,
		OccurredAt: requestcontext.Now(ctx).UTC(),
		RequestID:  requestcontext.RequestID(ctx),
		Data:       data,
	}
}

//go:generate mockgen -source=events.go -destination=mocks/mocks.go -package=mocks Publisher,Sink

// Publisher accepts events for asynchronous delivery.
type Publisher interface {
	Publish(ctx context.Context, batch ...Event)
}

// Sink delivers a batch of events.
type Sink interface {
	Write(ctx context.Context, batch []Event) error
}

type RegistryInitialized struct {
	Authority             domain.Identity `json:"authority"`
	VerifierAuthority     domain.Identity `json:"verifier_authority"`
	MinScore              uint64          `json:"min_score"`
	CooldownPeriod        int64           `json:"cooldown_period"`
	DiversityBonusPercent uint8           `json:"diversity_bonus_percent"`
	ProofTTLSeconds       int64           `json:"proof_ttl_seconds"`
}

type ScoringConfigInitialized struct {
	Authority domain.Identity `json:"authority"`
}

type ProofSubmitted struct {
	Identity      domain.Identity `json:"identity"`
	ProofHash     domain.Hash     `json:"proof_hash"`
	BaseScore     uint64          `json:"base_score"`
	WeightedScore uint64          `json:"weighted_score"`
	Source        sources.Source  `json:"source"`
	Timestamp     int64           `json:"timestamp"`
}

type ProofRevoked struct {
	Identity  domain.Identity `json:"identity"`
	ProofHash domain.Hash     `json:"proof_hash"`
	Source    sources.Source  `json:"source"`
}

type MinScoreUpdated struct {
	OldMinScore uint64 `json:"old_min_score"`
	NewMinScore uint64 `json:"new_min_score"`
}

type ScoringConfigUpdated struct {
	Source sources.Source `json:"source"`
	Weight uint64         `json:"weight"`
}

type RegistryConfigUpdated struct {
	CooldownPeriod        int64 `json:"cooldown_period"`
	DiversityBonusPercent uint8 `json:"diversity_bonus_percent"`
	ProofTTLSeconds       int64 `json:"proof_ttl_seconds"`
}

type VerifierRotationInitiated struct {
	CurrentVerifier domain.Identity `json:"current_verifier"`
	PendingVerifier domain.Identity `json:"pending_verifier"`
	ActivateAt      int64           `json:"activate_at"`
}

type VerifierRotationFinalized struct {
	OldVerifier domain.Identity `json:"old_verifier"`
	NewVerifier domain.Identity `json:"new_verifier"`
}
