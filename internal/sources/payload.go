package sources

import "trustscore/pkg/domain"

// Payload is the source-specific evidence attached to a proof. The set of
// implementations is closed: one struct per Source.
type Payload interface {
	Source() Source
	sealed()
}

type ReclaimPayload struct {
	ProviderHash domain.Hash `json:"provider_hash"`
	ResponseHash domain.Hash `json:"response_hash"`
	IssuedAt     int64       `json:"issued_at"`
}

type GitcoinPassportPayload struct {
	StampCount    uint16 `json:"stamp_count"`
	PassportScore uint16 `json:"passport_score"`
	ModelVersion  uint8  `json:"model_version"`
}

type WorldIDPayload struct {
	NullifierHash     domain.Hash `json:"nullifier_hash"`
	MerkleRoot        domain.Hash `json:"merkle_root"`
	VerificationLevel uint8       `json:"verification_level"`
}

type BrightIDPayload struct {
	ContextHash domain.Hash `json:"context_hash"`
	GroupHash   domain.Hash `json:"group_hash"`
}

type LensPayload struct {
	ProfileID  uint64      `json:"profile_id"`
	HandleHash domain.Hash `json:"handle_hash"`
}

type TwitterPayload struct {
	HandleHash domain.Hash `json:"handle_hash"`
	TweetID    uint64      `json:"tweet_id"`
}

type GooglePayload struct {
	AccountHash domain.Hash `json:"account_hash"`
	DomainHash  domain.Hash `json:"domain_hash"`
}

type DiscordPayload struct {
	UserIDHash  domain.Hash `json:"user_id_hash"`
	GuildIDHash domain.Hash `json:"guild_id_hash"`
}

func (ReclaimPayload) Source() Source         { return Reclaim }
func (GitcoinPassportPayload) Source() Source { return GitcoinPassport }
func (WorldIDPayload) Source() Source         { return WorldID }
func (BrightIDPayload) Source() Source        { return BrightID }
func (LensPayload) Source() Source            { return Lens }
func (TwitterPayload) Source() Source         { return Twitter }
func (GooglePayload) Source() Source          { return Google }
func (DiscordPayload) Source() Source         { return Discord }

func (ReclaimPayload) sealed()         {}
func (GitcoinPassportPayload) sealed() {}
func (WorldIDPayload) sealed()         {}
func (BrightIDPayload) sealed()        {}
func (LensPayload) sealed()            {}
func (TwitterPayload) sealed()         {}
func (GooglePayload) sealed()          {}
func (DiscordPayload) sealed()         {}
