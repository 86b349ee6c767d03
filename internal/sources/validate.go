package sources

import (
	"trustscore/pkg/domain"
	dErrors "trustscore/pkg/domain-errors"
)

// Reclaim proofs are fresh for a day and may be issued slightly ahead of the
// engine clock.
const (
	ReclaimMaxAgeSeconds  int64 = 86_400
	ReclaimMaxSkewSeconds int64 = 300
)

const (
	worldIDMinLevel = 1
	worldIDMaxLevel = 2
)

// Validate checks that payload belongs to source and that its fields are
// well formed. baseScore is the score the attestation authorises; some
// sources bound it by a value carried in the payload.
func Validate(source Source, payload Payload, baseScore uint64, now int64) error {
	if payload == nil || !source.Valid() || payload.Source() != source {
		return mismatch(source)
	}

	switch p := payload.(type) {
	case ReclaimPayload:
		if p.ProviderHash.IsZero() || p.ResponseHash.IsZero() {
			return invalid(source, "hashes must be non-zero")
		}
		if p.IssuedAt > now+ReclaimMaxSkewSeconds {
			return invalid(source, "issued_at is in the future")
		}
		if p.IssuedAt < now-ReclaimMaxAgeSeconds {
			return invalid(source, "issued_at is older than one day")
		}
	case GitcoinPassportPayload:
		if p.StampCount == 0 || p.PassportScore == 0 || p.ModelVersion == 0 {
			return invalid(source, "stamp_count, passport_score and model_version must be positive")
		}
		if baseScore > uint64(p.PassportScore) {
			return invalid(source, "base score exceeds passport score")
		}
	case WorldIDPayload:
		if p.NullifierHash.IsZero() || p.MerkleRoot.IsZero() {
			return invalid(source, "hashes must be non-zero")
		}
		if p.VerificationLevel < worldIDMinLevel || p.VerificationLevel > worldIDMaxLevel {
			return invalid(source, "verification_level must be 1 or 2")
		}
	case BrightIDPayload:
		if p.ContextHash.IsZero() || p.GroupHash.IsZero() {
			return invalid(source, "hashes must be non-zero")
		}
	case LensPayload:
		if p.ProfileID == 0 {
			return invalid(source, "profile_id must be positive")
		}
		if p.HandleHash.IsZero() {
			return invalid(source, "handle_hash must be non-zero")
		}
	case TwitterPayload:
		if p.TweetID == 0 {
			return invalid(source, "tweet_id must be positive")
		}
		if p.HandleHash.IsZero() {
			return invalid(source, "handle_hash must be non-zero")
		}
	case GooglePayload:
		if p.AccountHash.IsZero() || p.DomainHash.IsZero() {
			return invalid(source, "hashes must be non-zero")
		}
	case DiscordPayload:
		if p.UserIDHash.IsZero() || p.GuildIDHash.IsZero() {
			return invalid(source, "hashes must be non-zero")
		}
	default:
		return mismatch(source)
	}
	return nil
}

// SupportsNullifier reports whether the source carries a sybil fingerprint
// in its payload.
func SupportsNullifier(source Source) bool {
	switch source {
	case WorldID, BrightID, Lens, Twitter, Google, Discord:
		return true
	default:
		return false
	}
}

// ExtractIdentityNullifier returns the payload field that fingerprints the
// real-world identity behind the proof.
func ExtractIdentityNullifier(source Source, payload Payload) (domain.Hash, error) {
	if payload == nil || payload.Source() != source {
		return domain.Hash{}, mismatch(source)
	}

	var n domain.Hash
	switch p := payload.(type) {
	case WorldIDPayload:
		n = p.NullifierHash
	case BrightIDPayload:
		n = p.ContextHash
	case LensPayload:
		n = p.HandleHash
	case TwitterPayload:
		n = p.HandleHash
	case GooglePayload:
		n = p.AccountHash
	case DiscordPayload:
		n = p.UserIDHash
	case ReclaimPayload, GitcoinPassportPayload:
		return domain.Hash{}, dErrors.Newf(dErrors.CodeSourcePayloadMismatch,
			"%s has no identity nullifier scheme", source)
	default:
		return domain.Hash{}, mismatch(source)
	}
	if n.IsZero() {
		return domain.Hash{}, dErrors.New(dErrors.CodeInvalidIdentityNullifier, "identity nullifier must be non-zero")
	}
	return n, nil
}

func mismatch(source Source) error {
	return dErrors.Newf(dErrors.CodeSourcePayloadMismatch, "payload does not match source %s", source)
}

func invalid(source Source, msg string) error {
	return dErrors.Newf(dErrors.CodeInvalidSourceProofData, "%s: %s", source, msg)
}
