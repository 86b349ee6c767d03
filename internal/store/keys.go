package store

import (
	"strconv"

	"trustscore/internal/sources"
	"trustscore/pkg/domain"
)

// Record keys are derived deterministically from stable identifiers.
const (
	KeyRegistry      = "registry"
	KeyScoringConfig = "scoring_config"
)

func UserProofKey(id domain.Identity) string {
	return "user_proof:" + id.String()
}

func IndividualProofKey(id domain.Identity, source sources.Source) string {
	return "individual_proof:" + id.String() + ":" + strconv.Itoa(int(source.Tag()))
}

func NullifierKey(source sources.Source, nullifier domain.Hash) string {
	return "identity_nullifier:" + strconv.Itoa(int(source.Tag())) + ":" + nullifier.String()
}

func NonceKey(registry domain.Identity, nonce uint64) string {
	return "attestation_nonce:" + registry.String() + ":" + strconv.FormatUint(nonce, 10)
}
