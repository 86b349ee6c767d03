// Package sources defines the fixed set of identity sources, the payload each
// one carries, and the per-source validation and nullifier rules.
package sources

import (
	"strings"

	dErrors "trustscore/pkg/domain-errors"
)

// Source identifies an external identity or reputation provider. The numeric
// tag is stable and is part of signed attestation messages and record keys.
type Source uint8

const (
	Reclaim Source = iota
	GitcoinPassport
	WorldID
	BrightID
	Lens
	Twitter
	Google
	Discord
)

// Count is the number of defined sources.
const Count = 8

var sourceNames = [Count]string{
	Reclaim:         "reclaim",
	GitcoinPassport: "gitcoin_passport",
	WorldID:         "world_id",
	BrightID:        "bright_id",
	Lens:            "lens",
	Twitter:         "twitter",
	Google:          "google",
	Discord:         "discord",
}

// All returns every source in tag order.
func All() []Source {
	out := make([]Source, Count)
	for i := range out {
		out[i] = Source(i)
	}
	return out
}

// ParseSource accepts the snake_case name of a source.
func ParseSource(s string) (Source, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range sourceNames {
		if name == s {
			return Source(i), nil
		}
	}
	return 0, dErrors.Newf(dErrors.CodeValidation, "unknown source %q", s)
}

func (s Source) Valid() bool {
	return s < Count
}

// Tag is the byte used in canonical encodings.
func (s Source) Tag() byte {
	return byte(s)
}

func (s Source) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return sourceNames[s]
}

func (s Source) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "invalid source tag %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Source) UnmarshalText(text []byte) error {
	parsed, err := ParseSource(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
