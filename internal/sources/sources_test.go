package sources

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustscore/pkg/domain"
	dErrors "trustscore/pkg/domain-errors"
)

const now int64 = 1_700_000_000

func hash(b byte) domain.Hash {
	var h domain.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

// validPayloads returns one well-formed payload per source, keyed by source.
func validPayloads() map[Source]Payload {
	return map[Source]Payload{
		Reclaim:         ReclaimPayload{ProviderHash: hash(1), ResponseHash: hash(2), IssuedAt: now - 60},
		GitcoinPassport: GitcoinPassportPayload{StampCount: 4, PassportScore: 90, ModelVersion: 1},
		WorldID:         WorldIDPayload{NullifierHash: hash(3), MerkleRoot: hash(4), VerificationLevel: 2},
		BrightID:        BrightIDPayload{ContextHash: hash(5), GroupHash: hash(6)},
		Lens:            LensPayload{ProfileID: 42, HandleHash: hash(7)},
		Twitter:         TwitterPayload{HandleHash: hash(8), TweetID: 1001},
		Google:          GooglePayload{AccountHash: hash(9), DomainHash: hash(10)},
		Discord:         DiscordPayload{UserIDHash: hash(11), GuildIDHash: hash(12)},
	}
}

func TestParseSource(t *testing.T) {
	for _, s := range All() {
		parsed, err := ParseSource(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := ParseSource("myspace")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.False(t, Source(Count).Valid())
	assert.Equal(t, uint8(2), uint8(WorldID), "source tags are stable")
}

func TestValidate(t *testing.T) {
	t.Run("accepts a well-formed payload for every source", func(t *testing.T) {
		for source, payload := range validPayloads() {
			assert.NoError(t, Validate(source, payload, 50, now), source.String())
		}
	})

	t.Run("payload for another source is a mismatch", func(t *testing.T) {
		err := Validate(Lens, WorldIDPayload{NullifierHash: hash(1), MerkleRoot: hash(2), VerificationLevel: 1}, 10, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeSourcePayloadMismatch))

		err = Validate(Lens, nil, 10, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeSourcePayloadMismatch))
	})

	cases := []struct {
		name      string
		source    Source
		payload   Payload
		baseScore uint64
	}{
		{"reclaim zero provider hash", Reclaim, ReclaimPayload{ResponseHash: hash(2), IssuedAt: now}, 1},
		{"reclaim issued too far ahead", Reclaim, ReclaimPayload{ProviderHash: hash(1), ResponseHash: hash(2), IssuedAt: now + 301}, 1},
		{"reclaim issued over a day ago", Reclaim, ReclaimPayload{ProviderHash: hash(1), ResponseHash: hash(2), IssuedAt: now - 86_401}, 1},
		{"gitcoin zero stamps", GitcoinPassport, GitcoinPassportPayload{PassportScore: 10, ModelVersion: 1}, 1},
		{"gitcoin zero model", GitcoinPassport, GitcoinPassportPayload{StampCount: 1, PassportScore: 10}, 1},
		{"gitcoin base above passport score", GitcoinPassport, GitcoinPassportPayload{StampCount: 1, PassportScore: 10, ModelVersion: 1}, 11},
		{"world id level zero", WorldID, WorldIDPayload{NullifierHash: hash(1), MerkleRoot: hash(2)}, 1},
		{"world id level three", WorldID, WorldIDPayload{NullifierHash: hash(1), MerkleRoot: hash(2), VerificationLevel: 3}, 1},
		{"world id zero root", WorldID, WorldIDPayload{NullifierHash: hash(1), VerificationLevel: 1}, 1},
		{"bright id zero group", BrightID, BrightIDPayload{ContextHash: hash(1)}, 1},
		{"lens zero profile", Lens, LensPayload{HandleHash: hash(1)}, 1},
		{"twitter zero tweet", Twitter, TwitterPayload{HandleHash: hash(1)}, 1},
		{"twitter zero handle", Twitter, TwitterPayload{TweetID: 5}, 1},
		{"google zero domain", Google, GooglePayload{AccountHash: hash(1)}, 1},
		{"discord zero guild", Discord, DiscordPayload{UserIDHash: hash(1)}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.source, tc.payload, tc.baseScore, now)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidSourceProofData), err.Error())
		})
	}

	t.Run("reclaim accepts the window edges", func(t *testing.T) {
		p := ReclaimPayload{ProviderHash: hash(1), ResponseHash: hash(2)}
		p.IssuedAt = now + ReclaimMaxSkewSeconds
		assert.NoError(t, Validate(Reclaim, p, 1, now))
		p.IssuedAt = now - ReclaimMaxAgeSeconds
		assert.NoError(t, Validate(Reclaim, p, 1, now))
	})
}

func TestExtractIdentityNullifier(t *testing.T) {
	payloads := validPayloads()
	want := map[Source]domain.Hash{
		WorldID:  hash(3),
		BrightID: hash(5),
		Lens:     hash(7),
		Twitter:  hash(8),
		Google:   hash(9),
		Discord:  hash(11),
	}

	for source, expected := range want {
		require.True(t, SupportsNullifier(source))
		got, err := ExtractIdentityNullifier(source, payloads[source])
		require.NoError(t, err, source.String())
		assert.Equal(t, expected, got, source.String())
	}

	for _, source := range []Source{Reclaim, GitcoinPassport} {
		assert.False(t, SupportsNullifier(source))
		_, err := ExtractIdentityNullifier(source, payloads[source])
		assert.True(t, dErrors.HasCode(err, dErrors.CodeSourcePayloadMismatch), source.String())
	}

	_, err := ExtractIdentityNullifier(Google, payloads[Discord])
	assert.True(t, dErrors.HasCode(err, dErrors.CodeSourcePayloadMismatch))

	_, err = ExtractIdentityNullifier(Lens, LensPayload{ProfileID: 1})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidIdentityNullifier))
}

func TestProofDataJSON(t *testing.T) {
	t.Run("nests the payload under its source name", func(t *testing.T) {
		body, err := json.Marshal(ProofData{Payload: LensPayload{ProfileID: 9, HandleHash: hash(0xab)}})
		require.NoError(t, err)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(body, &raw))
		assert.JSONEq(t, `"lens"`, string(raw["source"]))
		assert.Contains(t, string(raw["lens"]), `"profile_id":9`)

		var decoded ProofData
		require.NoError(t, json.Unmarshal(body, &decoded))
		assert.Equal(t, LensPayload{ProfileID: 9, HandleHash: hash(0xab)}, decoded.Payload)
	})

	t.Run("rejects a payload under the wrong source", func(t *testing.T) {
		var decoded ProofData
		err := json.Unmarshal([]byte(`{"source":"lens","twitter":{"tweet_id":1}}`), &decoded)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeSourcePayloadMismatch))
	})

	t.Run("rejects two payloads", func(t *testing.T) {
		var decoded ProofData
		err := json.Unmarshal([]byte(`{"source":"lens","lens":{},"twitter":{}}`), &decoded)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeSourcePayloadMismatch))
	})
}

func TestEncode(t *testing.T) {
	sizes := map[Source]int{
		Reclaim:         1 + 32 + 32 + 8,
		GitcoinPassport: 1 + 2 + 2 + 1,
		WorldID:         1 + 32 + 32 + 1,
		BrightID:        1 + 64,
		Lens:            1 + 8 + 32,
		Twitter:         1 + 32 + 8,
		Google:          1 + 64,
		Discord:         1 + 64,
	}
	for source, payload := range validPayloads() {
		buf, err := Encode(payload)
		require.NoError(t, err)
		assert.Equal(t, source.Tag(), buf[0])
		assert.Len(t, buf, sizes[source], source.String())
	}

	_, err := Encode(nil)
	assert.Error(t, err)
}
