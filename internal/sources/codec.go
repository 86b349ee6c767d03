package sources

import (
	"encoding/binary"
	"encoding/json"

	dErrors "trustscore/pkg/domain-errors"
)

// ProofData carries a Payload through JSON. The wire shape names the source
// and nests the payload under a key of the same name:
//
//	{"source":"world_id","world_id":{"nullifier_hash":"…", …}}
type ProofData struct {
	Payload Payload
}

type proofDataWire struct {
	Source          Source                  `json:"source"`
	Reclaim         *ReclaimPayload         `json:"reclaim,omitempty"`
	GitcoinPassport *GitcoinPassportPayload `json:"gitcoin_passport,omitempty"`
	WorldID         *WorldIDPayload         `json:"world_id,omitempty"`
	BrightID        *BrightIDPayload        `json:"bright_id,omitempty"`
	Lens            *LensPayload            `json:"lens,omitempty"`
	Twitter         *TwitterPayload         `json:"twitter,omitempty"`
	Google          *GooglePayload          `json:"google,omitempty"`
	Discord         *DiscordPayload         `json:"discord,omitempty"`
}

func (d ProofData) MarshalJSON() ([]byte, error) {
	if d.Payload == nil {
		return []byte("null"), nil
	}
	w := proofDataWire{Source: d.Payload.Source()}
	switch p := d.Payload.(type) {
	case ReclaimPayload:
		w.Reclaim = &p
	case GitcoinPassportPayload:
		w.GitcoinPassport = &p
	case WorldIDPayload:
		w.WorldID = &p
	case BrightIDPayload:
		w.BrightID = &p
	case LensPayload:
		w.Lens = &p
	case TwitterPayload:
		w.Twitter = &p
	case GooglePayload:
		w.Google = &p
	case DiscordPayload:
		w.Discord = &p
	default:
		return nil, dErrors.New(dErrors.CodeSourcePayloadMismatch, "unsupported payload type")
	}
	return json.Marshal(w)
}

func (d *ProofData) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		d.Payload = nil
		return nil
	}
	var w proofDataWire
	if err := json.Unmarshal(data, &w); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed proof data")
	}

	var found []Payload
	if w.Reclaim != nil {
		found = append(found, *w.Reclaim)
	}
	if w.GitcoinPassport != nil {
		found = append(found, *w.GitcoinPassport)
	}
	if w.WorldID != nil {
		found = append(found, *w.WorldID)
	}
	if w.BrightID != nil {
		found = append(found, *w.BrightID)
	}
	if w.Lens != nil {
		found = append(found, *w.Lens)
	}
	if w.Twitter != nil {
		found = append(found, *w.Twitter)
	}
	if w.Google != nil {
		found = append(found, *w.Google)
	}
	if w.Discord != nil {
		found = append(found, *w.Discord)
	}
	if len(found) != 1 {
		return dErrors.New(dErrors.CodeSourcePayloadMismatch, "proof data must carry exactly one payload")
	}
	if found[0].Source() != w.Source {
		return mismatch(w.Source)
	}
	d.Payload = found[0]
	return nil
}

// Encode returns the canonical binary form of a payload: the source tag
// followed by each field in declaration order, integers little-endian.
func Encode(payload Payload) ([]byte, error) {
	if payload == nil {
		return nil, dErrors.New(dErrors.CodeSourcePayloadMismatch, "payload is required")
	}
	le := binary.LittleEndian
	buf := make([]byte, 0, 73)
	buf = append(buf, payload.Source().Tag())

	switch p := payload.(type) {
	case ReclaimPayload:
		buf = append(buf, p.ProviderHash[:]...)
		buf = append(buf, p.ResponseHash[:]...)
		buf = le.AppendUint64(buf, uint64(p.IssuedAt))
	case GitcoinPassportPayload:
		buf = le.AppendUint16(buf, p.StampCount)
		buf = le.AppendUint16(buf, p.PassportScore)
		buf = append(buf, p.ModelVersion)
	case WorldIDPayload:
		buf = append(buf, p.NullifierHash[:]...)
		buf = append(buf, p.MerkleRoot[:]...)
		buf = append(buf, p.VerificationLevel)
	case BrightIDPayload:
		buf = append(buf, p.ContextHash[:]...)
		buf = append(buf, p.GroupHash[:]...)
	case LensPayload:
		buf = le.AppendUint64(buf, p.ProfileID)
		buf = append(buf, p.HandleHash[:]...)
	case TwitterPayload:
		buf = append(buf, p.HandleHash[:]...)
		buf = le.AppendUint64(buf, p.TweetID)
	case GooglePayload:
		buf = append(buf, p.AccountHash[:]...)
		buf = append(buf, p.DomainHash[:]...)
	case DiscordPayload:
		buf = append(buf, p.UserIDHash[:]...)
		buf = append(buf, p.GuildIDHash[:]...)
	default:
		return nil, dErrors.New(dErrors.CodeSourcePayloadMismatch, "unsupported payload type")
	}
	return buf, nil
}
