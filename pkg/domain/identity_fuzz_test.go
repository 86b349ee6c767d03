package domain

import "testing"

// FuzzParseIdentity checks that parsing never panics and that every accepted
// identity round-trips through its string form.
func FuzzParseIdentity(f *testing.F) {
	f.Add("")
	f.Add("11111111111111111111111111111111")
	f.Add("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	f.Add("'; DROP TABLE records;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseIdentity(input)
		if err != nil {
			return
		}
		if id.IsZero() {
			t.Error("zero identity was accepted")
		}
		roundTrip, err := ParseIdentity(id.String())
		if err != nil {
			t.Errorf("valid identity failed round-trip: %v", err)
		}
		if roundTrip != id {
			t.Error("round-trip changed identity value")
		}
	})
}
