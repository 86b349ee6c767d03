package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	t.Run("new error carries code and message", func(t *testing.T) {
		err := New(CodeProofExpired, "timestamp too old")
		require.Error(t, err)
		assert.True(t, HasCode(err, CodeProofExpired))
		assert.Equal(t, "timestamp too old", MessageOf(err))
		assert.Equal(t, "proof_expired: timestamp too old", err.Error())
	})

	t.Run("wrapped cause is reachable", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(cause, CodeInternal, "load records")
		assert.ErrorIs(t, err, cause)
		assert.True(t, HasCode(err, CodeInternal))
	})

	t.Run("wrap of nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "noop"))
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("submit: %w", New(CodeOverflow, "weighted score"))
		assert.Equal(t, CodeOverflow, CodeOf(err))
	})

	t.Run("uncoded errors map to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
		assert.False(t, HasCode(nil, CodeInternal))
	})

	t.Run("errors.Is matches by code", func(t *testing.T) {
		err := New(CodeDuplicateIdentityClaim, "claimed by another identity")
		assert.ErrorIs(t, err, New(CodeDuplicateIdentityClaim, ""))
		assert.NotErrorIs(t, err, New(CodeIdentityRevokedPermanent, ""))
	})
}
