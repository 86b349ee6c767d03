package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRingBuffer(t *testing.T) {
	b := newRingBuffer(3)
	for i := range 5 {
		b.enqueue(Event{RequestID: string(rune('a' + i))})
	}
	assert.Equal(t, 3, b.len())
	assert.Equal(t, int64(2), b.dropped)

	got := b.dequeueBatch(2)
	assert.Equal(t, []string{"c", "d"}, []string{got[0].RequestID, got[1].RequestID})

	b.enqueue(Event{RequestID: "f"})
	got = b.dequeueBatch(10)
	assert.Equal(t, []string{"e", "f"}, []string{got[0].RequestID, got[1].RequestID})
	assert.Nil(t, b.dequeueBatch(1))
}

func TestCircuitBreaker(t *testing.T) {
	now := time.Unix(0, 0)
	cb := newCircuitBreaker(2, time.Minute, func() time.Time { return now })

	assert.True(t, cb.allow())
	assert.False(t, cb.failure())
	assert.True(t, cb.failure(), "threshold reached")
	assert.False(t, cb.allow())

	now = now.Add(time.Minute)
	assert.True(t, cb.allow(), "half-open after cooldown")
	cb.success()
	assert.True(t, cb.allow())
}
