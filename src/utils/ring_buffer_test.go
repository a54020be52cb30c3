package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func TestTimestampRing(t *testing.T) {
	base := time.Now()
	at := func(ms int) time.Time { return base.Add(time.Duration(ms) * time.Millisecond) }

	t.Run("keeps insertion order and tracks oldest", func(t *testing.T) {
		rb := NewTimestampRing(3)
		assert.Equal(t, 0, rb.Size())
		assert.True(t, rb.Oldest().IsZero())

		rb.Append(at(0))
		rb.Append(at(10))
		assert.Equal(t, 2, rb.Size())
		assert.Equal(t, at(0), rb.Oldest())
	})

	t.Run("overwrites oldest when full", func(t *testing.T) {
		rb := NewTimestampRing(3)
		for ms := 0; ms < 40; ms += 10 {
			rb.Append(at(ms))
		}

		assert.True(t, rb.IsFull())
		assert.Equal(t, at(10), rb.Oldest())
	})

	t.Run("evicts strictly older entries from the head", func(t *testing.T) {
		rb := NewTimestampRing(4)
		for ms := 0; ms < 40; ms += 10 {
			rb.Append(at(ms))
		}

		rb.EvictBefore(at(20))
		assert.Equal(t, 2, rb.Size())
		assert.Equal(t, at(20), rb.Oldest())

		// Eviction at the exact boundary keeps the entry.
		rb.EvictBefore(at(20))
		assert.Equal(t, 2, rb.Size())

		rb.EvictBefore(at(100))
		assert.Equal(t, 0, rb.Size())
	})

	t.Run("clear resets without reallocating", func(t *testing.T) {
		rb := NewTimestampRing(2)
		rb.Append(at(0))
		rb.Clear()

		assert.Equal(t, 0, rb.Size())
		assert.Equal(t, 2, rb.Capacity())
		assert.False(t, rb.IsFull())
	})
}
