package utils

import "time"

// -----------------------------------------------------------------------------
// TimestampRing is a fixed-size circular buffer of request timestamps,
// oldest first. It backs the sliding-window rate limiter: capacity equals
// the request cap, so the window can never grow past it.
// -----------------------------------------------------------------------------

type TimestampRing struct {
	data     []time.Time
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewTimestampRing creates a new ring with fixed capacity
func NewTimestampRing(capacity int) *TimestampRing {
	if capacity <= 0 {
		capacity = 1
	}

	return &TimestampRing{
		data:     make([]time.Time, capacity),
		capacity: capacity,
		index:    0,
		size:     0,
	}
}

// -----------------------------------------------------------------------------

// Append records a timestamp. When full, the oldest entry is overwritten.
func (rb *TimestampRing) Append(t time.Time) {
	rb.data[rb.index] = t
	rb.index = (rb.index + 1) % rb.capacity

	// Update size (never exceeds capacity)
	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// Oldest returns the oldest recorded timestamp. Zero time when empty.
func (rb *TimestampRing) Oldest() time.Time {
	if rb.size == 0 {
		return time.Time{}
	}

	startIdx := (rb.index - rb.size + rb.capacity) % rb.capacity
	return rb.data[startIdx]
}

// -----------------------------------------------------------------------------

// EvictBefore drops entries strictly older than cutoff. Entries are stored
// in insertion order, so eviction stops at the first survivor.
func (rb *TimestampRing) EvictBefore(cutoff time.Time) {
	for rb.size > 0 {
		startIdx := (rb.index - rb.size + rb.capacity) % rb.capacity
		if !rb.data[startIdx].Before(cutoff) {
			return
		}
		rb.size--
	}
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *TimestampRing) Size() int {
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (rb *TimestampRing) Capacity() int {
	return rb.capacity
}

// -----------------------------------------------------------------------------

// IsFull returns whether buffer is full
func (rb *TimestampRing) IsFull() bool {
	return rb.size == rb.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (rb *TimestampRing) Clear() {
	rb.index = 0
	rb.size = 0
}
