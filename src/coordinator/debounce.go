package coordinator

import (
	"sync"
	"time"

	"pos-sync/src/helpers"
	"pos-sync/src/logger"
	"pos-sync/src/models"
)

// -----------------------------------------------------------------------------
// Debouncer coalesces bursts of change events into one delayed refetch per
// topic. The topic set is closed, so timer handles live in a fixed table
// rather than a growable map, and teardown can cancel exhaustively.
// -----------------------------------------------------------------------------

type Debouncer struct {
	Delay  time.Duration
	Logger *logger.Logger

	mu     sync.Mutex
	timers [models.NumTopics]*time.Timer
	gens   [models.NumTopics]uint64
	closed bool
}

// -----------------------------------------------------------------------------

func NewDebouncer(delay time.Duration, log *logger.Logger) *Debouncer {
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &Debouncer{
		Delay:  delay,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Schedule arms (or re-arms) the timer for a topic. A new event within the
// debounce window cancels and replaces the pending timer, so a burst of N
// events yields exactly one action run after the window of quiescence.
//
// There is no in-flight guard: an action may start while a previous run
// for the same topic is still executing. The overlapping refetches race
// and the last store write wins.
func (d *Debouncer) Schedule(topic models.Resource, action func() error) {
	idx := models.TopicIndex(topic)
	if idx < 0 {
		d.Logger.Warning("Schedule called for unknown topic %q", topic)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	if t := d.timers[idx]; t != nil {
		t.Stop()
	}

	// Each arming bumps the slot's generation. A fired callback only owns
	// the slot while its generation is current; if Schedule re-armed the
	// slot between the timer firing and the callback taking the lock, the
	// stale callback must neither clear the replacement's handle nor run
	// (the replacement's window covers its event).
	d.gens[idx]++
	gen := d.gens[idx]

	d.timers[idx] = time.AfterFunc(d.Delay, func() {
		d.mu.Lock()
		if d.gens[idx] != gen {
			d.mu.Unlock()
			return
		}
		d.timers[idx] = nil
		d.mu.Unlock()

		d.run(topic, action)
	})
}

// -----------------------------------------------------------------------------

// run executes a fired action. Failures and panics stop here: the topic
// keeps its last-known-good snapshot and the next event tries again.
func (d *Debouncer) run(topic models.Resource, action func() error) {
	defer func() {
		if r := recover(); r != nil {
			d.Logger.Error("Refetch %s panicked: %v", topic, r)
		}
	}()

	if err := action(); err != nil {
		d.Logger.Error("%v", helpers.NewActionError(topic, err))
	}
}

// -----------------------------------------------------------------------------

// CancelAll stops every outstanding timer. Used on teardown so no refetch
// fires after the subscription and its consumers are gone.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, t := range d.timers {
		if t != nil {
			t.Stop()
			d.timers[i] = nil
		}
		// Invalidate fired-but-not-yet-run callbacks too; Stop cannot
		// reach a timer that has already fired.
		d.gens[i]++
	}
}

// -----------------------------------------------------------------------------

// Close cancels all timers and rejects further scheduling.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.CancelAll()
}

// -----------------------------------------------------------------------------

// Pending reports whether a timer is armed for the topic (test hook).
func (d *Debouncer) Pending(topic models.Resource) bool {
	idx := models.TopicIndex(topic)
	if idx < 0 {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timers[idx] != nil
}
