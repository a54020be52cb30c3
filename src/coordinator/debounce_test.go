package coordinator

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pos-sync/src/logger"
	"pos-sync/src/models"
)

// -----------------------------------------------------------------------------

func testDebouncer(delay time.Duration) *Debouncer {
	return NewDebouncer(delay, logger.NewLogger("ERROR", "test"))
}

// -----------------------------------------------------------------------------

func TestDebouncer(t *testing.T) {
	t.Run("a burst yields exactly one run", func(t *testing.T) {
		d := testDebouncer(30 * time.Millisecond)
		defer d.Close()

		var runs int64
		for i := 0; i < 10; i++ {
			d.Schedule(models.ResOrders, func() error {
				atomic.AddInt64(&runs, 1)
				return nil
			})
		}

		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, int64(1), atomic.LoadInt64(&runs))
	})

	t.Run("events spaced past the window each run", func(t *testing.T) {
		d := testDebouncer(20 * time.Millisecond)
		defer d.Close()

		var runs int64
		for i := 0; i < 3; i++ {
			d.Schedule(models.ResOrders, func() error {
				atomic.AddInt64(&runs, 1)
				return nil
			})
			time.Sleep(60 * time.Millisecond)
		}

		assert.Equal(t, int64(3), atomic.LoadInt64(&runs))
	})

	t.Run("topics debounce independently", func(t *testing.T) {
		d := testDebouncer(20 * time.Millisecond)
		defer d.Close()

		var runs int64
		action := func() error {
			atomic.AddInt64(&runs, 1)
			return nil
		}
		d.Schedule(models.ResOrders, action)
		d.Schedule(models.ResMenuItems, action)
		d.Schedule(models.ResStaff, action)

		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, int64(3), atomic.LoadInt64(&runs))
	})

	t.Run("re-arming in the fire window keeps one timer per topic", func(t *testing.T) {
		// An event can arrive just as the previous window elapses: the old
		// timer has fired but its callback has not taken the lock yet. The
		// re-armed timer must keep sole ownership of the slot, so a third
		// event inside its window coalesces instead of arming a second
		// concurrent timer.
		d := testDebouncer(2 * time.Millisecond)
		defer d.Close()

		for i := 0; i < 100; i++ {
			var runs int64
			action := func() error {
				atomic.AddInt64(&runs, 1)
				return nil
			}

			d.Schedule(models.ResOrders, action)
			time.Sleep(2 * time.Millisecond) // land in the fire window
			d.Schedule(models.ResOrders, action)
			d.Schedule(models.ResOrders, action)

			time.Sleep(15 * time.Millisecond)
			assert.LessOrEqual(t, atomic.LoadInt64(&runs), int64(2), "iteration %d", i)
		}
	})

	t.Run("cancel all reaches a timer re-armed in the fire window", func(t *testing.T) {
		d := testDebouncer(2 * time.Millisecond)
		defer d.Close()

		for i := 0; i < 100; i++ {
			var runs int64
			action := func() error {
				atomic.AddInt64(&runs, 1)
				return nil
			}

			d.Schedule(models.ResOrders, action)
			time.Sleep(2 * time.Millisecond) // land in the fire window
			d.Schedule(models.ResOrders, action)
			d.CancelAll()

			// The first arming may have run; the re-armed one must not.
			time.Sleep(15 * time.Millisecond)
			assert.LessOrEqual(t, atomic.LoadInt64(&runs), int64(1), "iteration %d", i)
		}
	})

	t.Run("cancel all stops pending timers", func(t *testing.T) {
		d := testDebouncer(50 * time.Millisecond)
		defer d.Close()

		var runs int64
		d.Schedule(models.ResOrders, func() error {
			atomic.AddInt64(&runs, 1)
			return nil
		})
		assert.True(t, d.Pending(models.ResOrders))

		d.CancelAll()
		assert.False(t, d.Pending(models.ResOrders))

		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, int64(0), atomic.LoadInt64(&runs))
	})

	t.Run("closed debouncer rejects scheduling", func(t *testing.T) {
		d := testDebouncer(10 * time.Millisecond)
		d.Close()

		var runs int64
		d.Schedule(models.ResOrders, func() error {
			atomic.AddInt64(&runs, 1)
			return nil
		})

		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, int64(0), atomic.LoadInt64(&runs))
	})

	t.Run("unknown topics are ignored", func(t *testing.T) {
		d := testDebouncer(10 * time.Millisecond)
		defer d.Close()

		d.Schedule(models.ResLowStockItems, func() error { return nil })
		assert.False(t, d.Pending(models.ResLowStockItems))
	})

	t.Run("a panicking action does not kill the process", func(t *testing.T) {
		d := testDebouncer(10 * time.Millisecond)
		defer d.Close()

		d.Schedule(models.ResOrders, func() error { panic("boom") })
		time.Sleep(50 * time.Millisecond)

		// Next event schedules and runs normally.
		var runs int64
		d.Schedule(models.ResOrders, func() error {
			atomic.AddInt64(&runs, 1)
			return nil
		})
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, int64(1), atomic.LoadInt64(&runs))
	})
}
