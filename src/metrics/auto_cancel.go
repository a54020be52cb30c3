package metrics

import (
	"context"
	"fmt"
	"time"

	"pos-sync/src/logger"
	"pos-sync/src/models"
	"pos-sync/src/store"
	"pos-sync/src/utils"
)

// -----------------------------------------------------------------------------
// AutoCancelSweeper cancels stale pending orders on a fixed cadence. This
// is a local, device-side decision: no backend round trip before acting.
// The store transition is idempotent, so several devices sweeping the same
// order concurrently is harmless.
// -----------------------------------------------------------------------------

type AutoCancelSweeper struct {
	Store    *store.Store
	Notifier *utils.Notifier
	Logger   *logger.Logger

	MaxAge   time.Duration
	Interval time.Duration

	cancel context.CancelFunc
}

// -----------------------------------------------------------------------------

func NewAutoCancelSweeper(st *store.Store, notifier *utils.Notifier, cfg *models.MConfig, log *logger.Logger) *AutoCancelSweeper {
	return &AutoCancelSweeper{
		Store:    st,
		Notifier: notifier,
		Logger:   log,
		MaxAge:   time.Duration(cfg.Metrics.AutoCancelMinutes) * time.Minute,
		Interval: time.Duration(cfg.Metrics.SweepIntervalSec) * time.Second,
	}
}

// -----------------------------------------------------------------------------

// Start runs one sweep immediately, then every Interval until the context
// is cancelled or Stop is called.
func (a *AutoCancelSweeper) Start(parentCtx context.Context) {
	ctx, cancel := context.WithCancel(parentCtx)
	a.cancel = cancel

	go func() {
		a.Sweep(time.Now())

		ticker := time.NewTicker(a.Interval)
		defer ticker.Stop()

		for {
			select {
			case now := <-ticker.C:
				a.Sweep(now)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// -----------------------------------------------------------------------------

// Sweep cancels every pending order older than MaxAge. Orders that are
// already cancelled (including by another device between snapshot read and
// write) are left alone. Returns the number of orders cancelled.
func (a *AutoCancelSweeper) Sweep(now time.Time) int {
	cancelled := 0
	for _, o := range a.Store.Orders() {
		if o.Status != models.OrderPending {
			continue
		}
		if o.Age(now) <= a.MaxAge {
			continue
		}

		if a.Store.UpdateOrderStatus(o.ID, models.OrderCancelled) {
			cancelled++
			a.Notifier.Notify("warning",
				fmt.Sprintf("Order %s was pending for over %d minutes and has been cancelled", o.ID, int(a.MaxAge.Minutes())))
		}
	}

	if cancelled > 0 {
		a.Logger.Info("Auto-cancel sweep: %d stale orders cancelled", cancelled)
	}
	return cancelled
}

// -----------------------------------------------------------------------------

// Stop halts the cadence loop.
func (a *AutoCancelSweeper) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
}
