package coordinator

import (
	"context"
	"sync"
	"time"

	"pos-sync/src/helpers"
	"pos-sync/src/interfaces"
	"pos-sync/src/logger"
	"pos-sync/src/models"
	"pos-sync/src/store"
	"pos-sync/src/utils"
)

// -----------------------------------------------------------------------------
// Coordinator owns the session's sync lifecycle: health-gated bulk load,
// the change-feed router, and teardown. It is the only writer of the
// store's load state.
// -----------------------------------------------------------------------------

type Coordinator struct {
	Backend  interfaces.IBackend
	Store    *store.Store
	Config   *models.MConfig
	Logger   *logger.Logger
	Notifier *utils.Notifier

	Debouncer *Debouncer
	Router    *Router

	steps []loadStep

	mu       sync.Mutex
	loadOnce bool
	closed   bool
}

// -----------------------------------------------------------------------------

func NewCoordinator(b interfaces.IBackend, st *store.Store, cfg *models.MConfig, log *logger.Logger, notifier *utils.Notifier) *Coordinator {
	steps := buildLoadSteps(b, st)
	deb := NewDebouncer(time.Duration(cfg.Sync.DebounceMs)*time.Millisecond, log.Named("Debouncer"))
	router := NewRouter(b, deb, buildRefetchTable(steps), log.Named("Router"))

	return &Coordinator{
		Backend:   b,
		Store:     st,
		Config:    cfg,
		Logger:    log,
		Notifier:  notifier,
		Debouncer: deb,
		Router:    router,
		steps:     steps,
	}
}

// -----------------------------------------------------------------------------

// Load performs the initial bulk load. Idempotent: a one-shot flag makes
// concurrent or repeated calls after the first a no-op; only Retry clears
// the flag.
//
// Health probe failure is fatal (ConnectivityError, surfaced). Individual
// resource fetch failures are fail-soft: the kind gets an empty snapshot
// and the load still completes. On success the change-feed subscription is
// opened.
func (c *Coordinator) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.loadOnce || c.closed {
		c.mu.Unlock()
		return nil
	}
	c.loadOnce = true
	c.mu.Unlock()

	c.Store.SetLoadError("")

	// 1. Health probe (fail-hard)
	if err := c.Backend.HealthCheck(ctx); err != nil {
		cerr := helpers.NewConnectivityError(err)
		c.Store.SetLoadError(cerr.Error())
		c.Notifier.Notify("error", "Cannot reach the restaurant server. Check the connection and retry.")
		return cerr
	}

	// 2. Bulk fetches, all kinds concurrently (fail-soft per resource)
	start := time.Now()
	var wg sync.WaitGroup
	for _, step := range c.steps {
		wg.Add(1)
		go func(s loadStep) {
			defer wg.Done()
			if err := s.fetch(ctx); err != nil {
				c.Logger.Error("%v", helpers.NewResourceFetchError(s.resource, err))
				s.clear()
			}
		}(step)
	}
	wg.Wait()

	// 3. Mark loaded
	c.Store.SetLoaded(true)
	c.Logger.Info("Initial load complete: %d resource kinds in %v", len(c.steps), time.Since(start).Round(time.Millisecond))

	// 4. Open the realtime subscription
	if err := c.Router.Subscribe(ctx, c.Config.Sync.Channel); err != nil {
		c.Logger.Error("Change feed subscription failed: %v", err)
		c.Notifier.Notify("warning", "Live updates unavailable. Data will refresh on retry.")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Retry clears the one-shot flag and runs Load again. This is the only
// automatic-free recovery path: a failed load waits for the user.
func (c *Coordinator) Retry(ctx context.Context) error {
	c.mu.Lock()
	c.loadOnce = false
	c.mu.Unlock()

	c.Router.Teardown()
	return c.Load(ctx)
}

// -----------------------------------------------------------------------------

// Close tears the session down: subscription, pending debounce timers and
// the store, in that order. In-flight fetches finish on their own; their
// late writes hit the closed store and are discarded.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.Router.Teardown()
	c.Debouncer.Close()
	c.Store.Close()
	c.Logger.Info("Coordinator closed")
}
