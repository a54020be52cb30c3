package coordinator

import (
	"context"
	"sync"

	"pos-sync/src/interfaces"
	"pos-sync/src/logger"
	"pos-sync/src/models"
)

// -----------------------------------------------------------------------------
// Router fans the single change-feed subscription out to per-topic
// debounced refetches. One subscription entry point, a fixed topic ->
// binding table built at startup, one teardown path.
// -----------------------------------------------------------------------------

type Router struct {
	Backend   interfaces.IBackend
	Debouncer *Debouncer
	Logger    *logger.Logger

	bindings [models.NumTopics]Refetch

	mu     sync.Mutex
	sub    interfaces.ISubscription
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// -----------------------------------------------------------------------------

func NewRouter(b interfaces.IBackend, deb *Debouncer, bindings [models.NumTopics]Refetch, log *logger.Logger) *Router {
	return &Router{
		Backend:   b,
		Debouncer: deb,
		Logger:    log,
		bindings:  bindings,
	}
}

// -----------------------------------------------------------------------------

// Subscribe opens the change channel and starts dispatching. One call per
// session; the subscription lives until Teardown.
func (r *Router) Subscribe(parentCtx context.Context, channel string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sub != nil {
		return nil // Already subscribed
	}

	ctx, cancel := context.WithCancel(parentCtx)

	sub, err := r.Backend.Subscribe(ctx, channel, models.Topics)
	if err != nil {
		cancel()
		return err
	}

	r.sub = sub
	r.ctx = ctx
	r.cancel = cancel

	r.wg.Add(1)
	go r.dispatch(sub)
	return nil
}

// -----------------------------------------------------------------------------

// dispatch forwards each event to the debouncer with its topic's refetch
// binding. The operation kind is not inspected: insert, update and delete
// all mean "this topic changed, refetch it".
func (r *Router) dispatch(sub interfaces.ISubscription) {
	defer r.wg.Done()

	for ev := range sub.Events() {
		idx := models.TopicIndex(ev.Topic)
		if idx < 0 {
			continue
		}

		action := r.bindings[idx]
		topicCtx := r.ctx

		r.Logger.Debug("Change event %s/%s", ev.Topic, ev.Operation)
		r.Debouncer.Schedule(ev.Topic, func() error {
			return action(topicCtx)
		})
	}

	r.Logger.Info("Change feed closed")
}

// -----------------------------------------------------------------------------

// Teardown closes the subscription and cancels all derived work. Safe to
// call when Subscribe failed or was never invoked, and safe to call twice.
func (r *Router) Teardown() {
	r.mu.Lock()
	sub := r.sub
	cancel := r.cancel
	r.sub = nil
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		sub.Close()
	}

	r.Debouncer.CancelAll()
	r.wg.Wait()
}
