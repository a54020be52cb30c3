package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-sync/src/helpers"
	"pos-sync/src/interfaces"
	"pos-sync/src/logger"
	"pos-sync/src/models"
	"pos-sync/src/store"
	"pos-sync/src/utils"
)

// -----------------------------------------------------------------------------
// Stub backend: counts every call, fails on demand per resource, and hands
// out an in-memory subscription the tests can push events into.
// -----------------------------------------------------------------------------

type stubSubscription struct {
	events chan models.MChangeEvent
	once   sync.Once
}

func (s *stubSubscription) Events() <-chan models.MChangeEvent { return s.events }

func (s *stubSubscription) Close() error {
	s.once.Do(func() { close(s.events) })
	return nil
}

type stubBackend struct {
	mu           sync.Mutex
	healthErr    error
	healthCalls  int
	fetchCalls   map[models.Resource]int
	failing      map[models.Resource]error
	subscribeErr error
	sub          *stubSubscription
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		fetchCalls: make(map[models.Resource]int),
		failing:    make(map[models.Resource]error),
	}
}

func (b *stubBackend) record(r models.Resource) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetchCalls[r]++
	return b.failing[r]
}

func (b *stubBackend) calls(r models.Resource) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fetchCalls[r]
}

func (b *stubBackend) HealthCheck(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.healthCalls++
	return b.healthErr
}

func (b *stubBackend) FetchMenuItems(ctx context.Context) ([]models.MMenuItem, error) {
	if err := b.record(models.ResMenuItems); err != nil {
		return nil, err
	}
	return []models.MMenuItem{{ID: "m1", Name: "Espresso"}}, nil
}

func (b *stubBackend) FetchOrders(ctx context.Context) ([]models.MOrder, error) {
	if err := b.record(models.ResOrders); err != nil {
		return nil, err
	}
	return []models.MOrder{{ID: "o1", Status: models.OrderPending}}, nil
}

func (b *stubBackend) FetchBills(ctx context.Context) ([]models.MBill, error) {
	if err := b.record(models.ResBills); err != nil {
		return nil, err
	}
	return []models.MBill{{ID: "b1"}}, nil
}

func (b *stubBackend) FetchCustomers(ctx context.Context) ([]models.MCustomer, error) {
	if err := b.record(models.ResCustomers); err != nil {
		return nil, err
	}
	return nil, nil
}

func (b *stubBackend) FetchStaff(ctx context.Context) ([]models.MStaff, error) {
	if err := b.record(models.ResStaff); err != nil {
		return nil, err
	}
	return nil, nil
}

func (b *stubBackend) FetchSettings(ctx context.Context) ([]models.MSettings, error) {
	if err := b.record(models.ResSettings); err != nil {
		return nil, err
	}
	return nil, nil
}

func (b *stubBackend) FetchExpenses(ctx context.Context) ([]models.MExpense, error) {
	if err := b.record(models.ResExpenses); err != nil {
		return nil, err
	}
	return nil, nil
}

func (b *stubBackend) FetchWaiterCalls(ctx context.Context) ([]models.MWaiterCall, error) {
	if err := b.record(models.ResWaiterCalls); err != nil {
		return nil, err
	}
	return nil, nil
}

func (b *stubBackend) FetchTransactions(ctx context.Context) ([]models.MTransaction, error) {
	if err := b.record(models.ResTransactions); err != nil {
		return nil, err
	}
	return nil, nil
}

func (b *stubBackend) FetchCategories(ctx context.Context) ([]models.MCategory, error) {
	if err := b.record(models.ResCategories); err != nil {
		return nil, err
	}
	return nil, nil
}

func (b *stubBackend) FetchInventoryItems(ctx context.Context) ([]models.MInventoryItem, error) {
	if err := b.record(models.ResInventoryItems); err != nil {
		return nil, err
	}
	return nil, nil
}

func (b *stubBackend) FetchInventoryTransactions(ctx context.Context) ([]models.MInventoryTransaction, error) {
	if err := b.record(models.ResInventoryTransactions); err != nil {
		return nil, err
	}
	return nil, nil
}

func (b *stubBackend) FetchPortionOptions(ctx context.Context) ([]models.MPortionOption, error) {
	if err := b.record(models.ResPortionOptions); err != nil {
		return nil, err
	}
	return nil, nil
}

func (b *stubBackend) FetchItemPortionPrices(ctx context.Context) ([]models.MItemPortionPrice, error) {
	if err := b.record(models.ResItemPortionPrices); err != nil {
		return nil, err
	}
	return nil, nil
}

func (b *stubBackend) FetchLowStockItems(ctx context.Context) ([]models.MLowStockItem, error) {
	if err := b.record(models.ResLowStockItems); err != nil {
		return nil, err
	}
	return nil, nil
}

func (b *stubBackend) Subscribe(ctx context.Context, channel string, topics []models.Resource) (interfaces.ISubscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribeErr != nil {
		return nil, b.subscribeErr
	}
	b.sub = &stubSubscription{events: make(chan models.MChangeEvent, 32)}
	return b.sub, nil
}

func (b *stubBackend) SubmitOrder(ctx context.Context, order models.MOrder) error { return nil }

func (b *stubBackend) Close() error { return nil }

// -----------------------------------------------------------------------------

func testCoordinator(b interfaces.IBackend) (*Coordinator, *store.Store) {
	log := logger.NewLogger("ERROR", "test")
	st := store.NewStore(log)
	cfg := &models.MConfig{
		Sync: models.MSyncConfig{
			Channel:        "pos_changes",
			DebounceMs:     20,
			EventBufferLen: 32,
		},
	}
	return NewCoordinator(b, st, cfg, log, utils.NewNotifier(log)), st
}

// -----------------------------------------------------------------------------

func TestLoad(t *testing.T) {
	t.Run("loads every kind and marks the store ready", func(t *testing.T) {
		b := newStubBackend()
		coord, st := testCoordinator(b)
		defer coord.Close()

		require.NoError(t, coord.Load(context.Background()))

		assert.True(t, st.Loaded())
		assert.Empty(t, st.LoadError())
		for _, r := range models.AllResources {
			assert.Equal(t, 1, b.calls(r), "resource %s", r)
		}
		assert.Len(t, st.MenuItems(), 1)
	})

	t.Run("is idempotent until retry", func(t *testing.T) {
		b := newStubBackend()
		coord, _ := testCoordinator(b)
		defer coord.Close()

		require.NoError(t, coord.Load(context.Background()))
		require.NoError(t, coord.Load(context.Background()))
		require.NoError(t, coord.Load(context.Background()))

		assert.Equal(t, 1, b.healthCalls)
		assert.Equal(t, 1, b.calls(models.ResOrders))

		require.NoError(t, coord.Retry(context.Background()))
		assert.Equal(t, 2, b.healthCalls)
		assert.Equal(t, 2, b.calls(models.ResOrders))
	})

	t.Run("health failure aborts before any fetch", func(t *testing.T) {
		b := newStubBackend()
		b.healthErr = errors.New("connection refused")
		coord, st := testCoordinator(b)
		defer coord.Close()

		err := coord.Load(context.Background())
		require.Error(t, err)

		var cerr *helpers.ConnectivityError
		assert.True(t, errors.As(err, &cerr))
		assert.False(t, st.Loaded())
		assert.NotEmpty(t, st.LoadError())
		assert.Equal(t, 0, b.calls(models.ResOrders))

		// The one-shot flag stays set: no automatic retry sneaks in.
		require.NoError(t, coord.Load(context.Background()))
		assert.Equal(t, 1, b.healthCalls)

		// Manual retry after the backend recovers.
		b.mu.Lock()
		b.healthErr = nil
		b.mu.Unlock()
		require.NoError(t, coord.Retry(context.Background()))
		assert.True(t, st.Loaded())
		assert.Empty(t, st.LoadError())
	})

	t.Run("a failing resource degrades to an empty snapshot", func(t *testing.T) {
		b := newStubBackend()
		b.failing[models.ResOrders] = errors.New("boom")
		coord, st := testCoordinator(b)
		defer coord.Close()

		require.NoError(t, coord.Load(context.Background()))

		assert.True(t, st.Loaded())
		assert.Empty(t, st.Orders())
		assert.Len(t, st.MenuItems(), 1)
	})

	t.Run("subscription failure does not fail the load", func(t *testing.T) {
		b := newStubBackend()
		b.subscribeErr = errors.New("feed down")
		coord, st := testCoordinator(b)
		defer coord.Close()

		require.NoError(t, coord.Load(context.Background()))
		assert.True(t, st.Loaded())
	})
}

// -----------------------------------------------------------------------------

func TestRouterDispatch(t *testing.T) {
	t.Run("a burst of events coalesces into one compound refetch", func(t *testing.T) {
		b := newStubBackend()
		coord, _ := testCoordinator(b)
		defer coord.Close()

		require.NoError(t, coord.Load(context.Background()))
		require.NotNil(t, b.sub)

		for i := 0; i < 5; i++ {
			b.sub.events <- models.MChangeEvent{Topic: models.ResBills, Operation: models.OpUpdate}
		}

		// Wait past the debounce window.
		time.Sleep(150 * time.Millisecond)

		// Bills is a compound topic: bills + transactions, once each.
		assert.Equal(t, 2, b.calls(models.ResBills))
		assert.Equal(t, 2, b.calls(models.ResTransactions))
		assert.Equal(t, 1, b.calls(models.ResMenuItems))
	})

	t.Run("independent topics refetch independently", func(t *testing.T) {
		b := newStubBackend()
		coord, _ := testCoordinator(b)
		defer coord.Close()

		require.NoError(t, coord.Load(context.Background()))

		b.sub.events <- models.MChangeEvent{Topic: models.ResMenuItems, Operation: models.OpUpdate}
		b.sub.events <- models.MChangeEvent{Topic: models.ResStaff, Operation: models.OpDelete}

		time.Sleep(150 * time.Millisecond)

		assert.Equal(t, 2, b.calls(models.ResMenuItems))
		assert.Equal(t, 2, b.calls(models.ResStaff))
	})

	t.Run("teardown cancels pending refetches", func(t *testing.T) {
		b := newStubBackend()
		coord, _ := testCoordinator(b)

		require.NoError(t, coord.Load(context.Background()))

		b.sub.events <- models.MChangeEvent{Topic: models.ResOrders, Operation: models.OpInsert}

		// Give the dispatcher time to arm the timer, then tear down before
		// the debounce window elapses.
		time.Sleep(5 * time.Millisecond)
		coord.Close()
		time.Sleep(100 * time.Millisecond)

		assert.Equal(t, 1, b.calls(models.ResOrders))
	})
}
