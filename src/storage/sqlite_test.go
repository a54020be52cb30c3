package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-sync/src/logger"
	"pos-sync/src/models"
)

// -----------------------------------------------------------------------------
// The in-process bus needs no database; these tests exercise it bare.
// -----------------------------------------------------------------------------

func testBusBackend() *SQLiteBackend {
	return &SQLiteBackend{
		Config: &models.MConfig{
			Sync: models.MSyncConfig{Channel: "pos_changes", EventBufferLen: 8},
		},
		Logger: logger.NewLogger("ERROR", "test"),
	}
}

// -----------------------------------------------------------------------------

func TestInProcessBus(t *testing.T) {
	t.Run("delivers watched topics only", func(t *testing.T) {
		be := testBusBackend()
		sub, err := be.Subscribe(context.Background(), "pos_changes", []models.Resource{models.ResOrders})
		require.NoError(t, err)
		defer sub.Close()

		be.publish(models.MChangeEvent{Topic: models.ResMenuItems, Operation: models.OpUpdate})
		be.publish(models.MChangeEvent{Topic: models.ResOrders, Operation: models.OpInsert})

		select {
		case ev := <-sub.Events():
			assert.Equal(t, models.ResOrders, ev.Topic)
		case <-time.After(time.Second):
			t.Fatal("expected an orders event")
		}
		assert.Empty(t, sub.Events())
	})

	t.Run("close is idempotent and stops delivery", func(t *testing.T) {
		be := testBusBackend()
		sub, err := be.Subscribe(context.Background(), "pos_changes", models.Topics)
		require.NoError(t, err)

		require.NoError(t, sub.Close())
		require.NoError(t, sub.Close())

		// Publishing after close must not panic on the closed channel.
		be.publish(models.MChangeEvent{Topic: models.ResOrders, Operation: models.OpInsert})

		_, open := <-sub.Events()
		assert.False(t, open)
	})

	t.Run("context cancellation closes the subscription", func(t *testing.T) {
		be := testBusBackend()
		ctx, cancel := context.WithCancel(context.Background())

		sub, err := be.Subscribe(ctx, "pos_changes", models.Topics)
		require.NoError(t, err)

		cancel()
		require.Eventually(t, func() bool {
			select {
			case _, open := <-sub.Events():
				return !open
			default:
				return false
			}
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("backend close drops every subscription", func(t *testing.T) {
		be := testBusBackend()
		a, err := be.Subscribe(context.Background(), "pos_changes", models.Topics)
		require.NoError(t, err)
		b, err := be.Subscribe(context.Background(), "pos_changes", models.Topics)
		require.NoError(t, err)

		require.NoError(t, be.Close())

		_, open := <-a.Events()
		assert.False(t, open)
		_, open = <-b.Events()
		assert.False(t, open)
	})
}
