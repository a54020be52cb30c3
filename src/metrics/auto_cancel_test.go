package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-sync/src/logger"
	"pos-sync/src/models"
	"pos-sync/src/utils"
)

// -----------------------------------------------------------------------------

func testSweeper(t *testing.T) (*AutoCancelSweeper, *[]string) {
	t.Helper()

	log := logger.NewLogger("ERROR", "test")
	st := testStore()
	notifier := utils.NewNotifier(log)

	var notices []string
	notifier.AddSink(func(level, message string) {
		notices = append(notices, message)
	})

	cfg := testConfig()
	cfg.Metrics.AutoCancelMinutes = 30
	cfg.Metrics.SweepIntervalSec = 60

	return NewAutoCancelSweeper(st, notifier, cfg, log), &notices
}

// -----------------------------------------------------------------------------

func TestAutoCancelSweeper(t *testing.T) {
	now := time.Now()

	t.Run("cancels pending orders past the deadline", func(t *testing.T) {
		sweeper, notices := testSweeper(t)
		sweeper.Store.SetOrders([]models.MOrder{
			{ID: "stale", Status: models.OrderPending, CreatedAt: now.Add(-31 * time.Minute)},
			{ID: "fresh", Status: models.OrderPending, CreatedAt: now.Add(-29 * time.Minute)},
		})

		assert.Equal(t, 1, sweeper.Sweep(now))

		orders := sweeper.Store.Orders()
		require.Len(t, orders, 2)
		for _, o := range orders {
			switch o.ID {
			case "stale":
				assert.Equal(t, models.OrderCancelled, o.Status)
			case "fresh":
				assert.Equal(t, models.OrderPending, o.Status)
			}
		}
		assert.Len(t, *notices, 1)
	})

	t.Run("re-sweep is a no-op", func(t *testing.T) {
		sweeper, notices := testSweeper(t)
		sweeper.Store.SetOrders([]models.MOrder{
			{ID: "stale", Status: models.OrderPending, CreatedAt: now.Add(-45 * time.Minute)},
		})

		assert.Equal(t, 1, sweeper.Sweep(now))
		assert.Equal(t, 0, sweeper.Sweep(now))
		assert.Len(t, *notices, 1)
	})

	t.Run("only pending orders are swept", func(t *testing.T) {
		sweeper, _ := testSweeper(t)
		sweeper.Store.SetOrders([]models.MOrder{
			{ID: "cooking", Status: models.OrderPreparing, CreatedAt: now.Add(-2 * time.Hour)},
			{ID: "done", Status: models.OrderCompleted, CreatedAt: now.Add(-2 * time.Hour)},
		})

		assert.Equal(t, 0, sweeper.Sweep(now))
	})
}
