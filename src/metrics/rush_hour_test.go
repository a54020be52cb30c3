package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pos-sync/src/models"
)

// -----------------------------------------------------------------------------

func queuedOrders(n int, age time.Duration, now time.Time) []models.MOrder {
	orders := make([]models.MOrder, 0, n)
	for i := 0; i < n; i++ {
		orders = append(orders, models.MOrder{
			ID:        fmt.Sprintf("o%d", i),
			Status:    models.OrderPending,
			CreatedAt: now.Add(-age),
		})
	}
	return orders
}

// -----------------------------------------------------------------------------

func TestRushHourClassifier(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name       string
		orders     int
		wantRush   bool
		wantFactor float64
	}{
		{"heavy load", 15, true, 1.5},
		{"elevated load", 10, true, 1.25},
		{"quiet", 3, false, 0.8},
		{"normal", 7, false, 1.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := testStore()
			st.SetOrders(queuedOrders(tc.orders, 10*time.Minute, now))

			state := NewRushHourClassifier(st, testConfig()).Classify(now)

			assert.Equal(t, tc.wantRush, state.IsRushHour)
			assert.Equal(t, tc.wantFactor, state.Multiplier)
			assert.Equal(t, tc.orders, state.ActiveOrders)
		})
	}

	t.Run("orders outside the window are ignored", func(t *testing.T) {
		st := testStore()
		st.SetOrders(queuedOrders(20, 2*time.Hour, now))

		state := NewRushHourClassifier(st, testConfig()).Classify(now)

		assert.False(t, state.IsRushHour)
		assert.Equal(t, 0, state.ActiveOrders)
	})

	t.Run("completed orders are ignored", func(t *testing.T) {
		st := testStore()
		orders := queuedOrders(15, 10*time.Minute, now)
		for i := range orders {
			orders[i].Status = models.OrderCompleted
		}
		st.SetOrders(orders)

		state := NewRushHourClassifier(st, testConfig()).Classify(now)

		assert.False(t, state.IsRushHour)
		assert.Equal(t, 0.8, state.Multiplier)
	})
}
