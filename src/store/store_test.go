package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-sync/src/logger"
	"pos-sync/src/models"
)

// -----------------------------------------------------------------------------

func newTestStore() *Store {
	return NewStore(logger.NewLogger("ERROR", "test"))
}

// -----------------------------------------------------------------------------

func TestStoreSnapshots(t *testing.T) {
	t.Run("writes replace wholesale", func(t *testing.T) {
		st := newTestStore()
		st.SetMenuItems([]models.MMenuItem{{ID: "a"}, {ID: "b"}})
		st.SetMenuItems([]models.MMenuItem{{ID: "c"}})

		items := st.MenuItems()
		require.Len(t, items, 1)
		assert.Equal(t, "c", items[0].ID)
	})

	t.Run("listeners fire per write with the resource kind", func(t *testing.T) {
		st := newTestStore()

		var seen []models.Resource
		st.Subscribe(func(r models.Resource) { seen = append(seen, r) })

		st.SetOrders(nil)
		st.SetBills(nil)

		assert.Equal(t, []models.Resource{models.ResOrders, models.ResBills}, seen)
	})

	t.Run("writes after close are discarded", func(t *testing.T) {
		st := newTestStore()
		st.SetOrders([]models.MOrder{{ID: "o1"}})
		st.Close()

		st.SetOrders([]models.MOrder{{ID: "o2"}, {ID: "o3"}})

		orders := st.Orders()
		require.Len(t, orders, 1)
		assert.Equal(t, "o1", orders[0].ID)
	})

	t.Run("load state round-trips", func(t *testing.T) {
		st := newTestStore()
		assert.False(t, st.Loaded())

		st.SetLoadError("backend unreachable")
		assert.Equal(t, "backend unreachable", st.LoadError())

		st.SetLoadError("")
		st.SetLoaded(true)
		assert.True(t, st.Loaded())
		assert.Empty(t, st.LoadError())
	})
}

// -----------------------------------------------------------------------------

func TestUpdateOrderStatus(t *testing.T) {
	t.Run("transitions a known order and notifies", func(t *testing.T) {
		st := newTestStore()
		st.SetOrders([]models.MOrder{
			{ID: "o1", Status: models.OrderPending},
			{ID: "o2", Status: models.OrderPending},
		})

		var notified int
		st.Subscribe(func(r models.Resource) {
			if r == models.ResOrders {
				notified++
			}
		})

		assert.True(t, st.UpdateOrderStatus("o1", models.OrderCancelled))
		assert.Equal(t, 1, notified)

		for _, o := range st.Orders() {
			if o.ID == "o1" {
				assert.Equal(t, models.OrderCancelled, o.Status)
			} else {
				assert.Equal(t, models.OrderPending, o.Status)
			}
		}
	})

	t.Run("repeat transition is a no-op", func(t *testing.T) {
		st := newTestStore()
		st.SetOrders([]models.MOrder{{ID: "o1", Status: models.OrderPending}})

		assert.True(t, st.UpdateOrderStatus("o1", models.OrderCancelled))
		assert.False(t, st.UpdateOrderStatus("o1", models.OrderCancelled))
	})

	t.Run("unknown order is a no-op", func(t *testing.T) {
		st := newTestStore()
		assert.False(t, st.UpdateOrderStatus("ghost", models.OrderCancelled))
	})
}
