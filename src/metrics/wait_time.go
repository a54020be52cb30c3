package metrics

import (
	"fmt"
	"strings"

	"pos-sync/src/models"
	"pos-sync/src/store"
)

// -----------------------------------------------------------------------------
// WaitTimeEstimator models the kitchen as KitchenHandles parallel stations
// working through the queued orders. Pure store reader; recomputed on every
// call, nothing cached.
// -----------------------------------------------------------------------------

type WaitTimeEstimator struct {
	Store              *store.Store
	KitchenHandles     int
	DefaultPrepMinutes int
}

// -----------------------------------------------------------------------------

func NewWaitTimeEstimator(st *store.Store, cfg *models.MConfig) *WaitTimeEstimator {
	return &WaitTimeEstimator{
		Store:              st,
		KitchenHandles:     cfg.Metrics.KitchenHandles,
		DefaultPrepMinutes: cfg.Metrics.DefaultPrepMinutes,
	}
}

// -----------------------------------------------------------------------------

// handles returns the kitchen parallelism: the synced settings row wins
// over the local config default.
func (e *WaitTimeEstimator) handles() int {
	if settings := e.Store.Settings(); len(settings) > 0 && settings[0].KitchenHandles > 0 {
		return settings[0].KitchenHandles
	}
	if e.KitchenHandles > 0 {
		return e.KitchenHandles
	}
	return 3
}

// -----------------------------------------------------------------------------

// prepTime resolves the expected preparation minutes for one line item:
// by category ID first, then a case-insensitive substring match of category
// name against the item name, then the fixed default.
func (e *WaitTimeEstimator) prepTime(item models.MOrderItem, categories []models.MCategory) int {
	for _, c := range categories {
		if c.ID == item.CategoryID && c.PrepTimeMinutes > 0 {
			return c.PrepTimeMinutes
		}
	}

	itemName := strings.ToLower(item.Name)
	for _, c := range categories {
		if c.PrepTimeMinutes > 0 && c.Name != "" && strings.Contains(itemName, strings.ToLower(c.Name)) {
			return c.PrepTimeMinutes
		}
	}

	if e.DefaultPrepMinutes > 0 {
		return e.DefaultPrepMinutes
	}
	return 8
}

// -----------------------------------------------------------------------------

// QueueMinutes sums prepTime x quantity over every line item of every
// queued order (pending, accepted, preparing).
func (e *WaitTimeEstimator) QueueMinutes() int {
	categories := e.Store.Categories()

	total := 0
	for _, o := range e.Store.Orders() {
		if !o.Status.IsQueued() {
			continue
		}
		for _, item := range o.Items {
			total += e.prepTime(item, categories) * item.Quantity
		}
	}
	return total
}

// -----------------------------------------------------------------------------

// EstimateMinutes is the current-queue wait: queued minutes divided by the
// kitchen parallelism, rounded up.
func (e *WaitTimeEstimator) EstimateMinutes() int {
	return ceilDiv(e.QueueMinutes(), e.handles())
}

// -----------------------------------------------------------------------------

// EstimateForNewOrder adds a prospective order on top of the current
// queue. A single new order is assumed to split across two stations, so
// its own minutes are halved (rounded up).
func (e *WaitTimeEstimator) EstimateForNewOrder(items []models.MOrderItem) int {
	categories := e.Store.Categories()

	newMinutes := 0
	for _, item := range items {
		newMinutes += e.prepTime(item, categories) * item.Quantity
	}

	return e.EstimateMinutes() + ceilDiv(newMinutes, 2)
}

// -----------------------------------------------------------------------------

// FormatWait maps an estimate in minutes to the band shown to customers.
func FormatWait(minutes int) string {
	switch {
	case minutes <= 0:
		return "Ready now"
	case minutes < 5:
		return "< 5 min"
	case minutes < 10:
		return "5-10 min"
	case minutes < 15:
		return "10-15 min"
	case minutes < 20:
		return "15-20 min"
	default:
		return fmt.Sprintf("~%d min", minutes)
	}
}

// -----------------------------------------------------------------------------

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
