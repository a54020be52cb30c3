package metrics

import (
	"time"

	"pos-sync/src/models"
	"pos-sync/src/store"
)

// -----------------------------------------------------------------------------
// Rush-hour classification from trailing order volume. No caching: every
// call reads the live order snapshot.
// -----------------------------------------------------------------------------

type RushState struct {
	IsRushHour   bool    `json:"is_rush_hour"`
	Multiplier   float64 `json:"multiplier"`
	ActiveOrders int     `json:"active_orders"`
}

type RushHourClassifier struct {
	Store         *store.Store
	WindowMinutes int
}

// -----------------------------------------------------------------------------

func NewRushHourClassifier(st *store.Store, cfg *models.MConfig) *RushHourClassifier {
	return &RushHourClassifier{
		Store:         st,
		WindowMinutes: cfg.Metrics.RushWindowMinutes,
	}
}

// -----------------------------------------------------------------------------

// Classify counts queued orders created within the trailing window and
// maps the count to a load band:
//
//	>= 15 rush x1.5, >= 10 rush x1.25, <= 3 quiet x0.8, else normal x1.0
func (r *RushHourClassifier) Classify(now time.Time) RushState {
	window := time.Duration(r.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Hour
	}
	cutoff := now.Add(-window)

	count := 0
	for _, o := range r.Store.Orders() {
		if o.Status.IsQueued() && o.CreatedAt.After(cutoff) {
			count++
		}
	}

	state := RushState{ActiveOrders: count}
	switch {
	case count >= 15:
		state.IsRushHour = true
		state.Multiplier = 1.5
	case count >= 10:
		state.IsRushHour = true
		state.Multiplier = 1.25
	case count <= 3:
		state.Multiplier = 0.8
	default:
		state.Multiplier = 1.0
	}
	return state
}
