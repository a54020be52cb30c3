package models

import "time"

// -----------------------------------------------------------------------------
// Inventory: stock items, stock movements, low-stock view.
// -----------------------------------------------------------------------------

type MInventoryItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	MinThreshold float64 `json:"min_threshold"`
	CostPerUnit  float64 `json:"cost_per_unit"`
}

// MInventoryTransaction is one stock movement (purchase, usage, waste).
type MInventoryTransaction struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Kind      string    `json:"kind"`
	Quantity  float64   `json:"quantity"`
	Note      string    `json:"note"`
	StaffID   string    `json:"staff_id"`
	CreatedAt time.Time `json:"created_at"`
}

// MLowStockItem is the backend's derived view of items at or below their
// minimum threshold. It has no change topic of its own; it rides along on
// the inventory_items refetch.
type MLowStockItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	MinThreshold float64 `json:"min_threshold"`
	Unit         string  `json:"unit"`
}
