package models

import "time"

// -----------------------------------------------------------------------------
// Order Status
// -----------------------------------------------------------------------------

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// IsQueued reports whether an order in this status still occupies the
// kitchen queue (counted by wait-time and rush-hour computations).
func (s OrderStatus) IsQueued() bool {
	return s == OrderPending || s == OrderAccepted || s == OrderPreparing
}

// -----------------------------------------------------------------------------
// MOrder represents one customer order with its line items.
// -----------------------------------------------------------------------------

type MOrder struct {
	ID         string       `json:"id"`
	TableName  string       `json:"table_name"`
	CustomerID string       `json:"customer_id"`
	StaffID    string       `json:"staff_id"`
	Items      []MOrderItem `json:"items"`
	Status     OrderStatus  `json:"status"`
	Total      float64      `json:"total"`
	Note       string       `json:"note"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type MOrderItem struct {
	MenuItemID   string  `json:"menu_item_id"`
	Name         string  `json:"name"`
	CategoryID   string  `json:"category_id"`
	PortionID    string  `json:"portion_id"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Instructions string  `json:"instructions"`
}

// Age returns how long ago the order was created.
func (o *MOrder) Age(now time.Time) time.Duration {
	return now.Sub(o.CreatedAt)
}
