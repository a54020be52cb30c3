package models

import "time"

// -----------------------------------------------------------------------------
// Billing: bills, payment transactions, expenses.
// -----------------------------------------------------------------------------

type MBill struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	Subtotal   float64   `json:"subtotal"`
	Discount   float64   `json:"discount"`
	Tax        float64   `json:"tax"`
	Total      float64   `json:"total"`
	Paid       bool      `json:"paid"`
	CreatedAt  time.Time `json:"created_at"`
}

// MTransaction is one payment against a bill. Settled together with bills:
// a bill change always refetches both.
type MTransaction struct {
	ID        string    `json:"id"`
	BillID    string    `json:"bill_id"`
	Method    string    `json:"method"`
	Amount    float64   `json:"amount"`
	StaffID   string    `json:"staff_id"`
	CreatedAt time.Time `json:"created_at"`
}

type MExpense struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	StaffID   string    `json:"staff_id"`
	CreatedAt time.Time `json:"created_at"`
}
