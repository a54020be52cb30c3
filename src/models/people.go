package models

import "time"

// -----------------------------------------------------------------------------
// People: customers, staff, waiter calls.
// -----------------------------------------------------------------------------

type MCustomer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Visits    int       `json:"visits"`
	CreatedAt time.Time `json:"created_at"`
}

type MStaff struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Phone  string `json:"phone"`
	Active bool   `json:"active"`
}

// MWaiterCall is a table-side request for service.
type MWaiterCall struct {
	ID        string    `json:"id"`
	TableName string    `json:"table_name"`
	Kind      string    `json:"kind"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
}
