package interfaces

import (
	"context"

	"pos-sync/src/models"
)

// -----------------------------------------------------------------------------
// IBackend is the remote source-of-truth contract. The coordinator only
// needs a health probe, a bulk fetch per resource kind, and a subscription
// to the shared change channel; transport is an implementation detail
// (HTTP/WS, postgres LISTEN/NOTIFY, embedded sqlite).
// -----------------------------------------------------------------------------

type IBackend interface {

	// HealthCheck probes backend reachability. A failure is fatal to the
	// load attempt and surfaces to the user.
	HealthCheck(ctx context.Context) error

	// -----------------------------------------------------------------------------

	FetchMenuItems(ctx context.Context) ([]models.MMenuItem, error)
	FetchOrders(ctx context.Context) ([]models.MOrder, error)
	FetchBills(ctx context.Context) ([]models.MBill, error)
	FetchCustomers(ctx context.Context) ([]models.MCustomer, error)
	FetchStaff(ctx context.Context) ([]models.MStaff, error)
	FetchSettings(ctx context.Context) ([]models.MSettings, error)
	FetchExpenses(ctx context.Context) ([]models.MExpense, error)
	FetchWaiterCalls(ctx context.Context) ([]models.MWaiterCall, error)
	FetchTransactions(ctx context.Context) ([]models.MTransaction, error)
	FetchCategories(ctx context.Context) ([]models.MCategory, error)
	FetchInventoryItems(ctx context.Context) ([]models.MInventoryItem, error)
	FetchInventoryTransactions(ctx context.Context) ([]models.MInventoryTransaction, error)
	FetchPortionOptions(ctx context.Context) ([]models.MPortionOption, error)
	FetchItemPortionPrices(ctx context.Context) ([]models.MItemPortionPrice, error)
	FetchLowStockItems(ctx context.Context) ([]models.MLowStockItem, error)

	// -----------------------------------------------------------------------------

	// Subscribe opens the single logical change channel filtered to the
	// given topics. One subscription per session.
	Subscribe(ctx context.Context, channel string, topics []models.Resource) (ISubscription, error)

	// -----------------------------------------------------------------------------

	// SubmitOrder forwards a new order to the source of truth. The created
	// order comes back to every device through the change feed.
	SubmitOrder(ctx context.Context, order models.MOrder) error

	// -----------------------------------------------------------------------------

	// Close releases backend resources.
	Close() error
}

// -----------------------------------------------------------------------------
// ISubscription delivers change events until closed.
// -----------------------------------------------------------------------------

type ISubscription interface {

	// Events returns the event stream. The channel is closed when the
	// subscription ends, whether by Close or by transport failure.
	Events() <-chan models.MChangeEvent

	// Close terminates the subscription. Safe to call more than once.
	Close() error
}
