package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"pos-sync/src/interfaces"
	"pos-sync/src/logger"
	"pos-sync/src/models"
)

// -----------------------------------------------------------------------------
// HTTPBackend talks to the restaurant's remote backend over HTTP for bulk
// fetches and a websocket for the change feed.
// -----------------------------------------------------------------------------

type HTTPBackend struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewHTTPBackend(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *HTTPBackend {
	return &HTTPBackend{
		Config:  cfg,
		Network: netMgr,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

func (b *HTTPBackend) url(path string) string {
	return b.Config.Backend.BaseURL + path
}

// fetchRows GETs one resource collection and returns the raw JSON body.
func (b *HTTPBackend) fetchRows(ctx context.Context, r models.Resource) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.Network.Get(b.url("/api/"+string(r)), nil)
}

// -----------------------------------------------------------------------------

// HealthCheck probes the backend's health endpoint.
func (b *HTTPBackend) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := b.Network.Get(b.url("/api/health"), nil)
	if err != nil {
		return err
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("malformed health response: %w", err)
	}
	if resp.Status != "ok" {
		return fmt.Errorf("backend not healthy: %q", resp.Status)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Bulk fetches. One GET per resource kind, decoded into the typed snapshot.
// -----------------------------------------------------------------------------

func (b *HTTPBackend) FetchMenuItems(ctx context.Context) ([]models.MMenuItem, error) {
	body, err := b.fetchRows(ctx, models.ResMenuItems)
	if err != nil {
		return nil, err
	}
	var rows []models.MMenuItem
	return rows, json.Unmarshal(body, &rows)
}

func (b *HTTPBackend) FetchOrders(ctx context.Context) ([]models.MOrder, error) {
	body, err := b.fetchRows(ctx, models.ResOrders)
	if err != nil {
		return nil, err
	}
	var rows []models.MOrder
	return rows, json.Unmarshal(body, &rows)
}

func (b *HTTPBackend) FetchBills(ctx context.Context) ([]models.MBill, error) {
	body, err := b.fetchRows(ctx, models.ResBills)
	if err != nil {
		return nil, err
	}
	var rows []models.MBill
	return rows, json.Unmarshal(body, &rows)
}

func (b *HTTPBackend) FetchCustomers(ctx context.Context) ([]models.MCustomer, error) {
	body, err := b.fetchRows(ctx, models.ResCustomers)
	if err != nil {
		return nil, err
	}
	var rows []models.MCustomer
	return rows, json.Unmarshal(body, &rows)
}

func (b *HTTPBackend) FetchStaff(ctx context.Context) ([]models.MStaff, error) {
	body, err := b.fetchRows(ctx, models.ResStaff)
	if err != nil {
		return nil, err
	}
	var rows []models.MStaff
	return rows, json.Unmarshal(body, &rows)
}

func (b *HTTPBackend) FetchSettings(ctx context.Context) ([]models.MSettings, error) {
	body, err := b.fetchRows(ctx, models.ResSettings)
	if err != nil {
		return nil, err
	}
	var rows []models.MSettings
	return rows, json.Unmarshal(body, &rows)
}

func (b *HTTPBackend) FetchExpenses(ctx context.Context) ([]models.MExpense, error) {
	body, err := b.fetchRows(ctx, models.ResExpenses)
	if err != nil {
		return nil, err
	}
	var rows []models.MExpense
	return rows, json.Unmarshal(body, &rows)
}

func (b *HTTPBackend) FetchWaiterCalls(ctx context.Context) ([]models.MWaiterCall, error) {
	body, err := b.fetchRows(ctx, models.ResWaiterCalls)
	if err != nil {
		return nil, err
	}
	var rows []models.MWaiterCall
	return rows, json.Unmarshal(body, &rows)
}

func (b *HTTPBackend) FetchTransactions(ctx context.Context) ([]models.MTransaction, error) {
	body, err := b.fetchRows(ctx, models.ResTransactions)
	if err != nil {
		return nil, err
	}
	var rows []models.MTransaction
	return rows, json.Unmarshal(body, &rows)
}

func (b *HTTPBackend) FetchCategories(ctx context.Context) ([]models.MCategory, error) {
	body, err := b.fetchRows(ctx, models.ResCategories)
	if err != nil {
		return nil, err
	}
	var rows []models.MCategory
	return rows, json.Unmarshal(body, &rows)
}

func (b *HTTPBackend) FetchInventoryItems(ctx context.Context) ([]models.MInventoryItem, error) {
	body, err := b.fetchRows(ctx, models.ResInventoryItems)
	if err != nil {
		return nil, err
	}
	var rows []models.MInventoryItem
	return rows, json.Unmarshal(body, &rows)
}

func (b *HTTPBackend) FetchInventoryTransactions(ctx context.Context) ([]models.MInventoryTransaction, error) {
	body, err := b.fetchRows(ctx, models.ResInventoryTransactions)
	if err != nil {
		return nil, err
	}
	var rows []models.MInventoryTransaction
	return rows, json.Unmarshal(body, &rows)
}

func (b *HTTPBackend) FetchPortionOptions(ctx context.Context) ([]models.MPortionOption, error) {
	body, err := b.fetchRows(ctx, models.ResPortionOptions)
	if err != nil {
		return nil, err
	}
	var rows []models.MPortionOption
	return rows, json.Unmarshal(body, &rows)
}

func (b *HTTPBackend) FetchItemPortionPrices(ctx context.Context) ([]models.MItemPortionPrice, error) {
	body, err := b.fetchRows(ctx, models.ResItemPortionPrices)
	if err != nil {
		return nil, err
	}
	var rows []models.MItemPortionPrice
	return rows, json.Unmarshal(body, &rows)
}

func (b *HTTPBackend) FetchLowStockItems(ctx context.Context) ([]models.MLowStockItem, error) {
	body, err := b.fetchRows(ctx, models.ResLowStockItems)
	if err != nil {
		return nil, err
	}
	var rows []models.MLowStockItem
	return rows, json.Unmarshal(body, &rows)
}

// -----------------------------------------------------------------------------

// SubmitOrder posts a new order. The backend answers the created row, but
// devices pick it up through the change feed, so the body is discarded.
func (b *HTTPBackend) SubmitOrder(ctx context.Context, order models.MOrder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.Network.PostJSON(b.url("/api/orders"), order)
	return err
}

// -----------------------------------------------------------------------------

// Subscribe dials the backend's change-feed websocket.
func (b *HTTPBackend) Subscribe(ctx context.Context, channel string, topics []models.Resource) (interfaces.ISubscription, error) {
	return dialSubscription(ctx, b.Config, channel, topics, b.Logger.Named("WSSubscription"))
}

// -----------------------------------------------------------------------------

func (b *HTTPBackend) Close() error {
	return nil
}
