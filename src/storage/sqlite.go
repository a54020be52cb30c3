package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"pos-sync/src/interfaces"
	"pos-sync/src/logger"
	"pos-sync/src/models"
)

// -----------------------------------------------------------------------------
// SQLiteBackend is the embedded backend for single-device setups and demos.
// The schema mirrors PostgresBackend; change events travel over an in-process
// bus instead of LISTEN/NOTIFY.
// -----------------------------------------------------------------------------

type SQLiteBackend struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger

	mu   sync.Mutex
	subs []*busSubscription
}

// -----------------------------------------------------------------------------

func NewSQLiteBackend(cfg *models.MConfig, log *logger.Logger) (*SQLiteBackend, error) {
	return &SQLiteBackend{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteBackend) Initialize() error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	for _, r := range models.AllResources {
		if r == models.ResLowStockItems {
			continue // Derived view, no table
		}
		query := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS "%s" (
				id TEXT PRIMARY KEY,
				payload TEXT NOT NULL
			);
		`, r)
		if _, err := d.DB.Exec(query); err != nil {
			return fmt.Errorf("failed to create %s: %w", r, err)
		}
	}

	d.Logger.Info("SQLiteBackend initialized at %s", dsn)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteBackend) HealthCheck(ctx context.Context) error {
	if d.DB == nil {
		if err := d.Initialize(); err != nil {
			return err
		}
	}
	return d.DB.PingContext(ctx)
}

// -----------------------------------------------------------------------------
// Bulk fetches
// -----------------------------------------------------------------------------

func (d *SQLiteBackend) FetchMenuItems(ctx context.Context) ([]models.MMenuItem, error) {
	return fetchResource[models.MMenuItem](ctx, d.DB, models.ResMenuItems)
}

func (d *SQLiteBackend) FetchOrders(ctx context.Context) ([]models.MOrder, error) {
	return fetchResource[models.MOrder](ctx, d.DB, models.ResOrders)
}

func (d *SQLiteBackend) FetchBills(ctx context.Context) ([]models.MBill, error) {
	return fetchResource[models.MBill](ctx, d.DB, models.ResBills)
}

func (d *SQLiteBackend) FetchCustomers(ctx context.Context) ([]models.MCustomer, error) {
	return fetchResource[models.MCustomer](ctx, d.DB, models.ResCustomers)
}

func (d *SQLiteBackend) FetchStaff(ctx context.Context) ([]models.MStaff, error) {
	return fetchResource[models.MStaff](ctx, d.DB, models.ResStaff)
}

func (d *SQLiteBackend) FetchSettings(ctx context.Context) ([]models.MSettings, error) {
	return fetchResource[models.MSettings](ctx, d.DB, models.ResSettings)
}

func (d *SQLiteBackend) FetchExpenses(ctx context.Context) ([]models.MExpense, error) {
	return fetchResource[models.MExpense](ctx, d.DB, models.ResExpenses)
}

func (d *SQLiteBackend) FetchWaiterCalls(ctx context.Context) ([]models.MWaiterCall, error) {
	return fetchResource[models.MWaiterCall](ctx, d.DB, models.ResWaiterCalls)
}

func (d *SQLiteBackend) FetchTransactions(ctx context.Context) ([]models.MTransaction, error) {
	return fetchResource[models.MTransaction](ctx, d.DB, models.ResTransactions)
}

func (d *SQLiteBackend) FetchCategories(ctx context.Context) ([]models.MCategory, error) {
	return fetchResource[models.MCategory](ctx, d.DB, models.ResCategories)
}

func (d *SQLiteBackend) FetchInventoryItems(ctx context.Context) ([]models.MInventoryItem, error) {
	return fetchResource[models.MInventoryItem](ctx, d.DB, models.ResInventoryItems)
}

func (d *SQLiteBackend) FetchInventoryTransactions(ctx context.Context) ([]models.MInventoryTransaction, error) {
	return fetchResource[models.MInventoryTransaction](ctx, d.DB, models.ResInventoryTransactions)
}

func (d *SQLiteBackend) FetchPortionOptions(ctx context.Context) ([]models.MPortionOption, error) {
	return fetchResource[models.MPortionOption](ctx, d.DB, models.ResPortionOptions)
}

func (d *SQLiteBackend) FetchItemPortionPrices(ctx context.Context) ([]models.MItemPortionPrice, error) {
	return fetchResource[models.MItemPortionPrice](ctx, d.DB, models.ResItemPortionPrices)
}

func (d *SQLiteBackend) FetchLowStockItems(ctx context.Context) ([]models.MLowStockItem, error) {
	return lowStockFrom(ctx, d.DB)
}

// -----------------------------------------------------------------------------
// Writes
// -----------------------------------------------------------------------------

// Put upserts one record and publishes the matching change event. Seed data
// and demo writers go through here.
func (d *SQLiteBackend) Put(ctx context.Context, r models.Resource, id string, record any) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO "%s" (id, payload) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET payload = excluded.payload
	`, r)
	if _, err := d.DB.ExecContext(ctx, query, id, string(payload)); err != nil {
		return err
	}

	d.publish(models.MChangeEvent{Topic: r, Operation: models.OpUpdate})
	return nil
}

func (d *SQLiteBackend) SubmitOrder(ctx context.Context, order models.MOrder) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO "%s" (id, payload) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET payload = excluded.payload
	`, models.ResOrders)
	if _, err := d.DB.ExecContext(ctx, query, order.ID, string(payload)); err != nil {
		return err
	}

	d.publish(models.MChangeEvent{Topic: models.ResOrders, Operation: models.OpInsert})
	return nil
}

// -----------------------------------------------------------------------------
// Change feed via in-process bus
// -----------------------------------------------------------------------------

type busSubscription struct {
	backend *SQLiteBackend
	watched map[models.Resource]bool
	events  chan models.MChangeEvent

	mu     sync.Mutex
	closed bool
}

func (s *busSubscription) Events() <-chan models.MChangeEvent { return s.events }

// send must never race Close: a publish against a closed channel panics.
func (s *busSubscription) send(event models.MChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- event:
	default:
		// Coalescing downstream tolerates drops.
	}
}

func (s *busSubscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.events)
	s.mu.Unlock()

	s.backend.drop(s)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteBackend) Subscribe(ctx context.Context, channel string, topics []models.Resource) (interfaces.ISubscription, error) {
	watched := make(map[models.Resource]bool, len(topics))
	for _, t := range topics {
		watched[t] = true
	}

	sub := &busSubscription{
		backend: d,
		watched: watched,
		events:  make(chan models.MChangeEvent, d.Config.Sync.EventBufferLen),
	}

	d.mu.Lock()
	d.subs = append(d.subs, sub)
	d.mu.Unlock()

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	d.Logger.Debug("In-process subscription on %q (%d topics)", channel, len(topics))
	return sub, nil
}

func (d *SQLiteBackend) publish(event models.MChangeEvent) {
	d.mu.Lock()
	subs := make([]*busSubscription, len(d.subs))
	copy(subs, d.subs)
	d.mu.Unlock()

	for _, sub := range subs {
		if !sub.watched[event.Topic] {
			continue
		}
		sub.send(event)
	}
}

func (d *SQLiteBackend) drop(target *busSubscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, sub := range d.subs {
		if sub == target {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// -----------------------------------------------------------------------------

func (d *SQLiteBackend) Close() error {
	d.mu.Lock()
	subs := make([]*busSubscription, len(d.subs))
	copy(subs, d.subs)
	d.subs = nil
	d.mu.Unlock()
	for _, sub := range subs {
		sub.Close()
	}

	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
