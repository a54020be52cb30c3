package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"

	"pos-sync/src/interfaces"
	"pos-sync/src/logger"
	"pos-sync/src/models"
)

// -----------------------------------------------------------------------------
// PostgresBackend implements the backend contract directly against the
// restaurant's Postgres on the LAN: SELECT per resource for bulk fetches,
// LISTEN/NOTIFY as the change feed, Ping as the health check. Writers on the
// backend NOTIFY the shared channel with a {topic, operation} payload.
// -----------------------------------------------------------------------------

type PostgresBackend struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresBackend(cfg *models.MConfig, log *logger.Logger) (*PostgresBackend, error) {
	return &PostgresBackend{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresBackend) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// Tables are created if missing; existing data is the source of truth
	// and must never be dropped by a connecting device.
	for _, r := range models.AllResources {
		if r == models.ResLowStockItems {
			continue // Derived view, no table
		}
		query := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS "%s" (
				id TEXT PRIMARY KEY,
				payload JSONB NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`, r)
		if _, err := d.DB.Exec(query); err != nil {
			return fmt.Errorf("failed to create %s: %w", r, err)
		}
	}

	d.Logger.Info("PostgresBackend initialized")
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresBackend) HealthCheck(ctx context.Context) error {
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

func (d *PostgresBackend) FetchMenuItems(ctx context.Context) ([]models.MMenuItem, error) {
	return fetchResource[models.MMenuItem](ctx, d.DB, models.ResMenuItems)
}

func (d *PostgresBackend) FetchOrders(ctx context.Context) ([]models.MOrder, error) {
	return fetchResource[models.MOrder](ctx, d.DB, models.ResOrders)
}

func (d *PostgresBackend) FetchBills(ctx context.Context) ([]models.MBill, error) {
	return fetchResource[models.MBill](ctx, d.DB, models.ResBills)
}

func (d *PostgresBackend) FetchCustomers(ctx context.Context) ([]models.MCustomer, error) {
	return fetchResource[models.MCustomer](ctx, d.DB, models.ResCustomers)
}

func (d *PostgresBackend) FetchStaff(ctx context.Context) ([]models.MStaff, error) {
	return fetchResource[models.MStaff](ctx, d.DB, models.ResStaff)
}

func (d *PostgresBackend) FetchSettings(ctx context.Context) ([]models.MSettings, error) {
	return fetchResource[models.MSettings](ctx, d.DB, models.ResSettings)
}

func (d *PostgresBackend) FetchExpenses(ctx context.Context) ([]models.MExpense, error) {
	return fetchResource[models.MExpense](ctx, d.DB, models.ResExpenses)
}

func (d *PostgresBackend) FetchWaiterCalls(ctx context.Context) ([]models.MWaiterCall, error) {
	return fetchResource[models.MWaiterCall](ctx, d.DB, models.ResWaiterCalls)
}

func (d *PostgresBackend) FetchTransactions(ctx context.Context) ([]models.MTransaction, error) {
	return fetchResource[models.MTransaction](ctx, d.DB, models.ResTransactions)
}

func (d *PostgresBackend) FetchCategories(ctx context.Context) ([]models.MCategory, error) {
	return fetchResource[models.MCategory](ctx, d.DB, models.ResCategories)
}

func (d *PostgresBackend) FetchInventoryItems(ctx context.Context) ([]models.MInventoryItem, error) {
	return fetchResource[models.MInventoryItem](ctx, d.DB, models.ResInventoryItems)
}

func (d *PostgresBackend) FetchInventoryTransactions(ctx context.Context) ([]models.MInventoryTransaction, error) {
	return fetchResource[models.MInventoryTransaction](ctx, d.DB, models.ResInventoryTransactions)
}

func (d *PostgresBackend) FetchPortionOptions(ctx context.Context) ([]models.MPortionOption, error) {
	return fetchResource[models.MPortionOption](ctx, d.DB, models.ResPortionOptions)
}

func (d *PostgresBackend) FetchItemPortionPrices(ctx context.Context) ([]models.MItemPortionPrice, error) {
	return fetchResource[models.MItemPortionPrice](ctx, d.DB, models.ResItemPortionPrices)
}

func (d *PostgresBackend) FetchLowStockItems(ctx context.Context) ([]models.MLowStockItem, error) {
	return lowStockFrom(ctx, d.DB)
}

// -----------------------------------------------------------------------------

// SubmitOrder inserts the order and notifies the shared channel so every
// listening device refetches.
func (d *PostgresBackend) SubmitOrder(ctx context.Context, order models.MOrder) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO "%s" (id, payload) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, updated_at = now()
	`, models.ResOrders)
	if _, err := d.DB.ExecContext(ctx, query, order.ID, payload); err != nil {
		return err
	}

	event, _ := json.Marshal(models.MChangeEvent{Topic: models.ResOrders, Operation: models.OpInsert})
	_, err = d.DB.ExecContext(ctx, "SELECT pg_notify($1, $2)", d.Config.Sync.Channel, string(event))
	return err
}

// -----------------------------------------------------------------------------
// Change feed via LISTEN/NOTIFY
// -----------------------------------------------------------------------------

type pgSubscription struct {
	listener  *pq.Listener
	events    chan models.MChangeEvent
	done      chan struct{}
	closeOnce sync.Once
}

func (s *pgSubscription) Events() <-chan models.MChangeEvent { return s.events }

// Close is safe to call concurrently: teardown and the context watcher
// both reach it.
func (s *pgSubscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			err = s.listener.Close()
		}
	})
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresBackend) Subscribe(ctx context.Context, channel string, topics []models.Resource) (interfaces.ISubscription, error) {
	watched := make(map[models.Resource]bool, len(topics))
	for _, t := range topics {
		watched[t] = true
	}

	listener := pq.NewListener(d.Config.Storage.DBConnectionString,
		2*time.Second, 30*time.Second,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				d.Logger.Warning("Listener event %d: %v", ev, err)
			}
		})

	if err := listener.Listen(channel); err != nil {
		listener.Close()
		return nil, err
	}

	sub := &pgSubscription{
		listener: listener,
		events:   make(chan models.MChangeEvent, d.Config.Sync.EventBufferLen),
		done:     make(chan struct{}),
	}

	go func() {
		defer close(sub.events)
		for {
			select {
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				if n == nil {
					// Reconnect marker from pq; nothing to decode.
					continue
				}
				var event models.MChangeEvent
				if err := json.Unmarshal([]byte(n.Extra), &event); err != nil {
					d.Logger.Debug("Malformed notification payload: %v", err)
					continue
				}
				if !watched[event.Topic] {
					continue
				}
				select {
				case sub.events <- event:
				default:
					// Coalescing downstream tolerates drops.
				}
			case <-sub.done:
				return
			case <-ctx.Done():
				sub.Close()
				return
			}
		}
	}()

	d.Logger.Info("Listening on channel %q", channel)
	return sub, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresBackend) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
