package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"pos-sync/src/coordinator"
	"pos-sync/src/logger"
	"pos-sync/src/metrics"
	"pos-sync/src/models"
	"pos-sync/src/server"
	"pos-sync/src/storage"
	"pos-sync/src/store"
	"pos-sync/src/utils"
)

// -----------------------------------------------------------------------------
// Demo entrypoint: embedded SQLite backend seeded with a small menu, plus a
// background waiter placing an order every few seconds so the websocket feed
// has something to push.
// -----------------------------------------------------------------------------

func main() {
	cfg := demoConfig()
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	be, err := storage.NewSQLiteBackend(cfg, appLogger)
	if err != nil {
		fmt.Printf("Error creating backend: %v\n", err)
		os.Exit(1)
	}
	if err := be.Initialize(); err != nil {
		fmt.Printf("Error opening database: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := seed(ctx, be); err != nil {
		appLogger.Critical("Seeding failed: %v", err)
		os.Exit(1)
	}

	st := store.NewStore(appLogger)
	notifier := utils.NewNotifier(appLogger)
	coord := coordinator.NewCoordinator(be, st, cfg, appLogger, notifier)

	waitTime := metrics.NewWaitTimeEstimator(st, cfg)
	rushHour := metrics.NewRushHourClassifier(st, cfg)
	limiter := metrics.NewRateLimiter(cfg.Metrics.RateLimitMax,
		time.Duration(cfg.Metrics.RateLimitWindowMs)*time.Millisecond)
	sweeper := metrics.NewAutoCancelSweeper(st, notifier, cfg, appLogger)

	srv := server.NewDeviceServer(cfg, appLogger, st, be, coord,
		notifier, waitTime, rushHour, limiter)
	st.Subscribe(srv.PushUpdate)
	notifier.AddSink(srv.PushNotice)

	if err := coord.Load(ctx); err != nil {
		appLogger.Critical("Load failed: %v", err)
		os.Exit(1)
	}
	sweeper.Start(ctx)

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// Background waiter: one small order every few seconds.
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				order := models.MOrder{
					ID:        uuid.NewString(),
					TableName: "T1",
					Status:    models.OrderPending,
					Items: []models.MOrderItem{
						{MenuItemID: "m-espresso", Name: "Espresso", Quantity: 1, UnitPrice: 2.5},
					},
					Total:     2.5,
					CreatedAt: time.Now(),
					UpdatedAt: time.Now(),
				}
				if err := be.SubmitOrder(ctx, order); err != nil {
					appLogger.Warning("Demo order failed: %v", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	appLogger.Info("Demo running on http://%s:%d", cfg.Host, cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	cancel()
	sweeper.Stop()
	coord.Close()
	srv.Stop()
	be.Close()
}

// -----------------------------------------------------------------------------

func demoConfig() *models.MConfig {
	return &models.MConfig{
		Name:     "pos-sync-demo",
		Host:     "127.0.0.1",
		Port:     8090,
		LogLevel: "DEBUG",
		Backend: models.MBackendConfig{
			Kind: "sqlite",
		},
		Sync: models.MSyncConfig{
			Channel:        "pos_changes",
			DebounceMs:     500,
			EventBufferLen: 256,
		},
		Metrics: models.MMetricsConfig{
			KitchenHandles:     3,
			DefaultPrepMinutes: 8,
			RushWindowMinutes:  60,
			AutoCancelMinutes:  30,
			SweepIntervalSec:   60,
			RateLimitMax:       10,
			RateLimitWindowMs:  60000,
		},
		Storage: models.MStorageConfig{
			DBPath: "demo.db",
		},
	}
}

// -----------------------------------------------------------------------------

func seed(ctx context.Context, be *storage.SQLiteBackend) error {
	categories := []models.MCategory{
		{ID: "c-drinks", Name: "Drinks", PrepTimeMinutes: 2, SortOrder: 1},
		{ID: "c-mains", Name: "Mains", PrepTimeMinutes: 14, SortOrder: 2},
		{ID: "c-desserts", Name: "Desserts", PrepTimeMinutes: 6, SortOrder: 3},
	}
	for _, c := range categories {
		if err := be.Put(ctx, models.ResCategories, c.ID, c); err != nil {
			return err
		}
	}

	items := []models.MMenuItem{
		{ID: "m-espresso", Name: "Espresso", CategoryID: "c-drinks", Price: 2.5, Available: true},
		{ID: "m-burger", Name: "House Burger", CategoryID: "c-mains", Price: 11.0, Available: true},
		{ID: "m-tiramisu", Name: "Tiramisu", CategoryID: "c-desserts", Price: 5.5, Available: true},
	}
	for _, m := range items {
		if err := be.Put(ctx, models.ResMenuItems, m.ID, m); err != nil {
			return err
		}
	}

	inventory := []models.MInventoryItem{
		{ID: "i-beef", Name: "Ground beef", Quantity: 12, Unit: "kg", MinThreshold: 5, CostPerUnit: 9.5},
		{ID: "i-coffee", Name: "Coffee beans", Quantity: 2, Unit: "kg", MinThreshold: 3, CostPerUnit: 22},
	}
	for _, i := range inventory {
		if err := be.Put(ctx, models.ResInventoryItems, i.ID, i); err != nil {
			return err
		}
	}

	settings := models.MSettings{ID: "default", RestaurantName: "Demo Bistro", KitchenHandles: 3}
	return be.Put(ctx, models.ResSettings, settings.ID, settings)
}
