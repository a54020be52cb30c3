package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pos-sync/src/backend"
	"pos-sync/src/config"
	"pos-sync/src/coordinator"
	"pos-sync/src/interfaces"
	"pos-sync/src/logger"
	"pos-sync/src/metrics"
	"pos-sync/src/network"
	"pos-sync/src/server"
	"pos-sync/src/storage"
	"pos-sync/src/store"
	"pos-sync/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// 1. Backend selection
	var be interfaces.IBackend

	switch cfg.Backend.Kind {
	case "postgres":
		pg, err := storage.NewPostgresBackend(cfg.MConfig, appLogger)
		if err != nil {
			appLogger.Critical("Failed to init backend: %v", err)
			os.Exit(1)
		}
		if err := pg.Initialize(); err != nil {
			appLogger.Warning("Backend unreachable at startup: %v", err)
		}
		be = pg
	case "sqlite":
		sq, err := storage.NewSQLiteBackend(cfg.MConfig, appLogger)
		if err != nil {
			appLogger.Critical("Failed to init backend: %v", err)
			os.Exit(1)
		}
		if err := sq.Initialize(); err != nil {
			appLogger.Critical("Failed to open database: %v", err)
			os.Exit(1)
		}
		be = sq
	default:
		// Default to the HTTP backend on the LAN
		netMgr := network.NewAsyncNetworkManager(cfg.MConfig, appLogger)
		be = backend.NewHTTPBackend(cfg.MConfig, netMgr, appLogger)
	}

	// 2. Core components
	st := store.NewStore(appLogger)
	notifier := utils.NewNotifier(appLogger)
	coord := coordinator.NewCoordinator(be, st, cfg.MConfig, appLogger, notifier)

	// 3. Derived metrics
	waitTime := metrics.NewWaitTimeEstimator(st, cfg.MConfig)
	rushHour := metrics.NewRushHourClassifier(st, cfg.MConfig)
	limiter := metrics.NewRateLimiter(cfg.Metrics.RateLimitMax,
		time.Duration(cfg.Metrics.RateLimitWindowMs)*time.Millisecond)
	sweeper := metrics.NewAutoCancelSweeper(st, notifier, cfg.MConfig, appLogger)

	// 4. Device surface, wired as store listener and notice sink
	srv := server.NewDeviceServer(cfg.MConfig, appLogger, st, be, coord,
		notifier, waitTime, rushHour, limiter)
	st.Subscribe(srv.PushUpdate)
	notifier.AddSink(srv.PushNotice)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Initial bulk load. A failure is not fatal: the UI can trigger a
	// retry through POST /api/sync/retry once the backend is reachable.
	if err := coord.Load(ctx); err != nil {
		appLogger.Warning("Initial load failed: %v", err)
	}

	// 6. Background sweeps
	sweeper.Start(ctx)

	// 7. Serve the local UI
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	sweeper.Stop()
	coord.Close()
	srv.Stop()
	if err := be.Close(); err != nil {
		appLogger.Warning("Backend close: %v", err)
	}
}
