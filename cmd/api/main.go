package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/gang93/pos-backend/api/routes"
	"github.com/gang93/pos-backend/internal/catalog"
	"github.com/gang93/pos-backend/internal/customers"
	"github.com/gang93/pos-backend/internal/fulfillment"
	"github.com/gang93/pos-backend/internal/inventory"
	"github.com/gang93/pos-backend/internal/orders"
	"github.com/gang93/pos-backend/internal/orders/history"
	"github.com/gang93/pos-backend/internal/reconciliation"
	"github.com/gang93/pos-backend/internal/sales"
	"github.com/gang93/pos-backend/pkg/config"
	"github.com/gang93/pos-backend/pkg/db"
	"github.com/gang93/pos-backend/pkg/logger"
	"github.com/gang93/pos-backend/pkg/metrics"
	"github.com/gang93/pos-backend/pkg/migrate"
	"github.com/gang93/pos-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	conn := dbClient.DB()
	catalogRepo := catalog.NewRepository(conn)
	customersRepo := customers.NewRepository(conn)
	inventoryRepo := inventory.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)
	salesRepo := sales.NewRepository(conn)

	catalogSvc, err := catalog.NewService(catalogRepo)
	if err != nil {
		return err
	}
	customersSvc, err := customers.NewService(customersRepo, dbClient)
	if err != nil {
		return err
	}
	inventorySvc, err := inventory.NewService(inventoryRepo)
	if err != nil {
		return err
	}
	salesSvc, err := sales.NewService(salesRepo)
	if err != nil {
		return err
	}
	historySvc, err := history.NewService(ordersRepo, catalogSvc)
	if err != nil {
		return err
	}

	allocator, err := orders.NewIDAllocator(cfg.Fulfillment.IDAllocator, ordersRepo, redisClient)
	if err != nil {
		return err
	}

	worker, err := reconciliation.NewWorker(reconciliation.WorkerParams{
		DB:          dbClient,
		Inventory:   inventoryRepo,
		Sales:       salesRepo,
		Logger:      logg,
		Metrics:     metrics.NewReconciliationMetrics(prometheus.DefaultRegisterer),
		Concurrency: cfg.Reconciliation.Concurrency,
		Timeout:     cfg.Reconciliation.Timeout,
		MaxAttempts: cfg.Reconciliation.MaxAttempts,
	})
	if err != nil {
		return err
	}

	fulfillmentSvc, err := fulfillment.NewService(fulfillment.ServiceParams{
		DB:          dbClient,
		Catalog:     catalogSvc,
		Orders:      ordersRepo,
		Customers:   customersRepo,
		Allocator:   allocator,
		Scheduler:   worker,
		Logger:      logg,
		Metrics:     metrics.NewFulfillmentMetrics(prometheus.DefaultRegisterer),
		MaxAttempts: cfg.Fulfillment.MaxAllocAttempts,
	})
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"id_allocator": allocator.Name(),
	})

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(routes.Params{
			Config:           cfg,
			Logger:           logg,
			DB:               dbClient,
			Redis:            redisClient,
			IdempotencyStore: redisClient,
			Gatherer:         prometheus.DefaultGatherer,
			Catalog:          catalogSvc,
			Customers:        customersSvc,
			Fulfillment:      fulfillmentSvc,
			History:          historySvc,
			Inventory:        inventorySvc,
			Sales:            salesSvc,
		}),
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-sigCtx.Done():
	}

	logg.Info(ctx, "api server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdownErr := server.Shutdown(shutdownCtx)

	// orders already answered still owe their stock decrements
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), cfg.Reconciliation.DrainTimeout)
	defer cancelDrain()
	if err := worker.Drain(drainCtx); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "reconciliation.drain_incomplete")
	}
	return shutdownErr
}
