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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/talgatbekov/bazarline-backend/api/controllers"
	"github.com/talgatbekov/bazarline-backend/api/routes"
	"github.com/talgatbekov/bazarline-backend/internal/cartstore"
	checkoutsvc "github.com/talgatbekov/bazarline-backend/internal/checkout"
	"github.com/talgatbekov/bazarline-backend/internal/manager"
	marketsvc "github.com/talgatbekov/bazarline-backend/internal/market"
	"github.com/talgatbekov/bazarline-backend/internal/orderstatus"
	"github.com/talgatbekov/bazarline-backend/internal/poller"
	"github.com/talgatbekov/bazarline-backend/pkg/config"
	"github.com/talgatbekov/bazarline-backend/pkg/logger"
	"github.com/talgatbekov/bazarline-backend/pkg/metrics"
	"github.com/talgatbekov/bazarline-backend/pkg/redis"
	"github.com/talgatbekov/bazarline-backend/pkg/shopapi"
)

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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	shopClient, err := shopapi.NewClient(cfg.Upstream)
	if err != nil {
		logg.Error(context.Background(), "failed to build shop api client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	dashboardMetrics := metrics.NewDashboardMetrics(registry)

	carts, err := cartstore.NewStore(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build cart store", err)
		os.Exit(1)
	}
	markets, err := marketsvc.NewService(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build market service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Logger:  logg,
		Store:   checkoutsvc.NewStore(cfg.Checkout.SessionTTL),
		Cart:    carts,
		Markets: markets,
		Profile: shopClient,
		Orders:  shopClient,
		Config:  cfg.Checkout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build checkout service", err)
		os.Exit(1)
	}

	gate, err := manager.NewGate(manager.GateParams{
		API:     shopClient,
		Timeout: cfg.Manager.CheckTimeout,
		Logger:  logg,
		Metrics: dashboardMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build manager gate", err)
		os.Exit(1)
	}

	orderStatusService, err := orderstatus.NewService(orderstatus.ServiceParams{
		Logger: logg,
		API:    shopClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build order status service", err)
		os.Exit(1)
	}

	scheduler, err := poller.NewScheduler(poller.SchedulerParams{
		API:      shopClient,
		Interval: cfg.Poller.Interval,
		Enabled:  cfg.Poller.Enabled,
		Logger:   logg,
		Metrics:  dashboardMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build polling scheduler", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.RouterParams{
		Config: cfg,
		Logger: logg,
		Readiness: map[string]controllers.Pinger{
			"redis":    redisClient,
			"shop_api": shopClient,
		},
		Registry:    registry,
		Checkout:    checkoutService,
		Markets:     markets,
		OrderStatus: orderStatusService,
		Gate:        gate,
		Scheduler:   scheduler,
		ShopAPI:     shopClient,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	scheduler.Close()
	closeErr = multierr.Append(closeErr, redisClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "shutdown finished with errors", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
