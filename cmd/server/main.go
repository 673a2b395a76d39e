package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/cache"
	"github.com/mamadbah2/fleetstock/internal/config"
	"github.com/mamadbah2/fleetstock/internal/metrics"
	"github.com/mamadbah2/fleetstock/internal/repository/mongodb"
	"github.com/mamadbah2/fleetstock/internal/repository/sheets"
	"github.com/mamadbah2/fleetstock/internal/scheduler"
	"github.com/mamadbah2/fleetstock/internal/server/router"
	catalogsvc "github.com/mamadbah2/fleetstock/internal/service/catalog"
	inventorysvc "github.com/mamadbah2/fleetstock/internal/service/inventory"
	recordssvc "github.com/mamadbah2/fleetstock/internal/service/records"
	reportingsvc "github.com/mamadbah2/fleetstock/internal/service/reporting"
	salessvc "github.com/mamadbah2/fleetstock/internal/service/sales"
	"github.com/mamadbah2/fleetstock/pkg/clients/notifier"
	"github.com/mamadbah2/fleetstock/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Logging.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	store, err := mongodb.Connect(startCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()
	if err := store.EnsureIndexes(startCtx); err != nil {
		baseLogger.Fatal("failed to ensure mongodb indexes", zap.Error(err))
	}

	var summaries cache.SummaryCache = cache.NoopSummaryCache{}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisSummaryCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisCache.Ping(startCtx); err != nil {
			baseLogger.Warn("redis unavailable, summary cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = redisCache.Close()
		} else {
			defer func() { _ = redisCache.Close() }()
			summaries = redisCache
			baseLogger.Info("redis summary cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	m := metrics.New()
	inventorySvc := inventorysvc.NewService(store, m, baseLogger.Named("svc.inventory"))
	salesSvc := salessvc.NewService(store, summaries, m, baseLogger.Named("svc.sales"), salessvc.WithSummaryTTL(cfg.Redis.SummaryTTL))
	catalogSvc := catalogsvc.NewService(store, baseLogger.Named("svc.catalog"))
	recordsSvc := recordssvc.NewService(store, baseLogger.Named("svc.records"))

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(startCtx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetsRepo = repo
	} else {
		baseLogger.Warn("google sheets credentials missing, daily sales export disabled")
	}

	var notifyClient notifier.Client
	if cfg.Notifier.WebhookURL != "" {
		notifyClient = notifier.NewClient(notifier.Config{WebhookURL: cfg.Notifier.WebhookURL, Token: cfg.Notifier.Token})
		baseLogger.Info("low stock notifier enabled")
	} else {
		baseLogger.Warn("notifier webhook missing, low stock alerts disabled")
	}

	reportingSvc := reportingsvc.NewService(inventorySvc, salesSvc, sheetsRepo, notifyClient, cfg.Sheets.SalesRange, baseLogger.Named("svc.reporting"))

	sched, err := scheduler.NewScheduler(cfg.Scheduler, reportingSvc, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	engine := router.New(
		router.NewHandlers(inventorySvc, salesSvc, catalogSvc, recordsSvc, baseLogger.Named("handlers")),
		router.Options{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			RequestTimeout: cfg.Server.RequestTimeout,
			Metrics:        m,
			Ready:          store.Ping,
		},
		baseLogger.Named("router"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
