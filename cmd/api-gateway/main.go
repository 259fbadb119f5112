package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/neilboltonAD/marketplace-admin-api/api/swagger"
	"github.com/neilboltonAD/marketplace-admin-api/internal/handler"
	internalmiddleware "github.com/neilboltonAD/marketplace-admin-api/internal/middleware"
	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
	"github.com/neilboltonAD/marketplace-admin-api/internal/realtime"
	"github.com/neilboltonAD/marketplace-admin-api/internal/repository"
	"github.com/neilboltonAD/marketplace-admin-api/internal/seed"
	"github.com/neilboltonAD/marketplace-admin-api/internal/service"
	"github.com/neilboltonAD/marketplace-admin-api/pkg/cache"
	"github.com/neilboltonAD/marketplace-admin-api/pkg/config"
	"github.com/neilboltonAD/marketplace-admin-api/pkg/database"
	"github.com/neilboltonAD/marketplace-admin-api/pkg/logger"
	corsmiddleware "github.com/neilboltonAD/marketplace-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/neilboltonAD/marketplace-admin-api/pkg/middleware/requestid"
)

// @title Marketplace Admin API
// @version 1.0.0
// @description Distributor price review and integration settings for the marketplace admin console.
// @BasePath /
// @schemes http

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{}

	var auditRepo *repository.AuditRepository
	if cfg.Audit.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
		}
		defer db.Close()
		auditRepo = repository.NewAuditRepository(db)
		if err := auditRepo.EnsureSchema(ctx); err != nil {
			logr.Sugar().Fatalw("failed to prepare audit schema", "error", err)
		}
		checks["postgres"] = db.PingContext
	}

	var settingsStore interface {
		Load(ctx context.Context) (models.DistributorSettings, error)
		Save(ctx context.Context, settings models.DistributorSettings) error
	}
	switch cfg.Distributors.SettingsBackend {
	case config.BackendRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo := repository.NewCacheRepository(client, logr)
		defer cacheRepo.Close() //nolint:errcheck
		settingsStore = repository.NewDistributorSettingsRedisRepository(cacheRepo, cfg.Distributors.SettingsKey)
		checks["redis"] = cacheRepo.Ping
	default:
		settingsStore = repository.NewDistributorSettingsMemoryRepository()
	}

	records := seed.Records(time.Now().UTC())
	if cfg.PriceSync.SeedFile != "" {
		records, err = seed.LoadFile(cfg.PriceSync.SeedFile)
		if err != nil {
			logr.Sugar().Fatalw("failed to load seed file", "path", cfg.PriceSync.SeedFile, "error", err)
		}
	}
	priceRepo := repository.NewPriceUpdateRepository()
	if err := priceRepo.Seed(ctx, records); err != nil {
		logr.Sugar().Fatalw("failed to seed price updates", "error", err)
	}

	var hub *realtime.Hub
	if cfg.Realtime.Enabled {
		hub = realtime.NewHub(logr, corsmiddleware.NewMatcher(cfg.CORS.AllowedOrigins).CheckOrigin)
		defer hub.Close()
	}

	priceOpts := []service.PriceSyncServiceOption{
		service.WithPriceSyncMetrics(metricsSvc),
		service.WithPriceSyncResolveDelay(cfg.PriceSync.ResolveDelay),
		service.WithPriceSyncPageSize(cfg.PriceSync.PageSize),
		service.WithPriceSyncDefaultOperator(cfg.PriceSync.DefaultOperator),
		service.WithPriceSyncWorkers(cfg.PriceSync.Workers),
	}
	distributorOpts := []service.DistributorServiceOption{
		service.WithDistributorMetrics(metricsSvc),
		service.WithDistributorDelays(cfg.Distributors.TestDelay, cfg.Distributors.RedirectDelay),
	}
	if auditRepo != nil {
		priceOpts = append(priceOpts, service.WithPriceSyncAudit(auditRepo))
		distributorOpts = append(distributorOpts, service.WithDistributorAudit(auditRepo))
	}
	if hub != nil {
		priceOpts = append(priceOpts, service.WithPriceSyncEvents(hub))
		distributorOpts = append(distributorOpts, service.WithDistributorEvents(hub))
	}

	priceSvc := service.NewPriceSyncService(priceRepo, logr, priceOpts...)
	priceSvc.Start(ctx)
	exportSvc := service.NewPriceSyncExportService(priceSvc, logr, nil, nil)
	distributorSvc := service.NewDistributorService(settingsStore, logr, distributorOpts...)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, internalmiddleware.OperatorLogFields))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins, internalmiddleware.OperatorHeader))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())
	r.Use(internalmiddleware.Operator(cfg.PriceSync.DefaultOperator))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/summary", metricsHandler.Summary)

	if hub != nil {
		r.GET("/ws/price-sync", gin.WrapH(hub))
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	if cfg.PriceSync.Enabled {
		var sink interface {
			CreateAuditLog(ctx context.Context, log *models.AuditLog) error
		}
		if auditRepo != nil {
			sink = auditRepo
		}
		handler.RegisterPriceSyncRoutes(api, handler.NewPriceSyncHandler(priceSvc, exportSvc), sink)
	}
	handler.RegisterDistributorRoutes(api, handler.NewDistributorHandler(distributorSvc))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logr.Error("server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown incomplete", zap.Error(err))
	}
	priceSvc.Stop()
	logr.Info("server stopped")
}
