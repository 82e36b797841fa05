package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	catalogapp "github.com/invsync/backend/internal/application/catalog"
	appintegration "github.com/invsync/backend/internal/application/integration"
	"github.com/invsync/backend/internal/domain/integration"
	"github.com/invsync/backend/internal/infrastructure/auth"
	"github.com/invsync/backend/internal/infrastructure/cache"
	"github.com/invsync/backend/internal/infrastructure/config"
	"github.com/invsync/backend/internal/infrastructure/ecommerce"
	"github.com/invsync/backend/internal/infrastructure/logger"
	"github.com/invsync/backend/internal/infrastructure/migration"
	"github.com/invsync/backend/internal/infrastructure/persistence"
	"github.com/invsync/backend/internal/infrastructure/storage"
	"github.com/invsync/backend/internal/infrastructure/telemetry"
	"github.com/invsync/backend/internal/interfaces/http/handler"
	"github.com/invsync/backend/internal/interfaces/http/middleware"
	"github.com/invsync/backend/internal/interfaces/http/router"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env carries the legacy SHOPIFY_* and BIGCOMMERCE_* variables in local setups
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting sync backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.Open(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		if err := migrateUp(db, cfg.Database.MigrationsPath, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Warn("Failed to enable database tracing", zap.Error(err))
	}

	productRepo := persistence.NewGormProductRepository(db.DB)
	comboRepo := persistence.NewGormComboRepository(db.DB)

	storefronts, err := buildStorefronts(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize storefront adapters", zap.Error(err))
	}

	locations, closeLocations, err := cache.NewLocationCacheFactory(cfg.Redis, cfg.Sync.LocationCacheTTL,
		cache.WithLogger(log)).Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize location cache", zap.Error(err))
	}
	defer func() {
		if err := closeLocations(); err != nil {
			log.Error("Error closing location cache", zap.Error(err))
		}
	}()

	syncOpts := []appintegration.SyncServiceOption{appintegration.WithLocationCache(locations)}
	if syncMetrics, err := telemetry.NewSyncMetrics(meterProvider.Meter("invsync.sync")); err != nil {
		log.Warn("Sync metrics disabled", zap.Error(err))
	} else {
		syncOpts = append(syncOpts, appintegration.WithSyncMetrics(syncMetrics))
	}

	syncService := appintegration.NewSyncService(productRepo, storefronts, log, syncOpts...)
	storefrontService := appintegration.NewStorefrontService(storefronts, locations, log)
	comboService := catalogapp.NewComboService(comboRepo, log)

	port, _ := strconv.Atoi(cfg.App.Port)
	handlers := router.Handlers{
		Items:       handler.NewItemHandler(syncService),
		Shopify:     handler.NewStorefrontHandler(storefrontService, integration.PlatformCodeShopify),
		BigCommerce: handler.NewStorefrontHandler(storefrontService, integration.PlatformCodeBigCommerce),
		Combos:      handler.NewComboHandler(comboService),
		Health:      handler.NewHealthHandler(db, cfg.App.Version, port),
	}

	var verifier middleware.TokenVerifier
	if cfg.Auth.Enabled {
		verifier = auth.NewOwnerTokenVerifier(cfg.Auth)
		log.Info("Owner authentication enabled")
	} else {
		log.Warn("Owner authentication disabled, request userId is trusted")
	}

	engine := router.New(router.Config{
		Logger:        log,
		HTTP:          cfg.HTTP,
		Telemetry:     cfg.Telemetry,
		MeterProvider: meterProvider,
		Verifier:      verifier,
	}, handlers)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// buildStorefronts creates the adapters in sync order: Shopify, then BigCommerce.
// An adapter without store-wide credentials is still registered; it reports itself
// disabled and the orchestrator skips it.
func buildStorefronts(ctx context.Context, cfg *config.Config, log *zap.Logger) ([]integration.Storefront, error) {
	branding := integration.Branding{
		Tag:       cfg.Sync.BrandTag,
		Vendor:    cfg.Sync.DefaultVendor,
		StoreName: cfg.Sync.StoreName,
	}
	opts := []ecommerce.Option{ecommerce.WithLogger(log)}

	var shopifyCfg *ecommerce.ShopifyConfig
	if cfg.Shopify.IsConfigured() {
		shopifyCfg = &ecommerce.ShopifyConfig{
			StoreURL:       cfg.Shopify.StoreURL,
			AccessToken:    cfg.Shopify.AccessToken,
			APIVersion:     cfg.Shopify.APIVersion,
			LocationID:     cfg.Shopify.LocationID,
			TimeoutSeconds: cfg.Shopify.TimeoutSeconds,
		}
	} else {
		log.Warn("Shopify credentials not configured, Shopify sync disabled")
	}
	shopify, err := ecommerce.NewShopifyAdapter(shopifyCfg, branding, opts...)
	if err != nil {
		return nil, err
	}

	var bigcommerceCfg *ecommerce.BigCommerceConfig
	if cfg.BigCommerce.IsConfigured() {
		bigcommerceCfg = &ecommerce.BigCommerceConfig{
			StoreHash:      cfg.BigCommerce.StoreHash,
			AccessToken:    cfg.BigCommerce.AccessToken,
			ClientID:       cfg.BigCommerce.ClientID,
			ClientSecret:   cfg.BigCommerce.ClientSecret,
			APIBaseURL:     cfg.BigCommerce.APIBaseURL,
			LocationID:     cfg.BigCommerce.LocationID,
			TimeoutSeconds: cfg.BigCommerce.TimeoutSeconds,
		}
	} else {
		log.Warn("BigCommerce credentials not configured, BigCommerce sync disabled")
	}
	bigcommerceOpts := opts
	if cfg.Storage.Enabled {
		stager, err := storage.NewS3ImageStager(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return nil, err
		}
		if err := stager.EnsureBucket(ctx); err != nil {
			log.Warn("Image staging bucket check failed", zap.String("bucket", stager.Bucket()), zap.Error(err))
		}
		bigcommerceOpts = append(bigcommerceOpts, ecommerce.WithImageStager(stager))
		log.Info("Inline images will be staged to object storage", zap.String("bucket", stager.Bucket()))
	}
	bigcommerce, err := ecommerce.NewBigCommerceAdapter(bigcommerceCfg, branding, bigcommerceOpts...)
	if err != nil {
		return nil, err
	}

	return []integration.Storefront{shopify, bigcommerce}, nil
}

// migrateUp applies pending schema migrations over the open connection
func migrateUp(db *persistence.Database, path string, log *zap.Logger) error {
	if path == "" {
		path = "migrations"
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	// the migrator is not closed; closing it would close the shared pool
	m, err := migration.New(sqlDB, abs, log)
	if err != nil {
		return err
	}
	return m.Up()
}
