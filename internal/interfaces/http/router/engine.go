package router

import (
	"github.com/gin-gonic/gin"
	"github.com/invsync/backend/internal/infrastructure/config"
	"github.com/invsync/backend/internal/infrastructure/logger"
	"github.com/invsync/backend/internal/infrastructure/telemetry"
	"github.com/invsync/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Config configures the engine built by New
type Config struct {
	Logger        *zap.Logger
	HTTP          config.HTTPConfig
	Telemetry     config.TelemetryConfig
	MeterProvider *telemetry.MeterProvider
	// Verifier enables owner authentication on the API routes; nil leaves them open
	Verifier middleware.TokenVerifier
}

// New builds the gin engine with the global middleware chain and every route mounted.
// The trace span must start before the request logger so log lines carry trace ids.
// Owner authentication runs only inside the API group.
func New(cfg Config, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: cfg.MeterProvider,
		Enabled:       cfg.MeterProvider != nil,
	}))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}

	if h.Health != nil {
		engine.GET("/health", h.Health.Check)
	}

	var opts []RouterOption
	if cfg.Verifier != nil {
		opts = append(opts, WithGroupMiddleware(middleware.OwnerAuth(middleware.OwnerAuthConfig{
			Verifier:  cfg.Verifier,
			SkipPaths: []string{DefaultPrefix + "/health"},
			Logger:    log,
		})))
	}
	NewRouter(engine, opts...).Register(h.registrars()...).Setup()

	return engine
}
