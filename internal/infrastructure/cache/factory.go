package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/invsync/backend/internal/domain/integration"
	"github.com/invsync/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LocationCacheFactory picks the location cache backend from configuration
type LocationCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LocationCacheFactoryOption configures the factory
type LocationCacheFactoryOption func(*LocationCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LocationCacheFactoryOption {
	return func(f *LocationCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the in-memory cache.
// Default is true.
func WithInMemoryFallback(allow bool) LocationCacheFactoryOption {
	return func(f *LocationCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLocationCacheFactory creates a new factory
func NewLocationCacheFactory(cfg config.RedisConfig, ttl time.Duration, opts ...LocationCacheFactoryOption) *LocationCacheFactory {
	f := &LocationCacheFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a Redis cache when Redis is enabled and reachable, otherwise
// an in-memory one. The returned close func is never nil.
func (f *LocationCacheFactory) Create(ctx context.Context) (integration.LocationCache, func() error, error) {
	noop := func() error { return nil }
	if !f.redisConfig.Enabled {
		f.logger.Info("Using in-memory location cache", zap.Duration("ttl", f.ttl))
		return NewInMemoryLocationCache(f.ttl), noop, nil
	}

	redisCache, err := NewRedisLocationCache(ctx, &redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.ttl)
	if err == nil {
		f.logger.Info("Using Redis location cache",
			zap.String("addr", f.redisConfig.Addr()),
			zap.Duration("ttl", f.ttl),
		)
		return redisCache, redisCache.Close, nil
	}

	if !f.allowInMemoryFallback {
		return nil, noop, fmt.Errorf("redis location cache unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory location cache; "+
		"each instance will resolve locations on its own",
		zap.Error(err),
	)
	return NewInMemoryLocationCache(f.ttl), noop, nil
}
