package integration

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/integration"
	"go.uber.org/zap"
)

// locationResolver resolves inventory locations at most once per platform for the
// lifetime of one operation. An optional shared cache avoids the lookup across operations.
type locationResolver struct {
	cache    integration.LocationCache
	logger   *zap.Logger
	resolved map[integration.PlatformCode]locationResult
}

type locationResult struct {
	id  string
	err error
}

func newLocationResolver(cache integration.LocationCache, logger *zap.Logger) *locationResolver {
	return &locationResolver{
		cache:    cache,
		logger:   logger,
		resolved: make(map[integration.PlatformCode]locationResult, 2),
	}
}

// Resolve returns the location for the storefront, memoizing failures too so a
// platform whose lookup failed is not asked again in the same operation.
func (r *locationResolver) Resolve(ctx context.Context, sf integration.Storefront, ownerID uuid.UUID) (string, error) {
	platform := sf.PlatformCode()
	if res, ok := r.resolved[platform]; ok {
		return res.id, res.err
	}

	id, err := r.lookup(ctx, sf, ownerID)
	r.resolved[platform] = locationResult{id: id, err: err}
	return id, err
}

func (r *locationResolver) lookup(ctx context.Context, sf integration.Storefront, ownerID uuid.UUID) (string, error) {
	platform := sf.PlatformCode()
	if r.cache != nil {
		id, err := r.cache.Get(ctx, platform, ownerID)
		if err != nil {
			r.logger.Warn("Location cache read failed",
				zap.String("platform", platform.String()),
				zap.Error(err))
		} else if id != "" {
			return id, nil
		}
	}

	id, err := sf.ResolveLocation(ctx, ownerID)
	if err != nil {
		return "", integration.NewAdapterError(platform, integration.StageLocation, err)
	}
	if id == "" {
		return "", integration.NewAdapterError(platform, integration.StageLocation,
			fmt.Errorf("%w: empty location id", integration.ErrNoInventoryLocation))
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, platform, ownerID, id); err != nil {
			r.logger.Warn("Location cache write failed",
				zap.String("platform", platform.String()),
				zap.Error(err))
		}
	}
	return id, nil
}
