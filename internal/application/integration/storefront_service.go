package integration

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/integration"
	"github.com/invsync/backend/internal/domain/shared"
	"github.com/invsync/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CodePlatformNotConfigured is returned when a pass-through call targets a platform
// without credentials
const CodePlatformNotConfigured = "PLATFORM_NOT_CONFIGURED"

// StorefrontListResult is the outcome of listing remote products. A failed listing is
// reported in Success/Error rather than as an error.
type StorefrontListResult struct {
	Success  bool
	Message  string
	Error    string
	Products []integration.RemoteProduct
}

// StorefrontUpdateRequest edits a remote product directly. Nil fields are not sent.
type StorefrontUpdateRequest struct {
	RemoteID    string
	Title       *string
	Price       *decimal.Decimal
	Quantity    *int
	Status      *string
	Vendor      *string
	ProductType *string
	Tags        *string
	SKU         *string
	Weight      *float64
	BrandID     *int
}

func (r StorefrontUpdateRequest) patch() integration.ProductPatch {
	return integration.ProductPatch{
		Title:       nonEmpty(r.Title),
		Price:       r.Price,
		Status:      nonEmpty(r.Status),
		Vendor:      nonEmpty(r.Vendor),
		ProductType: nonEmpty(r.ProductType),
		Tags:        nonEmpty(r.Tags),
		SKU:         nonEmpty(r.SKU),
		Weight:      r.Weight,
		BrandID:     r.BrandID,
	}
}

// StorefrontService exposes remote catalogs directly, bypassing the local store
type StorefrontService struct {
	storefronts map[integration.PlatformCode]integration.Storefront
	locations   integration.LocationCache
	logger      *zap.Logger
}

// NewStorefrontService creates a StorefrontService
func NewStorefrontService(storefronts []integration.Storefront, locations integration.LocationCache, logger *zap.Logger) *StorefrontService {
	byCode := make(map[integration.PlatformCode]integration.Storefront, len(storefronts))
	for _, sf := range storefronts {
		byCode[sf.PlatformCode()] = sf
	}
	return &StorefrontService{
		storefronts: byCode,
		locations:   locations,
		logger:      logger,
	}
}

// List returns every product of the platform
func (s *StorefrontService) List(ctx context.Context, platform integration.PlatformCode, ownerID uuid.UUID) *StorefrontListResult {
	sf, ok := s.storefronts[platform]
	if !ok || !sf.IsEnabled(ctx, ownerID) {
		return &StorefrontListResult{
			Success:  true,
			Message:  platform.DisplayName() + " not configured",
			Products: []integration.RemoteProduct{},
		}
	}

	products, err := sf.ListProducts(ctx, ownerID)
	if err != nil {
		err = integration.NewAdapterError(platform, integration.StageList, err)
		s.logger.Error("Failed to list storefront products",
			zap.String("platform", platform.String()),
			zap.Error(err))
		return &StorefrontListResult{
			Success:  false,
			Message:  fmt.Sprintf("Failed to fetch %s products", platform.DisplayName()),
			Error:    err.Error(),
			Products: []integration.RemoteProduct{},
		}
	}
	if products == nil {
		products = []integration.RemoteProduct{}
	}
	return &StorefrontListResult{
		Success:  true,
		Message:  fmt.Sprintf("Successfully fetched %d %s products", len(products), platform.DisplayName()),
		Products: products,
	}
}

// Update edits the remote product, then sets its stock when a quantity is given.
// A failed stock update is logged and does not fail the call.
func (s *StorefrontService) Update(ctx context.Context, platform integration.PlatformCode, ownerID uuid.UUID, req StorefrontUpdateRequest) (*integration.RemoteProduct, error) {
	sf, err := s.storefront(ctx, platform, ownerID, req.RemoteID)
	if err != nil {
		return nil, err
	}
	remoteID := strings.TrimSpace(req.RemoteID)

	ctx, span := telemetry.StartSpan(ctx, "storefront.update",
		telemetry.WithAttribute(telemetry.SpanAttrPlatform, platform.String()),
		telemetry.WithAttribute(telemetry.SpanAttrRemoteID, remoteID),
	)
	defer span.End()

	var updated *integration.RemoteProduct
	if patch := req.patch(); !patch.IsEmpty() {
		updated, err = sf.UpdateProduct(ctx, ownerID, remoteID, patch)
		if err != nil {
			err = integration.NewAdapterError(platform, integration.StageUpdate, err)
			telemetry.RecordError(span, err)
			s.logger.Error("Failed to update storefront product",
				zap.String("platform", platform.String()),
				zap.String("remote_id", remoteID),
				zap.Error(err))
			return nil, err
		}
	}

	if req.Quantity != nil {
		locations := newLocationResolver(s.locations, s.logger)
		remote, err := pushQuantity(ctx, sf, ownerID, remoteID, updated, *req.Quantity, locations)
		if err != nil {
			s.logger.Warn("Storefront inventory update failed",
				zap.String("platform", platform.String()),
				zap.String("remote_id", remoteID),
				zap.Error(integration.NewAdapterError(platform, integration.StageInventory, err)))
		} else if updated == nil {
			updated = remote
		}
	}

	if updated == nil {
		updated, err = sf.GetProduct(ctx, ownerID, remoteID)
		if err != nil {
			return nil, integration.NewAdapterError(platform, integration.StageUpdate, err)
		}
	}
	return updated, nil
}

// Delete removes the remote product
func (s *StorefrontService) Delete(ctx context.Context, platform integration.PlatformCode, ownerID uuid.UUID, remoteID string) error {
	sf, err := s.storefront(ctx, platform, ownerID, remoteID)
	if err != nil {
		return err
	}
	if err := sf.DeleteProduct(ctx, ownerID, strings.TrimSpace(remoteID)); err != nil {
		err = integration.NewAdapterError(platform, integration.StageDelete, err)
		s.logger.Error("Failed to delete storefront product",
			zap.String("platform", platform.String()),
			zap.String("remote_id", remoteID),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *StorefrontService) storefront(ctx context.Context, platform integration.PlatformCode, ownerID uuid.UUID, remoteID string) (integration.Storefront, error) {
	if strings.TrimSpace(remoteID) == "" {
		return nil, shared.NewValidationError("%s product ID is required", platform.DisplayName())
	}
	sf, ok := s.storefronts[platform]
	if !ok || !sf.IsEnabled(ctx, ownerID) {
		return nil, shared.NewDomainError(CodePlatformNotConfigured, platform.DisplayName()+" credentials not configured")
	}
	return sf, nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
