package integration

import (
	"context"
	"strings"

	"github.com/invsync/backend/internal/domain/catalog"
	"github.com/invsync/backend/internal/domain/integration"
	"github.com/invsync/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AutoLinker associates a local product that lacks a platform ID with a remote
// product found by one search. It never fails the surrounding operation.
type AutoLinker struct {
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewAutoLinker creates an AutoLinker
func NewAutoLinker(products catalog.ProductRepository, logger *zap.Logger) *AutoLinker {
	return &AutoLinker{
		products: products,
		logger:   logger,
	}
}

// Resolve returns the platform ID of product, searching the storefront once when the
// product is not linked yet. A found ID is saved on the local product before returning.
// Already-linked products return immediately without a remote call.
func (l *AutoLinker) Resolve(ctx context.Context, product *catalog.Product, sf integration.Storefront) (string, bool) {
	platform := sf.PlatformCode()
	if id := remoteIDOf(product, platform); id != "" {
		return id, true
	}

	ctx, span := telemetry.StartSpan(ctx, "sync.auto_link",
		telemetry.WithAttribute(telemetry.SpanAttrPlatform, platform.String()),
		telemetry.WithAttribute(telemetry.SpanAttrProductID, product.ID.String()),
	)
	defer span.End()

	log := l.logger.With(
		zap.String("platform", platform.String()),
		zap.String("product_id", product.ID.String()),
	)

	caps := sf.Capabilities()
	query := product.ExternalName
	if caps.SearchByProductCode && product.ProductCode != "" {
		query = product.ProductCode
	}

	results, err := sf.SearchProducts(ctx, product.OwnerID, query)
	if err != nil {
		err = integration.NewAdapterError(platform, integration.StageAutoLink, err)
		telemetry.RecordError(span, err)
		log.Warn("Auto-link search failed", zap.Error(err))
		return "", false
	}

	match := pickMatch(results, caps.AutoLinkMatch, product.ExternalName)
	if match == nil || match.ID == "" {
		log.Debug("Auto-link found no matching remote product", zap.String("query", query))
		return "", false
	}

	linkRemote(product, platform, match.ID)
	if err := l.products.Save(ctx, product); err != nil {
		linkRemote(product, platform, "")
		telemetry.RecordError(span, err)
		log.Error("Failed to save auto-linked platform ID", zap.String("remote_id", match.ID), zap.Error(err))
		return "", false
	}

	telemetry.AddEvent(span, "auto_linked", telemetry.SpanAttrRemoteID, match.ID)
	log.Info("Auto-linked remote product", zap.String("remote_id", match.ID))
	return match.ID, true
}

func pickMatch(results []integration.RemoteProduct, policy integration.MatchPolicy, name string) *integration.RemoteProduct {
	if len(results) == 0 {
		return nil
	}
	if policy == integration.MatchFirstResult {
		return &results[0]
	}
	for i := range results {
		if strings.EqualFold(results[i].Title, name) {
			return &results[i]
		}
	}
	return nil
}

// remoteIDOf returns the stored platform ID of product, or ""
func remoteIDOf(product *catalog.Product, platform integration.PlatformCode) string {
	switch platform {
	case integration.PlatformCodeShopify:
		return product.ShopifyID()
	case integration.PlatformCodeBigCommerce:
		return product.BigCommerceID()
	default:
		return ""
	}
}

// linkRemote stores (or clears, for "") the platform ID on product
func linkRemote(product *catalog.Product, platform integration.PlatformCode, remoteID string) {
	switch platform {
	case integration.PlatformCodeShopify:
		product.LinkShopifyProduct(remoteID)
	case integration.PlatformCodeBigCommerce:
		product.LinkBigCommerceProduct(remoteID)
	}
}
