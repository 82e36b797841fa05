package integration

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/catalog"
	"github.com/invsync/backend/internal/domain/integration"
	"github.com/invsync/backend/internal/domain/shared"
	"github.com/invsync/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SyncService keeps a local product and its storefront mirrors in step.
// The local store is authoritative: only local persistence failures fail an operation,
// every remote failure is logged, recorded in the outcome and absorbed.
type SyncService struct {
	products    catalog.ProductRepository
	storefronts []integration.Storefront
	linker      *AutoLinker
	locations   integration.LocationCache
	metrics     *telemetry.SyncMetrics
	logger      *zap.Logger
}

// SyncServiceOption configures a SyncService
type SyncServiceOption func(*SyncService)

// WithLocationCache shares resolved inventory locations across operations
func WithLocationCache(cache integration.LocationCache) SyncServiceOption {
	return func(s *SyncService) {
		s.locations = cache
	}
}

// WithSyncMetrics records stage and operation outcomes
func WithSyncMetrics(metrics *telemetry.SyncMetrics) SyncServiceOption {
	return func(s *SyncService) {
		s.metrics = metrics
	}
}

// NewSyncService creates a SyncService. Storefronts are visited in the given order;
// use integration.AllPlatformCodes order (Shopify, then BigCommerce).
func NewSyncService(
	products catalog.ProductRepository,
	storefronts []integration.Storefront,
	logger *zap.Logger,
	opts ...SyncServiceOption,
) *SyncService {
	s := &SyncService{
		products:    products,
		storefronts: storefronts,
		linker:      NewAutoLinker(products, logger),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

// CreateProduct validates the request, persists the product locally, then mirrors it to
// every configured storefront. Validation failures happen before any side effect.
func (s *SyncService) CreateProduct(ctx context.Context, req *CreateProductRequest) (result *CreateProductResult, err error) {
	ownerID, err := req.validate()
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "sync.create_product",
		telemetry.WithAttribute(telemetry.SpanAttrOwnerID, ownerID.String()),
	)
	defer func(start time.Time) {
		telemetry.RecordError(span, err)
		span.End()
		s.metrics.RecordOperation(ctx, "create", time.Since(start), err)
	}(time.Now())

	name := req.title()
	product, err := catalog.NewProduct(ownerID, req.ProductCode, name, *req.Quantity, *req.Price)
	if err != nil {
		return nil, err
	}
	if req.Category != "" || req.Channel != "" {
		if err := product.ApplyChanges(catalog.ProductChanges{
			Category: optionalString(req.Category),
			Channel:  optionalString(req.Channel),
		}); err != nil {
			return nil, err
		}
	}

	if err := s.products.Save(ctx, product); err != nil {
		s.logger.Error("Failed to save product", zap.String("product_code", product.ProductCode), zap.Error(err))
		return nil, shared.NewPersistenceError("save product", err)
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrProductID, product.ID.String())
	s.logger.Info("Product saved locally",
		zap.String("product_id", product.ID.String()),
		zap.String("product_code", product.ProductCode))

	listing := req.listing()
	remoteCtx := context.WithoutCancel(ctx)
	locations := newLocationResolver(s.locations, s.logger)

	outcomes := make(Outcomes, 0, len(s.storefronts))
	for _, sf := range s.storefronts {
		if !sf.IsEnabled(remoteCtx, ownerID) {
			outcomes = append(outcomes, s.skipped(remoteCtx, sf, integration.StageCreate))
			continue
		}
		run := &platformRun{
			storefront: sf,
			caps:       sf.Capabilities(),
			product:    product,
			listing:    listing,
			locations:  locations,
		}
		outcomes = append(outcomes, s.runPipeline(remoteCtx, run, s.createStages()))
	}

	return &CreateProductResult{
		Product:  ToProductResponse(product),
		Outcomes: outcomes,
	}, nil
}

// ---------------------------------------------------------------------------
// Read
// ---------------------------------------------------------------------------

// ListProducts returns the products of one owner
func (s *SyncService) ListProducts(ctx context.Context, ownerID string) ([]*ProductResponse, error) {
	owner, err := shared.ParseOwnerID(strings.TrimSpace(ownerID))
	if err != nil {
		return nil, err
	}
	products, err := s.products.FindByOwner(ctx, owner)
	if err != nil {
		return nil, shared.NewPersistenceError("list products", err)
	}
	return ToProductResponses(products), nil
}

// ListAllProducts returns every local product
func (s *SyncService) ListAllProducts(ctx context.Context) ([]*ProductResponse, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, shared.NewPersistenceError("list products", err)
	}
	return ToProductResponses(products), nil
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

// UpdateProduct applies the local changes, then pushes name, price and quantity changes to
// every configured storefront, auto-linking unlinked products first. The updated local
// product is returned whatever happens remotely.
func (s *SyncService) UpdateProduct(ctx context.Context, req *UpdateProductRequest) (result *UpdateProductResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "sync.update_product")
	defer func(start time.Time) {
		telemetry.RecordError(span, err)
		span.End()
		s.metrics.RecordOperation(ctx, "update", time.Since(start), err)
	}(time.Now())

	product, err := s.locate(ctx, req)
	if err != nil {
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrProductID, product.ID.String())

	changes := req.changes()
	if err := product.ApplyChanges(changes); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		s.logger.Error("Failed to save product", zap.String("product_id", product.ID.String()), zap.Error(err))
		return nil, shared.NewPersistenceError("update product", err)
	}

	remoteCtx := context.WithoutCancel(ctx)
	locations := newLocationResolver(s.locations, s.logger)

	outcomes := make(Outcomes, 0, len(s.storefronts))
	for _, sf := range s.storefronts {
		if !sf.IsEnabled(remoteCtx, product.OwnerID) {
			outcomes = append(outcomes, s.skipped(remoteCtx, sf, integration.StageUpdate))
			continue
		}
		run := &platformRun{
			storefront: sf,
			caps:       sf.Capabilities(),
			product:    product,
			changes:    changes,
			remoteID:   remoteIDOf(product, sf.PlatformCode()),
			locations:  locations,
		}
		outcomes = append(outcomes, s.runPipeline(remoteCtx, run, s.updateStages()))
	}

	return &UpdateProductResult{
		Product:  ToProductResponse(product),
		Outcomes: outcomes,
	}, nil
}

// locate finds the product by local ID, else by product code
func (s *SyncService) locate(ctx context.Context, req *UpdateProductRequest) (*catalog.Product, error) {
	var (
		product *catalog.Product
		err     error
	)
	switch {
	case strings.TrimSpace(req.ItemID) != "":
		id, parseErr := uuid.Parse(strings.TrimSpace(req.ItemID))
		if parseErr != nil {
			return nil, shared.NewValidationError("Invalid item ID provided.")
		}
		product, err = s.products.FindByID(ctx, id)
	case strings.TrimSpace(req.ProductCode) != "":
		code := strings.TrimSpace(req.ProductCode)
		if req.ActingOwner != uuid.Nil {
			product, err = s.products.FindByOwnerAndCode(ctx, req.ActingOwner, code)
		} else {
			product, err = s.products.FindByCode(ctx, code)
		}
	default:
		return nil, shared.NewValidationError("Either itemId or productID is required.")
	}
	if err != nil {
		return nil, lookupError(err)
	}
	return product, checkOwner(product, req.ActingOwner)
}

// checkOwner rejects a product owned by someone other than the acting seller.
// uuid.Nil means no authenticated seller and allows everything.
func checkOwner(product *catalog.Product, actingOwner uuid.UUID) error {
	if actingOwner == uuid.Nil || product.OwnerID == actingOwner {
		return nil
	}
	return catalog.ErrProductForbidden
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

// DeleteProduct deletes the remote mirrors best effort, each platform independently,
// then deletes the local product. Only the local delete decides the result.
// A non-nil actingOwner must own the product; nothing is deleted otherwise.
func (s *SyncService) DeleteProduct(ctx context.Context, itemID string, actingOwner uuid.UUID) (resp *ProductResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "sync.delete_product")
	defer func(start time.Time) {
		telemetry.RecordError(span, err)
		span.End()
		s.metrics.RecordOperation(ctx, "delete", time.Since(start), err)
	}(time.Now())

	if strings.TrimSpace(itemID) == "" {
		return nil, shared.NewValidationError("Item ID is required.")
	}
	id, err := uuid.Parse(strings.TrimSpace(itemID))
	if err != nil {
		return nil, shared.NewValidationError("Invalid item ID provided.")
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err)
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrProductID, product.ID.String())
	if err := checkOwner(product, actingOwner); err != nil {
		return nil, err
	}

	remoteCtx := context.WithoutCancel(ctx)
	for _, sf := range s.storefronts {
		remoteID := remoteIDOf(product, sf.PlatformCode())
		if remoteID == "" {
			continue
		}
		if !sf.IsEnabled(remoteCtx, product.OwnerID) {
			s.skipped(remoteCtx, sf, integration.StageDelete)
			continue
		}
		s.runPipeline(remoteCtx, &platformRun{
			storefront: sf,
			caps:       sf.Capabilities(),
			product:    product,
			remoteID:   remoteID,
		}, s.deleteStages())
	}

	if err := s.products.Delete(ctx, product.ID); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, err
		}
		s.logger.Error("Failed to delete product", zap.String("product_id", product.ID.String()), zap.Error(err))
		return nil, shared.NewPersistenceError("delete product", err)
	}
	s.logger.Info("Product deleted", zap.String("product_id", product.ID.String()))
	return ToProductResponse(product), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *SyncService) skipped(ctx context.Context, sf integration.Storefront, stage integration.Stage) PlatformOutcome {
	platform := sf.PlatformCode()
	s.metrics.RecordSkipped(ctx, platform.String(), string(stage))
	s.logger.Debug("Platform not configured, skipping",
		zap.String("platform", platform.String()),
		zap.String("stage", string(stage)))
	return PlatformOutcome{Platform: platform, Skipped: true}
}

// lookupError maps repository lookup errors: not-found passes through, anything else
// is a persistence failure
func lookupError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, catalog.ErrProductNotFound) || errors.Is(err, shared.ErrNotFound) {
		return catalog.ErrProductNotFound
	}
	return shared.NewPersistenceError("load product", err)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
