package ecommerce

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/integration"
	"go.uber.org/zap"
)

const (
	bigCommerceAuthHeader      = "X-Auth-Token"
	bigCommerceListLimit       = 250
	bigCommerceAdjustmentNote  = "Inventory sync"
	bigCommerceIncludeVariants = "variants"
)

// BigCommerceAdapter implements the Storefront port for BigCommerce
type BigCommerceAdapter struct {
	config   *BigCommerceConfig
	client   *restClient
	logger   *zap.Logger
	branding integration.Branding
	stager   ImageStager

	// ownerConfigs stores per-owner credentials that override the default config
	ownerConfigs map[uuid.UUID]*BigCommerceConfig
	mu           sync.RWMutex
}

// NewBigCommerceAdapter creates a BigCommerce adapter. A nil config yields an adapter that is only
// enabled for owners registered through SetOwnerConfig.
func NewBigCommerceAdapter(config *BigCommerceConfig, branding integration.Branding, opts ...Option) (*BigCommerceAdapter, error) {
	if config != nil {
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}
	o := buildOptions(opts)

	return &BigCommerceAdapter{
		config:       config,
		client:       &restClient{platform: integration.PlatformCodeBigCommerce, httpClient: o.httpClient},
		logger:       o.logger.With(zap.String("platform", "bigcommerce")),
		branding:     branding.WithDefaults(),
		stager:       o.imageStager,
		ownerConfigs: make(map[uuid.UUID]*BigCommerceConfig),
	}, nil
}

// SetOwnerConfig sets the credentials used for a specific owner
func (a *BigCommerceAdapter) SetOwnerConfig(ownerID uuid.UUID, config *BigCommerceConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ownerConfigs[ownerID] = config
	return nil
}

// getOwnerConfig retrieves the configuration for an owner
func (a *BigCommerceAdapter) getOwnerConfig(ownerID uuid.UUID) (*BigCommerceConfig, error) {
	a.mu.RLock()
	config, ok := a.ownerConfigs[ownerID]
	a.mu.RUnlock()
	if ok {
		return config, nil
	}
	if a.config != nil {
		return a.config, nil
	}
	return nil, integration.ErrPlatformNotConfigured
}

// PlatformCode returns the platform code this adapter handles
func (a *BigCommerceAdapter) PlatformCode() integration.PlatformCode {
	return integration.PlatformCodeBigCommerce
}

// Capabilities returns the BigCommerce flow shape: stock is embedded in the create payload,
// nothing is published, and auto-link takes the first keyword match.
func (a *BigCommerceAdapter) Capabilities() integration.Capabilities {
	return integration.Capabilities{
		SeparateInventoryOnCreate: false,
		PublishesListing:          false,
		CatalogInventory:          true,
		SearchByProductCode:       true,
		AutoLinkMatch:             integration.MatchFirstResult,
	}
}

// IsEnabled returns true if credentials are configured for the owner
func (a *BigCommerceAdapter) IsEnabled(ctx context.Context, ownerID uuid.UUID) bool {
	_, err := a.getOwnerConfig(ownerID)
	return err == nil
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// CreateProduct creates a physical product with stock embedded. Option variants are attached
// only when the listing yields some; otherwise a simple product is created.
func (a *BigCommerceAdapter) CreateProduct(ctx context.Context, ownerID uuid.UUID, listing *integration.Listing) (*integration.RemoteProduct, error) {
	config, err := a.getOwnerConfig(ownerID)
	if err != nil {
		return nil, err
	}

	var resp BigCommerceProductEnvelope
	if err := a.call(ctx, config, "create_product", http.MethodPost, "/catalog/products", a.buildProduct(listing), &resp); err != nil {
		return nil, err
	}
	if resp.Data.ID == 0 {
		return nil, fmt.Errorf("%w: response missing product", integration.ErrPlatformInvalidResponse)
	}
	return resp.Data.toRemoteProduct(), nil
}

// buildProduct maps a listing to the BigCommerce catalog product
func (a *BigCommerceAdapter) buildProduct(listing *integration.Listing) BigCommerceProduct {
	price, _ := listing.Price.Float64()
	weight := listing.WeightValue()
	categories := []int{}

	product := BigCommerceProduct{
		Name:                  listing.Title,
		Type:                  "physical",
		SKU:                   listing.BaseSKU(),
		Description:           listing.Description(),
		Price:                 &price,
		Weight:                &weight,
		IsVisible:             boolPtr(true),
		IsFeatured:            boolPtr(false),
		InventoryLevel:        intPtr(listing.Quantity),
		InventoryWarningLevel: intPtr(0),
		InventoryTracking:     "product",
		Categories:            &categories,
		MetaKeywords:          listing.Tags(a.branding),
		MetaDescription:       listing.MetaDescription(a.branding),
		PageTitle:             listing.Title,
	}

	variants := integration.OptionVariants(listing)
	if len(variants) == 0 {
		return product
	}

	product.InventoryTracking = "variant"
	product.Variants = make([]BigCommerceVariant, 0, len(variants))
	for _, v := range variants {
		variantPrice := price
		product.Variants = append(product.Variants, BigCommerceVariant{
			SKU:                   v.SKU,
			Price:                 &variantPrice,
			Weight:                float64Ptr(0),
			InventoryLevel:        intPtr(v.Quantity),
			InventoryWarningLevel: intPtr(0),
			OptionValues: []BigCommerceOptionValue{{
				OptionDisplayName: string(v.Axis),
				Label:             v.Label(),
			}},
		})
	}
	return product
}

// GetProduct retrieves a product with its variants
func (a *BigCommerceAdapter) GetProduct(ctx context.Context, ownerID uuid.UUID, remoteID string) (*integration.RemoteProduct, error) {
	config, err := a.getOwnerConfig(ownerID)
	if err != nil {
		return nil, err
	}
	if err := validateNumericID(remoteID); err != nil {
		return nil, err
	}

	var resp BigCommerceProductEnvelope
	path := "/catalog/products/" + remoteID + "?include=" + bigCommerceIncludeVariants
	if err := a.call(ctx, config, "get_product", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data.ID == 0 {
		return nil, integration.ErrRemoteProductNotFound
	}
	return resp.Data.toRemoteProduct(), nil
}

// UpdateProduct applies the patch to the product. Stock is not part of this call.
func (a *BigCommerceAdapter) UpdateProduct(ctx context.Context, ownerID uuid.UUID, remoteID string, patch integration.ProductPatch) (*integration.RemoteProduct, error) {
	config, err := a.getOwnerConfig(ownerID)
	if err != nil {
		return nil, err
	}
	if err := validateNumericID(remoteID); err != nil {
		return nil, err
	}

	var body BigCommerceProduct
	if patch.Title != nil {
		body.Name = *patch.Title
	}
	if patch.Price != nil {
		price, _ := patch.Price.Float64()
		body.Price = &price
	}
	if patch.Status != nil {
		body.IsVisible = boolPtr(strings.EqualFold(*patch.Status, "active"))
	}
	if patch.ProductType != nil {
		body.Type = *patch.ProductType
	}
	if patch.SKU != nil {
		body.SKU = *patch.SKU
	}
	if patch.Weight != nil {
		body.Weight = patch.Weight
	}
	if patch.BrandID != nil {
		body.BrandID = patch.BrandID
	}

	var resp BigCommerceProductEnvelope
	if err := a.call(ctx, config, "update_product", http.MethodPut, "/catalog/products/"+remoteID, body, &resp); err != nil {
		return nil, err
	}
	if resp.Data.ID == 0 {
		return nil, fmt.Errorf("%w: response missing product", integration.ErrPlatformInvalidResponse)
	}
	return resp.Data.toRemoteProduct(), nil
}

// DeleteProduct deletes a product
func (a *BigCommerceAdapter) DeleteProduct(ctx context.Context, ownerID uuid.UUID, remoteID string) error {
	config, err := a.getOwnerConfig(ownerID)
	if err != nil {
		return err
	}
	if err := validateNumericID(remoteID); err != nil {
		return err
	}
	return a.call(ctx, config, "delete_product", http.MethodDelete, "/catalog/products/"+remoteID, nil, nil)
}

// ListProducts returns the first page of products
func (a *BigCommerceAdapter) ListProducts(ctx context.Context, ownerID uuid.UUID) ([]integration.RemoteProduct, error) {
	query := url.Values{}
	query.Set("include", bigCommerceIncludeVariants)
	query.Set("limit", fmt.Sprint(bigCommerceListLimit))
	return a.listProducts(ctx, ownerID, "list_products", query)
}

// SearchProducts returns products whose name, SKU or description match the keyword
func (a *BigCommerceAdapter) SearchProducts(ctx context.Context, ownerID uuid.UUID, keyword string) ([]integration.RemoteProduct, error) {
	query := url.Values{}
	query.Set("keyword", keyword)
	query.Set("include", bigCommerceIncludeVariants)
	return a.listProducts(ctx, ownerID, "search_products", query)
}

func (a *BigCommerceAdapter) listProducts(ctx context.Context, ownerID uuid.UUID, operation string, query url.Values) ([]integration.RemoteProduct, error) {
	config, err := a.getOwnerConfig(ownerID)
	if err != nil {
		return nil, err
	}

	var resp BigCommerceProductsEnvelope
	if err := a.call(ctx, config, operation, http.MethodGet, "/catalog/products?"+query.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	products := make([]integration.RemoteProduct, 0, len(resp.Data))
	for i := range resp.Data {
		products = append(products, *resp.Data[i].toRemoteProduct())
	}
	return products, nil
}

// ---------------------------------------------------------------------------
// Inventory Operations
// ---------------------------------------------------------------------------

// ResolveLocation returns the configured location, else the first active location
func (a *BigCommerceAdapter) ResolveLocation(ctx context.Context, ownerID uuid.UUID) (string, error) {
	config, err := a.getOwnerConfig(ownerID)
	if err != nil {
		return "", err
	}
	if config.LocationID != "" {
		return config.LocationID, nil
	}

	var resp BigCommerceLocationsEnvelope
	if err := a.call(ctx, config, "list_locations", http.MethodGet, "/inventory/locations?is_active=true", nil, &resp); err != nil {
		return "", err
	}
	for _, loc := range resp.Data {
		if loc.ID != 0 && loc.IsActive() {
			return formatID(loc.ID), nil
		}
	}
	return "", integration.ErrNoInventoryLocation
}

// SetInventory sets absolute quantities at the location in one adjustment.
// A level addresses its variant when known, else the product. An empty locationID
// writes inventory_level on the catalog records instead.
func (a *BigCommerceAdapter) SetInventory(ctx context.Context, ownerID uuid.UUID, locationID string, levels []integration.InventoryLevel) error {
	config, err := a.getOwnerConfig(ownerID)
	if err != nil {
		return err
	}
	if locationID == "" {
		return a.setCatalogInventory(ctx, config, levels)
	}
	location, err := parseNumericID(locationID)
	if err != nil {
		return fmt.Errorf("%w: location %q", integration.ErrNoInventoryLocation, locationID)
	}

	adjustment := BigCommerceInventoryAdjustment{
		Reason: bigCommerceAdjustmentNote,
		Items:  make([]BigCommerceInventoryItem, 0, len(levels)),
	}
	for _, level := range levels {
		item := BigCommerceInventoryItem{LocationID: location, Quantity: level.Available}
		if id, err := parseNumericID(level.VariantID); err == nil {
			item.VariantID = id
		} else if id, err := parseNumericID(level.ProductID); err == nil {
			item.ProductID = id
		} else {
			return fmt.Errorf("%w: inventory level without product or variant", ErrInvalidRemoteID)
		}
		adjustment.Items = append(adjustment.Items, item)
	}
	if len(adjustment.Items) == 0 {
		return nil
	}

	return a.call(ctx, config, "set_inventory", http.MethodPut, "/inventory/adjustments/absolute", adjustment, nil)
}

// setCatalogInventory writes each level with its own catalog PUT: the variant when
// known, else the product with product-level tracking
func (a *BigCommerceAdapter) setCatalogInventory(ctx context.Context, config *BigCommerceConfig, levels []integration.InventoryLevel) error {
	for _, level := range levels {
		available := level.Available
		if err := validateNumericID(level.ProductID); err != nil {
			return fmt.Errorf("%w: inventory level without product", ErrInvalidRemoteID)
		}
		if validateNumericID(level.VariantID) == nil {
			path := "/catalog/products/" + level.ProductID + "/variants/" + level.VariantID
			if err := a.call(ctx, config, "set_variant_stock", http.MethodPut, path,
				BigCommerceVariant{InventoryLevel: &available}, nil); err != nil {
				return err
			}
			continue
		}
		if err := a.call(ctx, config, "set_product_stock", http.MethodPut, "/catalog/products/"+level.ProductID,
			BigCommerceProduct{InventoryLevel: &available, InventoryTracking: "product"}, nil); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Media and channel Operations
// ---------------------------------------------------------------------------

// UploadImages uploads images one at a time by URL. Inline data URLs are staged to object storage
// first when an image stager is configured; otherwise they are sent as is.
func (a *BigCommerceAdapter) UploadImages(ctx context.Context, ownerID uuid.UUID, remoteID string, images []integration.ImageUpload) (int, error) {
	config, err := a.getOwnerConfig(ownerID)
	if err != nil {
		return 0, err
	}
	if err := validateNumericID(remoteID); err != nil {
		return 0, err
	}

	uploaded := 0
	var errs []error
	for _, img := range images {
		imageURL, err := stageDataURL(ctx, a.stager, "bigcommerce/"+config.StoreHash+"/"+remoteID, img)
		if err != nil {
			a.logger.Warn("Image staging failed, sending inline data",
				zap.String("remote_id", remoteID),
				zap.String("filename", img.Filename),
				zap.Error(err))
			imageURL = img.Source
		}

		body := BigCommerceImage{
			ImageURL:    imageURL,
			IsThumbnail: img.IsThumbnail,
			SortOrder:   img.Position,
		}
		if err := a.call(ctx, config, "upload_image", http.MethodPost, "/catalog/products/"+remoteID+"/images", body, nil); err != nil {
			a.logger.Warn("Image upload failed",
				zap.String("remote_id", remoteID),
				zap.String("filename", img.Filename),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", img.Filename, err))
			continue
		}
		uploaded++
	}
	return uploaded, errors.Join(errs...)
}

// Publish is a no-op: visible products are listed on the storefront channel on creation
func (a *BigCommerceAdapter) Publish(ctx context.Context, ownerID uuid.UUID, remoteID string) error {
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (a *BigCommerceAdapter) call(ctx context.Context, config *BigCommerceConfig, operation, method, path string, body, out any) error {
	return a.client.doJSON(ctx, apiRequest{
		operation: operation,
		method:    method,
		url:       config.BaseURL() + path,
		headers:   map[string]string{bigCommerceAuthHeader: config.AccessToken},
		body:      body,
		timeout:   timeoutOf(config.TimeoutSeconds),
	}, out)
}

// Ensure BigCommerceAdapter implements Storefront
var _ integration.Storefront = (*BigCommerceAdapter)(nil)
