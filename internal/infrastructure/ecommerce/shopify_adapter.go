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
	shopifyAccessTokenHeader = "X-Shopify-Access-Token"
	shopifyListLimit         = 250
	shopifyMetafieldNS       = "custom"
	shopifyMetafieldType     = "single_line_text_field"
)

// ShopifyAdapter implements the Storefront port for Shopify
type ShopifyAdapter struct {
	config   *ShopifyConfig
	client   *restClient
	logger   *zap.Logger
	branding integration.Branding

	// ownerConfigs stores per-owner credentials that override the default config
	ownerConfigs map[uuid.UUID]*ShopifyConfig
	mu           sync.RWMutex
}

// NewShopifyAdapter creates a Shopify adapter. A nil config yields an adapter that is only
// enabled for owners registered through SetOwnerConfig.
func NewShopifyAdapter(config *ShopifyConfig, branding integration.Branding, opts ...Option) (*ShopifyAdapter, error) {
	if config != nil {
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}
	o := buildOptions(opts)

	return &ShopifyAdapter{
		config:       config,
		client:       &restClient{platform: integration.PlatformCodeShopify, httpClient: o.httpClient},
		logger:       o.logger.With(zap.String("platform", "shopify")),
		branding:     branding.WithDefaults(),
		ownerConfigs: make(map[uuid.UUID]*ShopifyConfig),
	}, nil
}

// SetOwnerConfig sets the credentials used for a specific owner
func (a *ShopifyAdapter) SetOwnerConfig(ownerID uuid.UUID, config *ShopifyConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ownerConfigs[ownerID] = config
	return nil
}

// getOwnerConfig retrieves the configuration for an owner
func (a *ShopifyAdapter) getOwnerConfig(ownerID uuid.UUID) (*ShopifyConfig, error) {
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
func (a *ShopifyAdapter) PlatformCode() integration.PlatformCode {
	return integration.PlatformCodeShopify
}

// Capabilities returns the Shopify flow shape: stock is set after creation, listings are published,
// and auto-link requires an exact title match.
func (a *ShopifyAdapter) Capabilities() integration.Capabilities {
	return integration.Capabilities{
		SeparateInventoryOnCreate: true,
		PublishesListing:          true,
		SearchByProductCode:       false,
		AutoLinkMatch:             integration.MatchExactTitle,
	}
}

// IsEnabled returns true if credentials are configured for the owner
func (a *ShopifyAdapter) IsEnabled(ctx context.Context, ownerID uuid.UUID) bool {
	_, err := a.getOwnerConfig(ownerID)
	return err == nil
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// CreateProduct creates the product with its variants, options and metafields.
// Stock is not part of this call.
func (a *ShopifyAdapter) CreateProduct(ctx context.Context, ownerID uuid.UUID, listing *integration.Listing) (*integration.RemoteProduct, error) {
	config, err := a.getOwnerConfig(ownerID)
	if err != nil {
		return nil, err
	}

	var resp ShopifyProductEnvelope
	err = a.call(ctx, config, "create_product", http.MethodPost, "/products.json",
		ShopifyProductEnvelope{Product: a.buildProduct(listing)}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Product.ID == 0 {
		return nil, fmt.Errorf("%w: response missing product", integration.ErrPlatformInvalidResponse)
	}
	return resp.Product.toRemoteProduct(), nil
}

// buildProduct maps a listing to the Shopify product resource
func (a *ShopifyAdapter) buildProduct(listing *integration.Listing) ShopifyProduct {
	price := listing.Price.StringFixed(2)
	expanded := integration.ExpandVariants(listing)
	variants := make([]ShopifyVariant, 0, len(expanded))
	for _, v := range expanded {
		variants = append(variants, ShopifyVariant{
			Option1:             v.Option1,
			Option2:             v.Option2,
			Price:               price,
			SKU:                 v.SKU,
			Barcode:             v.Barcode,
			InventoryManagement: "shopify",
			InventoryPolicy:     "deny",
			RequiresShipping:    boolPtr(true),
			Taxable:             boolPtr(true),
			Weight:              float64Ptr(0),
			WeightUnit:          "kg",
		})
	}

	options := make([]ShopifyOption, 0, 2)
	for _, o := range integration.ProductOptions(listing) {
		options = append(options, ShopifyOption{Name: o.Name, Values: o.Values})
	}

	attrs := integration.CustomAttributes(listing)
	metafields := make([]ShopifyMetafield, 0, len(attrs))
	for _, attr := range attrs {
		metafields = append(metafields, ShopifyMetafield{
			Namespace: shopifyMetafieldNS,
			Key:       attr.Key,
			Value:     attr.Value,
			Type:      shopifyMetafieldType,
		})
	}

	return ShopifyProduct{
		Title:                          listing.Title,
		BodyHTML:                       listing.Description(),
		Vendor:                         listing.Vendor(a.branding),
		ProductType:                    listing.ProductType(),
		Status:                         "active",
		Tags:                           listing.TagString(a.branding),
		Handle:                         integration.Handle(listing.Title),
		Variants:                       variants,
		Options:                        options,
		Metafields:                     metafields,
		MetafieldsGlobalTitleTag:       listing.Title,
		MetafieldsGlobalDescriptionTag: listing.MetaDescription(a.branding),
	}
}

// GetProduct retrieves a product with its variants
func (a *ShopifyAdapter) GetProduct(ctx context.Context, ownerID uuid.UUID, remoteID string) (*integration.RemoteProduct, error) {
	config, err := a.getOwnerConfig(ownerID)
	if err != nil {
		return nil, err
	}
	if err := validateNumericID(remoteID); err != nil {
		return nil, err
	}

	var resp ShopifyProductEnvelope
	if err := a.call(ctx, config, "get_product", http.MethodGet, "/products/"+remoteID+".json", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Product.ID == 0 {
		return nil, integration.ErrRemoteProductNotFound
	}
	return resp.Product.toRemoteProduct(), nil
}

// UpdateProduct applies the patch. A price change is written to the first variant, whose ID is
// looked up with a preceding GET.
func (a *ShopifyAdapter) UpdateProduct(ctx context.Context, ownerID uuid.UUID, remoteID string, patch integration.ProductPatch) (*integration.RemoteProduct, error) {
	config, err := a.getOwnerConfig(ownerID)
	if err != nil {
		return nil, err
	}
	id, err := parseNumericID(remoteID)
	if err != nil {
		return nil, err
	}

	product := ShopifyProduct{ID: id}
	if patch.Title != nil {
		product.Title = *patch.Title
	}
	if patch.Status != nil {
		product.Status = *patch.Status
	}
	if patch.Vendor != nil {
		product.Vendor = *patch.Vendor
	}
	if patch.ProductType != nil {
		product.ProductType = *patch.ProductType
	}
	if patch.Tags != nil {
		product.Tags = *patch.Tags
	}

	if patch.Price != nil || patch.SKU != nil {
		current, err := a.GetProduct(ctx, ownerID, remoteID)
		if err != nil {
			return nil, err
		}
		first, ok := current.FirstVariant()
		if !ok {
			return nil, integration.ErrRemoteProductNoVariant
		}
		variantID, err := parseNumericID(first.ID)
		if err != nil {
			return nil, err
		}
		variant := ShopifyVariant{ID: variantID}
		if patch.Price != nil {
			variant.Price = patch.Price.StringFixed(2)
		}
		if patch.SKU != nil {
			variant.SKU = *patch.SKU
		}
		product.Variants = []ShopifyVariant{variant}
	}

	var resp ShopifyProductEnvelope
	err = a.call(ctx, config, "update_product", http.MethodPut, "/products/"+remoteID+".json",
		ShopifyProductEnvelope{Product: product}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Product.ID == 0 {
		return nil, fmt.Errorf("%w: response missing product", integration.ErrPlatformInvalidResponse)
	}
	return resp.Product.toRemoteProduct(), nil
}

// DeleteProduct deletes a product
func (a *ShopifyAdapter) DeleteProduct(ctx context.Context, ownerID uuid.UUID, remoteID string) error {
	config, err := a.getOwnerConfig(ownerID)
	if err != nil {
		return err
	}
	if err := validateNumericID(remoteID); err != nil {
		return err
	}
	return a.call(ctx, config, "delete_product", http.MethodDelete, "/products/"+remoteID+".json", nil, nil)
}

// ListProducts returns the first page of products
func (a *ShopifyAdapter) ListProducts(ctx context.Context, ownerID uuid.UUID) ([]integration.RemoteProduct, error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprint(shopifyListLimit))
	return a.listProducts(ctx, ownerID, "list_products", query)
}

// SearchProducts returns products filtered by title
func (a *ShopifyAdapter) SearchProducts(ctx context.Context, ownerID uuid.UUID, query string) ([]integration.RemoteProduct, error) {
	params := url.Values{}
	params.Set("title", query)
	return a.listProducts(ctx, ownerID, "search_products", params)
}

func (a *ShopifyAdapter) listProducts(ctx context.Context, ownerID uuid.UUID, operation string, query url.Values) ([]integration.RemoteProduct, error) {
	config, err := a.getOwnerConfig(ownerID)
	if err != nil {
		return nil, err
	}

	var resp ShopifyProductsEnvelope
	if err := a.call(ctx, config, operation, http.MethodGet, "/products.json?"+query.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	products := make([]integration.RemoteProduct, 0, len(resp.Products))
	for i := range resp.Products {
		products = append(products, *resp.Products[i].toRemoteProduct())
	}
	return products, nil
}

// ---------------------------------------------------------------------------
// Inventory Operations
// ---------------------------------------------------------------------------

// ResolveLocation returns the configured location, else the first active location
func (a *ShopifyAdapter) ResolveLocation(ctx context.Context, ownerID uuid.UUID) (string, error) {
	config, err := a.getOwnerConfig(ownerID)
	if err != nil {
		return "", err
	}
	if config.LocationID != "" {
		return config.LocationID, nil
	}

	var resp ShopifyLocationsEnvelope
	if err := a.call(ctx, config, "list_locations", http.MethodGet, "/locations.json", nil, &resp); err != nil {
		return "", err
	}
	for _, loc := range resp.Locations {
		if loc.ID != 0 && loc.IsActive() {
			return formatID(loc.ID), nil
		}
	}
	return "", integration.ErrNoInventoryLocation
}

// SetInventory sets the available quantity of each inventory item at the location.
// Every level is attempted; failures are joined.
func (a *ShopifyAdapter) SetInventory(ctx context.Context, ownerID uuid.UUID, locationID string, levels []integration.InventoryLevel) error {
	config, err := a.getOwnerConfig(ownerID)
	if err != nil {
		return err
	}
	location, err := parseNumericID(locationID)
	if err != nil {
		return fmt.Errorf("%w: location %q", integration.ErrNoInventoryLocation, locationID)
	}

	var errs []error
	for _, level := range levels {
		itemID, err := parseNumericID(level.InventoryItemID)
		if err != nil {
			errs = append(errs, fmt.Errorf("variant %s: missing inventory item: %w", level.VariantID, err))
			continue
		}
		body := ShopifyInventoryLevelSet{
			LocationID:      location,
			InventoryItemID: itemID,
			Available:       level.Available,
		}
		if err := a.call(ctx, config, "set_inventory", http.MethodPost, "/inventory_levels/set.json", body, nil); err != nil {
			errs = append(errs, fmt.Errorf("inventory item %d: %w", itemID, err))
		}
	}
	return errors.Join(errs...)
}

// ---------------------------------------------------------------------------
// Media and channel Operations
// ---------------------------------------------------------------------------

// UploadImages uploads images one at a time as base64 attachments
func (a *ShopifyAdapter) UploadImages(ctx context.Context, ownerID uuid.UUID, remoteID string, images []integration.ImageUpload) (int, error) {
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
		payload, err := img.Base64Payload()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		body := ShopifyImageEnvelope{Image: ShopifyImage{
			Attachment: payload,
			Filename:   img.Filename,
			Position:   img.Position,
		}}
		if err := a.call(ctx, config, "upload_image", http.MethodPost, "/products/"+remoteID+"/images.json", body, nil); err != nil {
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

// Publish lists the product on the Online Store sales channel
func (a *ShopifyAdapter) Publish(ctx context.Context, ownerID uuid.UUID, remoteID string) error {
	config, err := a.getOwnerConfig(ownerID)
	if err != nil {
		return err
	}
	productID, err := parseNumericID(remoteID)
	if err != nil {
		return err
	}

	var pubs ShopifyPublicationsEnvelope
	if err := a.call(ctx, config, "list_publications", http.MethodGet, "/publications.json", nil, &pubs); err != nil {
		return err
	}

	var publicationID int64
	for _, p := range pubs.Publications {
		if isOnlineStore(p) {
			publicationID = p.ID
			break
		}
	}
	if publicationID == 0 {
		return integration.ErrPublicationNotFound
	}

	body := map[string]int64{"product_id": productID}
	path := fmt.Sprintf("/publications/%d/listings.json", publicationID)
	return a.call(ctx, config, "publish_product", http.MethodPost, path, body, nil)
}

// isOnlineStore matches the publication name, falling back to the channel handle
func isOnlineStore(p ShopifyPublication) bool {
	label := p.Name
	if label == "" && p.Channel != nil {
		label = p.Channel.Handle
	}
	label = strings.ReplaceAll(strings.ToLower(label), "_", " ")
	return strings.Contains(label, "online store")
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (a *ShopifyAdapter) call(ctx context.Context, config *ShopifyConfig, operation, method, path string, body, out any) error {
	return a.client.doJSON(ctx, apiRequest{
		operation: operation,
		method:    method,
		url:       config.BaseURL() + path,
		headers:   map[string]string{shopifyAccessTokenHeader: config.AccessToken},
		body:      body,
		timeout:   timeoutOf(config.TimeoutSeconds),
	}, out)
}

func boolPtr(b bool) *bool {
	return &b
}

func float64Ptr(f float64) *float64 {
	return &f
}

// Ensure ShopifyAdapter implements Storefront
var _ integration.Storefront = (*ShopifyAdapter)(nil)
