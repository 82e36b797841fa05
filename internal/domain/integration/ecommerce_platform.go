package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Storefront Errors
// ---------------------------------------------------------------------------

var (
	ErrPlatformNotConfigured   = errors.New("integration: platform not configured")
	ErrPlatformUnavailable     = errors.New("integration: platform temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	ErrPlatformAuthFailed      = errors.New("integration: platform authentication failed")
	ErrPlatformRateLimited     = errors.New("integration: platform rate limited")

	ErrRemoteProductNotFound  = errors.New("integration: remote product not found")
	ErrRemoteProductNoVariant = errors.New("integration: remote product has no variants")
	ErrNoInventoryLocation    = errors.New("integration: no inventory location available")
	ErrPublicationNotFound    = errors.New("integration: online store publication not found")
	ErrInvalidImagePayload    = errors.New("integration: invalid image payload")
)

// ---------------------------------------------------------------------------
// PlatformCode
// ---------------------------------------------------------------------------

// PlatformCode identifies a storefront platform
type PlatformCode string

const (
	PlatformCodeShopify     PlatformCode = "SHOPIFY"
	PlatformCodeBigCommerce PlatformCode = "BIGCOMMERCE"
)

// AllPlatformCodes returns the supported platforms in the order sync operations visit them
func AllPlatformCodes() []PlatformCode {
	return []PlatformCode{PlatformCodeShopify, PlatformCodeBigCommerce}
}

// IsValid returns true if the platform code is supported
func (c PlatformCode) IsValid() bool {
	switch c {
	case PlatformCodeShopify, PlatformCodeBigCommerce:
		return true
	}
	return false
}

// String returns the string representation
func (c PlatformCode) String() string {
	return string(c)
}

// DisplayName returns the human readable platform name
func (c PlatformCode) DisplayName() string {
	switch c {
	case PlatformCodeShopify:
		return "Shopify"
	case PlatformCodeBigCommerce:
		return "BigCommerce"
	default:
		return string(c)
	}
}

// ---------------------------------------------------------------------------
// Stages and adapter errors
// ---------------------------------------------------------------------------

// Stage names one step of a platform interaction
type Stage string

const (
	StageCreate    Stage = "create"
	StageLink      Stage = "link"
	StageImages    Stage = "images"
	StageInventory Stage = "inventory"
	StagePublish   Stage = "publish"
	StageAutoLink  Stage = "auto_link"
	StageLocation  Stage = "location"
	StageUpdate    Stage = "update"
	StageDelete    Stage = "delete"
	StageList      Stage = "list"
)

// AdapterError is a failure of one platform at one stage.
// It unwraps to the platform sentinel (ErrPlatformUnavailable, ErrPlatformRequestFailed, ...).
type AdapterError struct {
	Platform PlatformCode
	Stage    Stage
	Err      error
}

// NewAdapterError wraps err, returning nil when err is nil
func NewAdapterError(platform PlatformCode, stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var existing *AdapterError
	if errors.As(err, &existing) && existing.Platform == platform && existing.Stage == stage {
		return err
	}
	return &AdapterError{Platform: platform, Stage: stage, Err: err}
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Platform.DisplayName(), e.Stage, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// ---------------------------------------------------------------------------
// Remote product (mirror) types
// ---------------------------------------------------------------------------

// RemoteVariant is one variant of a remote product
type RemoteVariant struct {
	ID              string          `json:"id"`
	SKU             string          `json:"sku,omitempty"`
	Title           string          `json:"title,omitempty"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int             `json:"quantity"`
	InventoryItemID string          `json:"inventoryItemId,omitempty"`
}

// RemoteProduct is the normalized representation of a product on a storefront platform
type RemoteProduct struct {
	Platform    PlatformCode    `json:"platform"`
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Handle      string          `json:"handle,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	Status      string          `json:"status,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Vendor      string          `json:"vendor,omitempty"`
	ProductType string          `json:"productType,omitempty"`
	Tags        string          `json:"tags,omitempty"`
	Weight      float64         `json:"weight,omitempty"`
	BrandID     int             `json:"brandId,omitempty"`
	Categories  []int           `json:"categories,omitempty"`
	Variants    []RemoteVariant `json:"variants,omitempty"`
	CreatedAt   *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
}

// FirstVariant returns the first remote variant
func (p *RemoteProduct) FirstVariant() (RemoteVariant, bool) {
	if p == nil || len(p.Variants) == 0 {
		return RemoteVariant{}, false
	}
	return p.Variants[0], true
}

// ProductPatch is a partial update of a remote product; nil means "leave unchanged"
type ProductPatch struct {
	Title       *string
	Price       *decimal.Decimal
	Status      *string
	Vendor      *string
	ProductType *string
	Tags        *string
	SKU         *string
	Weight      *float64
	BrandID     *int
}

// IsEmpty reports whether the patch changes nothing
func (p ProductPatch) IsEmpty() bool {
	return p.Title == nil && p.Price == nil && p.Status == nil && p.Vendor == nil &&
		p.ProductType == nil && p.Tags == nil && p.SKU == nil && p.Weight == nil && p.BrandID == nil
}

// InventoryLevel sets the available quantity of one product or variant at a location.
// Shopify addresses the level by InventoryItemID, BigCommerce by ProductID/VariantID.
type InventoryLevel struct {
	ProductID       string
	VariantID       string
	InventoryItemID string
	Available       int
}

// ---------------------------------------------------------------------------
// Storefront Port Interface
// ---------------------------------------------------------------------------

// MatchPolicy decides which search result auto-link accepts
type MatchPolicy int

const (
	// MatchExactTitle accepts only a result whose title equals the product name, case-insensitively
	MatchExactTitle MatchPolicy = iota
	// MatchFirstResult accepts the first result unconditionally
	MatchFirstResult
)

// Capabilities describes the platform-specific shape of the create and link flows
type Capabilities struct {
	// SeparateInventoryOnCreate is true when stock must be set with a follow-up inventory call
	SeparateInventoryOnCreate bool
	// PublishesListing is true when a created product must be published to a sales channel
	PublishesListing bool
	// CatalogInventory is true when stock can be written on the catalog record itself,
	// so SetInventory accepts an empty location when none can be resolved
	CatalogInventory bool
	// SearchByProductCode is true when auto-link searches by product code before the name
	SearchByProductCode bool
	// AutoLinkMatch selects the search result accepted by auto-link
	AutoLinkMatch MatchPolicy
}

// Storefront defines the port interface for a storefront platform.
// Implementations live in the infrastructure layer. Each call is a single attempt
// with its own timeout; callers decide whether a failure is fatal.
type Storefront interface {
	// PlatformCode returns the platform code this adapter handles
	PlatformCode() PlatformCode

	// Capabilities returns the flow shape of this platform
	Capabilities() Capabilities

	// IsEnabled returns true if credentials are configured for the owner
	IsEnabled(ctx context.Context, ownerID uuid.UUID) bool

	// ---------------------------------------------------------------------------
	// Product Operations
	// ---------------------------------------------------------------------------

	CreateProduct(ctx context.Context, ownerID uuid.UUID, listing *Listing) (*RemoteProduct, error)
	GetProduct(ctx context.Context, ownerID uuid.UUID, remoteID string) (*RemoteProduct, error)
	// UpdateProduct applies the patch. Price is written to the first variant on platforms
	// that price variants.
	UpdateProduct(ctx context.Context, ownerID uuid.UUID, remoteID string, patch ProductPatch) (*RemoteProduct, error)
	DeleteProduct(ctx context.Context, ownerID uuid.UUID, remoteID string) error
	ListProducts(ctx context.Context, ownerID uuid.UUID) ([]RemoteProduct, error)
	SearchProducts(ctx context.Context, ownerID uuid.UUID, query string) ([]RemoteProduct, error)

	// ---------------------------------------------------------------------------
	// Inventory, media and channel operations
	// ---------------------------------------------------------------------------

	// ResolveLocation returns the configured location override, else the first active location
	ResolveLocation(ctx context.Context, ownerID uuid.UUID) (string, error)
	SetInventory(ctx context.Context, ownerID uuid.UUID, locationID string, levels []InventoryLevel) error
	// UploadImages uploads sequentially, returning the number uploaded and the joined per-image errors
	UploadImages(ctx context.Context, ownerID uuid.UUID, remoteID string, images []ImageUpload) (int, error)
	Publish(ctx context.Context, ownerID uuid.UUID, remoteID string) error
}
