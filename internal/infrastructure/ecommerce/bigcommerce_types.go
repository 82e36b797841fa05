package ecommerce

import (
	"time"

	"github.com/invsync/backend/internal/domain/integration"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// BigCommerce catalog wire types
// ---------------------------------------------------------------------------

// BigCommerceProductEnvelope wraps a single product response
type BigCommerceProductEnvelope struct {
	Data BigCommerceProduct `json:"data"`
}

// BigCommerceProductsEnvelope wraps a product list response
type BigCommerceProductsEnvelope struct {
	Data []BigCommerceProduct `json:"data"`
}

// BigCommerceProduct is a catalog product
type BigCommerceProduct struct {
	ID                    int64                `json:"id,omitempty"`
	Name                  string               `json:"name,omitempty"`
	Type                  string               `json:"type,omitempty"`
	SKU                   string               `json:"sku,omitempty"`
	Description           string               `json:"description,omitempty"`
	Price                 *float64             `json:"price,omitempty"`
	Weight                *float64             `json:"weight,omitempty"`
	IsVisible             *bool                `json:"is_visible,omitempty"`
	IsFeatured            *bool                `json:"is_featured,omitempty"`
	InventoryLevel        *int                 `json:"inventory_level,omitempty"`
	InventoryWarningLevel *int                 `json:"inventory_warning_level,omitempty"`
	InventoryTracking     string               `json:"inventory_tracking,omitempty"`
	Categories            *[]int               `json:"categories,omitempty"`
	BrandID               *int                 `json:"brand_id,omitempty"`
	MetaKeywords          []string             `json:"meta_keywords,omitempty"`
	MetaDescription       string               `json:"meta_description,omitempty"`
	PageTitle             string               `json:"page_title,omitempty"`
	Variants              []BigCommerceVariant `json:"variants,omitempty"`
	DateCreated           *time.Time           `json:"date_created,omitempty"`
	DateModified          *time.Time           `json:"date_modified,omitempty"`
}

// BigCommerceVariant is a product variant
type BigCommerceVariant struct {
	ID                    int64                    `json:"id,omitempty"`
	ProductID             int64                    `json:"product_id,omitempty"`
	SKU                   string                   `json:"sku,omitempty"`
	Price                 *float64                 `json:"price,omitempty"`
	Weight                *float64                 `json:"weight,omitempty"`
	InventoryLevel        *int                     `json:"inventory_level,omitempty"`
	InventoryWarningLevel *int                     `json:"inventory_warning_level,omitempty"`
	OptionValues          []BigCommerceOptionValue `json:"option_values,omitempty"`
}

// BigCommerceOptionValue labels a variant on one option
type BigCommerceOptionValue struct {
	ID                int64  `json:"id,omitempty"`
	OptionID          int64  `json:"option_id,omitempty"`
	OptionDisplayName string `json:"option_display_name,omitempty"`
	Label             string `json:"label"`
}

// BigCommerceImage is a product image referenced by URL
type BigCommerceImage struct {
	ID          int64  `json:"id,omitempty"`
	ImageURL    string `json:"image_url"`
	IsThumbnail bool   `json:"is_thumbnail"`
	SortOrder   int    `json:"sort_order,omitempty"`
}

// ---------------------------------------------------------------------------
// Inventory wire types
// ---------------------------------------------------------------------------

// BigCommerceLocationsEnvelope is the response of GET /inventory/locations
type BigCommerceLocationsEnvelope struct {
	Data []BigCommerceLocation `json:"data"`
}

// BigCommerceLocation is an inventory location
type BigCommerceLocation struct {
	ID      int64  `json:"id"`
	Label   string `json:"label"`
	Enabled *bool  `json:"enabled,omitempty"`
}

// IsActive treats a missing enabled flag as active
func (l BigCommerceLocation) IsActive() bool {
	return l.Enabled == nil || *l.Enabled
}

// BigCommerceInventoryAdjustment is the body of PUT /inventory/adjustments/absolute
type BigCommerceInventoryAdjustment struct {
	Reason string                     `json:"reason,omitempty"`
	Items  []BigCommerceInventoryItem `json:"items"`
}

// BigCommerceInventoryItem sets the quantity of a product or variant at a location
type BigCommerceInventoryItem struct {
	LocationID int64 `json:"location_id"`
	ProductID  int64 `json:"product_id,omitempty"`
	VariantID  int64 `json:"variant_id,omitempty"`
	Quantity   int   `json:"quantity"`
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

// toRemoteProduct normalizes a BigCommerce product
func (p *BigCommerceProduct) toRemoteProduct() *integration.RemoteProduct {
	remote := &integration.RemoteProduct{
		Platform:    integration.PlatformCodeBigCommerce,
		ID:          formatID(p.ID),
		Title:       p.Name,
		SKU:         p.SKU,
		Status:      visibilityStatus(p.IsVisible),
		Price:       floatDecimal(p.Price),
		Quantity:    intValue(p.InventoryLevel),
		ProductType: p.Type,
		Weight:      floatValue(p.Weight),
		BrandID:     intValue(p.BrandID),
		CreatedAt:   p.DateCreated,
		UpdatedAt:   p.DateModified,
		Variants:    make([]integration.RemoteVariant, 0, len(p.Variants)),
	}
	if p.Categories != nil {
		remote.Categories = *p.Categories
	}
	for _, v := range p.Variants {
		remote.Variants = append(remote.Variants, integration.RemoteVariant{
			ID:       formatID(v.ID),
			SKU:      v.SKU,
			Title:    variantTitle(v.OptionValues),
			Price:    floatDecimal(v.Price),
			Quantity: intValue(v.InventoryLevel),
		})
	}
	return remote
}

// visibilityStatus maps is_visible to the active/draft vocabulary
func visibilityStatus(visible *bool) string {
	if visible != nil && *visible {
		return "active"
	}
	return "draft"
}

func variantTitle(values []BigCommerceOptionValue) string {
	title := ""
	for i, v := range values {
		if i > 0 {
			title += " / "
		}
		title += v.Label
	}
	return title
}

func floatDecimal(f *float64) decimal.Decimal {
	if f == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*f)
}

func floatValue(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func intValue(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

func intPtr(i int) *int {
	return &i
}
