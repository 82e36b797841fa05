package ecommerce

import (
	"strconv"
	"time"

	"github.com/invsync/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Shopify product wire types
// ---------------------------------------------------------------------------

// ShopifyProductEnvelope wraps a single product in requests and responses
type ShopifyProductEnvelope struct {
	Product ShopifyProduct `json:"product"`
}

// ShopifyProductsEnvelope wraps a product list response
type ShopifyProductsEnvelope struct {
	Products []ShopifyProduct `json:"products"`
}

// ShopifyProduct is a product resource of the Admin REST API
type ShopifyProduct struct {
	ID                             int64              `json:"id,omitempty"`
	Title                          string             `json:"title,omitempty"`
	BodyHTML                       string             `json:"body_html,omitempty"`
	Vendor                         string             `json:"vendor,omitempty"`
	ProductType                    string             `json:"product_type,omitempty"`
	Status                         string             `json:"status,omitempty"`
	Tags                           string             `json:"tags,omitempty"`
	Handle                         string             `json:"handle,omitempty"`
	Variants                       []ShopifyVariant   `json:"variants,omitempty"`
	Options                        []ShopifyOption    `json:"options,omitempty"`
	Metafields                     []ShopifyMetafield `json:"metafields,omitempty"`
	MetafieldsGlobalTitleTag       string             `json:"metafields_global_title_tag,omitempty"`
	MetafieldsGlobalDescriptionTag string             `json:"metafields_global_description_tag,omitempty"`
	CreatedAt                      *time.Time         `json:"created_at,omitempty"`
	UpdatedAt                      *time.Time         `json:"updated_at,omitempty"`
}

// ShopifyVariant is a product variant resource
type ShopifyVariant struct {
	ID                  int64    `json:"id,omitempty"`
	ProductID           int64    `json:"product_id,omitempty"`
	Title               string   `json:"title,omitempty"`
	Option1             string   `json:"option1,omitempty"`
	Option2             string   `json:"option2,omitempty"`
	Price               string   `json:"price,omitempty"`
	SKU                 string   `json:"sku,omitempty"`
	Barcode             string   `json:"barcode,omitempty"`
	InventoryManagement string   `json:"inventory_management,omitempty"`
	InventoryPolicy     string   `json:"inventory_policy,omitempty"`
	InventoryItemID     int64    `json:"inventory_item_id,omitempty"`
	InventoryQuantity   int      `json:"inventory_quantity,omitempty"`
	RequiresShipping    *bool    `json:"requires_shipping,omitempty"`
	Taxable             *bool    `json:"taxable,omitempty"`
	Weight              *float64 `json:"weight,omitempty"`
	WeightUnit          string   `json:"weight_unit,omitempty"`
}

// ShopifyOption is a product option with its values
type ShopifyOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// ShopifyMetafield is a custom field attached to a product
type ShopifyMetafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

// ShopifyImageEnvelope wraps an image upload
type ShopifyImageEnvelope struct {
	Image ShopifyImage `json:"image"`
}

// ShopifyImage is a product image uploaded as a base64 attachment
type ShopifyImage struct {
	ID         int64  `json:"id,omitempty"`
	Attachment string `json:"attachment,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Position   int    `json:"position,omitempty"`
}

// ---------------------------------------------------------------------------
// Inventory, location and publication wire types
// ---------------------------------------------------------------------------

// ShopifyLocationsEnvelope is the response of GET /locations.json
type ShopifyLocationsEnvelope struct {
	Locations []ShopifyLocation `json:"locations"`
}

// ShopifyLocation is a fulfillment location
type ShopifyLocation struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active *bool  `json:"active,omitempty"`
}

// IsActive treats a missing active flag as active
func (l ShopifyLocation) IsActive() bool {
	return l.Active == nil || *l.Active
}

// ShopifyInventoryLevelSet is the body of POST /inventory_levels/set.json
type ShopifyInventoryLevelSet struct {
	LocationID      int64 `json:"location_id"`
	InventoryItemID int64 `json:"inventory_item_id"`
	Available       int   `json:"available"`
}

// ShopifyPublicationsEnvelope is the response of GET /publications.json
type ShopifyPublicationsEnvelope struct {
	Publications []ShopifyPublication `json:"publications"`
}

// ShopifyPublication is a sales channel publication
type ShopifyPublication struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Channel *struct {
		Handle string `json:"handle"`
	} `json:"channel,omitempty"`
}

// ShopifyProductListingEnvelope is the body of POST /publications/{id}/listings.json
type ShopifyProductListingEnvelope struct {
	ProductListing struct {
		ProductID int64 `json:"product_id"`
	} `json:"product_listing"`
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

// toRemoteProduct normalizes a Shopify product. Price and quantity come from the first variant.
func (p *ShopifyProduct) toRemoteProduct() *integration.RemoteProduct {
	remote := &integration.RemoteProduct{
		Platform:    integration.PlatformCodeShopify,
		ID:          formatID(p.ID),
		Title:       p.Title,
		Handle:      p.Handle,
		Status:      p.Status,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		Tags:        p.Tags,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Variants:    make([]integration.RemoteVariant, 0, len(p.Variants)),
	}
	for _, v := range p.Variants {
		remote.Variants = append(remote.Variants, integration.RemoteVariant{
			ID:              formatID(v.ID),
			SKU:             v.SKU,
			Title:           v.Title,
			Price:           ParseDecimal(v.Price),
			Quantity:        v.InventoryQuantity,
			InventoryItemID: formatID(v.InventoryItemID),
		})
	}
	if first, ok := remote.FirstVariant(); ok {
		remote.SKU = first.SKU
		remote.Price = first.Price
		remote.Quantity = first.Quantity
	}
	return remote
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
