package models

import (
	"encoding/json"

	"github.com/invsync/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ItemModel is the persistence model for the local Product entity.
// The table keeps the name of the original item collection.
type ItemModel struct {
	OwnedModel
	ProductCode          string          `gorm:"column:product_id;type:varchar(100);not null;index"`
	VariantName          string          `gorm:"column:variant_name;type:varchar(255);not null"`
	Quantity             int             `gorm:"not null;default:0"`
	Price                decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Category             string          `gorm:"type:varchar(100)"`
	Channel              string          `gorm:"type:varchar(100)"`
	ShopifyProductID     *string         `gorm:"column:shopify_product_id;type:varchar(50);index"`
	BigCommerceProductID *string         `gorm:"column:bigcommerce_product_id;type:varchar(50);index"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ItemModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		OwnedEntity:          m.ToOwnedEntity(),
		ProductCode:          m.ProductCode,
		ExternalName:         m.VariantName,
		Quantity:             m.Quantity,
		Price:                m.Price,
		Category:             m.Category,
		Channel:              m.Channel,
		ShopifyProductID:     m.ShopifyProductID,
		BigCommerceProductID: m.BigCommerceProductID,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ItemModel) FromDomain(p *catalog.Product) {
	m.FromDomainOwnedEntity(p.OwnedEntity)
	m.ProductCode = p.ProductCode
	m.VariantName = p.ExternalName
	m.Quantity = p.Quantity
	m.Price = p.Price
	m.Category = p.Category
	m.Channel = p.Channel
	m.ShopifyProductID = p.ShopifyProductID
	m.BigCommerceProductID = p.BigCommerceProductID
}

// ItemModelFromDomain creates a new persistence model from a domain Product entity.
func ItemModelFromDomain(p *catalog.Product) *ItemModel {
	m := &ItemModel{}
	m.FromDomain(p)
	return m
}

// ComboModel is the persistence model for the Combo domain entity.
// Bundled items are embedded as a JSON array.
type ComboModel struct {
	OwnedModel
	Name        string          `gorm:"type:varchar(255);not null"`
	SKU         string          `gorm:"type:varchar(100)"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Weight      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Image       string          `gorm:"type:text"`
	ItemsJSON   string          `gorm:"column:items;type:jsonb;not null;default:'[]'"`
}

// TableName returns the table name for GORM
func (ComboModel) TableName() string {
	return "combos"
}

// ToDomain converts the persistence model to a domain Combo entity.
// Malformed item JSON yields an empty item list.
func (m *ComboModel) ToDomain() *catalog.Combo {
	combo := &catalog.Combo{
		OwnedEntity: m.ToOwnedEntity(),
		Name:        m.Name,
		SKU:         m.SKU,
		Description: m.Description,
		Price:       m.Price,
		Weight:      m.Weight,
		Image:       m.Image,
		Items:       make([]catalog.ComboItem, 0),
	}
	if m.ItemsJSON != "" {
		var items []catalog.ComboItem
		if err := json.Unmarshal([]byte(m.ItemsJSON), &items); err == nil && items != nil {
			combo.Items = items
		}
	}
	return combo
}

// FromDomain populates the persistence model from a domain Combo entity.
func (m *ComboModel) FromDomain(c *catalog.Combo) {
	m.FromDomainOwnedEntity(c.OwnedEntity)
	m.Name = c.Name
	m.SKU = c.SKU
	m.Description = c.Description
	m.Price = c.Price
	m.Weight = c.Weight
	m.Image = c.Image

	m.ItemsJSON = "[]"
	if len(c.Items) > 0 {
		if data, err := json.Marshal(c.Items); err == nil {
			m.ItemsJSON = string(data)
		}
	}
}

// ComboModelFromDomain creates a new persistence model from a domain Combo entity.
func ComboModelFromDomain(c *catalog.Combo) *ComboModel {
	m := &ComboModel{}
	m.FromDomain(c)
	return m
}
