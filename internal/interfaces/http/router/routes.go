package router

import (
	"github.com/invsync/backend/internal/interfaces/http/handler"
)

// Handlers are the HTTP handlers mounted under the API prefix
type Handlers struct {
	Items       *handler.ItemHandler
	Shopify     *handler.StorefrontHandler
	BigCommerce *handler.StorefrontHandler
	Combos      *handler.ComboHandler
	Health      *handler.HealthHandler
}

// ItemRoutes mounts the local product routes, which mirror to every storefront
func ItemRoutes(h *handler.ItemHandler) *DomainGroup {
	return NewDomainGroup("items", "").
		POST("/add-item", h.AddItem).
		GET("/get-item", h.GetItems).
		PUT("/update-item", h.UpdateItem).
		DELETE("/delete-item/:itemId", h.DeleteItem).
		GET("/all-products", h.GetAllProducts)
}

// StorefrontRoutes mounts a platform pass-through at prefix
func StorefrontRoutes(name, prefix string, h *handler.StorefrontHandler) *DomainGroup {
	return NewDomainGroup(name, prefix).
		GET("", h.List).
		PUT("", h.Update).
		DELETE("/:id", h.Delete)
}

// ComboRoutes mounts combo CRUD
func ComboRoutes(h *handler.ComboHandler) *DomainGroup {
	return NewDomainGroup("combos", "/combos").
		POST("", h.Create).
		GET("", h.List).
		PUT("/:comboId", h.Update).
		DELETE("/:comboId", h.Delete)
}

// registrars returns every configured route group
func (h Handlers) registrars() []RouteRegistrar {
	var out []RouteRegistrar
	if h.Items != nil {
		out = append(out, ItemRoutes(h.Items))
	}
	if h.Shopify != nil {
		out = append(out, StorefrontRoutes("shopify", "/all-products/shopify", h.Shopify))
	}
	if h.BigCommerce != nil {
		out = append(out, StorefrontRoutes("bigcommerce", "/bigcommerce", h.BigCommerce))
	}
	if h.Combos != nil {
		out = append(out, ComboRoutes(h.Combos))
	}
	if h.Health != nil {
		out = append(out, NewDomainGroup("health", "/health").GET("", h.Health.Check))
	}
	return out
}
