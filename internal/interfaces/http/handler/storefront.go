package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appintegration "github.com/invsync/backend/internal/application/integration"
	"github.com/invsync/backend/internal/domain/integration"
	"github.com/invsync/backend/internal/infrastructure/logger"
	"github.com/invsync/backend/internal/interfaces/http/dto"
	"github.com/invsync/backend/internal/interfaces/http/middleware"
)

// StorefrontHandler exposes one platform's remote catalog directly.
// One instance is mounted per platform.
type StorefrontHandler struct {
	BaseHandler
	storefronts *appintegration.StorefrontService
	platform    integration.PlatformCode
}

// NewStorefrontHandler creates a StorefrontHandler for platform
func NewStorefrontHandler(storefronts *appintegration.StorefrontService, platform integration.PlatformCode) *StorefrontHandler {
	return &StorefrontHandler{storefronts: storefronts, platform: platform}
}

// List godoc
// GET /api/all-products/shopify, GET /api/bigcommerce
// Always answers 200; a failed listing is reported with success=false and an empty list.
func (h *StorefrontHandler) List(c *gin.Context) {
	ownerID, ok := h.optionalOwner(c)
	if !ok {
		return
	}

	result := h.storefronts.List(c.Request.Context(), h.platform, ownerID)
	products := result.Products
	if products == nil {
		products = []integration.RemoteProduct{}
	}

	resp := dto.Response{
		Success: result.Success,
		Message: result.Message,
		Data:    dto.ProductsData{Products: products},
	}
	if !result.Success {
		resp.Error = &dto.ErrorInfo{
			Code:      dto.ErrCodePlatformRequest,
			Message:   result.Error,
			RequestID: logger.GetGinRequestID(c),
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// PUT /api/all-products/shopify, PUT /api/bigcommerce
func (h *StorefrontHandler) Update(c *gin.Context) {
	ownerID, ok := h.optionalOwner(c)
	if !ok {
		return
	}

	body := h.updateBody()
	if err := c.ShouldBindJSON(body); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}
	req, err := body.toUpdateRequest()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	product, err := h.storefronts.Update(c.Request.Context(), h.platform, ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, h.platform.DisplayName()+" product updated successfully", dto.ProductData{Product: product})
}

// Delete godoc
// DELETE /api/all-products/shopify/:id, DELETE /api/bigcommerce/:id
func (h *StorefrontHandler) Delete(c *gin.Context) {
	ownerID, ok := h.optionalOwner(c)
	if !ok {
		return
	}

	if err := h.storefronts.Delete(c.Request.Context(), h.platform, ownerID, c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, h.platform.DisplayName()+" product deleted successfully", nil)
}

func (h *StorefrontHandler) updateBody() storefrontUpdateBody {
	if h.platform == integration.PlatformCodeBigCommerce {
		return &BigCommerceUpdateRequest{}
	}
	return &ShopifyUpdateRequest{}
}
