package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appintegration "github.com/invsync/backend/internal/application/integration"
	"github.com/invsync/backend/internal/domain/integration"
	"github.com/invsync/backend/internal/interfaces/http/dto"
	"github.com/invsync/backend/internal/interfaces/http/middleware"
)

// ItemHandler serves the local product routes and their platform mirroring
type ItemHandler struct {
	BaseHandler
	sync *appintegration.SyncService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(sync *appintegration.SyncService) *ItemHandler {
	return &ItemHandler{sync: sync}
}

// AddItemData is the data of a successful add-item response. A mirror is null when its
// platform failed or is not configured.
type AddItemData struct {
	Local       *appintegration.ProductResponse `json:"local"`
	Shopify     *integration.RemoteProduct      `json:"shopify"`
	BigCommerce *integration.RemoteProduct      `json:"bigcommerce"`
	Sync        []PlatformSyncStatus            `json:"sync"`
}

// PlatformSyncStatus summarizes what happened on one platform
type PlatformSyncStatus struct {
	Platform string        `json:"platform"`
	Status   string        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Stages   []StageStatus `json:"stages,omitempty"`
}

// StageStatus is the result of one remote stage
type StageStatus struct {
	Stage  string `json:"stage"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

const (
	syncStatusOK      = "ok"
	syncStatusFailed  = "failed"
	syncStatusPartial = "partial"
	syncStatusSkipped = "skipped"
)

func toSyncStatuses(outcomes appintegration.Outcomes) []PlatformSyncStatus {
	statuses := make([]PlatformSyncStatus, 0, len(outcomes))
	for _, o := range outcomes {
		s := PlatformSyncStatus{Platform: o.Platform.String()}
		switch {
		case o.Skipped:
			s.Status = syncStatusSkipped
		case o.Err != nil:
			s.Status = syncStatusFailed
			s.Error = o.Err.Error()
		case o.Failed():
			s.Status = syncStatusPartial
		default:
			s.Status = syncStatusOK
		}
		for _, st := range o.Stages {
			stage := StageStatus{Stage: string(st.Stage), Status: syncStatusOK}
			switch {
			case st.Skipped:
				stage.Status = syncStatusSkipped
			case st.Err != nil:
				stage.Status = syncStatusFailed
				stage.Error = st.Err.Error()
			}
			s.Stages = append(s.Stages, stage)
		}
		statuses = append(statuses, s)
	}
	return statuses
}

// AddItem godoc
// POST /api/add-item
// Saves the item locally, then mirrors it to every configured storefront.
// Storefront failures never fail the request; the matching mirror is null.
func (h *ItemHandler) AddItem(c *gin.Context) {
	var body AddItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}
	if !h.authorizeOwner(c, body.UserID) {
		return
	}

	req, err := body.toCreateRequest()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.sync.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Respond(c, http.StatusCreated, "Item added successfully", AddItemData{
		Local:       result.Product,
		Shopify:     result.Outcomes.Mirror(integration.PlatformCodeShopify),
		BigCommerce: result.Outcomes.Mirror(integration.PlatformCodeBigCommerce),
		Sync:        toSyncStatuses(result.Outcomes),
	})
}

// GetItems godoc
// GET /api/get-item?userId=
func (h *ItemHandler) GetItems(c *gin.Context) {
	ownerID := c.Query("userId")
	if !h.authorizeOwner(c, ownerID) {
		return
	}

	items, err := h.sync.ListProducts(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, "", dto.ItemsData{Items: items})
}

// GetAllProducts godoc
// GET /api/all-products
// Returns every local product regardless of owner.
func (h *ItemHandler) GetAllProducts(c *gin.Context) {
	products, err := h.sync.ListAllProducts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, "", dto.ProductsData{Products: products})
}

// UpdateItem godoc
// PUT /api/update-item
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	var body UpdateItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}

	req, err := body.toUpdateRequest()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	req.ActingOwner, _ = middleware.GetAuthenticatedOwner(c)

	result, err := h.sync.UpdateProduct(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, "Item updated successfully", result.Product)
}

// DeleteItem godoc
// DELETE /api/delete-item/:itemId
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	actingOwner, _ := middleware.GetAuthenticatedOwner(c)
	product, err := h.sync.DeleteProduct(c.Request.Context(), c.Param("itemId"), actingOwner)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, "Item deleted successfully", product)
}
