package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/invsync/backend/internal/application/catalog"
	"github.com/invsync/backend/internal/interfaces/http/dto"
	"github.com/invsync/backend/internal/interfaces/http/middleware"
)

// ComboHandler handles combo-related API endpoints
type ComboHandler struct {
	BaseHandler
	combos *catalogapp.ComboService
}

// NewComboHandler creates a new ComboHandler
func NewComboHandler(combos *catalogapp.ComboService) *ComboHandler {
	return &ComboHandler{combos: combos}
}

// Create godoc
// POST /api/combos
func (h *ComboHandler) Create(c *gin.Context) {
	var req catalogapp.CreateComboRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}
	if !h.authorizeOwner(c, req.OwnerID) {
		return
	}

	combo, err := h.combos.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Respond(c, http.StatusCreated, "Combo created", combo)
}

// List godoc
// GET /api/combos?userId=
func (h *ComboHandler) List(c *gin.Context) {
	ownerID := c.Query("userId")
	if !h.authorizeOwner(c, ownerID) {
		return
	}

	combos, err := h.combos.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, "", dto.CombosData{Combos: combos})
}

// Update godoc
// PUT /api/combos/:comboId
func (h *ComboHandler) Update(c *gin.Context) {
	var req catalogapp.UpdateComboRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}

	combo, err := h.combos.Update(c.Request.Context(), c.Param("comboId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, "Combo updated", combo)
}

// Delete godoc
// DELETE /api/combos/:comboId
func (h *ComboHandler) Delete(c *gin.Context) {
	combo, err := h.combos.Delete(c.Request.Context(), c.Param("comboId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, "Combo deleted", combo)
}
