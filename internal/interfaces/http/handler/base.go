// Package handler contains the HTTP handlers of the sync API.
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/integration"
	"github.com/invsync/backend/internal/domain/shared"
	"github.com/invsync/backend/internal/infrastructure/logger"
	"github.com/invsync/backend/internal/interfaces/http/dto"
	"github.com/invsync/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Respond sends a success envelope with the given status
func (h *BaseHandler) Respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, dto.NewSuccessResponse(message, data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, logger.GetGinRequestID(c)))
}

// Forbidden sends a 403 forbidden response
func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
}

// HandleError maps an application error to its HTTP response.
// Domain errors carry their own code; store and platform failures are 500s.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	log := logger.GetGinLogger(c)

	var adapterErr *integration.AdapterError
	if errors.As(err, &adapterErr) {
		log.Error("Storefront request failed",
			zap.String("platform", adapterErr.Platform.String()),
			zap.String("stage", string(adapterErr.Stage)),
			zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.ErrCodePlatformRequest, err.Error())
		return
	}

	var persistenceErr *shared.PersistenceError
	if errors.As(err, &persistenceErr) {
		log.Error("Local store failure", zap.String("op", persistenceErr.Op), zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Server error")
		return
	}

	log.Error("Unhandled error", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// authorizeOwner enforces that an authenticated caller only acts on its own data.
// It passes when authentication is off or the requested owner is not a valid id
// (the service rejects those itself), and answers 403 on a mismatch.
func (h *BaseHandler) authorizeOwner(c *gin.Context, requested string) bool {
	authenticated, ok := middleware.GetAuthenticatedOwner(c)
	if !ok {
		return true
	}
	requestedID, err := uuid.Parse(strings.TrimSpace(requested))
	if err != nil {
		return true
	}
	if requestedID != authenticated {
		logger.GetGinLogger(c).Warn("Owner mismatch",
			zap.String("owner_id", authenticated.String()),
			zap.String("requested_owner_id", requestedID.String()))
		h.Forbidden(c, "You may only access your own items")
		return false
	}
	return true
}

// optionalOwner parses the userId query parameter of endpoints where it is optional.
// Absent means uuid.Nil, which selects the default platform credentials.
func (h *BaseHandler) optionalOwner(c *gin.Context) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query("userId"))
	if raw == "" {
		if owner, ok := middleware.GetAuthenticatedOwner(c); ok {
			return owner, true
		}
		return uuid.Nil, true
	}
	id, err := shared.ParseOwnerID(raw)
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, false
	}
	if !h.authorizeOwner(c, raw) {
		return uuid.Nil, false
	}
	return id, true
}
