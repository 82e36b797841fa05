package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invsync/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Pinger checks a backing store
type Pinger interface {
	Ping() error
}

// HealthHandler reports whether the server and its database are up
type HealthHandler struct {
	db        Pinger
	version   string
	port      int
	startedAt time.Time
}

// NewHealthHandler creates a HealthHandler
func NewHealthHandler(db Pinger, version string, port int) *HealthHandler {
	return &HealthHandler{
		db:        db,
		version:   version,
		port:      port,
		startedAt: time.Now(),
	}
}

// Check godoc
// GET /health, GET /api/health
func (h *HealthHandler) Check(c *gin.Context) {
	body := gin.H{
		"success":   true,
		"message":   "Server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      h.port,
		"version":   h.version,
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
		"database":  "ok",
	}

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			body["success"] = false
			body["message"] = "Database unavailable"
			body["database"] = "error"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}
	c.JSON(http.StatusOK, body)
}
