package handlers

import (
	"context"
	"net/http"
	"time"

	"caa_portal_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// DBPinger is satisfied by *sql.DB.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// CachePinger is satisfied by *cache.OptionsCache.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and readiness.
type HealthHandler struct {
	db    DBPinger
	cache CachePinger // nil when Redis is not configured
}

// NewHealthHandler creates a new HealthHandler. cache may be nil.
func NewHealthHandler(db DBPinger, cache CachePinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Ping is the liveness check.
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health is the readiness check: the database must answer, Redis too when configured.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok"}
	healthy := true

	if err := h.db.PingContext(ctx); err != nil {
		utils.LogError(err, "Health: database ping failed")
		checks["database"] = "unavailable"
		healthy = false
	}
	if h.cache != nil {
		checks["redis"] = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			utils.LogError(err, "Health: redis ping failed")
			checks["redis"] = "unavailable"
			healthy = false
		}
	}

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "checks": checks})
}
