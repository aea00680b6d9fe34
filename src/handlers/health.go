package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khabaroff/metrology-license-registry/src/logging"
)

// ServiceName and Version are reported by the info endpoint
const (
	ServiceName = "metrology-license-registry"
	Version     = "1.0.0"
)

var startTime = time.Now()

// HealthChecker reports whether the database is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db HealthChecker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db HealthChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

// HandleHealth returns health status with DB check
func (hh *HealthHandler) HandleHealth(c *gin.Context) {
	start := time.Now()
	err := hh.db.Health(c.Request.Context())
	dbLatency := time.Since(start)

	if err != nil {
		logging.FromContext(c.Request.Context()).Warn().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"database":   "connected",
		"db_latency": dbLatency.String(),
		"uptime":     time.Since(startTime).String(),
	})
}

// HandleInfo returns service information
func (hh *HealthHandler) HandleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": ServiceName,
		"version": Version,
		"status":  "running",
		"uptime":  time.Since(startTime).String(),
	})
}

// HandleReady returns readiness status for load balancers
func (hh *HealthHandler) HandleReady(c *gin.Context) {
	if err := hh.db.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}
