package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthController serves liveness and health probes.
type HealthController struct{}

// NewHealthController creates a new HealthController.
func NewHealthController() *HealthController {
	return &HealthController{}
}

// Health handles GET /health and GET /healthz.
func (hc *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Live handles GET /livez.
func (hc *HealthController) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"live": true,
	})
}
