package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meetflow/internal/database"
)

// @Summary Liveness and database connectivity check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *Handler) HealthCheck(c *gin.Context) {
	if err := database.HealthCheck(h.DB); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
