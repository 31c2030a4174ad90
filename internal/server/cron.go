package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// POST /internal/cron/monitoring runs one evaluation batch over the
// monitoring configs that are due. An external scheduler owns the cadence
// and retries.
func (s *Server) RunMonitoringBatch(c *gin.Context) {
	if s.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scheduler not available"})
		return
	}

	processed, err := s.scheduler.RunBatch(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"processed": processed,
	})
}
