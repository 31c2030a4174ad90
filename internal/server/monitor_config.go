package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	monitoringdomain "github.com/sitepulse/sitepulse/internal/monitoring/domain"
)

type upsertConfigRequest struct {
	WebsiteID          string         `json:"websiteId"`
	Enabled            bool           `json:"enabled"`
	Frequency          string         `json:"frequency"`
	AlertThreshold     int            `json:"alertThreshold"`
	Metrics            []string       `json:"metrics"`
	Thresholds         map[string]int `json:"thresholds"`
	EmailNotifications *bool          `json:"emailNotifications"`
	SlackWebhook       *string        `json:"slackWebhook"`
}

// GET /api/monitor/config?websiteId= returns the stored config, or the
// documented default when the pair was never configured.
func (s *Server) GetMonitorConfig(c *gin.Context) {
	cfg, err := s.configSvc.Get(c.Request.Context(), monitoringdomain.GetConfigRequest{
		WebsiteID: c.Query("websiteId"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// POST /api/monitor/config
func (s *Server) UpsertMonitorConfig(c *gin.Context) {
	var req upsertConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newBadRequest("Request body must be valid JSON"))
		return
	}

	emailNotifications := true
	if req.EmailNotifications != nil {
		emailNotifications = *req.EmailNotifications
	}

	_, err := s.configSvc.Upsert(c.Request.Context(), monitoringdomain.UpsertConfigRequest{
		WebsiteID:          req.WebsiteID,
		Enabled:            req.Enabled,
		Frequency:          req.Frequency,
		AlertThreshold:     req.AlertThreshold,
		Metrics:            req.Metrics,
		Thresholds:         req.Thresholds,
		EmailNotifications: emailNotifications,
		SlackWebhook:       req.SlackWebhook,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DELETE /api/monitor/config?websiteId= disables monitoring; the row and
// its thresholds are kept.
func (s *Server) DisableMonitorConfig(c *gin.Context) {
	_, err := s.configSvc.Disable(c.Request.Context(), monitoringdomain.DisableConfigRequest{
		WebsiteID: c.Query("websiteId"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
