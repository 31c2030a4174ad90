package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	alertdomain "github.com/sitepulse/sitepulse/internal/alert/domain"
)

type markAlertsReadRequest struct {
	AlertIDs  []string `json:"alertIds"`
	WebsiteID string   `json:"websiteId"`
}

// GET /api/monitor/alerts?websiteId=&unreadOnly=&limit=&offset=
func (s *Server) GetMonitorAlerts(c *gin.Context) {
	page, err := parsePagination(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.alertSvc.List(c.Request.Context(), alertdomain.ListAlertsRequest{
		WebsiteID:  c.Query("websiteId"),
		UnreadOnly: parseBoolQuery(c, "unreadOnly"),
		Pagination: page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// POST /api/monitor/alerts marks the given alerts read. Partial matches
// mutate nothing and report a conflict.
func (s *Server) MarkMonitorAlertsRead(c *gin.Context) {
	var req markAlertsReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newBadRequest("Request body must be valid JSON"))
		return
	}

	err := s.alertSvc.MarkRead(c.Request.Context(), alertdomain.MarkAlertsReadRequest{
		WebsiteID: req.WebsiteID,
		AlertIDs:  req.AlertIDs,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Alerts marked as read",
	})
}
