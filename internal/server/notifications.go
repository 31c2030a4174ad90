package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	notificationdomain "github.com/sitepulse/sitepulse/internal/notification/domain"
)

// GET /api/notifications?limit=&type=&read=
func (s *Server) ListNotifications(c *gin.Context) {
	req := notificationdomain.ListNotificationsRequest{}

	if raw, ok := c.GetQuery("limit"); ok {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			AbortWithError(c, newBadRequest("Limit must be a positive integer"))
			return
		}
		req.Limit = limit
	}
	if raw, ok := c.GetQuery("type"); ok && raw != "" {
		req.Type = &raw
	}
	if raw, ok := c.GetQuery("read"); ok {
		read, err := strconv.ParseBool(raw)
		if err != nil {
			AbortWithError(c, newBadRequest("Read filter must be a boolean"))
			return
		}
		req.Read = &read
	}

	notifications, err := s.notifSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// POST /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *gin.Context) {
	if err := s.notifSvc.MarkAsRead(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *gin.Context) {
	count, err := s.notifSvc.MarkAllAsRead(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": count})
}

// DELETE /api/notifications/:id
func (s *Server) DeleteNotification(c *gin.Context) {
	if err := s.notifSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/notifications/unread-count
func (s *Server) GetUnreadNotificationCount(c *gin.Context) {
	count, err := s.notifSvc.UnreadCount(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
