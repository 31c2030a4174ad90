package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	websitedomain "github.com/sitepulse/sitepulse/internal/website/domain"
)

type createWebsiteRequest struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

func (s *Server) ListWebsites(c *gin.Context) {
	websites, err := s.websiteSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"websites": websites})
}

func (s *Server) CreateWebsite(c *gin.Context) {
	var req createWebsiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newBadRequest("Request body must be valid JSON"))
		return
	}

	website, err := s.websiteSvc.Create(c.Request.Context(), websitedomain.CreateWebsiteRequest{
		URL:  req.URL,
		Name: req.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, website)
}

func (s *Server) GetWebsiteByID(c *gin.Context) {
	website, err := s.websiteSvc.GetByID(c.Request.Context(), websitedomain.GetWebsiteRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, website)
}
