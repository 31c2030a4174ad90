package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/sitepulse/sitepulse/internal/audit/domain"
)

type ingestAuditRequest struct {
	OverallScore       int `json:"overallScore"`
	SEOScore           int `json:"seoScore"`
	PerformanceScore   int `json:"performanceScore"`
	AccessibilityScore int `json:"accessibilityScore"`
	SecurityScore      int `json:"securityScore"`
	MobileScore        int `json:"mobileScore"`
	ContentScore       int `json:"contentScore"`
}

// POST /api/websites/:id/audits records a pipeline audit snapshot. When the
// website's monitoring config is enabled the ingest also runs threshold
// evaluation.
func (s *Server) IngestAudit(c *gin.Context) {
	var req ingestAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newBadRequest("Request body must be valid JSON"))
		return
	}

	audit, err := s.auditSvc.Record(c.Request.Context(), auditdomain.RecordAuditRequest{
		WebsiteID:          c.Param("id"),
		OverallScore:       req.OverallScore,
		SEOScore:           req.SEOScore,
		PerformanceScore:   req.PerformanceScore,
		AccessibilityScore: req.AccessibilityScore,
		SecurityScore:      req.SecurityScore,
		MobileScore:        req.MobileScore,
		ContentScore:       req.ContentScore,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordAudit(c.Request.Context())
	}
	c.JSON(http.StatusCreated, audit)
}

// GET /api/websites/:id/audits
func (s *Server) ListAudits(c *gin.Context) {
	limit := 0
	if raw, ok := c.GetQuery("limit"); ok {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			AbortWithError(c, newBadRequest("Limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	audits, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListAuditsRequest{
		WebsiteID: c.Param("id"),
		Limit:     limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"audits": audits})
}
