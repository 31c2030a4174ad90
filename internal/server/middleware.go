package server

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sitepulse/sitepulse/internal/userctx"
	"go.uber.org/zap"
)

const contextUserIDKey = "user_id"

// AuthRequired verifies the bearer token and places the authenticated user
// ID on the request context for the service layer.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		userID, err := s.verifier.VerifyToken(token)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := userctx.WithUserID(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextUserIDKey, userID.String())
		c.Next()
	}
}

// RateLimit applies the per-user Redis token bucket. With no limiter
// configured every request passes.
func (s *Server) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.apiLimiter == nil {
			c.Next()
			return
		}

		userID, ok := userctx.UserIDFromContext(c.Request.Context())
		if !ok || userID == 0 {
			c.Next()
			return
		}

		endpoint := c.FullPath()
		result, err := s.apiLimiter.Allow(c.Request.Context(), userID)
		if err != nil {
			// Redis being down must not take the API with it.
			s.log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		if !result.Allowed {
			if s.obsMetrics != nil {
				s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), endpoint, "quota_exceeded")
			}
			if result.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			}
			AbortWithError(c, ErrRateLimited)
			return
		}

		if s.obsMetrics != nil {
			s.obsMetrics.RecordRateLimitAllowed(c.Request.Context(), endpoint)
		}
		c.Next()
	}
}

// CronAuthRequired guards the internal cron endpoints with a shared secret.
func (s *Server) CronAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := s.cfg.CronSecret
		if secret == "" {
			if s.cfg.IsProduction() {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Cron endpoint not configured"})
				return
			}
			c.Next()
			return
		}

		provided := strings.TrimSpace(c.GetHeader("X-Cron-Secret"))
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
