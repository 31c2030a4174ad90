package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	alertdomain "github.com/sitepulse/sitepulse/internal/alert/domain"
	auditdomain "github.com/sitepulse/sitepulse/internal/audit/domain"
	monitoringdomain "github.com/sitepulse/sitepulse/internal/monitoring/domain"
	notificationdomain "github.com/sitepulse/sitepulse/internal/notification/domain"
	userdomain "github.com/sitepulse/sitepulse/internal/user/domain"
	websitedomain "github.com/sitepulse/sitepulse/internal/website/domain"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate_limited")
)

// badRequestError carries a caller-facing 400 message straight from a
// handler, for validation failures that have no domain sentinel.
type badRequestError struct {
	message string
}

func (e badRequestError) Error() string { return e.message }

func newBadRequest(message string) error {
	return badRequestError{message: message}
}

// ErrorHandlingMiddleware converts the last error recorded on the gin
// context into the JSON error payload. Handlers that already wrote a
// response are left alone.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, message := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, gin.H{"error": message})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// Validation failures map to 400 with a matchable message, ownership and
// missing-record failures to 404, persistence failures to 500 with the
// failing operation in the message.
func mapError(err error) (int, string) {
	var badReq badRequestError
	if errors.As(err, &badReq) {
		return http.StatusBadRequest, badReq.message
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, alertdomain.ErrInvalidUser),
		errors.Is(err, auditdomain.ErrInvalidUser),
		errors.Is(err, monitoringdomain.ErrInvalidUser),
		errors.Is(err, notificationdomain.ErrInvalidUser),
		errors.Is(err, websitedomain.ErrInvalidUser):
		return http.StatusUnauthorized, "Unauthorized"

	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests"

	case errors.Is(err, alertdomain.ErrWebsiteRequired),
		errors.Is(err, monitoringdomain.ErrWebsiteRequired):
		return http.StatusBadRequest, "Website ID is required"

	case errors.Is(err, websitedomain.ErrInvalidID):
		return http.StatusBadRequest, "Website ID is invalid"

	case errors.Is(err, alertdomain.ErrInvalidAlertIDs):
		return http.StatusBadRequest, "Alert IDs are required and must be valid UUIDs"

	case errors.Is(err, alertdomain.ErrAlertsNotOwned):
		return http.StatusBadRequest, "Some alerts do not exist or do not belong to the specified website"

	case errors.Is(err, alertdomain.ErrMarkReadFailed):
		return http.StatusInternalServerError, "Failed to mark alerts as read"

	case errors.Is(err, alertdomain.ErrWebsiteNotFound),
		errors.Is(err, monitoringdomain.ErrWebsiteNotFound),
		errors.Is(err, auditdomain.ErrInvalidWebsite),
		errors.Is(err, websitedomain.ErrNotFound):
		return http.StatusNotFound, "Website not found"

	case errors.Is(err, monitoringdomain.ErrInvalidFrequency):
		return http.StatusBadRequest, "Frequency must be one of DAILY, WEEKLY, BIWEEKLY, MONTHLY or QUARTERLY"

	case errors.Is(err, monitoringdomain.ErrInvalidThreshold):
		return http.StatusBadRequest, "Alert threshold is out of range"

	case errors.Is(err, monitoringdomain.ErrInvalidMetric):
		return http.StatusBadRequest, "Unknown metric or category"

	case errors.Is(err, monitoringdomain.ErrInsecureWebhook):
		return http.StatusBadRequest, "Slack webhook URL must use the HTTPS protocol"

	case errors.Is(err, monitoringdomain.ErrUpdateFailed):
		return http.StatusInternalServerError, "Failed to update monitoring configuration"

	case errors.Is(err, auditdomain.ErrInvalidScore):
		return http.StatusBadRequest, "Scores must be between 0 and 100"

	case errors.Is(err, websitedomain.ErrInvalidURL):
		return http.StatusBadRequest, "A valid http or https website URL is required"

	case errors.Is(err, notificationdomain.ErrInvalidID):
		return http.StatusBadRequest, "Notification ID must be a valid UUID"

	case errors.Is(err, notificationdomain.ErrNotFound):
		return http.StatusNotFound, "Notification not found"

	case errors.Is(err, userdomain.ErrNotFound):
		return http.StatusNotFound, "User not found"

	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// classifyErrorForLog labels request errors for the logging middleware
// without leaking raw error text into log labels.
func classifyErrorForLog(err error) (string, string) {
	status, _ := mapError(err)
	switch status {
	case http.StatusBadRequest:
		return "validation_error", "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized", "unauthorized"
	case http.StatusNotFound:
		return "not_found", "not_found"
	case http.StatusTooManyRequests:
		return "rate_limited", "too_many_requests"
	default:
		return "internal_error", "internal"
	}
}
