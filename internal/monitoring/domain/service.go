package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/sitepulse/sitepulse/internal/alert/domain"
)

type GetConfigRequest struct {
	WebsiteID string
}

type UpsertConfigRequest struct {
	WebsiteID          string
	Enabled            bool
	Frequency          string
	AlertThreshold     int
	Metrics            []string
	Thresholds         map[string]int
	EmailNotifications bool
	SlackWebhook       *string
}

type DisableConfigRequest struct {
	WebsiteID string
}

type ConfigService interface {
	// Get returns the stored config, or the documented default with
	// Stored=false when the pair was never configured. Absence is not an
	// error.
	Get(context.Context, GetConfigRequest) (Config, error)

	Upsert(context.Context, UpsertConfigRequest) (Config, error)

	// Disable turns monitoring off without deleting the row.
	Disable(context.Context, DisableConfigRequest) (Config, error)
}

// Evaluator compares the two most recent audits for a website/user pair and
// creates alerts for watched categories whose score drop exceeds the
// configured threshold.
type Evaluator interface {
	CheckMetricThresholds(ctx context.Context, websiteID, userID snowflake.ID) ([]alertdomain.Alert, error)
}

var (
	ErrInvalidUser      = errors.New("invalid_user")
	ErrWebsiteRequired  = errors.New("website_id_required")
	ErrWebsiteNotFound  = errors.New("website_not_found")
	ErrConfigNotFound   = errors.New("monitoring_config_not_found")
	ErrInvalidFrequency = errors.New("invalid_frequency")
	ErrInvalidThreshold = errors.New("invalid_threshold")
	ErrInvalidMetric    = errors.New("invalid_metric")
	ErrInsecureWebhook  = errors.New("insecure_webhook")
	ErrUpdateFailed     = errors.New("monitoring_config_update_failed")
)
