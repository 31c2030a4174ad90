package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Frequency controls how often the scheduler evaluates a monitored website.
type Frequency string

const (
	FrequencyDaily     Frequency = "DAILY"
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyBiweekly  Frequency = "BIWEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyQuarterly:
		return true
	}
	return false
}

// Interval is the minimum time between scheduled evaluations.
func (f Frequency) Interval() time.Duration {
	switch f {
	case FrequencyDaily:
		return 24 * time.Hour
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	case FrequencyBiweekly:
		return 14 * 24 * time.Hour
	case FrequencyMonthly:
		return 30 * 24 * time.Hour
	case FrequencyQuarterly:
		return 90 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

const (
	MinThreshold = 1
	MaxThreshold = 50
)

// Config is the per-(website, user) monitoring configuration. Rows are never
// hard-deleted; disabling keeps history and thresholds intact.
type Config struct {
	ID                 snowflake.ID                       `gorm:"primaryKey" json:"id"`
	WebsiteID          snowflake.ID                       `gorm:"not null;uniqueIndex:idx_monitoring_website_user" json:"websiteId"`
	UserID             snowflake.ID                       `gorm:"not null;uniqueIndex:idx_monitoring_website_user" json:"userId"`
	Enabled            bool                               `gorm:"not null;default:false" json:"enabled"`
	Frequency          Frequency                          `gorm:"type:varchar(16);not null" json:"frequency"`
	AlertThreshold     int                                `gorm:"not null" json:"alertThreshold"`
	Metrics            datatypes.JSONSlice[string]        `json:"metrics"`
	Thresholds         datatypes.JSONType[map[string]int] `json:"thresholds"`
	EmailNotifications bool                               `gorm:"not null;default:true" json:"emailNotifications"`
	SlackWebhook       *string                            `json:"slackWebhook"`
	LastEvaluatedAt    *time.Time                         `json:"lastEvaluatedAt,omitempty"`
	CreatedAt          time.Time                          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time                          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Stored reports whether this config exists as a row or is the
	// documented default for a never-configured website.
	Stored bool `gorm:"-" json:"stored"`
}

func (Config) TableName() string { return "monitoring_configs" }

// Watches reports whether the given metric (e.g. "securityScore") is in the
// watched-metric set.
func (c Config) Watches(metric string) bool {
	for _, m := range c.Metrics {
		if m == metric {
			return true
		}
	}
	return false
}

// ThresholdFor returns the category's drop threshold, preferring a
// per-category override (keyed by category, e.g. "security") over the
// config-wide AlertThreshold.
func (c Config) ThresholdFor(category string) int {
	if overrides := c.Thresholds.Data(); overrides != nil {
		if v, ok := overrides[category]; ok {
			return v
		}
	}
	return c.AlertThreshold
}
