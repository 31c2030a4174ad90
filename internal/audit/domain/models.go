package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Audit is an immutable score snapshot produced by the audit pipeline.
// Ordering by (created_at desc, id desc) decides current vs previous.
type Audit struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	WebsiteID          snowflake.ID `gorm:"not null;index:idx_audits_website_user" json:"websiteId"`
	UserID             snowflake.ID `gorm:"not null;index:idx_audits_website_user" json:"userId"`
	OverallScore       int          `gorm:"not null" json:"overallScore"`
	SEOScore           int          `gorm:"column:seo_score;not null" json:"seoScore"`
	PerformanceScore   int          `gorm:"not null" json:"performanceScore"`
	AccessibilityScore int          `gorm:"not null" json:"accessibilityScore"`
	SecurityScore      int          `gorm:"not null" json:"securityScore"`
	MobileScore        int          `gorm:"not null" json:"mobileScore"`
	ContentScore       int          `gorm:"not null" json:"contentScore"`
	CreatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}
