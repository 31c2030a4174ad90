package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Severity string

// The evaluator only emits WARNING and CRITICAL; INFO and ERROR exist for
// alerts written by other producers.
const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

type Category string

const (
	CategoryPerformance   Category = "PERFORMANCE"
	CategorySEO           Category = "SEO"
	CategoryAccessibility Category = "ACCESSIBILITY"
	CategorySecurity      Category = "SECURITY"
	CategoryMobile        Category = "MOBILE"
	CategoryContent       Category = "CONTENT"
)

// Alert is created when a watched metric regresses past its threshold
// between two consecutive audits.
type Alert struct {
	ID        string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	WebsiteID snowflake.ID `gorm:"not null;index:idx_alerts_website_user" json:"websiteId"`
	UserID    snowflake.ID `gorm:"not null;index:idx_alerts_website_user" json:"userId"`
	Title     string       `gorm:"not null" json:"title"`
	Message   string       `gorm:"not null" json:"message"`
	Severity  Severity     `gorm:"type:varchar(16);not null" json:"severity"`
	Category  Category     `gorm:"type:varchar(16);not null" json:"category"`
	Read      bool         `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
