package seed

import (
	"time"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/sitepulse/sitepulse/internal/user/domain"
	websitedomain "github.com/sitepulse/sitepulse/internal/website/domain"
	"gorm.io/gorm"
)

// Fixed IDs so reseeding an existing dev database is a no-op.
const (
	demoUserID    snowflake.ID = 1
	demoWebsiteID snowflake.ID = 1
)

// EnsureDemoData creates a demo user and website for local development.
// Existing rows are left untouched.
func EnsureDemoData(conn *gorm.DB) error {
	now := time.Now().UTC()

	user := userdomain.User{
		ID:          demoUserID,
		Email:       "demo@sitepulse.dev",
		Name:        "Demo User",
		NotifyEmail: true,
		NotifyInApp: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := conn.Where("email = ?", user.Email).FirstOrCreate(&user).Error; err != nil {
		return err
	}

	website := websitedomain.Website{
		ID:        demoWebsiteID,
		UserID:    user.ID,
		URL:       "https://demo.sitepulse.dev",
		Name:      "Demo Website",
		CreatedAt: now,
		UpdatedAt: now,
	}
	return conn.Where("user_id = ? AND url = ?", website.UserID, website.URL).
		FirstOrCreate(&website).Error
}
