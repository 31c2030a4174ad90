package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByWebsiteAndUser(ctx context.Context, db *gorm.DB, websiteID, userID snowflake.ID) (*Config, error)

	// Upsert inserts the config or updates the existing (website, user) row.
	Upsert(ctx context.Context, db *gorm.DB, config *Config) error

	// Disable flips enabled off. Returns false when no row exists.
	Disable(ctx context.Context, db *gorm.DB, websiteID, userID snowflake.ID) (bool, error)

	// FindDueForEvaluation returns enabled configs whose last evaluation is
	// older than their frequency interval (or never ran), up to limit rows.
	FindDueForEvaluation(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]*Config, error)

	MarkEvaluated(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
}
