package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, audit *Audit) error

	// FindRecent returns up to limit audits for the website/user pair,
	// most recent first.
	FindRecent(ctx context.Context, db *gorm.DB, websiteID, userID snowflake.ID, limit int) ([]*Audit, error)
}
