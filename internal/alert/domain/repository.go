package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	WebsiteID  snowflake.ID
	UserID     snowflake.ID
	UnreadOnly bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, alert *Alert) error

	// ListAll returns every alert matching the filter, newest first. Callers
	// paginate in memory so the cache can hold the whole filtered list.
	ListAll(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Alert, error)

	// MarkRead marks the given alerts read. The ownership check and the
	// update run in one transaction; a short match returns ErrAlertsNotOwned
	// and mutates nothing.
	MarkRead(ctx context.Context, db *gorm.DB, websiteID, userID snowflake.ID, ids []string) error
}
