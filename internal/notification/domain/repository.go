package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	UserID snowflake.ID
	Type   *string
	Read   *bool
	Limit  int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, notification *Notification) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Notification, error)

	// MarkRead returns false when the notification does not exist or is not
	// owned by the user.
	MarkRead(ctx context.Context, db *gorm.DB, userID snowflake.ID, id string) (bool, error)
	MarkAllRead(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, userID snowflake.ID, id string) (bool, error)
	CountUnread(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
}
