package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, website *Website) error
	FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*Website, error)
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*Website, error)
}
