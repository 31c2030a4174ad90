package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sitepulse/sitepulse/internal/website/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, website *domain.Website) error {
	return db.WithContext(ctx).Create(website).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.Website, error) {
	var website domain.Website
	err := db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Take(&website).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &website, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*domain.Website, error) {
	var websites []*domain.Website
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&websites).Error
	if err != nil {
		return nil, err
	}
	return websites, nil
}
