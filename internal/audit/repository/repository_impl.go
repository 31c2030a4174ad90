package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sitepulse/sitepulse/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, audit *domain.Audit) error {
	return db.WithContext(ctx).Create(audit).Error
}

func (r *repo) FindRecent(ctx context.Context, db *gorm.DB, websiteID, userID snowflake.ID, limit int) ([]*domain.Audit, error) {
	var audits []*domain.Audit
	err := db.WithContext(ctx).
		Where("website_id = ? AND user_id = ?", websiteID, userID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&audits).Error
	if err != nil {
		return nil, err
	}
	return audits, nil
}
