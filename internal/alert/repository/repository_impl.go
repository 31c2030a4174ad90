package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sitepulse/sitepulse/internal/alert/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, alert *domain.Alert) error {
	return db.WithContext(ctx).Create(alert).Error
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Alert, error) {
	stmt := db.WithContext(ctx).
		Where("website_id = ? AND user_id = ?", filter.WebsiteID, filter.UserID)
	if filter.UnreadOnly {
		stmt = stmt.Where("read = ?", false)
	}

	var alerts []*domain.Alert
	if err := stmt.Order("created_at desc, id desc").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *repo) MarkRead(ctx context.Context, db *gorm.DB, websiteID, userID snowflake.ID, ids []string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&domain.Alert{}).
			Where("website_id = ? AND user_id = ? AND id IN ?", websiteID, userID, ids).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count < int64(len(ids)) {
			return domain.ErrAlertsNotOwned
		}

		return tx.Model(&domain.Alert{}).
			Where("website_id = ? AND user_id = ? AND id IN ?", websiteID, userID, ids).
			Updates(map[string]interface{}{
				"read":       true,
				"updated_at": time.Now().UTC(),
			}).Error
	})
}
