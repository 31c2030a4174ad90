package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sitepulse/sitepulse/internal/monitoring/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByWebsiteAndUser(ctx context.Context, db *gorm.DB, websiteID, userID snowflake.ID) (*domain.Config, error) {
	var config domain.Config
	err := db.WithContext(ctx).
		Where("website_id = ? AND user_id = ?", websiteID, userID).
		Take(&config).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	config.Stored = true
	return &config, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, config *domain.Config) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "website_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"enabled", "frequency", "alert_threshold", "metrics",
				"thresholds", "email_notifications", "slack_webhook",
				"updated_at",
			}),
		}).
		Create(config).Error
}

func (r *repo) Disable(ctx context.Context, db *gorm.DB, websiteID, userID snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).
		Model(&domain.Config{}).
		Where("website_id = ? AND user_id = ?", websiteID, userID).
		Updates(map[string]interface{}{
			"enabled":    false,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindDueForEvaluation(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]*domain.Config, error) {
	// The due condition is evaluated per frequency in SQL so the limit only
	// counts rows that are actually due; a not-due row must never occupy a
	// batch slot.
	frequencies := []domain.Frequency{
		domain.FrequencyDaily,
		domain.FrequencyWeekly,
		domain.FrequencyBiweekly,
		domain.FrequencyMonthly,
		domain.FrequencyQuarterly,
	}

	cond := "last_evaluated_at IS NULL"
	args := make([]interface{}, 0, 2*len(frequencies))
	for _, frequency := range frequencies {
		cond += " OR (frequency = ? AND last_evaluated_at <= ?)"
		args = append(args, frequency, now.Add(-frequency.Interval()))
	}

	var due []*domain.Config
	err := db.WithContext(ctx).
		Where("enabled = ?", true).
		Where("("+cond+")", args...).
		// Never-evaluated rows first, then oldest evaluation; spelled out so
		// the ordering does not depend on the dialect's NULL placement.
		Order("(last_evaluated_at IS NULL) desc, last_evaluated_at asc").
		Limit(limit).
		Find(&due).Error
	if err != nil {
		return nil, err
	}

	for _, config := range due {
		config.Stored = true
	}
	return due, nil
}

func (r *repo) MarkEvaluated(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Config{}).
		Where("id = ?", id).
		Update("last_evaluated_at", at).Error
}
