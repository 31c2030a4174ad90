package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/sitepulse/sitepulse/internal/monitoring/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) (domain.Repository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Config{}))
	return Provide(), db
}

func seedEvaluatedConfig(t *testing.T, db *gorm.DB, id snowflake.ID, frequency domain.Frequency, lastEvaluated *time.Time) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, db.Create(&domain.Config{
		ID:              id,
		WebsiteID:       id,
		UserID:          7,
		Enabled:         true,
		Frequency:       frequency,
		AlertThreshold:  10,
		LastEvaluatedAt: lastEvaluated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}).Error)
}

func dueIDs(configs []*domain.Config) []snowflake.ID {
	ids := make([]snowflake.ID, 0, len(configs))
	for _, config := range configs {
		ids = append(ids, config.ID)
	}
	return ids
}

// Not-due rows must not occupy batch slots: three weekly configs evaluated
// two days ago sort ahead of a due daily config, but only the daily one is
// due, so a batch of three must still return it.
func TestFindDueForEvaluationSkipsNotDueRows(t *testing.T) {
	repo, db := setupRepo(t)
	now := time.Now().UTC()

	twoDaysAgo := now.Add(-48 * time.Hour)
	for id := snowflake.ID(1); id <= 3; id++ {
		seedEvaluatedConfig(t, db, id, domain.FrequencyWeekly, &twoDaysAgo)
	}
	overADayAgo := now.Add(-25 * time.Hour)
	seedEvaluatedConfig(t, db, 4, domain.FrequencyDaily, &overADayAgo)

	due, err := repo.FindDueForEvaluation(context.Background(), db, now, 3)
	require.NoError(t, err)
	assert.Equal(t, []snowflake.ID{4}, dueIDs(due))
}

func TestFindDueForEvaluationPerFrequencyCutoffs(t *testing.T) {
	repo, db := setupRepo(t)
	now := time.Now().UTC()

	eightDaysAgo := now.Add(-8 * 24 * time.Hour)
	seedEvaluatedConfig(t, db, 1, domain.FrequencyWeekly, &eightDaysAgo)

	sixDaysAgo := now.Add(-6 * 24 * time.Hour)
	seedEvaluatedConfig(t, db, 2, domain.FrequencyWeekly, &sixDaysAgo)

	twentyDaysAgo := now.Add(-20 * 24 * time.Hour)
	seedEvaluatedConfig(t, db, 3, domain.FrequencyMonthly, &twentyDaysAgo)

	due, err := repo.FindDueForEvaluation(context.Background(), db, now, 10)
	require.NoError(t, err)
	assert.Equal(t, []snowflake.ID{1}, dueIDs(due))

	for _, config := range due {
		assert.True(t, config.Stored)
	}
}

func TestFindDueForEvaluationNeverEvaluatedFirst(t *testing.T) {
	repo, db := setupRepo(t)
	now := time.Now().UTC()

	twoDaysAgo := now.Add(-48 * time.Hour)
	seedEvaluatedConfig(t, db, 1, domain.FrequencyDaily, &twoDaysAgo)
	seedEvaluatedConfig(t, db, 2, domain.FrequencyDaily, nil)

	due, err := repo.FindDueForEvaluation(context.Background(), db, now, 1)
	require.NoError(t, err)
	assert.Equal(t, []snowflake.ID{2}, dueIDs(due))
}

func TestFindDueForEvaluationSkipsDisabled(t *testing.T) {
	repo, db := setupRepo(t)
	now := time.Now().UTC()

	require.NoError(t, db.Create(&domain.Config{
		ID:             1,
		WebsiteID:      1,
		UserID:         7,
		Enabled:        false,
		Frequency:      domain.FrequencyDaily,
		AlertThreshold: 10,
	}).Error)

	due, err := repo.FindDueForEvaluation(context.Background(), db, now, 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}
