package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sitepulse/sitepulse/internal/alert/domain"
	alertrepository "github.com/sitepulse/sitepulse/internal/alert/repository"
	"github.com/sitepulse/sitepulse/internal/cache"
	"github.com/sitepulse/sitepulse/internal/userctx"
	websitedomain "github.com/sitepulse/sitepulse/internal/website/domain"
	"github.com/sitepulse/sitepulse/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	testUserID    = snowflake.ID(7)
	testWebsiteID = snowflake.ID(100)
)

type fakeWebsiteService struct{}

func (fakeWebsiteService) Create(ctx context.Context, req websitedomain.CreateWebsiteRequest) (websitedomain.Website, error) {
	return websitedomain.Website{}, nil
}

func (fakeWebsiteService) List(ctx context.Context) ([]websitedomain.Website, error) {
	return nil, nil
}

func (fakeWebsiteService) GetByID(ctx context.Context, req websitedomain.GetWebsiteRequest) (websitedomain.Website, error) {
	if req.ID == testWebsiteID.String() {
		return websitedomain.Website{ID: testWebsiteID, UserID: testUserID, URL: "https://example.com"}, nil
	}
	return websitedomain.Website{}, websitedomain.ErrNotFound
}

func setupAlertService(t *testing.T) (domain.Service, *gorm.DB, cache.AlertCache) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Alert{}))

	alertCache := cache.NewAlertCache()
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Repo:     alertrepository.Provide(),
		Cache:    alertCache,
		Websites: fakeWebsiteService{},
		Metrics:  nil,
	})
	return svc, db, alertCache
}

func authedCtx() context.Context {
	return userctx.WithUserID(context.Background(), testUserID)
}

func seedAlerts(t *testing.T, svc domain.Service, n int, read bool) []string {
	t.Helper()
	ids := make([]string, 0, n)
	base := time.Now().UTC().Add(-time.Duration(n) * time.Minute)
	for i := 0; i < n; i++ {
		alert := domain.Alert{
			WebsiteID: testWebsiteID,
			UserID:    testUserID,
			Title:     fmt.Sprintf("Alert %d", i),
			Message:   "Your SEO score dropped by 12 points (from 90 to 78).",
			Severity:  domain.SeverityWarning,
			Category:  domain.CategorySEO,
			Read:      read,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, svc.Create(authedCtx(), &alert))
		ids = append(ids, alert.ID)
	}
	return ids
}

func TestListPaginatesInMemory(t *testing.T) {
	svc, _, _ := setupAlertService(t)
	seedAlerts(t, svc, 5, false)

	resp, err := svc.List(authedCtx(), domain.ListAlertsRequest{
		WebsiteID:  testWebsiteID.String(),
		Pagination: pagination.Pagination{Limit: 2, Offset: 0},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Alerts, 2)
	assert.EqualValues(t, 5, resp.Pagination.Total)
	assert.True(t, resp.Pagination.HasMore)
	// Newest first.
	assert.Equal(t, "Alert 4", resp.Alerts[0].Title)
	assert.Equal(t, "Alert 3", resp.Alerts[1].Title)

	last, err := svc.List(authedCtx(), domain.ListAlertsRequest{
		WebsiteID:  testWebsiteID.String(),
		Pagination: pagination.Pagination{Limit: 2, Offset: 4},
	})
	require.NoError(t, err)
	assert.Len(t, last.Alerts, 1)
	assert.False(t, last.Pagination.HasMore)
}

func TestListOffsetPastEndIsEmpty(t *testing.T) {
	svc, _, _ := setupAlertService(t)
	seedAlerts(t, svc, 2, false)

	resp, err := svc.List(authedCtx(), domain.ListAlertsRequest{
		WebsiteID:  testWebsiteID.String(),
		Pagination: pagination.Pagination{Limit: 10, Offset: 50},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Alerts)
	assert.EqualValues(t, 2, resp.Pagination.Total)
}

func TestListUnreadOnlyFilter(t *testing.T) {
	svc, _, _ := setupAlertService(t)
	seedAlerts(t, svc, 2, true)
	seedAlerts(t, svc, 3, false)

	resp, err := svc.List(authedCtx(), domain.ListAlertsRequest{
		WebsiteID:  testWebsiteID.String(),
		UnreadOnly: true,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Alerts, 3)
	for _, alert := range resp.Alerts {
		assert.False(t, alert.Read)
	}
}

func TestListServesFromCacheUntilInvalidated(t *testing.T) {
	svc, db, _ := setupAlertService(t)
	seedAlerts(t, svc, 2, false)

	first, err := svc.List(authedCtx(), domain.ListAlertsRequest{WebsiteID: testWebsiteID.String()})
	require.NoError(t, err)
	require.Len(t, first.Alerts, 2)

	// A write that bypasses the service is invisible while the cached list
	// is live.
	stale := domain.Alert{
		ID:        uuid.NewString(),
		WebsiteID: testWebsiteID,
		UserID:    testUserID,
		Title:     "Out of band",
		Message:   "direct insert",
		Severity:  domain.SeverityWarning,
		Category:  domain.CategoryContent,
	}
	require.NoError(t, db.Create(&stale).Error)

	second, err := svc.List(authedCtx(), domain.ListAlertsRequest{WebsiteID: testWebsiteID.String()})
	require.NoError(t, err)
	assert.Len(t, second.Alerts, 2)

	// Creating through the service invalidates the user's entries.
	require.NoError(t, svc.Create(authedCtx(), &domain.Alert{
		WebsiteID: testWebsiteID,
		UserID:    testUserID,
		Title:     "Fresh",
		Message:   "created via service",
		Severity:  domain.SeverityWarning,
		Category:  domain.CategorySEO,
	}))

	third, err := svc.List(authedCtx(), domain.ListAlertsRequest{WebsiteID: testWebsiteID.String()})
	require.NoError(t, err)
	assert.Len(t, third.Alerts, 4)
}

func TestListRequiresWebsiteID(t *testing.T) {
	svc, _, _ := setupAlertService(t)

	_, err := svc.List(authedCtx(), domain.ListAlertsRequest{WebsiteID: ""})
	assert.ErrorIs(t, err, domain.ErrWebsiteRequired)
}

func TestListRequiresUser(t *testing.T) {
	svc, _, _ := setupAlertService(t)

	_, err := svc.List(context.Background(), domain.ListAlertsRequest{WebsiteID: testWebsiteID.String()})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestMarkReadRejectsEmptyAndMalformedIDs(t *testing.T) {
	svc, _, _ := setupAlertService(t)

	err := svc.MarkRead(authedCtx(), domain.MarkAlertsReadRequest{
		WebsiteID: testWebsiteID.String(),
		AlertIDs:  nil,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAlertIDs)

	err = svc.MarkRead(authedCtx(), domain.MarkAlertsReadRequest{
		WebsiteID: testWebsiteID.String(),
		AlertIDs:  []string{"not-a-uuid"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAlertIDs)
}

func TestMarkReadPartialMatchMutatesNothing(t *testing.T) {
	svc, db, _ := setupAlertService(t)
	ids := seedAlerts(t, svc, 2, false)

	err := svc.MarkRead(authedCtx(), domain.MarkAlertsReadRequest{
		WebsiteID: testWebsiteID.String(),
		AlertIDs:  []string{ids[0], uuid.NewString()},
	})
	assert.ErrorIs(t, err, domain.ErrAlertsNotOwned)

	var unread int64
	require.NoError(t, db.Model(&domain.Alert{}).Where("read = ?", false).Count(&unread).Error)
	assert.EqualValues(t, 2, unread)
}

func TestMarkReadSuccess(t *testing.T) {
	svc, db, _ := setupAlertService(t)
	ids := seedAlerts(t, svc, 3, false)

	err := svc.MarkRead(authedCtx(), domain.MarkAlertsReadRequest{
		WebsiteID: testWebsiteID.String(),
		AlertIDs:  ids[:2],
	})
	require.NoError(t, err)

	var read int64
	require.NoError(t, db.Model(&domain.Alert{}).Where("read = ?", true).Count(&read).Error)
	assert.EqualValues(t, 2, read)

	// The unread view reflects the change immediately.
	resp, err := svc.List(authedCtx(), domain.ListAlertsRequest{
		WebsiteID:  testWebsiteID.String(),
		UnreadOnly: true,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Alerts, 1)
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	svc, _, _ := setupAlertService(t)

	alert := domain.Alert{
		WebsiteID: testWebsiteID,
		UserID:    testUserID,
		Title:     "Security Score Drop",
		Message:   "Your Security score dropped by 10 points (from 95 to 85).",
		Severity:  domain.SeverityCritical,
		Category:  domain.CategorySecurity,
	}
	require.NoError(t, svc.Create(authedCtx(), &alert))

	_, err := uuid.Parse(alert.ID)
	assert.NoError(t, err)
	assert.False(t, alert.CreatedAt.IsZero())
}
