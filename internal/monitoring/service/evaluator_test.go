package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	alertdomain "github.com/sitepulse/sitepulse/internal/alert/domain"
	auditdomain "github.com/sitepulse/sitepulse/internal/audit/domain"
	auditrepository "github.com/sitepulse/sitepulse/internal/audit/repository"
	"github.com/sitepulse/sitepulse/internal/config"
	"github.com/sitepulse/sitepulse/internal/monitoring/domain"
	monitoringrepository "github.com/sitepulse/sitepulse/internal/monitoring/repository"
	notificationdomain "github.com/sitepulse/sitepulse/internal/notification/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// -- Fakes --

type fakeAlertService struct {
	created []alertdomain.Alert
	failFor map[alertdomain.Category]error
}

func (f *fakeAlertService) Create(ctx context.Context, alert *alertdomain.Alert) error {
	if err, ok := f.failFor[alert.Category]; ok {
		return err
	}
	if alert.ID == "" {
		alert.ID = "alert-" + string(alert.Category)
	}
	f.created = append(f.created, *alert)
	return nil
}

func (f *fakeAlertService) List(ctx context.Context, req alertdomain.ListAlertsRequest) (alertdomain.ListAlertsResponse, error) {
	return alertdomain.ListAlertsResponse{}, nil
}

func (f *fakeAlertService) MarkRead(ctx context.Context, req alertdomain.MarkAlertsReadRequest) error {
	return nil
}

type fakeDispatcher struct {
	sent []notificationdomain.DispatchRequest
	err  error
}

func (f *fakeDispatcher) Send(ctx context.Context, req notificationdomain.DispatchRequest) (notificationdomain.DispatchResult, error) {
	f.sent = append(f.sent, req)
	if f.err != nil {
		return notificationdomain.DispatchResult{}, f.err
	}
	return notificationdomain.DispatchResult{Channels: []string{notificationdomain.ChannelInApp}}, nil
}

// -- Helpers --

func setupEvaluatorDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Config{}, &auditdomain.Audit{}))
	return db
}

func newTestEvaluator(db *gorm.DB, alerts alertdomain.Service, dispatcher notificationdomain.Dispatcher) domain.Evaluator {
	return NewEvaluator(EvaluatorParams{
		DB:         db,
		Log:        zap.NewNop(),
		Repo:       monitoringrepository.Provide(),
		Alerting:   config.NewStaticAlertingConfigHolder(config.DefaultAlertingConfig()),
		Audits:     auditrepository.Provide(),
		Alerts:     alerts,
		Dispatcher: dispatcher,
	})
}

func storeConfig(t *testing.T, db *gorm.DB, websiteID, userID snowflake.ID, metrics []string, threshold int, overrides map[string]int) {
	t.Helper()
	cfg := domain.Config{
		ID:                 snowflake.ID(int64(websiteID) + 1000),
		WebsiteID:          websiteID,
		UserID:             userID,
		Enabled:            true,
		Frequency:          domain.FrequencyWeekly,
		AlertThreshold:     threshold,
		Metrics:            datatypes.NewJSONSlice(metrics),
		Thresholds:         datatypes.NewJSONType(overrides),
		EmailNotifications: true,
	}
	require.NoError(t, db.Create(&cfg).Error)
}

type scores struct {
	overall, seo, performance, accessibility, security, mobile, content int
}

func allScores(v int) scores {
	return scores{overall: v, seo: v, performance: v, accessibility: v, security: v, mobile: v, content: v}
}

var auditSeq int64 = 1

func insertAudit(t *testing.T, db *gorm.DB, websiteID, userID snowflake.ID, s scores, at time.Time) {
	t.Helper()
	auditSeq++
	audit := auditdomain.Audit{
		ID:                 snowflake.ID(auditSeq),
		WebsiteID:          websiteID,
		UserID:             userID,
		OverallScore:       s.overall,
		SEOScore:           s.seo,
		PerformanceScore:   s.performance,
		AccessibilityScore: s.accessibility,
		SecurityScore:      s.security,
		MobileScore:        s.mobile,
		ContentScore:       s.content,
		CreatedAt:          at,
	}
	require.NoError(t, db.Create(&audit).Error)
}

// -- Tests --

func TestCheckMetricThresholdsSingleAuditIsNotATrend(t *testing.T) {
	db := setupEvaluatorDB(t)
	alerts := &fakeAlertService{}
	evaluator := newTestEvaluator(db, alerts, &fakeDispatcher{})

	websiteID, userID := snowflake.ID(10), snowflake.ID(20)
	storeConfig(t, db, websiteID, userID, []string{"performanceScore"}, 10, nil)
	insertAudit(t, db, websiteID, userID, allScores(50), time.Now().UTC())

	created, err := evaluator.CheckMetricThresholds(context.Background(), websiteID, userID)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, alerts.created)
}

func TestCheckMetricThresholdsDropEqualToThresholdDoesNotAlert(t *testing.T) {
	db := setupEvaluatorDB(t)
	alerts := &fakeAlertService{}
	evaluator := newTestEvaluator(db, alerts, &fakeDispatcher{})

	websiteID, userID := snowflake.ID(11), snowflake.ID(21)
	storeConfig(t, db, websiteID, userID, []string{"performanceScore"}, 10, nil)

	previous := allScores(90)
	current := allScores(90)
	current.performance = 80 // drop of exactly 10
	now := time.Now().UTC()
	insertAudit(t, db, websiteID, userID, previous, now.Add(-time.Hour))
	insertAudit(t, db, websiteID, userID, current, now)

	created, err := evaluator.CheckMetricThresholds(context.Background(), websiteID, userID)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestCheckMetricThresholdsCreatesWarningAlert(t *testing.T) {
	db := setupEvaluatorDB(t)
	alerts := &fakeAlertService{}
	dispatcher := &fakeDispatcher{}
	evaluator := newTestEvaluator(db, alerts, dispatcher)

	websiteID, userID := snowflake.ID(12), snowflake.ID(22)
	storeConfig(t, db, websiteID, userID, []string{"performanceScore"}, 10, nil)

	previous := allScores(90)
	current := allScores(90)
	current.performance = 75
	now := time.Now().UTC()
	insertAudit(t, db, websiteID, userID, previous, now.Add(-time.Hour))
	insertAudit(t, db, websiteID, userID, current, now)

	created, err := evaluator.CheckMetricThresholds(context.Background(), websiteID, userID)
	require.NoError(t, err)
	require.Len(t, created, 1)

	alert := created[0]
	assert.Equal(t, "Performance Score Drop", alert.Title)
	assert.Equal(t, alertdomain.SeverityWarning, alert.Severity)
	assert.Equal(t, alertdomain.CategoryPerformance, alert.Category)
	assert.Contains(t, alert.Message, "dropped by 15 points")

	require.Len(t, dispatcher.sent, 1)
	assert.Equal(t, userID, dispatcher.sent[0].UserID)
	assert.Equal(t, notificationdomain.TypeAlert, dispatcher.sent[0].Type)
}

func TestCheckMetricThresholdsSecurityIsCritical(t *testing.T) {
	db := setupEvaluatorDB(t)
	alerts := &fakeAlertService{}
	evaluator := newTestEvaluator(db, alerts, &fakeDispatcher{})

	websiteID, userID := snowflake.ID(13), snowflake.ID(23)
	storeConfig(t, db, websiteID, userID, []string{"securityScore"}, 10, map[string]int{"security": 5})

	previous := allScores(95)
	current := allScores(95)
	current.security = 85
	now := time.Now().UTC()
	insertAudit(t, db, websiteID, userID, previous, now.Add(-time.Hour))
	insertAudit(t, db, websiteID, userID, current, now)

	created, err := evaluator.CheckMetricThresholds(context.Background(), websiteID, userID)
	require.NoError(t, err)
	require.Len(t, created, 1)

	alert := created[0]
	assert.Equal(t, alertdomain.SeverityCritical, alert.Severity)
	assert.Equal(t, alertdomain.CategorySecurity, alert.Category)
	assert.Equal(t, "Security Score Drop", alert.Title)
	assert.Contains(t, alert.Message, "dropped by 10 points")
}

func TestCheckMetricThresholdsSkipsUnwatchedCategories(t *testing.T) {
	db := setupEvaluatorDB(t)
	alerts := &fakeAlertService{}
	evaluator := newTestEvaluator(db, alerts, &fakeDispatcher{})

	websiteID, userID := snowflake.ID(14), snowflake.ID(24)
	storeConfig(t, db, websiteID, userID, []string{"seoScore"}, 10, nil)

	previous := allScores(90)
	current := allScores(90)
	current.mobile = 10 // large drop in an unwatched category
	now := time.Now().UTC()
	insertAudit(t, db, websiteID, userID, previous, now.Add(-time.Hour))
	insertAudit(t, db, websiteID, userID, current, now)

	created, err := evaluator.CheckMetricThresholds(context.Background(), websiteID, userID)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestCheckMetricThresholdsUsesDefaultsWhenConfigAbsent(t *testing.T) {
	db := setupEvaluatorDB(t)
	alerts := &fakeAlertService{}
	evaluator := newTestEvaluator(db, alerts, &fakeDispatcher{})

	// No config row: defaults watch overall, seo and performance at
	// threshold 10. A security drop must not alert.
	websiteID, userID := snowflake.ID(15), snowflake.ID(25)
	previous := allScores(90)
	current := allScores(90)
	current.seo = 70
	current.security = 50
	now := time.Now().UTC()
	insertAudit(t, db, websiteID, userID, previous, now.Add(-time.Hour))
	insertAudit(t, db, websiteID, userID, current, now)

	created, err := evaluator.CheckMetricThresholds(context.Background(), websiteID, userID)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, alertdomain.CategorySEO, created[0].Category)
}

func TestCheckMetricThresholdsMultipleCategoriesIndependent(t *testing.T) {
	db := setupEvaluatorDB(t)
	alerts := &fakeAlertService{}
	evaluator := newTestEvaluator(db, alerts, &fakeDispatcher{})

	websiteID, userID := snowflake.ID(16), snowflake.ID(26)
	storeConfig(t, db, websiteID, userID,
		[]string{"performanceScore", "seoScore", "contentScore"}, 10, nil)

	previous := allScores(90)
	current := allScores(90)
	current.performance = 70
	current.seo = 60
	now := time.Now().UTC()
	insertAudit(t, db, websiteID, userID, previous, now.Add(-time.Hour))
	insertAudit(t, db, websiteID, userID, current, now)

	created, err := evaluator.CheckMetricThresholds(context.Background(), websiteID, userID)
	require.NoError(t, err)
	require.Len(t, created, 2)

	categories := []alertdomain.Category{created[0].Category, created[1].Category}
	assert.Contains(t, categories, alertdomain.CategoryPerformance)
	assert.Contains(t, categories, alertdomain.CategorySEO)
}

func TestCheckMetricThresholdsPersistenceFailureDoesNotStopOtherCategories(t *testing.T) {
	db := setupEvaluatorDB(t)
	alerts := &fakeAlertService{
		failFor: map[alertdomain.Category]error{
			alertdomain.CategorySEO: errors.New("insert failed"),
		},
	}
	evaluator := newTestEvaluator(db, alerts, &fakeDispatcher{})

	websiteID, userID := snowflake.ID(17), snowflake.ID(27)
	storeConfig(t, db, websiteID, userID, []string{"performanceScore", "seoScore"}, 10, nil)

	previous := allScores(90)
	current := allScores(90)
	current.performance = 70
	current.seo = 60
	now := time.Now().UTC()
	insertAudit(t, db, websiteID, userID, previous, now.Add(-time.Hour))
	insertAudit(t, db, websiteID, userID, current, now)

	created, err := evaluator.CheckMetricThresholds(context.Background(), websiteID, userID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create monitoring alert")
	require.Len(t, created, 1)
	assert.Equal(t, alertdomain.CategoryPerformance, created[0].Category)
}

func TestCheckMetricThresholdsDispatchFailureDoesNotFailEvaluation(t *testing.T) {
	db := setupEvaluatorDB(t)
	alerts := &fakeAlertService{}
	dispatcher := &fakeDispatcher{err: errors.New("smtp down")}
	evaluator := newTestEvaluator(db, alerts, dispatcher)

	websiteID, userID := snowflake.ID(18), snowflake.ID(28)
	storeConfig(t, db, websiteID, userID, []string{"performanceScore"}, 10, nil)

	previous := allScores(90)
	current := allScores(90)
	current.performance = 60
	now := time.Now().UTC()
	insertAudit(t, db, websiteID, userID, previous, now.Add(-time.Hour))
	insertAudit(t, db, websiteID, userID, current, now)

	created, err := evaluator.CheckMetricThresholds(context.Background(), websiteID, userID)
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.Len(t, dispatcher.sent, 1)
}

func TestCheckMetricThresholdsPerCategoryOverrideWins(t *testing.T) {
	db := setupEvaluatorDB(t)
	alerts := &fakeAlertService{}
	evaluator := newTestEvaluator(db, alerts, &fakeDispatcher{})

	// Config-wide threshold 30 would suppress the alert; the per-category
	// override of 5 must win.
	websiteID, userID := snowflake.ID(19), snowflake.ID(29)
	storeConfig(t, db, websiteID, userID, []string{"performanceScore"}, 30, map[string]int{"performance": 5})

	previous := allScores(90)
	current := allScores(90)
	current.performance = 80
	now := time.Now().UTC()
	insertAudit(t, db, websiteID, userID, previous, now.Add(-time.Hour))
	insertAudit(t, db, websiteID, userID, current, now)

	created, err := evaluator.CheckMetricThresholds(context.Background(), websiteID, userID)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Contains(t, created[0].Message, "dropped by 10 points")
}
