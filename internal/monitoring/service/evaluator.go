package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/sitepulse/sitepulse/internal/alert/domain"
	auditdomain "github.com/sitepulse/sitepulse/internal/audit/domain"
	"github.com/sitepulse/sitepulse/internal/config"
	"github.com/sitepulse/sitepulse/internal/monitoring/domain"
	notificationdomain "github.com/sitepulse/sitepulse/internal/notification/domain"
	"github.com/sitepulse/sitepulse/internal/observability/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// metricCheck binds one metric category to its config accessors. Iterating
// the table replaces per-category branching; adding a category is one row.
type metricCheck struct {
	label    string
	category alertdomain.Category
	metric   string
	key      string
	score    func(a *auditdomain.Audit) int
	severity alertdomain.Severity
}

// Security regressions alert at CRITICAL by policy; every other category is
// WARNING.
var metricTable = []metricCheck{
	{
		label:    "Performance",
		category: alertdomain.CategoryPerformance,
		metric:   "performanceScore",
		key:      "performance",
		score:    func(a *auditdomain.Audit) int { return a.PerformanceScore },
		severity: alertdomain.SeverityWarning,
	},
	{
		label:    "SEO",
		category: alertdomain.CategorySEO,
		metric:   "seoScore",
		key:      "seo",
		score:    func(a *auditdomain.Audit) int { return a.SEOScore },
		severity: alertdomain.SeverityWarning,
	},
	{
		label:    "Accessibility",
		category: alertdomain.CategoryAccessibility,
		metric:   "accessibilityScore",
		key:      "accessibility",
		score:    func(a *auditdomain.Audit) int { return a.AccessibilityScore },
		severity: alertdomain.SeverityWarning,
	},
	{
		label:    "Security",
		category: alertdomain.CategorySecurity,
		metric:   "securityScore",
		key:      "security",
		score:    func(a *auditdomain.Audit) int { return a.SecurityScore },
		severity: alertdomain.SeverityCritical,
	},
	{
		label:    "Mobile",
		category: alertdomain.CategoryMobile,
		metric:   "mobileScore",
		key:      "mobile",
		score:    func(a *auditdomain.Audit) int { return a.MobileScore },
		severity: alertdomain.SeverityWarning,
	},
	{
		label:    "Content",
		category: alertdomain.CategoryContent,
		metric:   "contentScore",
		key:      "content",
		score:    func(a *auditdomain.Audit) int { return a.ContentScore },
		severity: alertdomain.SeverityWarning,
	},
}

type EvaluatorParams struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Repo       domain.Repository
	Alerting   *config.AlertingConfigHolder
	Audits     auditdomain.Repository
	Alerts     alertdomain.Service
	Dispatcher notificationdomain.Dispatcher
}

type Evaluator struct {
	db         *gorm.DB
	log        *zap.Logger
	repo       domain.Repository
	alerting   *config.AlertingConfigHolder
	audits     auditdomain.Repository
	alerts     alertdomain.Service
	dispatcher notificationdomain.Dispatcher
}

func NewEvaluator(p EvaluatorParams) domain.Evaluator {
	return &Evaluator{
		db:         p.DB,
		log:        p.Log.Named("monitoring.evaluator"),
		repo:       p.Repo,
		alerting:   p.Alerting,
		audits:     p.Audits,
		alerts:     p.Alerts,
		dispatcher: p.Dispatcher,
	}
}

// CheckMetricThresholds compares the two most recent audits and creates one
// alert per watched category whose drop exceeds its threshold. The config's
// top-level enabled flag is not consulted here; callers gate on it. A single
// audit is not a trend, so fewer than two audits produces no alerts.
func (e *Evaluator) CheckMetricThresholds(ctx context.Context, websiteID, userID snowflake.ID) ([]alertdomain.Alert, error) {
	cfg, err := e.loadConfig(ctx, websiteID, userID)
	if err != nil {
		return nil, err
	}

	audits, err := e.audits.FindRecent(ctx, e.db, websiteID, userID, 2)
	if err != nil {
		return nil, err
	}
	if len(audits) < 2 {
		return nil, nil
	}
	current, previous := audits[0], audits[1]

	log := logger.FromContext(ctx)

	var created []alertdomain.Alert
	var errs []error
	for _, check := range metricTable {
		if !cfg.Watches(check.metric) {
			continue
		}

		threshold := cfg.ThresholdFor(check.key)
		prev := check.score(previous)
		curr := check.score(current)
		drop := prev - curr
		if drop <= threshold {
			continue
		}

		alert := alertdomain.Alert{
			WebsiteID: websiteID,
			UserID:    userID,
			Title:     fmt.Sprintf("%s Score Drop", check.label),
			Message: fmt.Sprintf("Your %s score dropped by %d points (from %d to %d).",
				check.label, drop, prev, curr),
			Severity: check.severity,
			Category: check.category,
		}

		if err := e.alerts.Create(ctx, &alert); err != nil {
			errs = append(errs, fmt.Errorf("failed to create monitoring alert for %s: %w", check.key, err))
			continue
		}
		created = append(created, alert)

		e.notify(ctx, log, alert)
	}

	return created, errors.Join(errs...)
}

// notify dispatches one notification per created alert. Dispatch failures
// never fail the evaluation; the alert row is already committed.
func (e *Evaluator) notify(ctx context.Context, log *zap.Logger, alert alertdomain.Alert) {
	_, err := e.dispatcher.Send(ctx, notificationdomain.DispatchRequest{
		UserID:  alert.UserID,
		Title:   alert.Title,
		Message: alert.Message,
		Type:    notificationdomain.TypeAlert,
		Metadata: map[string]interface{}{
			"alertId":   alert.ID,
			"websiteId": alert.WebsiteID.String(),
			"category":  string(alert.Category),
			"severity":  string(alert.Severity),
		},
	})
	if err != nil {
		log.Warn("alert notification dispatch failed",
			zap.String("alert_id", alert.ID),
			zap.String("user_id", alert.UserID.String()),
			zap.Error(err),
		)
	}
}

// loadConfig returns the stored config or the alerting defaults for a
// never-configured pair.
func (e *Evaluator) loadConfig(ctx context.Context, websiteID, userID snowflake.ID) (domain.Config, error) {
	stored, err := e.repo.FindByWebsiteAndUser(ctx, e.db, websiteID, userID)
	if err != nil {
		return domain.Config{}, err
	}
	if stored != nil {
		return *stored, nil
	}
	return defaultConfigFrom(e.alerting.Get(), websiteID, userID), nil
}
