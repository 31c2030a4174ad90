package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sitepulse/sitepulse/internal/config"
	"github.com/sitepulse/sitepulse/internal/monitoring/domain"
	"github.com/sitepulse/sitepulse/internal/userctx"
	websitedomain "github.com/sitepulse/sitepulse/internal/website/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Watchable metric names accepted in a config's metrics set.
var knownMetrics = map[string]struct{}{
	"overallScore":       {},
	"seoScore":           {},
	"performanceScore":   {},
	"accessibilityScore": {},
	"securityScore":      {},
	"mobileScore":        {},
	"contentScore":       {},
}

// Category keys accepted as per-category threshold overrides.
var knownCategories = map[string]struct{}{
	"performance":   {},
	"seo":           {},
	"accessibility": {},
	"security":      {},
	"mobile":        {},
	"content":       {},
}

type ConfigParams struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Websites websitedomain.Service
	Alerting *config.AlertingConfigHolder
}

type ConfigService struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	websites websitedomain.Service
	alerting *config.AlertingConfigHolder
}

func NewConfigService(p ConfigParams) domain.ConfigService {
	return &ConfigService{
		db:       p.DB,
		log:      p.Log.Named("monitoring.config"),
		genID:    p.GenID,
		repo:     p.Repo,
		websites: p.Websites,
		alerting: p.Alerting,
	}
}

func (s *ConfigService) Get(ctx context.Context, req domain.GetConfigRequest) (domain.Config, error) {
	userID, website, err := s.resolve(ctx, req.WebsiteID)
	if err != nil {
		return domain.Config{}, err
	}

	stored, err := s.repo.FindByWebsiteAndUser(ctx, s.db, website.ID, userID)
	if err != nil {
		return domain.Config{}, fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
	}
	if stored == nil {
		return s.defaultConfig(website.ID, userID), nil
	}
	return *stored, nil
}

func (s *ConfigService) Upsert(ctx context.Context, req domain.UpsertConfigRequest) (domain.Config, error) {
	userID, website, err := s.resolve(ctx, req.WebsiteID)
	if err != nil {
		return domain.Config{}, err
	}

	defaults := s.alerting.Get()

	frequency := domain.Frequency(strings.ToUpper(strings.TrimSpace(req.Frequency)))
	if frequency == "" {
		frequency = domain.Frequency(defaults.DefaultFrequency)
	}
	if !frequency.Valid() {
		return domain.Config{}, domain.ErrInvalidFrequency
	}

	threshold := req.AlertThreshold
	if threshold == 0 {
		threshold = defaults.DefaultThreshold
	}
	if threshold < defaults.MinThreshold || threshold > defaults.MaxThreshold {
		return domain.Config{}, domain.ErrInvalidThreshold
	}

	for category, value := range req.Thresholds {
		if _, ok := knownCategories[category]; !ok {
			return domain.Config{}, domain.ErrInvalidMetric
		}
		if value < defaults.MinThreshold || value > defaults.MaxThreshold {
			return domain.Config{}, domain.ErrInvalidThreshold
		}
	}

	metrics := req.Metrics
	if len(metrics) == 0 {
		metrics = defaults.DefaultMetrics
	}
	for _, metric := range metrics {
		if _, ok := knownMetrics[metric]; !ok {
			return domain.Config{}, domain.ErrInvalidMetric
		}
	}

	webhook, err := normalizeWebhook(req.SlackWebhook)
	if err != nil {
		return domain.Config{}, err
	}

	now := time.Now().UTC()
	saved := domain.Config{
		ID:                 s.genID.Generate(),
		WebsiteID:          website.ID,
		UserID:             userID,
		Enabled:            req.Enabled,
		Frequency:          frequency,
		AlertThreshold:     threshold,
		Metrics:            datatypes.NewJSONSlice(metrics),
		Thresholds:         datatypes.NewJSONType(req.Thresholds),
		EmailNotifications: req.EmailNotifications,
		SlackWebhook:       webhook,
		CreatedAt:          now,
		UpdatedAt:          now,
		Stored:             true,
	}

	existing, err := s.repo.FindByWebsiteAndUser(ctx, s.db, website.ID, userID)
	if err != nil {
		return domain.Config{}, fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
	}
	if existing != nil {
		saved.ID = existing.ID
		saved.CreatedAt = existing.CreatedAt
		saved.LastEvaluatedAt = existing.LastEvaluatedAt
	}

	if err := s.repo.Upsert(ctx, s.db, &saved); err != nil {
		return domain.Config{}, fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
	}
	return saved, nil
}

func (s *ConfigService) Disable(ctx context.Context, req domain.DisableConfigRequest) (domain.Config, error) {
	userID, website, err := s.resolve(ctx, req.WebsiteID)
	if err != nil {
		return domain.Config{}, err
	}

	disabled, err := s.repo.Disable(ctx, s.db, website.ID, userID)
	if err != nil {
		return domain.Config{}, fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
	}

	if !disabled {
		// Never-configured pair: persist a disabled default row so the
		// disable survives later defaults changes.
		saved := s.defaultConfig(website.ID, userID)
		saved.ID = s.genID.Generate()
		saved.Stored = true
		if err := s.repo.Upsert(ctx, s.db, &saved); err != nil {
			return domain.Config{}, fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
		}
		return saved, nil
	}

	stored, err := s.repo.FindByWebsiteAndUser(ctx, s.db, website.ID, userID)
	if err != nil || stored == nil {
		return domain.Config{}, fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
	}
	return *stored, nil
}

func (s *ConfigService) resolve(ctx context.Context, websiteID string) (snowflake.ID, websitedomain.Website, error) {
	userID, ok := userctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return 0, websitedomain.Website{}, domain.ErrInvalidUser
	}
	if strings.TrimSpace(websiteID) == "" {
		return 0, websitedomain.Website{}, domain.ErrWebsiteRequired
	}

	website, err := s.websites.GetByID(ctx, websitedomain.GetWebsiteRequest{ID: websiteID})
	if err != nil {
		if errors.Is(err, websitedomain.ErrInvalidID) {
			return 0, websitedomain.Website{}, err
		}
		return 0, websitedomain.Website{}, domain.ErrWebsiteNotFound
	}
	return userID, website, nil
}

func (s *ConfigService) defaultConfig(websiteID, userID snowflake.ID) domain.Config {
	return defaultConfigFrom(s.alerting.Get(), websiteID, userID)
}

// defaultConfigFrom builds the documented default config for a pair that has
// no stored row.
func defaultConfigFrom(defaults config.AlertingConfig, websiteID, userID snowflake.ID) domain.Config {
	now := time.Now().UTC()
	return domain.Config{
		WebsiteID:          websiteID,
		UserID:             userID,
		Enabled:            false,
		Frequency:          domain.Frequency(defaults.DefaultFrequency),
		AlertThreshold:     defaults.DefaultThreshold,
		Metrics:            datatypes.NewJSONSlice(defaults.DefaultMetrics),
		EmailNotifications: true,
		SlackWebhook:       nil,
		CreatedAt:          now,
		UpdatedAt:          now,
		Stored:             false,
	}
}

func normalizeWebhook(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil, nil
	}
	if !strings.HasPrefix(trimmed, "https://") {
		return nil, domain.ErrInsecureWebhook
	}
	return &trimmed, nil
}
