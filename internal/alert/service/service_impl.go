package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/sitepulse/sitepulse/internal/alert/domain"
	"github.com/sitepulse/sitepulse/internal/cache"
	"github.com/sitepulse/sitepulse/internal/observability/metrics"
	"github.com/sitepulse/sitepulse/internal/userctx"
	websitedomain "github.com/sitepulse/sitepulse/internal/website/domain"
	"github.com/sitepulse/sitepulse/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	Cache    cache.AlertCache
	Websites websitedomain.Service
	Metrics  *metrics.Metrics
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	cache    cache.AlertCache
	websites websitedomain.Service
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("alert.service"),
		repo:     p.Repo,
		cache:    p.Cache,
		websites: p.Websites,
		metrics:  p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, alert *domain.Alert) error {
	if alert.UserID == 0 || alert.WebsiteID == 0 {
		return domain.ErrInvalidUser
	}

	now := time.Now().UTC()
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = now
	}
	alert.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, alert); err != nil {
		return err
	}

	s.metrics.RecordAlertCreated(ctx, string(alert.Category), string(alert.Severity))
	s.cache.Invalidate(alert.UserID)
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListAlertsRequest) (domain.ListAlertsResponse, error) {
	userID, ok := userctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ListAlertsResponse{}, domain.ErrInvalidUser
	}

	website, err := s.resolveWebsite(ctx, req.WebsiteID)
	if err != nil {
		return domain.ListAlertsResponse{}, err
	}

	alerts, err := s.loadAlerts(ctx, userID, website.ID, req.UnreadOnly)
	if err != nil {
		return domain.ListAlertsResponse{}, err
	}

	page := req.Pagination.Normalize()
	total := int64(len(alerts))

	start := page.Offset
	if start > len(alerts) {
		start = len(alerts)
	}
	end := start + page.Limit
	if end > len(alerts) {
		end = len(alerts)
	}

	return domain.ListAlertsResponse{
		Alerts:     alerts[start:end],
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

// loadAlerts reads the full filtered list through the cache.
func (s *Service) loadAlerts(ctx context.Context, userID, websiteID snowflake.ID, unreadOnly bool) ([]domain.Alert, error) {
	if cached, ok := s.cache.Get(userID, websiteID, unreadOnly); ok {
		return cached, nil
	}

	items, err := s.repo.ListAll(ctx, s.db, domain.ListFilter{
		WebsiteID:  websiteID,
		UserID:     userID,
		UnreadOnly: unreadOnly,
	})
	if err != nil {
		return nil, err
	}

	alerts := make([]domain.Alert, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		alerts = append(alerts, *item)
	}

	s.cache.Set(userID, websiteID, unreadOnly, alerts)
	return alerts, nil
}

func (s *Service) MarkRead(ctx context.Context, req domain.MarkAlertsReadRequest) error {
	userID, ok := userctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ErrInvalidUser
	}

	if len(req.AlertIDs) == 0 {
		return domain.ErrInvalidAlertIDs
	}
	for _, id := range req.AlertIDs {
		if _, err := uuid.Parse(id); err != nil {
			return domain.ErrInvalidAlertIDs
		}
	}

	website, err := s.resolveWebsite(ctx, req.WebsiteID)
	if err != nil {
		return err
	}

	if err := s.repo.MarkRead(ctx, s.db, website.ID, userID, req.AlertIDs); err != nil {
		if errors.Is(err, domain.ErrAlertsNotOwned) {
			return err
		}
		return domain.ErrMarkReadFailed
	}

	s.cache.Invalidate(userID)
	return nil
}

func (s *Service) resolveWebsite(ctx context.Context, websiteID string) (websitedomain.Website, error) {
	if strings.TrimSpace(websiteID) == "" {
		return websitedomain.Website{}, domain.ErrWebsiteRequired
	}

	website, err := s.websites.GetByID(ctx, websitedomain.GetWebsiteRequest{ID: websiteID})
	if err != nil {
		if errors.Is(err, websitedomain.ErrInvalidID) {
			return websitedomain.Website{}, err
		}
		return websitedomain.Website{}, domain.ErrWebsiteNotFound
	}
	return website, nil
}
