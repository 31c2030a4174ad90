package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sitepulse/sitepulse/internal/audit/domain"
	monitoringdomain "github.com/sitepulse/sitepulse/internal/monitoring/domain"
	"github.com/sitepulse/sitepulse/internal/observability/logger"
	"github.com/sitepulse/sitepulse/internal/userctx"
	websitedomain "github.com/sitepulse/sitepulse/internal/website/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Websites  websitedomain.Service
	Configs   monitoringdomain.ConfigService
	Evaluator monitoringdomain.Evaluator
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	websites  websitedomain.Service
	configs   monitoringdomain.ConfigService
	evaluator monitoringdomain.Evaluator
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("audit.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		websites:  p.Websites,
		configs:   p.Configs,
		evaluator: p.Evaluator,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordAuditRequest) (domain.Audit, error) {
	userID, ok := userctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Audit{}, domain.ErrInvalidUser
	}

	website, err := s.websites.GetByID(ctx, websitedomain.GetWebsiteRequest{ID: req.WebsiteID})
	if err != nil {
		if errors.Is(err, websitedomain.ErrInvalidID) {
			return domain.Audit{}, err
		}
		return domain.Audit{}, domain.ErrInvalidWebsite
	}

	scores := []int{
		req.OverallScore, req.SEOScore, req.PerformanceScore,
		req.AccessibilityScore, req.SecurityScore, req.MobileScore,
		req.ContentScore,
	}
	for _, score := range scores {
		if score < 0 || score > 100 {
			return domain.Audit{}, domain.ErrInvalidScore
		}
	}

	audit := domain.Audit{
		ID:                 s.genID.Generate(),
		WebsiteID:          website.ID,
		UserID:             userID,
		OverallScore:       req.OverallScore,
		SEOScore:           req.SEOScore,
		PerformanceScore:   req.PerformanceScore,
		AccessibilityScore: req.AccessibilityScore,
		SecurityScore:      req.SecurityScore,
		MobileScore:        req.MobileScore,
		ContentScore:       req.ContentScore,
		CreatedAt:          time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &audit); err != nil {
		return domain.Audit{}, err
	}

	s.evaluateIfEnabled(ctx, website.ID, userID)

	return audit, nil
}

// evaluateIfEnabled runs threshold evaluation after an ingest when the
// website's monitoring config is enabled. Evaluation failures never fail
// the ingest.
func (s *Service) evaluateIfEnabled(ctx context.Context, websiteID, userID snowflake.ID) {
	log := logger.FromContext(ctx)

	cfg, err := s.configs.Get(ctx, monitoringdomain.GetConfigRequest{WebsiteID: websiteID.String()})
	if err != nil {
		log.Warn("load monitoring config after audit ingest",
			zap.String("website_id", websiteID.String()),
			zap.Error(err),
		)
		return
	}
	if !cfg.Enabled {
		return
	}

	if _, err := s.evaluator.CheckMetricThresholds(ctx, websiteID, userID); err != nil {
		log.Warn("threshold evaluation after audit ingest",
			zap.String("website_id", websiteID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) List(ctx context.Context, req domain.ListAuditsRequest) ([]domain.Audit, error) {
	userID, ok := userctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	website, err := s.websites.GetByID(ctx, websitedomain.GetWebsiteRequest{ID: req.WebsiteID})
	if err != nil {
		if errors.Is(err, websitedomain.ErrInvalidID) {
			return nil, err
		}
		return nil, domain.ErrInvalidWebsite
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	items, err := s.repo.FindRecent(ctx, s.db, website.ID, userID, limit)
	if err != nil {
		return nil, err
	}

	audits := make([]domain.Audit, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		audits = append(audits, *item)
	}
	return audits, nil
}
