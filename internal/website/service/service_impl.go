package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sitepulse/sitepulse/internal/userctx"
	"github.com/sitepulse/sitepulse/internal/website/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("website.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateWebsiteRequest) (domain.Website, error) {
	userID, ok := userctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Website{}, domain.ErrInvalidUser
	}

	rawURL := strings.TrimSpace(req.URL)
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return domain.Website{}, domain.ErrInvalidURL
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = parsed.Host
	}

	now := time.Now().UTC()
	website := domain.Website{
		ID:        s.genID.Generate(),
		UserID:    userID,
		URL:       rawURL,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &website); err != nil {
		return domain.Website{}, err
	}

	return website, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Website, error) {
	userID, ok := userctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	items, err := s.repo.List(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	websites := make([]domain.Website, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		websites = append(websites, *item)
	}
	return websites, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetWebsiteRequest) (domain.Website, error) {
	userID, ok := userctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Website{}, domain.ErrInvalidUser
	}

	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.Website{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, userID, id)
	if err != nil {
		return domain.Website{}, err
	}
	if item == nil {
		return domain.Website{}, domain.ErrNotFound
	}

	return *item, nil
}
