package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/sitepulse/sitepulse/internal/notification/domain"
	"github.com/sitepulse/sitepulse/internal/observability/logger"
	"github.com/sitepulse/sitepulse/internal/observability/metrics"
	"github.com/sitepulse/sitepulse/internal/providers/email"
	"github.com/sitepulse/sitepulse/internal/providers/webhook"
	"github.com/sitepulse/sitepulse/internal/userctx"
	userdomain "github.com/sitepulse/sitepulse/internal/user/domain"
	websitedomain "github.com/sitepulse/sitepulse/internal/website/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultListLimit = 50

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	Users    userdomain.Repository
	Websites websitedomain.Repository
	Email    email.Provider
	Webhook  webhook.Provider
	Metrics  *metrics.Metrics
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	users    userdomain.Repository
	websites websitedomain.Repository
	email    email.Provider
	webhook  webhook.Provider
	metrics  *metrics.Metrics
}

func New(p Params) *Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("notification.service"),
		repo:     p.Repo,
		users:    p.Users,
		websites: p.Websites,
		email:    p.Email,
		webhook:  p.Webhook,
		metrics:  p.Metrics,
	}
}

// Send stores the in-app notification and fans out to the user's enabled
// channels. The in-app insert is the only hard failure; email and webhook
// sends are attempted best effort and their errors swallowed.
func (s *Service) Send(ctx context.Context, req domain.DispatchRequest) (domain.DispatchResult, error) {
	if req.UserID == 0 {
		return domain.DispatchResult{}, domain.ErrInvalidUser
	}
	if strings.TrimSpace(req.Title) == "" {
		return domain.DispatchResult{}, domain.ErrInvalidTitle
	}

	user, err := s.users.FindByID(ctx, s.db, req.UserID)
	if err != nil {
		return domain.DispatchResult{}, err
	}
	if user == nil {
		return domain.DispatchResult{}, domain.ErrInvalidUser
	}

	notifType := req.Type
	if notifType == "" {
		notifType = domain.TypeSystem
	}

	notification := domain.Notification{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Title:     req.Title,
		Message:   req.Message,
		Type:      notifType,
		Metadata:  datatypes.JSONMap(req.Metadata),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &notification); err != nil {
		return domain.DispatchResult{}, fmt.Errorf("failed to create notification: %w", err)
	}
	s.metrics.RecordNotificationDispatched(ctx, domain.ChannelInApp, true)

	channels := []string{domain.ChannelInApp}
	prefs := user.Preferences()
	log := logger.FromContext(ctx)
	website := s.lookupWebsite(ctx, req.UserID, req.Metadata)

	if prefs.Email && user.Email != "" {
		channels = append(channels, domain.ChannelEmail)
		subject := notification.Title
		if website != nil {
			subject = fmt.Sprintf("[%s] %s", website.Name, notification.Title)
		}
		body := fmt.Sprintf("<p>%s</p>", notification.Message)
		if err := s.email.Send(ctx, []string{user.Email}, subject, body); err != nil {
			s.metrics.RecordNotificationDispatched(ctx, domain.ChannelEmail, false)
			log.Warn("email notification delivery failed",
				zap.String("user_id", req.UserID.String()),
				zap.Error(err),
			)
		} else {
			s.metrics.RecordNotificationDispatched(ctx, domain.ChannelEmail, true)
		}
	}

	if prefs.Webhook && prefs.WebhookURL != "" {
		channels = append(channels, domain.ChannelWebhook)
		payload := map[string]interface{}{
			"id":        notification.ID,
			"title":     notification.Title,
			"message":   notification.Message,
			"type":      notification.Type,
			"metadata":  req.Metadata,
			"createdAt": notification.CreatedAt,
		}
		if website != nil {
			payload["website"] = website.Name
			payload["websiteUrl"] = website.URL
		}
		if err := s.webhook.Post(ctx, prefs.WebhookURL, payload); err != nil {
			s.metrics.RecordNotificationDispatched(ctx, domain.ChannelWebhook, false)
			log.Warn("webhook notification delivery failed",
				zap.String("user_id", req.UserID.String()),
				zap.Error(err),
			)
		} else {
			s.metrics.RecordNotificationDispatched(ctx, domain.ChannelWebhook, true)
		}
	}

	return domain.DispatchResult{Notification: notification, Channels: channels}, nil
}

// lookupWebsite resolves the website named by metadata.websiteId for message
// context. Best effort: a missing key, a bad ID or a vanished row just means
// the notification goes out without site context.
func (s *Service) lookupWebsite(ctx context.Context, userID snowflake.ID, metadata map[string]interface{}) *websitedomain.Website {
	raw, ok := metadata["websiteId"].(string)
	if !ok || raw == "" {
		return nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return nil
	}
	website, err := s.websites.FindByID(ctx, s.db, userID, id)
	if err != nil {
		return nil
	}
	return website
}

func (s *Service) List(ctx context.Context, req domain.ListNotificationsRequest) ([]domain.Notification, error) {
	userID, ok := userctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		UserID: userID,
		Type:   req.Type,
		Read:   req.Read,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	notifications := make([]domain.Notification, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		notifications = append(notifications, *item)
	}
	return notifications, nil
}

func (s *Service) MarkAsRead(ctx context.Context, id string) error {
	userID, ok := userctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ErrInvalidUser
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidID
	}

	updated, err := s.repo.MarkRead(ctx, s.db, userID, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if !updated {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) MarkAllAsRead(ctx context.Context) (int64, error) {
	userID, ok := userctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return 0, domain.ErrInvalidUser
	}

	count, err := s.repo.MarkAllRead(ctx, s.db, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return count, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	userID, ok := userctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ErrInvalidUser
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidID
	}

	deleted, err := s.repo.Delete(ctx, s.db, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) UnreadCount(ctx context.Context) (int64, error) {
	userID, ok := userctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return 0, domain.ErrInvalidUser
	}

	count, err := s.repo.CountUnread(ctx, s.db, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
