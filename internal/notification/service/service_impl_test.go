package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sitepulse/sitepulse/internal/notification/domain"
	notificationrepository "github.com/sitepulse/sitepulse/internal/notification/repository"
	"github.com/sitepulse/sitepulse/internal/userctx"
	userdomain "github.com/sitepulse/sitepulse/internal/user/domain"
	userrepository "github.com/sitepulse/sitepulse/internal/user/repository"
	websitedomain "github.com/sitepulse/sitepulse/internal/website/domain"
	websiterepository "github.com/sitepulse/sitepulse/internal/website/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeEmailProvider struct {
	sent     [][]string
	subjects []string
	err      error
}

func (f *fakeEmailProvider) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	f.sent = append(f.sent, to)
	f.subjects = append(f.subjects, subject)
	return f.err
}

type fakeWebhookProvider struct {
	posted   []string
	payloads []interface{}
	err      error
}

func (f *fakeWebhookProvider) Post(ctx context.Context, url string, payload interface{}) error {
	f.posted = append(f.posted, url)
	f.payloads = append(f.payloads, payload)
	return f.err
}

func setupNotificationService(t *testing.T) (*Service, *gorm.DB, *fakeEmailProvider, *fakeWebhookProvider) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&userdomain.User{}, &websitedomain.Website{}, &domain.Notification{}))

	emailProvider := &fakeEmailProvider{}
	webhookProvider := &fakeWebhookProvider{}
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Repo:     notificationrepository.Provide(),
		Users:    userrepository.Provide(),
		Websites: websiterepository.Provide(),
		Email:    emailProvider,
		Webhook:  webhookProvider,
		Metrics:  nil,
	})
	return svc, db, emailProvider, webhookProvider
}

func seedUser(t *testing.T, db *gorm.DB, id snowflake.ID, mutate func(*userdomain.User)) {
	t.Helper()
	user := userdomain.User{
		ID:          id,
		Email:       "owner@example.com",
		Name:        "Owner",
		NotifyEmail: true,
		NotifyInApp: true,
	}
	if mutate != nil {
		mutate(&user)
	}
	require.NoError(t, db.Create(&user).Error)
}

func userCtx(id snowflake.ID) context.Context {
	return userctx.WithUserID(context.Background(), id)
}

func TestSendStoresInAppAndReportsChannels(t *testing.T) {
	svc, db, emailProvider, _ := setupNotificationService(t)
	seedUser(t, db, 7, nil)

	result, err := svc.Send(context.Background(), domain.DispatchRequest{
		UserID:  7,
		Title:   "Performance Score Drop",
		Message: "Your Performance score dropped by 15 points (from 90 to 75).",
		Type:    domain.TypeAlert,
		Metadata: map[string]interface{}{
			"category": "PERFORMANCE",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{domain.ChannelInApp, domain.ChannelEmail}, result.Channels)
	assert.Equal(t, domain.TypeAlert, result.Notification.Type)
	require.Len(t, emailProvider.sent, 1)
	assert.Equal(t, []string{"owner@example.com"}, emailProvider.sent[0])

	var count int64
	require.NoError(t, db.Model(&domain.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSendEmailFailureIsSwallowed(t *testing.T) {
	svc, db, emailProvider, _ := setupNotificationService(t)
	seedUser(t, db, 7, nil)
	emailProvider.err = errors.New("smtp: connection refused")

	result, err := svc.Send(context.Background(), domain.DispatchRequest{
		UserID: 7,
		Title:  "SEO Score Drop",
	})
	require.NoError(t, err)

	// The channel is listed because delivery was attempted; the failure is
	// logged, not returned.
	assert.Contains(t, result.Channels, domain.ChannelEmail)

	var count int64
	require.NoError(t, db.Model(&domain.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSendSkipsDisabledChannels(t *testing.T) {
	svc, db, emailProvider, webhookProvider := setupNotificationService(t)
	seedUser(t, db, 7, func(u *userdomain.User) {
		u.NotifyEmail = false
	})

	result, err := svc.Send(context.Background(), domain.DispatchRequest{
		UserID: 7,
		Title:  "Content Score Drop",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{domain.ChannelInApp}, result.Channels)
	assert.Empty(t, emailProvider.sent)
	assert.Empty(t, webhookProvider.posted)
}

func TestSendWebhookChannel(t *testing.T) {
	svc, db, _, webhookProvider := setupNotificationService(t)
	url := "https://hooks.example.com/notify"
	seedUser(t, db, 7, func(u *userdomain.User) {
		u.NotifyEmail = false
		u.NotifyWebhook = true
		u.WebhookURL = &url
	})

	result, err := svc.Send(context.Background(), domain.DispatchRequest{
		UserID: 7,
		Title:  "Mobile Score Drop",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{domain.ChannelInApp, domain.ChannelWebhook}, result.Channels)
	require.Len(t, webhookProvider.posted, 1)
	assert.Equal(t, url, webhookProvider.posted[0])
}

func TestSendAddsWebsiteContextFromMetadata(t *testing.T) {
	svc, db, emailProvider, webhookProvider := setupNotificationService(t)
	url := "https://hooks.example.com/notify"
	seedUser(t, db, 7, func(u *userdomain.User) {
		u.NotifyWebhook = true
		u.WebhookURL = &url
	})
	require.NoError(t, db.Create(&websitedomain.Website{
		ID:     100,
		UserID: 7,
		URL:    "https://example.com",
		Name:   "Example",
	}).Error)

	_, err := svc.Send(context.Background(), domain.DispatchRequest{
		UserID:  7,
		Title:   "Security Score Drop",
		Message: "Your Security score dropped by 12 points (from 90 to 78).",
		Type:    domain.TypeAlert,
		Metadata: map[string]interface{}{
			"websiteId": "100",
			"category":  "SECURITY",
		},
	})
	require.NoError(t, err)

	require.Len(t, emailProvider.subjects, 1)
	assert.Equal(t, "[Example] Security Score Drop", emailProvider.subjects[0])

	require.Len(t, webhookProvider.payloads, 1)
	payload, ok := webhookProvider.payloads[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Example", payload["website"])
	assert.Equal(t, "https://example.com", payload["websiteUrl"])
}

func TestSendIgnoresUnresolvableWebsiteMetadata(t *testing.T) {
	svc, db, emailProvider, _ := setupNotificationService(t)
	seedUser(t, db, 7, nil)

	for _, metadata := range []map[string]interface{}{
		nil,
		{"websiteId": "not-a-number"},
		{"websiteId": "999999"},
		{"websiteId": 100},
	} {
		emailProvider.subjects = nil
		_, err := svc.Send(context.Background(), domain.DispatchRequest{
			UserID:   7,
			Title:    "SEO Score Drop",
			Metadata: metadata,
		})
		require.NoError(t, err)
		require.Len(t, emailProvider.subjects, 1)
		assert.Equal(t, "SEO Score Drop", emailProvider.subjects[0])
	}
}

func TestSendUnknownUser(t *testing.T) {
	svc, _, _, _ := setupNotificationService(t)

	_, err := svc.Send(context.Background(), domain.DispatchRequest{
		UserID: 42,
		Title:  "Anything",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestSendRequiresTitle(t *testing.T) {
	svc, db, _, _ := setupNotificationService(t)
	seedUser(t, db, 7, nil)

	_, err := svc.Send(context.Background(), domain.DispatchRequest{
		UserID: 7,
		Title:  "   ",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)
}

func TestSendDefaultsTypeToSystem(t *testing.T) {
	svc, db, _, _ := setupNotificationService(t)
	seedUser(t, db, 7, nil)

	result, err := svc.Send(context.Background(), domain.DispatchRequest{
		UserID: 7,
		Title:  "Maintenance window",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TypeSystem, result.Notification.Type)
}

func TestNotificationLifecycle(t *testing.T) {
	svc, db, _, _ := setupNotificationService(t)
	seedUser(t, db, 7, func(u *userdomain.User) { u.NotifyEmail = false })

	for i := 0; i < 3; i++ {
		_, err := svc.Send(context.Background(), domain.DispatchRequest{
			UserID: 7,
			Title:  "Alert",
			Type:   domain.TypeAlert,
		})
		require.NoError(t, err)
	}

	ctx := userCtx(7)

	unread, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)

	notifications, err := svc.List(ctx, domain.ListNotificationsRequest{})
	require.NoError(t, err)
	require.Len(t, notifications, 3)

	require.NoError(t, svc.MarkAsRead(ctx, notifications[0].ID))

	unread, err = svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	updated, err := svc.MarkAllAsRead(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	unread, err = svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, unread)

	require.NoError(t, svc.Delete(ctx, notifications[1].ID))

	remaining, err := svc.List(ctx, domain.ListNotificationsRequest{})
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestListFiltersByTypeAndRead(t *testing.T) {
	svc, db, _, _ := setupNotificationService(t)
	seedUser(t, db, 7, func(u *userdomain.User) { u.NotifyEmail = false })

	_, err := svc.Send(context.Background(), domain.DispatchRequest{UserID: 7, Title: "a", Type: domain.TypeAlert})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), domain.DispatchRequest{UserID: 7, Title: "b", Type: domain.TypeSystem})
	require.NoError(t, err)

	ctx := userCtx(7)
	alertType := domain.TypeAlert

	alerts, err := svc.List(ctx, domain.ListNotificationsRequest{Type: &alertType})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "a", alerts[0].Title)

	read := true
	readOnly, err := svc.List(ctx, domain.ListNotificationsRequest{Read: &read})
	require.NoError(t, err)
	assert.Empty(t, readOnly)
}

func TestMarkAsReadUnknownOrForeignID(t *testing.T) {
	svc, db, _, _ := setupNotificationService(t)
	seedUser(t, db, 7, nil)
	seedUserSecondary(t, db, 8)

	_, err := svc.Send(context.Background(), domain.DispatchRequest{UserID: 7, Title: "x"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkAsRead(userCtx(7), "garbage"), domain.ErrInvalidID)
	assert.ErrorIs(t, svc.MarkAsRead(userCtx(7), uuid.NewString()), domain.ErrNotFound)

	// Another user cannot mark someone else's notification.
	notifications, err := svc.List(userCtx(7), domain.ListNotificationsRequest{})
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.ErrorIs(t, svc.MarkAsRead(userCtx(8), notifications[0].ID), domain.ErrNotFound)
}

func TestDeleteUnknownID(t *testing.T) {
	svc, db, _, _ := setupNotificationService(t)
	seedUser(t, db, 7, nil)

	assert.ErrorIs(t, svc.Delete(userCtx(7), "garbage"), domain.ErrInvalidID)
	assert.ErrorIs(t, svc.Delete(userCtx(7), uuid.NewString()), domain.ErrNotFound)
}

func seedUserSecondary(t *testing.T, db *gorm.DB, id snowflake.ID) {
	t.Helper()
	user := userdomain.User{
		ID:    id,
		Email: "second@example.com",
		Name:  "Second",
	}
	require.NoError(t, db.Create(&user).Error)
}
