package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// DispatchRequest fans one event out to the user's enabled channels.
type DispatchRequest struct {
	UserID   snowflake.ID
	Title    string
	Message  string
	Type     string
	Metadata map[string]interface{}
}

// DispatchResult reports the stored in-app notification and the channels
// that were enabled and attempted. A listed channel is not a delivery
// guarantee; email and webhook sends are best effort.
type DispatchResult struct {
	Notification Notification
	Channels     []string
}

type ListNotificationsRequest struct {
	Type  *string
	Read  *bool
	Limit int
}

type Dispatcher interface {
	Send(context.Context, DispatchRequest) (DispatchResult, error)
}

type Service interface {
	List(context.Context, ListNotificationsRequest) ([]Notification, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
	UnreadCount(ctx context.Context) (int64, error)
}

var (
	ErrInvalidUser  = errors.New("invalid_user")
	ErrInvalidID    = errors.New("invalid_notification_id")
	ErrNotFound     = errors.New("notification_not_found")
	ErrInvalidTitle = errors.New("invalid_title")
)
