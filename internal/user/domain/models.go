package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// User is an account row. Authentication is handled by an external identity
// service; this table carries profile data and notification preferences.
type User struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Email         string       `gorm:"not null;uniqueIndex" json:"email"`
	Name          string       `gorm:"not null" json:"name"`
	NotifyEmail   bool         `gorm:"not null;default:true" json:"notifyEmail"`
	NotifyInApp   bool         `gorm:"not null;default:true" json:"notifyInApp"`
	NotifyWebhook bool         `gorm:"not null;default:false" json:"notifyWebhook"`
	WebhookURL    *string      `json:"webhookUrl,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Preferences is the read-only view the notification dispatcher consumes.
type Preferences struct {
	Email      bool
	InApp      bool
	Webhook    bool
	WebhookURL string
}

func (u User) Preferences() Preferences {
	prefs := Preferences{
		Email:   u.NotifyEmail,
		InApp:   u.NotifyInApp,
		Webhook: u.NotifyWebhook,
	}
	if u.WebhookURL != nil {
		prefs.WebhookURL = *u.WebhookURL
	}
	return prefs
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
}

var ErrNotFound = errors.New("user_not_found")
