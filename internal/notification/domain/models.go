package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	TypeAlert  = "ALERT"
	TypeSystem = "SYSTEM"
)

// Channel names reported back by the dispatcher.
const (
	ChannelInApp   = "in_app"
	ChannelEmail   = "email"
	ChannelWebhook = "webhook"
)

// Notification is the in-app record; email and webhook deliveries are
// side effects of the same dispatch.
type Notification struct {
	ID        string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    snowflake.ID      `gorm:"not null;index" json:"userId"`
	Title     string            `gorm:"not null" json:"title"`
	Message   string            `gorm:"not null" json:"message"`
	Type      string            `gorm:"type:varchar(32);not null" json:"type"`
	Read      bool              `gorm:"not null;default:false" json:"read"`
	Metadata  datatypes.JSONMap `json:"metadata"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}
