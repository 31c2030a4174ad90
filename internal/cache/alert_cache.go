package cache

import (
	"time"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/sitepulse/sitepulse/internal/alert/domain"
)

const defaultAlertTTL = 60 * time.Second

type alertKey struct {
	userID     snowflake.ID
	websiteID  snowflake.ID
	unreadOnly bool
}

// AlertCache stores the full filtered alert list per (user, website,
// unreadOnly) variant. Pagination happens in memory on top of the cached
// list, so a single entry serves every page of the same filter.
type AlertCache interface {
	Get(userID, websiteID snowflake.ID, unreadOnly bool) ([]alertdomain.Alert, bool)
	Set(userID, websiteID snowflake.ID, unreadOnly bool, alerts []alertdomain.Alert)

	// Invalidate drops every cached entry belonging to the user. Coarse on
	// purpose: alert creation and mark-read both change unread variants.
	Invalidate(userID snowflake.ID)
}

type alertCache struct {
	entries Cache[alertKey, []alertdomain.Alert]
	ttl     time.Duration
}

func NewAlertCache() AlertCache {
	return &alertCache{
		entries: NewTTLCache[alertKey, []alertdomain.Alert](),
		ttl:     defaultAlertTTL,
	}
}

func (c *alertCache) Get(userID, websiteID snowflake.ID, unreadOnly bool) ([]alertdomain.Alert, bool) {
	return c.entries.Get(alertKey{userID: userID, websiteID: websiteID, unreadOnly: unreadOnly})
}

func (c *alertCache) Set(userID, websiteID snowflake.ID, unreadOnly bool, alerts []alertdomain.Alert) {
	if alerts == nil {
		alerts = []alertdomain.Alert{}
	}
	c.entries.Set(alertKey{userID: userID, websiteID: websiteID, unreadOnly: unreadOnly}, alerts, c.ttl)
}

func (c *alertCache) Invalidate(userID snowflake.ID) {
	c.entries.DeleteFunc(func(key alertKey) bool {
		return key.userID == userID
	})
}
