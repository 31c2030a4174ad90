package domain

import (
	"context"
	"errors"

	"github.com/sitepulse/sitepulse/pkg/db/pagination"
)

type ListAlertsRequest struct {
	WebsiteID  string
	UnreadOnly bool
	Pagination pagination.Pagination
}

type ListAlertsResponse struct {
	Alerts     []Alert             `json:"alerts"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type MarkAlertsReadRequest struct {
	WebsiteID string
	AlertIDs  []string
}

type Service interface {
	// Create persists an alert and invalidates the owner's cache entries.
	Create(context.Context, *Alert) error

	List(context.Context, ListAlertsRequest) (ListAlertsResponse, error)

	// MarkRead marks the given alerts read after verifying every id exists
	// and belongs to the website. Partial matches mutate nothing.
	MarkRead(context.Context, MarkAlertsReadRequest) error
}

var (
	ErrInvalidUser     = errors.New("invalid_user")
	ErrWebsiteRequired = errors.New("website_id_required")
	ErrWebsiteNotFound = errors.New("website_not_found")
	ErrInvalidAlertIDs = errors.New("invalid_alert_ids")
	ErrAlertsNotOwned  = errors.New("alerts_not_owned")
	ErrMarkReadFailed  = errors.New("mark_read_failed")
)
