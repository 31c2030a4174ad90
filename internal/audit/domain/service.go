package domain

import (
	"context"
	"errors"
)

type RecordAuditRequest struct {
	WebsiteID          string
	OverallScore       int
	SEOScore           int
	PerformanceScore   int
	AccessibilityScore int
	SecurityScore      int
	MobileScore        int
	ContentScore       int
}

type ListAuditsRequest struct {
	WebsiteID string
	Limit     int
}

type Service interface {
	Record(context.Context, RecordAuditRequest) (Audit, error)
	List(context.Context, ListAuditsRequest) ([]Audit, error)
}

var (
	ErrInvalidUser    = errors.New("invalid_user")
	ErrInvalidWebsite = errors.New("invalid_website")
	ErrInvalidScore   = errors.New("invalid_score")
)
