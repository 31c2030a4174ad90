package domain

import (
	"context"
	"errors"
)

type CreateWebsiteRequest struct {
	URL  string
	Name string
}

type GetWebsiteRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateWebsiteRequest) (Website, error)
	List(context.Context) ([]Website, error)
	GetByID(context.Context, GetWebsiteRequest) (Website, error)
}

var (
	ErrInvalidUser = errors.New("invalid_user")
	ErrInvalidURL  = errors.New("invalid_url")
	ErrInvalidID   = errors.New("invalid_id")
	ErrNotFound    = errors.New("website_not_found")
)
