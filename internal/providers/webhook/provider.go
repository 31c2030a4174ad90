package webhook

import "context"

type Provider interface {
	Post(ctx context.Context, url string, payload interface{}) error
}

// NoOpProvider is used in tests.
type NoOpProvider struct{}

func (p *NoOpProvider) Post(ctx context.Context, url string, payload interface{}) error {
	return nil
}
