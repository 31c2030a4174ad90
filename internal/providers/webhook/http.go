package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// HTTPProvider posts JSON payloads to user-configured webhook URLs. Only
// HTTPS endpoints are accepted.
type HTTPProvider struct {
	client *http.Client
}

func NewHTTP() *HTTPProvider {
	return &HTTPProvider{client: &http.Client{Timeout: defaultTimeout}}
}

func (p *HTTPProvider) Post(ctx context.Context, url string, payload interface{}) error {
	if !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("webhook: url must use HTTPS")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}
