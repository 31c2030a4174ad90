package metrics

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	auditsRecorded   metric.Int64Counter
	alertsCreated    metric.Int64Counter
	notifications    metric.Int64Counter
	rateLimitAllowed metric.Int64Counter
	rateLimitDenied  metric.Int64Counter
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "sitepulse"
	}
	meter := provider.Meter(name)

	auditsRecorded, err := meter.Int64Counter("sitepulse_audits_recorded_total")
	if err != nil {
		return nil, err
	}
	alertsCreated, err := meter.Int64Counter("sitepulse_alerts_created_total")
	if err != nil {
		return nil, err
	}
	notifications, err := meter.Int64Counter("sitepulse_notifications_dispatched_total")
	if err != nil {
		return nil, err
	}
	rateLimitAllowed, err := meter.Int64Counter("sitepulse_rate_limit_allowed_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("sitepulse_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		auditsRecorded:   auditsRecorded,
		alertsCreated:    alertsCreated,
		notifications:    notifications,
		rateLimitAllowed: rateLimitAllowed,
		rateLimitDenied:  rateLimitDenied,
	}, nil
}

// RecordAudit increments recorded audit counts.
func (m *Metrics) RecordAudit(ctx context.Context) {
	if m == nil {
		return
	}
	m.auditsRecorded.Add(ctx, 1)
}

// RecordAlertCreated increments created alert counts.
func (m *Metrics) RecordAlertCreated(ctx context.Context, category, severity string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("category", strings.TrimSpace(category)),
		attribute.String("severity", strings.TrimSpace(severity)),
	)
	m.alertsCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordNotificationDispatched increments per-channel dispatch counts.
func (m *Metrics) RecordNotificationDispatched(ctx context.Context, channel string, delivered bool) {
	if m == nil {
		return
	}
	outcome := "delivered"
	if !delivered {
		outcome = "failed"
	}
	attrs := FilterAttributes(
		attribute.String("channel", strings.TrimSpace(channel)),
		attribute.String("outcome", outcome),
	)
	m.notifications.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitAllowed increments rate limit allow counts.
func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitAllowed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint": {},
	"category": {},
	"severity": {},
	"channel":  {},
	"outcome":  {},
	"reason":   {},
	"job":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
