package notifications

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Skip reasons reported by notificationsSkipped.
const (
	skipUnknownKind = "unknown_kind"
	skipNoTemplate  = "no_template"
)

var (
	notificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notifications written to storage",
		},
		[]string{"kind"},
	)

	notificationsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_skipped_total",
			Help: "Total number of notifications not created because the catalog had no entry",
		},
		[]string{"kind", "reason"},
	)

	notificationWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_write_failures_total",
			Help: "Total number of failed notification writes",
		},
		[]string{"op"},
	)

	notificationsMarkedRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_marked_read_total",
			Help: "Total number of notifications flipped to read",
		},
	)

	activeSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notifications_active_subscriptions",
			Help: "Number of live notification subscriptions",
		},
	)
)

var tracer = otel.Tracer("github.com/dmitrymomot/internhub/pkg/notifications")

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "notifications."+name, trace.WithAttributes(attrs...))
}

// endSpan records err on span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
