package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ServerMetrics holds metric instruments for HTTP server telemetry.
// Initialize once at server startup and reuse throughout the application lifecycle.
type ServerMetrics struct {
	RequestCounter  metric.Int64Counter     // Total HTTP requests
	RequestDuration metric.Float64Histogram // HTTP request latency
	ErrorCounter    metric.Int64Counter     // Total HTTP errors (5xx)
}

// NewServerMetrics creates a new ServerMetrics instance with pre-configured instruments.
func NewServerMetrics() (*ServerMetrics, error) {
	meter := otel.Meter("siteapi/http")

	requestCounter, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	// Buckets: 5ms, 10ms, 25ms, 50ms, 100ms, 250ms, 500ms, 1s, 2.5s, 5s
	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"http.server.error.count",
		metric.WithDescription("Total number of HTTP server errors (5xx)"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &ServerMetrics{
		RequestCounter:  requestCounter,
		RequestDuration: requestDuration,
		ErrorCounter:    errorCounter,
	}, nil
}

// RecordRequest records an HTTP request with method, route, status, and duration.
func (m *ServerMetrics) RecordRequest(ctx context.Context, method, route, status string, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPRoute, route),
		attribute.String(AttrHTTPStatusCode, status),
	)

	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, durationMs, attrs)

	if len(status) > 0 && status[0] == '5' {
		m.ErrorCounter.Add(ctx, 1, attrs)
	}
}

// Middleware records every request against its chi route pattern.
func (m *ServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RecordRequest(r.Context(), r.Method, route, strconv.Itoa(status), float64(time.Since(start).Microseconds())/1000)
	})
}

// SiteMetrics holds metric instruments for the access-control and content paths.
type SiteMetrics struct {
	GuardDecisions metric.Int64Counter // Route guard outcomes
	Invalidations  metric.Int64Counter // Paths marked stale after a commit
	Mutations      metric.Int64Counter // Content mutations by outcome
	Uploads        metric.Int64Counter // Asset uploads by outcome
}

// NewSiteMetrics creates metric instruments for guard, mutation and upload telemetry.
func NewSiteMetrics() (*SiteMetrics, error) {
	meter := otel.Meter("siteapi/site")

	guardDecisions, err := meter.Int64Counter(
		"guard.decision.count",
		metric.WithDescription("Route guard decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}

	invalidations, err := meter.Int64Counter(
		"cache.invalidation.count",
		metric.WithDescription("Paths invalidated after committed writes"),
		metric.WithUnit("{path}"),
	)
	if err != nil {
		return nil, err
	}

	mutations, err := meter.Int64Counter(
		"content.mutation.count",
		metric.WithDescription("Content mutations"),
		metric.WithUnit("{mutation}"),
	)
	if err != nil {
		return nil, err
	}

	uploads, err := meter.Int64Counter(
		"asset.upload.count",
		metric.WithDescription("Asset uploads"),
		metric.WithUnit("{upload}"),
	)
	if err != nil {
		return nil, err
	}

	return &SiteMetrics{
		GuardDecisions: guardDecisions,
		Invalidations:  invalidations,
		Mutations:      mutations,
		Uploads:        uploads,
	}, nil
}

// Site returns the process-wide site metrics. Instruments come from the global
// meter provider, which is a noop unless one was installed.
func Site() *SiteMetrics {
	m, err := NewSiteMetrics()
	if err != nil {
		return nil
	}
	return m
}

// RecordGuardDecision counts one guard outcome. Safe on a nil receiver.
func (s *SiteMetrics) RecordGuardDecision(ctx context.Context, decision, reason string) {
	if s == nil {
		return
	}
	s.GuardDecisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrGuardDecision, decision),
		attribute.String(AttrGuardReason, reason),
	))
}

// RecordInvalidation counts invalidated paths for an entity kind. Safe on a nil receiver.
func (s *SiteMetrics) RecordInvalidation(ctx context.Context, kind string, paths int, err error) {
	if s == nil {
		return
	}
	s.Invalidations.Add(ctx, int64(paths), metric.WithAttributes(
		attribute.String(AttrEntityKind, kind),
		attribute.Bool(AttrSuccess, err == nil),
	))
}

// RecordMutation counts a mutation outcome. Safe on a nil receiver.
func (s *SiteMetrics) RecordMutation(ctx context.Context, kind, op string, err error) {
	if s == nil {
		return
	}
	s.Mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrEntityKind, kind),
		attribute.String(AttrOperation, op),
		attribute.Bool(AttrSuccess, err == nil),
	))
}

// RecordUpload counts an upload outcome. Safe on a nil receiver.
func (s *SiteMetrics) RecordUpload(ctx context.Context, contentType string, err error) {
	if s == nil {
		return
	}
	s.Uploads.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrAssetContentType, contentType),
		attribute.Bool(AttrSuccess, err == nil),
	))
}

// Common metric attribute keys
const (
	AttrHTTPMethod     = "http.method"
	AttrHTTPRoute      = "http.route"
	AttrHTTPStatusCode = "http.status_code"

	AttrSuccess = "success"
)
