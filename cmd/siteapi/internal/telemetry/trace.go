package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan creates a new span for an operation.
//
//	ctx, span := telemetry.StartSpan(ctx, "siteapi/mutation", "mutation.Mutate",
//	    attribute.String(telemetry.AttrEntityKind, string(kind)),
//	)
//	defer span.End()
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError records an error on the span and sets the span status to error.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// AddEvent adds a named event to the span with optional attributes.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Span attribute keys
const (
	AttrGuardPath     = "guard.path"
	AttrGuardDecision = "guard.decision"
	AttrGuardReason   = "guard.reason"

	AttrPrincipalID   = "principal.id"
	AttrPrincipalRole = "principal.role"

	AttrSectionKey = "content.section_key"
	AttrEntityKind = "content.entity_kind"
	AttrEntityID   = "content.entity_id"
	AttrOperation  = "content.operation"

	AttrInvalidatedPaths = "cache.invalidated_paths"

	AttrAssetKey         = "asset.key"
	AttrAssetContentType = "asset.content_type"
	AttrAssetSize        = "asset.size"
)
