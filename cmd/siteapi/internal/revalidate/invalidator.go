package revalidate

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/telemetry"
)

const tracerName = "siteapi/revalidate"

// Invalidator marks cached responses for a set of paths stale.
// A nil cache makes it a no-op, which is the "no render cache" deployment.
type Invalidator struct {
	cache PageCache
	now   func() time.Time
}

// NewInvalidator creates an invalidator over cache.
func NewInvalidator(cache PageCache) *Invalidator {
	return &Invalidator{cache: cache, now: time.Now}
}

// Invalidate marks every path stale. Once it returns nil no reader can be
// served a response rendered before the call.
func (i *Invalidator) Invalidate(ctx context.Context, paths ...string) error {
	if i == nil || i.cache == nil || len(paths) == 0 {
		return nil
	}

	ctx, span := telemetry.StartSpan(ctx, tracerName, "revalidate.Invalidate",
		attribute.StringSlice(telemetry.AttrInvalidatedPaths, paths),
	)
	defer span.End()

	if err := i.cache.Invalidate(ctx, i.now(), paths...); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("invalidate %v: %w", paths, err)
	}
	log.Printf("revalidate: invalidated %v", paths)
	return nil
}
