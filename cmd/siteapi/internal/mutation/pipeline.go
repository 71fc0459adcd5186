package mutation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/content"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/telemetry"
)

const tracerName = "siteapi/mutation"

// Mutation is one editor action.
type Mutation struct {
	Kind Kind
	Op   Op
	// Key is the section key for KindSection.
	Key string
	// ID is the record ID for OpUpdate and OpDelete.
	ID string
	// Fields holds the raw form input.
	Fields url.Values
	// Document replaces Fields for section upserts that arrive as JSON.
	Document content.Document
}

// Ack acknowledges a committed mutation.
type Ack struct {
	Kind Kind
	Op   Op
	Key  string
	ID   string
	// Location is the admin listing to return to.
	Location string
	// Paths were marked stale.
	Paths []string
}

// Committed is emitted once a write has been acknowledged by the store.
type Committed struct {
	Kind  Kind
	Op    Op
	Key   string
	ID    string
	Paths []string
	At    time.Time
}

// Hook observes committed writes. Hooks run after the store acknowledged the
// write and never affect the mutation result.
type Hook interface {
	OnCommit(ctx context.Context, event Committed) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, event Committed) error

// OnCommit calls f.
func (f HookFunc) OnCommit(ctx context.Context, event Committed) error { return f(ctx, event) }

// Invalidator marks cached responses stale.
type Invalidator interface {
	Invalidate(ctx context.Context, paths ...string) error
}

// InvalidateHook invalidates every path of a committed event.
func InvalidateHook(inv Invalidator) Hook {
	return HookFunc(func(ctx context.Context, event Committed) error {
		return inv.Invalidate(ctx, event.Paths...)
	})
}

// Pipeline validates, persists and then signals invalidation, in that order.
type Pipeline struct {
	sections *content.Store
	records  map[Kind]recordWriter
	registry Registry
	hooks    []Hook
	metrics  *telemetry.SiteMetrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRegistry overrides the kind to paths registry.
func WithRegistry(r Registry) Option {
	return func(p *Pipeline) { p.registry = r }
}

// WithHook adds a post-commit hook.
func WithHook(h Hook) Option {
	return func(p *Pipeline) { p.hooks = append(p.hooks, h) }
}

// WithMetrics records mutation and invalidation counts.
func WithMetrics(m *telemetry.SiteMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// NewPipeline creates a mutation pipeline.
func NewPipeline(sections *content.Store, records Records, opts ...Option) *Pipeline {
	p := &Pipeline{
		sections: sections,
		records:  records.writers(),
		registry: DefaultRegistry,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the pipeline's path registry.
func (p *Pipeline) Registry() Registry {
	return p.registry
}

// Mutate runs one mutation.
//
// Errors are *ValidationError (nothing persisted), *PersistenceError (the
// store rejected the write) or a context error (cancelled before the store
// acknowledged). In every error case no hook runs.
func (p *Pipeline) Mutate(ctx context.Context, m Mutation) (ack Ack, err error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "mutation.Mutate",
		attribute.String(telemetry.AttrEntityKind, string(m.Kind)),
		attribute.String(telemetry.AttrOperation, string(m.Op)),
	)
	defer span.End()
	defer func() {
		telemetry.RecordError(span, err)
		p.metrics.RecordMutation(ctx, string(m.Kind), string(m.Op), err)
	}()

	id, err := p.persist(ctx, m)
	if err != nil {
		return Ack{}, err
	}

	event := Committed{
		Kind:  m.Kind,
		Op:    m.Op,
		Key:   m.Key,
		ID:    id,
		Paths: p.registry.Paths(m.Kind, m.Key),
		At:    time.Now().UTC(),
	}
	span.SetAttributes(attribute.StringSlice(telemetry.AttrInvalidatedPaths, event.Paths))
	p.emit(ctx, event)

	return Ack{
		Kind:     m.Kind,
		Op:       m.Op,
		Key:      m.Key,
		ID:       id,
		Location: p.registry.Listing(m.Kind, m.Key),
		Paths:    event.Paths,
	}, nil
}

func (p *Pipeline) persist(ctx context.Context, m Mutation) (string, error) {
	if m.Kind == KindSection {
		return "", p.persistSection(ctx, m)
	}

	writer, ok := p.records[m.Kind]
	if !ok {
		return "", &ValidationError{Field: "kind", Message: fmt.Sprintf("%s: %q", ErrUnknownKind, m.Kind)}
	}
	if (m.Op == OpUpdate || m.Op == OpDelete) && m.ID == "" {
		return "", &ValidationError{Field: "id", Message: "id is required"}
	}

	var fields map[string]any
	if m.Op == OpCreate || m.Op == OpUpdate {
		var err error
		if fields, err = RecordForms[m.Kind].Coerce(m.Fields); err != nil {
			return "", err
		}
		if m.Kind == KindServices && fields["slug"] == nil {
			fields["slug"] = Slugify(fmt.Sprint(fields["title"]))
		}
	}

	// Nothing has been sent to the store yet.
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch m.Op {
	case OpCreate:
		id, err := writer.create(ctx, fields)
		if err != nil {
			return "", classify(err)
		}
		return id, nil
	case OpUpdate:
		if err := writer.update(ctx, m.ID, fields); err != nil {
			return "", classify(err)
		}
		return m.ID, nil
	case OpDelete:
		if err := writer.delete(ctx, m.ID); err != nil {
			return "", classify(err)
		}
		return m.ID, nil
	}
	return "", &ValidationError{Field: "op", Message: fmt.Sprintf("unsupported operation %q for %s", m.Op, m.Kind)}
}

func (p *Pipeline) persistSection(ctx context.Context, m Mutation) error {
	if m.Op != OpUpsert {
		return &ValidationError{Field: "op", Message: fmt.Sprintf("unsupported operation %q for sections", m.Op)}
	}
	if m.Key == "" {
		return &ValidationError{Field: "key", Message: "section key is required"}
	}

	doc := m.Document
	if doc == nil {
		form, ok := SectionForms[m.Key]
		if !ok {
			return &ValidationError{Field: "key", Message: fmt.Sprintf("unknown section %q", m.Key)}
		}
		fields, err := form.Coerce(m.Fields)
		if err != nil {
			return err
		}
		doc = sectionDocument(form, m.Fields, fields)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.sections.Write(ctx, m.Key, doc); err != nil {
		return classify(err)
	}
	return nil
}

// sectionDocument builds the stored document from coerced section fields.
// A text field submitted empty is stored as "" so the clear sticks. Anything
// else left empty is omitted and reads back as its default.
func sectionDocument(form Form, submitted url.Values, fields map[string]any) content.Document {
	doc := content.Document{}
	for _, field := range form {
		v := fields[field.Name]
		switch {
		case v != nil:
			doc[field.Name] = v
		case field.Type == Text && submitted.Has(field.Name):
			doc[field.Name] = ""
		}
	}
	return doc
}

// classify sorts a store error into the mutation error taxonomy.
func classify(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	var se *content.SchemaError
	if errors.As(err, &se) {
		return &ValidationError{Field: se.Path, Message: se.Error()}
	}
	// Includes cancellation after the statement was sent: without an
	// acknowledgement the write is reported failed and nothing is invalidated.
	return &PersistenceError{Err: err}
}

// emit runs every hook. Hooks get a context that outlives request
// cancellation so an acknowledged write is always signalled.
func (p *Pipeline) emit(ctx context.Context, event Committed) {
	hookCtx := context.WithoutCancel(ctx)
	for _, h := range p.hooks {
		err := h.OnCommit(hookCtx, event)
		p.metrics.RecordInvalidation(hookCtx, string(event.Kind), len(event.Paths), err)
		if err != nil {
			log.Printf("mutation: post-commit hook failed for %s %s %s%s: %v", event.Op, event.Kind, event.Key, event.ID, err)
		}
	}
}
