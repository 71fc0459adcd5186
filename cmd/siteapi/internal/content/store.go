package content

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/auth"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/repository"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/telemetry"
)

const tracerName = "siteapi/content"

// Validator checks a document before it is written.
type Validator interface {
	Validate(key string, doc Document) error
}

// Store is the generic key-addressed content store. It holds no state of its
// own; every Read goes to the repository.
type Store struct {
	repo      repository.ContentRepository
	validator Validator
}

// NewStore creates a content store. validator may be nil.
func NewStore(repo repository.ContentRepository, validator Validator) *Store {
	return &Store{repo: repo, validator: validator}
}

// Read returns the document stored under key. A missing key is
// (nil, false, nil), never an error.
func (s *Store) Read(ctx context.Context, key string) (Document, bool, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "content.Read",
		attribute.String(telemetry.AttrSectionKey, key),
	)
	defer span.End()

	section, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, nil
		}
		telemetry.RecordError(span, err)
		return nil, false, fmt.Errorf("read section %s: %w", key, err)
	}
	return Document(section.Content), true, nil
}

// Write replaces the whole document stored under key. The last writer wins.
// Documents for known keys are validated first.
func (s *Store) Write(ctx context.Context, key string, doc Document) error {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "content.Write",
		attribute.String(telemetry.AttrSectionKey, key),
	)
	defer span.End()

	if key == "" {
		return fmt.Errorf("write section: empty key")
	}
	if doc == nil {
		doc = Document{}
	}
	if s.validator != nil {
		if err := s.validator.Validate(key, doc); err != nil {
			telemetry.RecordError(span, err)
			return err
		}
	}

	section := &models.ContentSection{
		SectionKey: key,
		Content:    map[string]any(doc),
	}
	if principal, ok := auth.PrincipalFromContext(ctx); ok {
		section.UpdatedBy = &principal.Identity.ID
	}

	if err := s.repo.Upsert(ctx, section); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("write section %s: %w", key, err)
	}
	return nil
}

// ReadAll returns every stored section decoded to its typed form, keyed by section key.
func (s *Store) ReadAll(ctx context.Context) (map[string]Content, error) {
	sections, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sections: %w", err)
	}
	out := make(map[string]Content, len(sections))
	for _, section := range sections {
		out[section.SectionKey] = Decode(section.SectionKey, Document(section.Content))
	}
	return out, nil
}
