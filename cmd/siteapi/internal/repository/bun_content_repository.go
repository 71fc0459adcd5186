package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunContentRepository implements ContentRepository using Bun ORM
type BunContentRepository struct {
	db *bun.DB
}

// NewBunContentRepository creates a new Bun-based content repository
func NewBunContentRepository(db *bun.DB) *BunContentRepository {
	return &BunContentRepository{db: db}
}

// Get retrieves a section by key
func (r *BunContentRepository) Get(ctx context.Context, key string) (*models.ContentSection, error) {
	section := new(models.ContentSection)
	err := r.db.NewSelect().
		Model(section).
		Where("section_key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("content section %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("get content section: %w", err)
	}
	return section, nil
}

// Upsert replaces the whole document stored under section.SectionKey.
// Concurrent writers race; the last statement to commit wins.
func (r *BunContentRepository) Upsert(ctx context.Context, section *models.ContentSection) error {
	if section.Content == nil {
		section.Content = map[string]any{}
	}
	section.UpdatedAt = time.Now().UTC()
	_, err := r.db.NewInsert().
		Model(section).
		On("CONFLICT (section_key) DO UPDATE").
		Set("content = EXCLUDED.content").
		Set("updated_at = EXCLUDED.updated_at").
		Set("updated_by = EXCLUDED.updated_by").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert content section: %w", err)
	}
	return nil
}

// List retrieves every stored section ordered by key
func (r *BunContentRepository) List(ctx context.Context) ([]models.ContentSection, error) {
	var sections []models.ContentSection
	err := r.db.NewSelect().
		Model(&sections).
		Order("section_key ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content sections: %w", err)
	}
	return sections, nil
}
