package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ContentSection is one schema-free editable document, addressed by key.
// The shape of Content is decided by the reader, not the store.
type ContentSection struct {
	bun.BaseModel `bun:"table:content_sections,alias:cs"`

	SectionKey string         `bun:"section_key,pk"`
	Content    map[string]any `bun:"content,type:jsonb,notnull"`
	UpdatedAt  time.Time      `bun:"updated_at,notnull,nullzero,default:current_timestamp"`
	UpdatedBy  *string        `bun:"updated_by,type:uuid"`
}

// RenderCacheEntry is a rendered public response kept outside the process.
type RenderCacheEntry struct {
	bun.BaseModel `bun:"table:render_cache,alias:rc"`

	Path        string    `bun:"path,pk"`
	Body        []byte    `bun:"body,notnull"`
	ContentType string    `bun:"content_type,notnull"`
	StoredAt    time.Time `bun:"stored_at,notnull,nullzero,default:current_timestamp"`
	ExpiresAt   time.Time `bun:"expires_at,notnull"`
}
