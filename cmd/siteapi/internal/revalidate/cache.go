package revalidate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/repository"
)

// Page is a rendered public response.
type Page struct {
	Body        []byte
	ContentType string
}

// PageCache stores rendered responses outside the process.
//
// Implementations must honour invalidation ordering: a Put whose renderedAt
// precedes the latest Invalidate of the same path is dropped.
type PageCache interface {
	// Get returns the cached page, or found=false on a miss.
	Get(ctx context.Context, path string) (page *Page, found bool, err error)
	// Put stores a page rendered starting at renderedAt.
	Put(ctx context.Context, path string, page Page, renderedAt time.Time, ttl time.Duration) error
	// Invalidate marks paths stale as of at.
	Invalidate(ctx context.Context, at time.Time, paths ...string) error
}

// DBCache keeps pages in the render_cache table.
type DBCache struct {
	repo repository.RenderCacheRepository
}

// NewDBCache creates a database-backed page cache.
func NewDBCache(repo repository.RenderCacheRepository) *DBCache {
	return &DBCache{repo: repo}
}

func (c *DBCache) Get(ctx context.Context, path string) (*Page, bool, error) {
	entry, err := c.repo.Get(ctx, path)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &Page{Body: entry.Body, ContentType: entry.ContentType}, true, nil
}

func (c *DBCache) Put(ctx context.Context, path string, page Page, renderedAt time.Time, ttl time.Duration) error {
	return c.repo.Put(ctx, &models.RenderCacheEntry{
		Path:        path,
		Body:        page.Body,
		ContentType: page.ContentType,
		StoredAt:    renderedAt,
		ExpiresAt:   renderedAt.Add(ttl),
	})
}

func (c *DBCache) Invalidate(ctx context.Context, at time.Time, paths ...string) error {
	return c.repo.Invalidate(ctx, at, paths...)
}

// Purge drops expired entries and tombstones older than cutoff.
func (c *DBCache) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := c.repo.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge render cache: %w", err)
	}
	return n, nil
}

var _ PageCache = (*DBCache)(nil)
