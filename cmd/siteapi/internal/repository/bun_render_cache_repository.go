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

// BunRenderCacheRepository implements RenderCacheRepository using Bun ORM.
//
// Invalidation writes an already-expired tombstone stamped with the
// invalidation time instead of deleting the row. A fill only replaces a row
// stamped no later than its own render start, so a render that began before
// an invalidation can never overwrite it.
type BunRenderCacheRepository struct {
	db *bun.DB
}

// NewBunRenderCacheRepository creates a new Bun-based render cache repository
func NewBunRenderCacheRepository(db *bun.DB) *BunRenderCacheRepository {
	return &BunRenderCacheRepository{db: db}
}

// guardedUpsert is portable between PostgreSQL and SQLite: the target table is
// referenced by name because neither dialect is given an alias here.
const guardedUpsert = `INSERT INTO render_cache (path, body, content_type, stored_at, expires_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (path) DO UPDATE SET
    body = excluded.body,
    content_type = excluded.content_type,
    stored_at = excluded.stored_at,
    expires_at = excluded.expires_at
WHERE render_cache.stored_at <= excluded.stored_at`

// Get returns an unexpired entry for path
func (r *BunRenderCacheRepository) Get(ctx context.Context, path string) (*models.RenderCacheEntry, error) {
	entry := new(models.RenderCacheEntry)
	err := r.db.NewSelect().
		Model(entry).
		Where("path = ?", path).
		Where("expires_at > ?", time.Now().UTC()).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("render cache %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("get render cache entry: %w", err)
	}
	return entry, nil
}

// Put stores the entry for entry.Path unless the path was invalidated (or
// refilled) after entry.StoredAt. StoredAt should be the render start time.
func (r *BunRenderCacheRepository) Put(ctx context.Context, entry *models.RenderCacheEntry) error {
	if entry.StoredAt.IsZero() {
		entry.StoredAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, guardedUpsert,
		entry.Path, entry.Body, entry.ContentType, entry.StoredAt.UTC(), entry.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("put render cache entry: %w", err)
	}
	return nil
}

// Invalidate marks the given paths stale as of at
func (r *BunRenderCacheRepository) Invalidate(ctx context.Context, at time.Time, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	at = at.UTC()
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, path := range paths {
			if _, err := tx.ExecContext(ctx, guardedUpsert, path, []byte{}, "", at, at); err != nil {
				return fmt.Errorf("invalidate render cache %s: %w", path, err)
			}
		}
		return nil
	})
}

// DeleteExpired drops entries and tombstones that expired before cutoff
func (r *BunRenderCacheRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.RenderCacheEntry)(nil)).
		Where("expires_at < ?", cutoff.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete expired render cache entries: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
