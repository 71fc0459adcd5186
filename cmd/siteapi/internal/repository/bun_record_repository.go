package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunRecordRepository implements RecordRepository for any domain table model.
// P is the pointer type of T, which carries the ordering and flag metadata.
type BunRecordRepository[T any, P interface {
	*T
	models.Record
}] struct {
	db *bun.DB
}

// NewBunRecordRepository creates a new Bun-based record repository
func NewBunRecordRepository[T any, P interface {
	*T
	models.Record
}](db *bun.DB) *BunRecordRepository[T, P] {
	return &BunRecordRepository[T, P]{db: db}
}

func (r *BunRecordRepository[T, P]) meta() P {
	return P(new(T))
}

// List retrieves records in display order, optionally filtered by a flag column
func (r *BunRecordRepository[T, P]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	var rows []T
	q := r.db.NewSelect().Model(&rows)
	meta := r.meta()

	if opts.Flag != "" {
		if !slices.Contains(meta.ListFlags(), opts.Flag) {
			return nil, fmt.Errorf("list records: %w %q", ErrUnknownFlag, opts.Flag)
		}
		q = q.Where("? = ?", bun.Ident(opts.Flag), true)
	}
	for _, order := range meta.ListOrder() {
		q = q.OrderExpr(order)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// GetByID retrieves one record
func (r *BunRecordRepository[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	rec := new(T)
	err := r.db.NewSelect().
		Model(rec).
		Where("? = ?", bun.Ident("id"), id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("record %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// Create inserts a record; the ID is assigned by the model hook when empty
func (r *BunRecordRepository[T, P]) Create(ctx context.Context, record *T) error {
	_, err := r.db.NewInsert().
		Model(record).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

// Update replaces every column except id and created_at in one statement
func (r *BunRecordRepository[T, P]) Update(ctx context.Context, record *T) error {
	id := P(record).RecordID()
	if id == "" {
		return fmt.Errorf("update record: missing id")
	}
	res, err := r.db.NewUpdate().
		Model(record).
		ExcludeColumn("id", "created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return requireAffected(res, "record "+id)
}

// Delete removes a record; a missing ID is ErrNotFound
func (r *BunRecordRepository[T, P]) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*T)(nil)).
		Where("? = ?", bun.Ident("id"), id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return requireAffected(res, "record "+id)
}

// Compile-time checks.
var (
	_ RecordRepository[models.Testimonial] = (*BunRecordRepository[models.Testimonial, *models.Testimonial])(nil)
	_ RecordRepository[models.Project]     = (*BunRecordRepository[models.Project, *models.Project])(nil)
)
