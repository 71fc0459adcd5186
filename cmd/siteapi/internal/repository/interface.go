package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
)

// ErrNotFound is returned when a lookup or a keyed mutation matches no row.
var ErrNotFound = errors.New("not found")

// ErrUnknownFlag is returned when a listing filters on a column the table
// does not expose as a flag.
var ErrUnknownFlag = errors.New("unknown flag")

// UserRepository exposes persistence operations for console users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetPassword(ctx context.Context, id string, passwordHash string) error
	SetDisabled(ctx context.Context, id string, at *time.Time) error
	List(ctx context.Context) ([]models.User, error)
}

// AdministratorRepository exposes persistence operations for authorization profiles.
// Request handlers only call Get; the rest is used by the admins CLI.
type AdministratorRepository interface {
	Get(ctx context.Context, id string) (*models.AdministratorProfile, error)
	Upsert(ctx context.Context, profile *models.AdministratorProfile) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.AdministratorProfile, error)
}

// SessionRepository exposes persistence operations for browser sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	Extend(ctx context.Context, id string, expiresAt time.Time) error
	Revoke(ctx context.Context, id string) error
	RevokeByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// ContentRepository exposes the key-addressed content_sections table.
type ContentRepository interface {
	Get(ctx context.Context, key string) (*models.ContentSection, error)
	Upsert(ctx context.Context, section *models.ContentSection) error
	List(ctx context.Context) ([]models.ContentSection, error)
}

// ListOptions narrows a record listing.
type ListOptions struct {
	// Flag restricts the listing to rows where the named boolean column is true.
	Flag string
	// Limit caps the number of rows (0 means unlimited).
	Limit int
}

// RecordRepository exposes ordered CRUD over one domain table.
type RecordRepository[T any] interface {
	List(ctx context.Context, opts ListOptions) ([]T, error)
	GetByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, record *T) error
	Delete(ctx context.Context, id string) error
}

// RenderCacheRepository stores rendered public responses.
type RenderCacheRepository interface {
	Get(ctx context.Context, path string) (*models.RenderCacheEntry, error)
	Put(ctx context.Context, entry *models.RenderCacheEntry) error
	Invalidate(ctx context.Context, at time.Time, paths ...string) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
