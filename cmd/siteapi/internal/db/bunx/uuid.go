package bunx

import "github.com/google/uuid"

// NewUUIDv7 generates a time-ordered UUIDv7 string for database primary keys.
//
// UUIDv7 keeps ids sortable by creation time and works on both PostgreSQL and
// SQLite without relying on gen_random_uuid(). It panics only when the entropy
// source fails, in which case no id generation can succeed anyway.
func NewUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}
