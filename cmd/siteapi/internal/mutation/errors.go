package mutation

import (
	"errors"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/repository"
)

// ErrNotFound is matched (errors.Is) by a PersistenceError raised for an
// update or delete of a missing record.
var ErrNotFound = repository.ErrNotFound

// ErrUnknownKind is returned for a mutation on an unregistered entity kind.
var ErrUnknownKind = errors.New("unknown entity kind")

// ValidationError rejects input before anything is persisted.
// Message is shown to the editor verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// PersistenceError reports a failed write. The message is the store's,
// unchanged, and no invalidation happened.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }

// NotFound reports whether the write targeted a missing record.
func (e *PersistenceError) NotFound() bool { return errors.Is(e.Err, ErrNotFound) }
