package content

import (
	"context"
	"fmt"
)

// Section is a typed accessor for one known section key.
type Section[T Content] struct {
	Key      string
	Defaults func() T
}

// Read returns the typed section. A missing row yields the defaults with
// found=false. Store errors are returned alongside the defaults so callers
// can still render.
func (s Section[T]) Read(ctx context.Context, store *Store) (T, bool, error) {
	doc, found, err := store.Read(ctx, s.Key)
	if err != nil {
		return s.Defaults(), false, err
	}
	if !found {
		return s.Defaults(), false, nil
	}
	return s.decode(doc), true, nil
}

// Write replaces the stored document with v.
func (s Section[T]) Write(ctx context.Context, store *Store, v T) error {
	doc, err := encode(v)
	if err != nil {
		return fmt.Errorf("write %s: %w", s.Key, err)
	}
	return store.Write(ctx, s.Key, doc)
}

func (s Section[T]) decode(doc Document) T {
	v := s.Defaults()
	logDecodeProblem(s.Key, decodeInto(doc, &v))
	return v
}
