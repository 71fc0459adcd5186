package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/repository"
)

// ProfileStore reads administrator profiles. It never caches: a revoked
// profile takes effect on the next request.
type ProfileStore struct {
	repo repository.AdministratorRepository
}

// NewProfileStore creates a profile store over the administrator repository.
func NewProfileStore(repo repository.AdministratorRepository) *ProfileStore {
	return &ProfileStore{repo: repo}
}

// GetProfile returns the profile for id, or (nil, nil) when the identity is
// not an administrator.
func (s *ProfileStore) GetProfile(ctx context.Context, id string) (*AdministratorProfile, error) {
	profile, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &AdministratorProfile{
		ID:       profile.ID,
		FullName: profile.FullName,
		Role:     profile.Role,
	}, nil
}
