package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunAdministratorRepository implements AdministratorRepository using Bun ORM
type BunAdministratorRepository struct {
	db *bun.DB
}

// NewBunAdministratorRepository creates a new Bun-based profile repository
func NewBunAdministratorRepository(db *bun.DB) *BunAdministratorRepository {
	return &BunAdministratorRepository{db: db}
}

// Get retrieves the profile for a user ID. Absence is ErrNotFound.
func (r *BunAdministratorRepository) Get(ctx context.Context, id string) (*models.AdministratorProfile, error) {
	profile := new(models.AdministratorProfile)
	err := r.db.NewSelect().
		Model(profile).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("administrator profile %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get administrator profile: %w", err)
	}
	return profile, nil
}

// Upsert grants (or re-grants) a profile
func (r *BunAdministratorRepository) Upsert(ctx context.Context, profile *models.AdministratorProfile) error {
	_, err := r.db.NewInsert().
		Model(profile).
		On("CONFLICT (id) DO UPDATE").
		Set("full_name = EXCLUDED.full_name").
		Set("role = EXCLUDED.role").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert administrator profile: %w", err)
	}
	return nil
}

// Delete revokes a profile; the user row is kept
func (r *BunAdministratorRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*models.AdministratorProfile)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete administrator profile: %w", err)
	}
	return requireAffected(res, "administrator profile "+id)
}

// List retrieves all profiles
func (r *BunAdministratorRepository) List(ctx context.Context) ([]models.AdministratorProfile, error) {
	var profiles []models.AdministratorProfile
	err := r.db.NewSelect().
		Model(&profiles).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list administrator profiles: %w", err)
	}
	return profiles, nil
}
