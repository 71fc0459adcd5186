package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/repository"
)

func TestProfileStore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := &models.User{Email: "owner@example.com", PasswordHash: "x"}
	require.NoError(t, repository.NewBunUserRepository(db).Create(ctx, user))

	admins := repository.NewBunAdministratorRepository(db)
	store := NewProfileStore(admins)

	profile, err := store.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, profile, "authenticated but not authorized")

	require.NoError(t, admins.Upsert(ctx, &models.AdministratorProfile{ID: user.ID, FullName: "Owner", Role: models.RoleAdmin}))
	profile, err = store.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Owner", profile.FullName)
	assert.Equal(t, models.RoleAdmin, profile.Role)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	ctx := SetPrincipal(context.Background(), Principal{
		Identity: Identity{ID: "u1", Email: "a@example.com"},
		Profile:  AdministratorProfile{ID: "u1", Role: models.RoleEditor},
	})
	principal, ok := PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "a@example.com", principal.Identity.Email)
	assert.Equal(t, models.RoleEditor, principal.Profile.Role)
}
