package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
)

func createUser(t *testing.T, repo *BunUserRepository, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "$2a$10$hash"}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestBunUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	t.Run("create assigns id and normalizes email", func(t *testing.T) {
		user := createUser(t, repo, "  Owner@Example.com ")
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "owner@example.com", user.Email)

		got, err := repo.GetByEmail(ctx, "OWNER@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.NotZero(t, got.CreatedAt)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := repo.Create(ctx, &models.User{Email: "owner@example.com", PasswordHash: "x"})
		assert.Error(t, err)
	})

	t.Run("missing user is ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "0190c3a4-0000-7000-8000-000000000000")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("last login and password", func(t *testing.T) {
		user := createUser(t, repo, "editor@example.com")
		now := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, now))
		require.NoError(t, repo.SetPassword(ctx, user.ID, "$2a$10$other"))

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastLoginAt)
		assert.True(t, got.LastLoginAt.Equal(now))
		assert.Equal(t, "$2a$10$other", got.PasswordHash)

		assert.ErrorIs(t, repo.SetPassword(ctx, "0190c3a4-0000-7000-8000-000000000000", "x"), ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		users, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "editor@example.com", users[0].Email)
	})
}

func TestBunAdministratorRepository(t *testing.T) {
	db := setupTestDB(t)
	users := NewBunUserRepository(db)
	repo := NewBunAdministratorRepository(db)
	ctx := context.Background()

	user := createUser(t, users, "admin@example.com")

	_, err := repo.Get(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Upsert(ctx, &models.AdministratorProfile{ID: user.ID, FullName: "Site Owner", Role: models.RoleEditor}))
	got, err := repo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, got.Role)

	// Re-grant changes the role in place.
	require.NoError(t, repo.Upsert(ctx, &models.AdministratorProfile{ID: user.ID, FullName: "Site Owner", Role: models.RoleAdmin}))
	got, err = repo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, user.ID))
	assert.ErrorIs(t, repo.Delete(ctx, user.ID), ErrNotFound)

	// The user survives profile revocation.
	_, err = users.GetByID(ctx, user.ID)
	assert.NoError(t, err)
}

func TestBunSessionRepository(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, NewBunUserRepository(db), "admin@example.com")
	repo := NewBunSessionRepository(db)
	ctx := context.Background()

	live := &models.Session{UserID: user.ID, TokenHash: "live", ExpiresAt: time.Now().Add(time.Hour).UTC()}
	expired := &models.Session{UserID: user.ID, TokenHash: "expired", ExpiresAt: time.Now().Add(-time.Hour).UTC()}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, expired))
	assert.NotEmpty(t, live.ID)

	got, err := repo.GetByTokenHash(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)
	assert.False(t, got.Revoked)

	_, err = repo.GetByTokenHash(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	later := time.Now().Add(3 * time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, repo.Extend(ctx, live.ID, later))
	got, err = repo.GetByTokenHash(ctx, "live")
	require.NoError(t, err)
	assert.True(t, got.ExpiresAt.Equal(later))

	n, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.Revoke(ctx, live.ID))
	got, err = repo.GetByTokenHash(ctx, "live")
	require.NoError(t, err)
	assert.True(t, got.Revoked)

	// Revoked sessions cannot be extended.
	assert.ErrorIs(t, repo.Extend(ctx, live.ID, later), ErrNotFound)
}
