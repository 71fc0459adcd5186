package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
)

func TestBunRecordRepository_Testimonials(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunRecordRepository[models.Testimonial](db)
	ctx := context.Background()

	seed := []models.Testimonial{
		{RecordBase: models.RecordBase{DisplayOrder: 2}, ClientName: "B", Quote: "two", Rating: 5, ShowOnHomepage: true},
		{RecordBase: models.RecordBase{DisplayOrder: 1}, ClientName: "A", Quote: "one", Rating: 4},
		{RecordBase: models.RecordBase{DisplayOrder: 3}, ClientName: "C", Quote: "three", Rating: 5, ShowOnHomepage: true},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
		assert.NotEmpty(t, seed[i].ID)
	}

	t.Run("ordered by display_order", func(t *testing.T) {
		all, err := repo.List(ctx, ListOptions{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"A", "B", "C"}, []string{all[0].ClientName, all[1].ClientName, all[2].ClientName})
	})

	t.Run("flag filter and limit", func(t *testing.T) {
		home, err := repo.List(ctx, ListOptions{Flag: "show_on_homepage", Limit: 1})
		require.NoError(t, err)
		require.Len(t, home, 1)
		assert.Equal(t, "B", home[0].ClientName)
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, err := repo.List(ctx, ListOptions{Flag: "featured"})
		assert.ErrorIs(t, err, ErrUnknownFlag)
	})

	t.Run("update keeps created_at", func(t *testing.T) {
		before, err := repo.GetByID(ctx, seed[1].ID)
		require.NoError(t, err)

		changed := models.Testimonial{
			RecordBase: models.RecordBase{ID: seed[1].ID, DisplayOrder: 9},
			ClientName: "A2", Quote: "edited", Rating: 3,
		}
		require.NoError(t, repo.Update(ctx, &changed))

		after, err := repo.GetByID(ctx, seed[1].ID)
		require.NoError(t, err)
		assert.Equal(t, "A2", after.ClientName)
		assert.Equal(t, 9, after.DisplayOrder)
		assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
	})

	t.Run("update missing", func(t *testing.T) {
		ghost := models.Testimonial{RecordBase: models.RecordBase{ID: "0190c3a4-0000-7000-8000-000000000000"}, ClientName: "x", Quote: "x"}
		assert.ErrorIs(t, repo.Update(ctx, &ghost), ErrNotFound)
	})

	t.Run("double delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, seed[0].ID))
		assert.ErrorIs(t, repo.Delete(ctx, seed[0].ID), ErrNotFound)
		_, err := repo.GetByID(ctx, seed[0].ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBunRecordRepository_ProjectsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunRecordRepository[models.Project](db)
	ctx := context.Background()

	old := models.Project{Title: "Old", Category: "kitchen", ImageURL: "a.jpg", GalleryURLs: []string{"1.jpg", "2.jpg"}}
	old.CreatedAt = time.Now().Add(-time.Hour).UTC()
	require.NoError(t, repo.Create(ctx, &old))
	recent := models.Project{Title: "Recent", Category: "living", ImageURL: "b.jpg"}
	require.NoError(t, repo.Create(ctx, &recent))

	list, err := repo.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Recent", list[0].Title)
	assert.Equal(t, []string{"1.jpg", "2.jpg"}, list[1].GalleryURLs)
}

func TestBunRecordRepository_ServiceSlugUnique(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunRecordRepository[models.Service](db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Service{Title: "Kitchens", Slug: "kitchens", Description: "d", Published: true}))
	err := repo.Create(ctx, &models.Service{Title: "Kitchens 2", Slug: "kitchens", Description: "d"})
	assert.Error(t, err)
}
