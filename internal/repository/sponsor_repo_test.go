package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSponsorTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Sponsor{}, &models.SponsorPlacement{}))
	return db
}

func newTestPlacement(sponsorID models.ULID, start, end int) *models.SponsorPlacement {
	return &models.SponsorPlacement{
		SponsorID:    sponsorID,
		Type:         models.OverlayTypeImage,
		Corner:       models.OverlayCornerTopRight,
		StartSeconds: start,
		EndSeconds:   end,
		URL:          "https://cdn.example.com/ad.png",
		Opacity:      1,
	}
}

func TestSponsorRepo_CreateAndGet(t *testing.T) {
	db := setupSponsorTestDB(t)
	repo := NewSponsorRepository(db)
	ctx := context.Background()

	sponsor := &models.Sponsor{Name: "Fizzco", ContactEmail: "ads@fizzco.test"}
	require.NoError(t, repo.Create(ctx, sponsor))

	require.NoError(t, repo.AddPlacement(ctx, newTestPlacement(sponsor.ID, 0, 15)))

	found, err := repo.GetByID(ctx, sponsor.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Fizzco", found.Name)
	assert.Len(t, found.Placements, 1)
}

func TestSponsorRepo_GetActivePlacements(t *testing.T) {
	db := setupSponsorTestDB(t)
	repo := NewSponsorRepository(db)
	ctx := context.Background()

	movieID := models.NewULID()
	otherMovieID := models.NewULID()

	enabled := &models.Sponsor{Name: "Enabled"}
	require.NoError(t, repo.Create(ctx, enabled))
	disabled := &models.Sponsor{Name: "Disabled", Enabled: models.BoolPtr(false)}
	require.NoError(t, repo.Create(ctx, disabled))

	// Global placement of an enabled sponsor: included.
	global := newTestPlacement(enabled.ID, 10, 20)
	require.NoError(t, repo.AddPlacement(ctx, global))

	// Movie-scoped placement matching: included.
	scoped := newTestPlacement(enabled.ID, 0, 5)
	scoped.MovieID = &movieID
	require.NoError(t, repo.AddPlacement(ctx, scoped))

	// Scoped to a different movie: excluded.
	other := newTestPlacement(enabled.ID, 0, 5)
	other.MovieID = &otherMovieID
	require.NoError(t, repo.AddPlacement(ctx, other))

	// Inactive placement: excluded.
	inactive := newTestPlacement(enabled.ID, 0, 5)
	inactive.Active = models.BoolPtr(false)
	require.NoError(t, repo.AddPlacement(ctx, inactive))

	// Placement of a disabled sponsor: excluded.
	require.NoError(t, repo.AddPlacement(ctx, newTestPlacement(disabled.ID, 0, 5)))

	placements, err := repo.GetActivePlacements(ctx, movieID)
	require.NoError(t, err)
	require.Len(t, placements, 2)
	// Ordered by start_seconds ascending
	assert.Equal(t, 0, placements[0].StartSeconds)
	assert.Equal(t, 10, placements[1].StartSeconds)
}

func TestSponsorRepo_Delete(t *testing.T) {
	db := setupSponsorTestDB(t)
	repo := NewSponsorRepository(db)
	ctx := context.Background()

	sponsor := &models.Sponsor{Name: "Gone"}
	require.NoError(t, repo.Create(ctx, sponsor))
	require.NoError(t, repo.Delete(ctx, sponsor.ID))

	found, err := repo.GetByID(ctx, sponsor.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}
