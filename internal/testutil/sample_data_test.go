package testutil

import (
	"testing"
	"time"

	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSampleDataGeneratorWithSeed(t *testing.T) {
	gen1 := NewSampleDataGeneratorWithSeed(42)
	gen2 := NewSampleDataGeneratorWithSeed(42)

	// Same seed should produce same results
	assert.Equal(t, gen1.RandomTitle(), gen2.RandomTitle())
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "the-cartographers-son", Slugify("The Cartographer's Son"))
	assert.Equal(t, "salt-and-static", Slugify("Salt & Static"))
	assert.Equal(t, "night-harbor", Slugify("  Night   Harbor  "))
}

func TestGenerateMovie(t *testing.T) {
	gen := NewSampleDataGeneratorWithSeed(7)

	movie := gen.GenerateMovie(0)
	require.NoError(t, movie.Validate())
	assert.Equal(t, models.MovieStatusPublished, movie.Status)
	require.Len(t, movie.Sources, 1)
	assert.Equal(t, models.SourceTypeHLS, movie.Sources[0].Type)
	require.Len(t, movie.Subtitles, 1)
	assert.Equal(t, "en", movie.Subtitles[0].Lang)
}

func TestGenerateMovies_UniqueSlugs(t *testing.T) {
	gen := NewSampleDataGeneratorWithSeed(7)

	movies := gen.GenerateMovies(25)
	require.Len(t, movies, 25)

	seen := make(map[string]bool)
	for _, m := range movies {
		assert.False(t, seen[m.Slug], "duplicate slug %s", m.Slug)
		seen[m.Slug] = true
	}
}

func TestGenerateSponsor(t *testing.T) {
	gen := NewSampleDataGeneratorWithSeed(7)

	sponsor := gen.GenerateSponsor()
	require.NoError(t, sponsor.Validate())
	require.Len(t, sponsor.Placements, 1)
	placement := sponsor.Placements[0]
	assert.Less(t, placement.StartSeconds, placement.EndSeconds)
	assert.GreaterOrEqual(t, placement.Opacity, 0.0)
	assert.LessOrEqual(t, placement.Opacity, 1.0)
}

func TestGenerateSession(t *testing.T) {
	gen := NewSampleDataGeneratorWithSeed(7)
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	events := gen.GenerateSession("s1", models.NewULID(), start, 3, 30*time.Second)
	require.Len(t, events, 5)

	assert.Equal(t, models.EventPlayStart, events[0].Type)
	assert.Equal(t, models.EventPlayEnd, events[len(events)-1].Type)
	for i, e := range events {
		require.NoError(t, e.Validate())
		assert.Equal(t, "s1", e.SessionID)
		if i > 0 {
			assert.True(t, e.ServerTS.After(events[i-1].ServerTS))
		}
	}
}
