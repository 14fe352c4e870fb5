package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/reelhouse/reelhouse/internal/repository"
	"github.com/reelhouse/reelhouse/internal/signing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

type grantServiceFixture struct {
	svc      *GrantService
	movies   *MovieService
	grants   repository.PlayGrantRepository
	sponsors repository.SponsorRepository
}

func setupGrantService(t *testing.T) grantServiceFixture {
	t.Helper()

	db := setupCatalogDB(t)
	sponsors := repository.NewSponsorRepository(db)
	movies := NewMovieService(repository.NewMovieRepository(db), sponsors)
	grants := repository.NewPlayGrantRepository(db)

	signer, err := signing.NewSigner("test-key", "https://media.example.com")
	require.NoError(t, err)

	svc := NewGrantService(movies, grants, signer, 15*time.Minute, time.Hour, 30*time.Second)
	return grantServiceFixture{svc: svc, movies: movies, grants: grants, sponsors: sponsors}
}

func playableMovie(t *testing.T, movies *MovieService, slug string) *models.Movie {
	t.Helper()
	ctx := context.Background()
	movie := publishedMovie(t, movies, slug)
	require.NoError(t, movies.AddSource(ctx, &models.MovieSource{
		MovieID: movie.ID, Type: models.SourceTypeHLS, StorageKey: "movies/" + slug + "/master.m3u8", Priority: 10,
	}))
	return movie
}

func TestGrantService_Issue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("default ttl, expiry is exact", func(t *testing.T) {
		f := setupGrantService(t)
		f.svc.WithClock(func() time.Time { return now })
		movie := playableMovie(t, f.movies, "m1")

		grant, err := f.svc.Issue(ctx, movie.ID, nil, "")
		require.NoError(t, err)
		assert.Equal(t, now, grant.IssuedAt)
		assert.Equal(t, 15*time.Minute, grant.ExpiresAt.Sub(grant.IssuedAt))
		assert.Equal(t, 30, grant.HeartbeatIntervalSeconds)
		assert.NotEmpty(t, grant.GrantID)
	})

	t.Run("explicit ttl honored exactly", func(t *testing.T) {
		f := setupGrantService(t)
		f.svc.WithClock(func() time.Time { return now })
		movie := playableMovie(t, f.movies, "m2")

		grant, err := f.svc.Issue(ctx, movie.ID, intPtr(600), "")
		require.NoError(t, err)
		assert.Equal(t, 10*time.Minute, grant.ExpiresAt.Sub(grant.IssuedAt))
	})

	t.Run("ttl clamped to maximum", func(t *testing.T) {
		f := setupGrantService(t)
		f.svc.WithClock(func() time.Time { return now })
		movie := playableMovie(t, f.movies, "m3")

		grant, err := f.svc.Issue(ctx, movie.ID, intPtr(7200), "")
		require.NoError(t, err)
		assert.Equal(t, time.Hour, grant.ExpiresAt.Sub(grant.IssuedAt))
	})

	t.Run("non-positive ttl rejected", func(t *testing.T) {
		f := setupGrantService(t)
		movie := playableMovie(t, f.movies, "m4")

		_, err := f.svc.Issue(ctx, movie.ID, intPtr(0), "")
		assert.ErrorIs(t, err, models.ErrInvalidArgument)
		_, err = f.svc.Issue(ctx, movie.ID, intPtr(-5), "")
		assert.ErrorIs(t, err, models.ErrInvalidArgument)
	})

	t.Run("unknown movie", func(t *testing.T) {
		f := setupGrantService(t)
		_, err := f.svc.Issue(ctx, models.NewULID(), nil, "")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("no active source fails, never empty sources", func(t *testing.T) {
		f := setupGrantService(t)
		movie := publishedMovie(t, f.movies, "bare")

		_, err := f.svc.Issue(ctx, movie.ID, nil, "")
		assert.ErrorIs(t, err, models.ErrContentUnavailable)
	})

	t.Run("sources carry signed urls", func(t *testing.T) {
		f := setupGrantService(t)
		f.svc.WithClock(func() time.Time { return now })
		movie := playableMovie(t, f.movies, "m5")
		require.NoError(t, f.movies.AddSubtitle(ctx, &models.SubtitleTrack{
			MovieID: movie.ID, Lang: "en", StorageKey: "subs/m5/en.vtt",
		}))

		grant, err := f.svc.Issue(ctx, movie.ID, nil, "")
		require.NoError(t, err)
		require.Len(t, grant.Sources, 1)
		assert.True(t, strings.HasPrefix(grant.Sources[0].URL, "https://media.example.com/movies/m5/master.m3u8?token=v1."), grant.Sources[0].URL)
		require.Len(t, grant.Subtitles, 1)
		assert.Contains(t, grant.Subtitles[0].URL, "subs/m5/en.vtt?token=v1.")
	})

	t.Run("each issuance is a new grant", func(t *testing.T) {
		f := setupGrantService(t)
		movie := playableMovie(t, f.movies, "m6")

		first, err := f.svc.Issue(ctx, movie.ID, nil, "")
		require.NoError(t, err)
		second, err := f.svc.Issue(ctx, movie.ID, nil, "")
		require.NoError(t, err)
		assert.NotEqual(t, first.GrantID, second.GrantID)
	})

	t.Run("grant row recorded for replay guard", func(t *testing.T) {
		f := setupGrantService(t)
		f.svc.WithClock(func() time.Time { return now })
		movie := playableMovie(t, f.movies, "m7")

		grant, err := f.svc.Issue(ctx, movie.ID, nil, "user-1")
		require.NoError(t, err)

		record, err := f.grants.GetByID(ctx, models.MustParseULID(grant.GrantID))
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, movie.ID, record.MovieID)
		assert.Equal(t, "user-1", record.UserID)
		assert.Nil(t, record.FirstUsedAt)
		assert.Equal(t, grant.ExpiresAt, record.ExpiresAt.UTC())
	})

	t.Run("overlays included with authored window and opacity", func(t *testing.T) {
		f := setupGrantService(t)
		movie := playableMovie(t, f.movies, "m8")

		sponsor := &models.Sponsor{Name: "Glimmer"}
		require.NoError(t, f.sponsors.Create(ctx, sponsor))
		require.NoError(t, f.sponsors.AddPlacement(ctx, &models.SponsorPlacement{
			SponsorID: sponsor.ID,
			Type:      models.OverlayTypeHTML,
			Corner:    models.OverlayCornerTopLeft,
			StartSeconds: 10, EndSeconds: 40,
			HTML: "<b>ad</b>", Href: "https://glimmer.test", Opacity: 0.5,
		}))

		grant, err := f.svc.Issue(ctx, movie.ID, nil, "")
		require.NoError(t, err)
		require.Len(t, grant.Overlays, 1)
		overlay := grant.Overlays[0]
		assert.Equal(t, "html", overlay.Type)
		assert.Equal(t, "tl", overlay.Placement)
		assert.Equal(t, 10, overlay.Start)
		assert.Equal(t, 40, overlay.End)
		assert.Equal(t, 0.5, overlay.Opacity)
	})
}
