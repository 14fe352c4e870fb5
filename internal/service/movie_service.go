// Package service implements the business logic layer: catalog management,
// play grant issuance, event ingestion, and session reconciliation. Services
// depend on repository interfaces and surface the sentinel errors from
// internal/models; HTTP mapping happens at the handler layer.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/reelhouse/reelhouse/internal/repository"
)

// PlayableContent is the resolved view of a movie ready for grant issuance:
// the published movie, its active sources in priority order, subtitle tracks,
// and the overlay placements applying to it.
type PlayableContent struct {
	Movie     *models.Movie
	Sources   []models.MovieSource
	Subtitles []models.SubtitleTrack
	Overlays  []*models.SponsorPlacement
}

// MovieService manages the movie catalog and resolves playable content.
type MovieService struct {
	movies   repository.MovieRepository
	sponsors repository.SponsorRepository
	logger   *slog.Logger
}

// NewMovieService creates a new movie service.
func NewMovieService(movies repository.MovieRepository, sponsors repository.SponsorRepository) *MovieService {
	return &MovieService{
		movies:   movies,
		sponsors: sponsors,
		logger:   slog.Default().With(slog.String("component", "movie-service")),
	}
}

// WithLogger sets a custom logger.
func (s *MovieService) WithLogger(logger *slog.Logger) *MovieService {
	s.logger = logger.With(slog.String("component", "movie-service"))
	return s
}

// Create validates and stores a new movie.
func (s *MovieService) Create(ctx context.Context, movie *models.Movie) error {
	if err := movie.Validate(); err != nil {
		return err
	}
	if existing, err := s.movies.GetBySlug(ctx, movie.Slug); err != nil {
		return fmt.Errorf("checking slug: %w", err)
	} else if existing != nil {
		return models.ErrValidation{Field: "slug", Message: "already in use"}
	}
	if err := s.movies.Create(ctx, movie); err != nil {
		return fmt.Errorf("creating movie: %w", err)
	}
	s.logger.Info("movie created",
		slog.String("movie_id", movie.ID.String()),
		slog.String("slug", movie.Slug))
	return nil
}

// Get retrieves a movie by ID, or models.ErrNotFound.
func (s *MovieService) Get(ctx context.Context, id models.ULID) (*models.Movie, error) {
	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting movie: %w", err)
	}
	if movie == nil {
		return nil, models.ErrNotFound
	}
	return movie, nil
}

// GetFull retrieves a movie with sources, subtitles, and genres preloaded.
func (s *MovieService) GetFull(ctx context.Context, id models.ULID) (*models.Movie, error) {
	movie, err := s.movies.GetByIDFull(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting movie: %w", err)
	}
	if movie == nil {
		return nil, models.ErrNotFound
	}
	return movie, nil
}

// List retrieves a page of movies, newest first.
func (s *MovieService) List(ctx context.Context, offset, limit int) ([]*models.Movie, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.movies.GetAllPaginated(ctx, offset, limit)
}

// Update validates and stores changes to an existing movie.
func (s *MovieService) Update(ctx context.Context, movie *models.Movie) error {
	if err := movie.Validate(); err != nil {
		return err
	}
	existing, err := s.movies.GetByID(ctx, movie.ID)
	if err != nil {
		return fmt.Errorf("getting movie: %w", err)
	}
	if existing == nil {
		return models.ErrNotFound
	}
	if err := s.movies.Update(ctx, movie); err != nil {
		return fmt.Errorf("updating movie: %w", err)
	}
	return nil
}

// Delete removes a movie from the catalog.
func (s *MovieService) Delete(ctx context.Context, id models.ULID) error {
	existing, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("getting movie: %w", err)
	}
	if existing == nil {
		return models.ErrNotFound
	}
	if err := s.movies.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting movie: %w", err)
	}
	s.logger.Info("movie deleted", slog.String("movie_id", id.String()))
	return nil
}

// AddSource validates and attaches a media source to a movie.
func (s *MovieService) AddSource(ctx context.Context, source *models.MovieSource) error {
	if err := source.Validate(); err != nil {
		return err
	}
	movie, err := s.movies.GetByID(ctx, source.MovieID)
	if err != nil {
		return fmt.Errorf("getting movie: %w", err)
	}
	if movie == nil {
		return models.ErrNotFound
	}
	return s.movies.AddSource(ctx, source)
}

// DeleteSource removes a media source.
func (s *MovieService) DeleteSource(ctx context.Context, id models.ULID) error {
	return s.movies.DeleteSource(ctx, id)
}

// AddSubtitle validates and attaches a subtitle track to a movie.
func (s *MovieService) AddSubtitle(ctx context.Context, track *models.SubtitleTrack) error {
	if err := track.Validate(); err != nil {
		return err
	}
	movie, err := s.movies.GetByID(ctx, track.MovieID)
	if err != nil {
		return fmt.Errorf("getting movie: %w", err)
	}
	if movie == nil {
		return models.ErrNotFound
	}
	return s.movies.AddSubtitle(ctx, track)
}

// DeleteSubtitle removes a subtitle track.
func (s *MovieService) DeleteSubtitle(ctx context.Context, id models.ULID) error {
	return s.movies.DeleteSubtitle(ctx, id)
}

// ResolvePlayable resolves a movie ID to playable content. Unknown, draft,
// and archived movies resolve to models.ErrNotFound; a published movie with
// no active source fails with models.ErrContentUnavailable rather than an
// empty source list.
func (s *MovieService) ResolvePlayable(ctx context.Context, id models.ULID) (*PlayableContent, error) {
	movie, err := s.movies.GetByIDFull(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolving movie: %w", err)
	}
	if movie == nil || !movie.IsPublished() {
		return nil, models.ErrNotFound
	}

	sources := movie.ActiveSources()
	if len(sources) == 0 {
		s.logger.Warn("published movie has no active source",
			slog.String("movie_id", id.String()),
			slog.String("slug", movie.Slug))
		return nil, models.ErrContentUnavailable
	}

	overlays, err := s.sponsors.GetActivePlacements(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolving placements: %w", err)
	}

	return &PlayableContent{
		Movie:     movie,
		Sources:   sources,
		Subtitles: movie.Subtitles,
		Overlays:  overlays,
	}, nil
}
