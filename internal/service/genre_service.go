package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/reelhouse/reelhouse/internal/repository"
)

// GenreService manages the genre taxonomy.
type GenreService struct {
	genres repository.GenreRepository
	logger *slog.Logger
}

// NewGenreService creates a new genre service.
func NewGenreService(genres repository.GenreRepository) *GenreService {
	return &GenreService{
		genres: genres,
		logger: slog.Default().With(slog.String("component", "genre-service")),
	}
}

// WithLogger sets a custom logger.
func (s *GenreService) WithLogger(logger *slog.Logger) *GenreService {
	s.logger = logger.With(slog.String("component", "genre-service"))
	return s
}

// Create validates and stores a new genre.
func (s *GenreService) Create(ctx context.Context, genre *models.Genre) error {
	if err := genre.Validate(); err != nil {
		return err
	}
	if existing, err := s.genres.GetBySlug(ctx, genre.Slug); err != nil {
		return fmt.Errorf("checking slug: %w", err)
	} else if existing != nil {
		return models.ErrValidation{Field: "slug", Message: "already in use"}
	}
	if err := s.genres.Create(ctx, genre); err != nil {
		return fmt.Errorf("creating genre: %w", err)
	}
	return nil
}

// Get retrieves a genre by ID, or models.ErrNotFound.
func (s *GenreService) Get(ctx context.Context, id models.ULID) (*models.Genre, error) {
	genre, err := s.genres.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting genre: %w", err)
	}
	if genre == nil {
		return nil, models.ErrNotFound
	}
	return genre, nil
}

// List retrieves all genres ordered by name.
func (s *GenreService) List(ctx context.Context) ([]*models.Genre, error) {
	return s.genres.GetAll(ctx)
}

// Update validates and stores changes to an existing genre.
func (s *GenreService) Update(ctx context.Context, genre *models.Genre) error {
	if err := genre.Validate(); err != nil {
		return err
	}
	existing, err := s.genres.GetByID(ctx, genre.ID)
	if err != nil {
		return fmt.Errorf("getting genre: %w", err)
	}
	if existing == nil {
		return models.ErrNotFound
	}
	return s.genres.Update(ctx, genre)
}

// Delete removes a genre.
func (s *GenreService) Delete(ctx context.Context, id models.ULID) error {
	existing, err := s.genres.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("getting genre: %w", err)
	}
	if existing == nil {
		return models.ErrNotFound
	}
	return s.genres.Delete(ctx, id)
}
