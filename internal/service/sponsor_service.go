package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/reelhouse/reelhouse/internal/repository"
)

// SponsorService manages sponsors and their overlay placements.
type SponsorService struct {
	sponsors repository.SponsorRepository
	movies   repository.MovieRepository
	logger   *slog.Logger
}

// NewSponsorService creates a new sponsor service.
func NewSponsorService(sponsors repository.SponsorRepository, movies repository.MovieRepository) *SponsorService {
	return &SponsorService{
		sponsors: sponsors,
		movies:   movies,
		logger:   slog.Default().With(slog.String("component", "sponsor-service")),
	}
}

// WithLogger sets a custom logger.
func (s *SponsorService) WithLogger(logger *slog.Logger) *SponsorService {
	s.logger = logger.With(slog.String("component", "sponsor-service"))
	return s
}

// Create validates and stores a new sponsor.
func (s *SponsorService) Create(ctx context.Context, sponsor *models.Sponsor) error {
	if err := sponsor.Validate(); err != nil {
		return err
	}
	if err := s.sponsors.Create(ctx, sponsor); err != nil {
		return fmt.Errorf("creating sponsor: %w", err)
	}
	return nil
}

// Get retrieves a sponsor with placements, or models.ErrNotFound.
func (s *SponsorService) Get(ctx context.Context, id models.ULID) (*models.Sponsor, error) {
	sponsor, err := s.sponsors.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting sponsor: %w", err)
	}
	if sponsor == nil {
		return nil, models.ErrNotFound
	}
	return sponsor, nil
}

// List retrieves all sponsors ordered by name.
func (s *SponsorService) List(ctx context.Context) ([]*models.Sponsor, error) {
	return s.sponsors.GetAll(ctx)
}

// Update validates and stores changes to an existing sponsor.
func (s *SponsorService) Update(ctx context.Context, sponsor *models.Sponsor) error {
	if err := sponsor.Validate(); err != nil {
		return err
	}
	existing, err := s.sponsors.GetByID(ctx, sponsor.ID)
	if err != nil {
		return fmt.Errorf("getting sponsor: %w", err)
	}
	if existing == nil {
		return models.ErrNotFound
	}
	return s.sponsors.Update(ctx, sponsor)
}

// Delete removes a sponsor and its placements.
func (s *SponsorService) Delete(ctx context.Context, id models.ULID) error {
	existing, err := s.sponsors.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("getting sponsor: %w", err)
	}
	if existing == nil {
		return models.ErrNotFound
	}
	return s.sponsors.Delete(ctx, id)
}

// AddPlacement validates and attaches an overlay placement. Placement
// validation rejects bad time windows and out-of-range opacity outright so
// authoring mistakes never reach a grant.
func (s *SponsorService) AddPlacement(ctx context.Context, placement *models.SponsorPlacement) error {
	if err := placement.Validate(); err != nil {
		return err
	}
	sponsor, err := s.sponsors.GetByID(ctx, placement.SponsorID)
	if err != nil {
		return fmt.Errorf("getting sponsor: %w", err)
	}
	if sponsor == nil {
		return models.ErrNotFound
	}
	if placement.MovieID != nil && !placement.MovieID.IsZero() {
		movie, err := s.movies.GetByID(ctx, *placement.MovieID)
		if err != nil {
			return fmt.Errorf("getting movie: %w", err)
		}
		if movie == nil {
			return models.ErrValidation{Field: "movie_id", Message: "movie does not exist"}
		}
	}
	return s.sponsors.AddPlacement(ctx, placement)
}

// DeletePlacement removes an overlay placement.
func (s *SponsorService) DeletePlacement(ctx context.Context, id models.ULID) error {
	return s.sponsors.DeletePlacement(ctx, id)
}
