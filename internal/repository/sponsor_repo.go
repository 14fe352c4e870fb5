package repository

import (
	"context"
	"fmt"

	"github.com/reelhouse/reelhouse/internal/models"
	"gorm.io/gorm"
)

// sponsorRepo implements SponsorRepository using GORM.
type sponsorRepo struct {
	db *gorm.DB
}

// NewSponsorRepository creates a new SponsorRepository.
func NewSponsorRepository(db *gorm.DB) *sponsorRepo {
	return &sponsorRepo{db: db}
}

// Create creates a new sponsor.
func (r *sponsorRepo) Create(ctx context.Context, sponsor *models.Sponsor) error {
	if err := r.db.WithContext(ctx).Create(sponsor).Error; err != nil {
		return fmt.Errorf("creating sponsor: %w", err)
	}
	return nil
}

// GetByID retrieves a sponsor by ID with placements preloaded.
func (r *sponsorRepo) GetByID(ctx context.Context, id models.ULID) (*models.Sponsor, error) {
	var sponsor models.Sponsor
	err := r.db.WithContext(ctx).
		Preload("Placements").
		Where("id = ?", id).
		First(&sponsor).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting sponsor by ID: %w", err)
	}
	return &sponsor, nil
}

// GetAll retrieves all sponsors ordered by name.
func (r *sponsorRepo) GetAll(ctx context.Context) ([]*models.Sponsor, error) {
	var sponsors []*models.Sponsor
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&sponsors).Error; err != nil {
		return nil, fmt.Errorf("getting all sponsors: %w", err)
	}
	return sponsors, nil
}

// Update updates an existing sponsor.
func (r *sponsorRepo) Update(ctx context.Context, sponsor *models.Sponsor) error {
	if err := r.db.WithContext(ctx).Save(sponsor).Error; err != nil {
		return fmt.Errorf("updating sponsor: %w", err)
	}
	return nil
}

// Delete deletes a sponsor by ID.
func (r *sponsorRepo) Delete(ctx context.Context, id models.ULID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Sponsor{}).Error; err != nil {
		return fmt.Errorf("deleting sponsor: %w", err)
	}
	return nil
}

// AddPlacement attaches an overlay placement to a sponsor.
func (r *sponsorRepo) AddPlacement(ctx context.Context, placement *models.SponsorPlacement) error {
	if err := r.db.WithContext(ctx).Create(placement).Error; err != nil {
		return fmt.Errorf("creating sponsor placement: %w", err)
	}
	return nil
}

// DeletePlacement removes an overlay placement by ID.
func (r *sponsorRepo) DeletePlacement(ctx context.Context, id models.ULID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.SponsorPlacement{}).Error; err != nil {
		return fmt.Errorf("deleting sponsor placement: %w", err)
	}
	return nil
}

// GetActivePlacements retrieves active placements of enabled sponsors that
// apply to the given movie (movie-scoped or global).
func (r *sponsorRepo) GetActivePlacements(ctx context.Context, movieID models.ULID) ([]*models.SponsorPlacement, error) {
	var placements []*models.SponsorPlacement
	err := r.db.WithContext(ctx).
		Joins("JOIN sponsors ON sponsors.id = sponsor_placements.sponsor_id").
		Where("sponsors.deleted_at IS NULL").
		Where("sponsors.enabled = ?", true).
		Where("sponsor_placements.active = ?", true).
		Where("sponsor_placements.movie_id IS NULL OR sponsor_placements.movie_id = ?", movieID).
		Order("sponsor_placements.start_seconds ASC").
		Find(&placements).Error
	if err != nil {
		return nil, fmt.Errorf("getting active placements: %w", err)
	}
	return placements, nil
}

// Ensure sponsorRepo implements SponsorRepository at compile time.
var _ SponsorRepository = (*sponsorRepo)(nil)
