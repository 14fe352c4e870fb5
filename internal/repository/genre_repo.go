package repository

import (
	"context"
	"fmt"

	"github.com/reelhouse/reelhouse/internal/models"
	"gorm.io/gorm"
)

// genreRepo implements GenreRepository using GORM.
type genreRepo struct {
	db *gorm.DB
}

// NewGenreRepository creates a new GenreRepository.
func NewGenreRepository(db *gorm.DB) *genreRepo {
	return &genreRepo{db: db}
}

// Create creates a new genre.
func (r *genreRepo) Create(ctx context.Context, genre *models.Genre) error {
	if err := r.db.WithContext(ctx).Create(genre).Error; err != nil {
		return fmt.Errorf("creating genre: %w", err)
	}
	return nil
}

// GetByID retrieves a genre by ID.
func (r *genreRepo) GetByID(ctx context.Context, id models.ULID) (*models.Genre, error) {
	var genre models.Genre
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&genre).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting genre by ID: %w", err)
	}
	return &genre, nil
}

// GetBySlug retrieves a genre by slug.
func (r *genreRepo) GetBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	var genre models.Genre
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&genre).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting genre by slug: %w", err)
	}
	return &genre, nil
}

// GetAll retrieves all genres ordered by name.
func (r *genreRepo) GetAll(ctx context.Context) ([]*models.Genre, error) {
	var genres []*models.Genre
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("getting all genres: %w", err)
	}
	return genres, nil
}

// Update updates an existing genre.
func (r *genreRepo) Update(ctx context.Context, genre *models.Genre) error {
	if err := r.db.WithContext(ctx).Save(genre).Error; err != nil {
		return fmt.Errorf("updating genre: %w", err)
	}
	return nil
}

// Delete deletes a genre by ID.
func (r *genreRepo) Delete(ctx context.Context, id models.ULID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Genre{}).Error; err != nil {
		return fmt.Errorf("deleting genre: %w", err)
	}
	return nil
}

// Ensure genreRepo implements GenreRepository at compile time.
var _ GenreRepository = (*genreRepo)(nil)
