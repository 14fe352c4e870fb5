package repository

import (
	"context"
	"fmt"

	"github.com/reelhouse/reelhouse/internal/models"
	"gorm.io/gorm"
)

// movieRepo implements MovieRepository using GORM.
type movieRepo struct {
	db *gorm.DB
}

// NewMovieRepository creates a new MovieRepository.
func NewMovieRepository(db *gorm.DB) *movieRepo {
	return &movieRepo{db: db}
}

// Create creates a new movie.
func (r *movieRepo) Create(ctx context.Context, movie *models.Movie) error {
	if err := r.db.WithContext(ctx).Create(movie).Error; err != nil {
		return fmt.Errorf("creating movie: %w", err)
	}
	return nil
}

// GetByID retrieves a movie by ID.
func (r *movieRepo) GetByID(ctx context.Context, id models.ULID) (*models.Movie, error) {
	var movie models.Movie
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&movie).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting movie by ID: %w", err)
	}
	return &movie, nil
}

// GetByIDFull retrieves a movie with sources, subtitles, and genres preloaded.
func (r *movieRepo) GetByIDFull(ctx context.Context, id models.ULID) (*models.Movie, error) {
	var movie models.Movie
	err := r.db.WithContext(ctx).
		Preload("Sources", func(db *gorm.DB) *gorm.DB {
			return db.Order("priority DESC, created_at ASC")
		}).
		Preload("Subtitles").
		Preload("Genres").
		Where("id = ?", id).
		First(&movie).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting movie with relations: %w", err)
	}
	return &movie, nil
}

// GetBySlug retrieves a movie by slug.
func (r *movieRepo) GetBySlug(ctx context.Context, slug string) (*models.Movie, error) {
	var movie models.Movie
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&movie).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting movie by slug: %w", err)
	}
	return &movie, nil
}

// GetAllPaginated retrieves movies with pagination, newest first.
func (r *movieRepo) GetAllPaginated(ctx context.Context, offset, limit int) ([]*models.Movie, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Movie{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting movies: %w", err)
	}

	var movies []*models.Movie
	err := r.db.WithContext(ctx).
		Preload("Genres").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&movies).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing movies: %w", err)
	}
	return movies, total, nil
}

// Update updates an existing movie.
func (r *movieRepo) Update(ctx context.Context, movie *models.Movie) error {
	if err := r.db.WithContext(ctx).Save(movie).Error; err != nil {
		return fmt.Errorf("updating movie: %w", err)
	}
	return nil
}

// Delete soft-deletes a movie by ID.
func (r *movieRepo) Delete(ctx context.Context, id models.ULID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Movie{}).Error; err != nil {
		return fmt.Errorf("deleting movie: %w", err)
	}
	return nil
}

// AddSource attaches a media source to a movie.
func (r *movieRepo) AddSource(ctx context.Context, source *models.MovieSource) error {
	if err := r.db.WithContext(ctx).Create(source).Error; err != nil {
		return fmt.Errorf("creating movie source: %w", err)
	}
	return nil
}

// DeleteSource removes a media source by ID.
func (r *movieRepo) DeleteSource(ctx context.Context, id models.ULID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.MovieSource{}).Error; err != nil {
		return fmt.Errorf("deleting movie source: %w", err)
	}
	return nil
}

// AddSubtitle attaches a subtitle track to a movie.
func (r *movieRepo) AddSubtitle(ctx context.Context, track *models.SubtitleTrack) error {
	if err := r.db.WithContext(ctx).Create(track).Error; err != nil {
		return fmt.Errorf("creating subtitle track: %w", err)
	}
	return nil
}

// DeleteSubtitle removes a subtitle track by ID.
func (r *movieRepo) DeleteSubtitle(ctx context.Context, id models.ULID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.SubtitleTrack{}).Error; err != nil {
		return fmt.Errorf("deleting subtitle track: %w", err)
	}
	return nil
}

// Ensure movieRepo implements MovieRepository at compile time.
var _ MovieRepository = (*movieRepo)(nil)
