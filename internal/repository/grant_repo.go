package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/reelhouse/reelhouse/internal/models"
	"gorm.io/gorm"
)

// playGrantRepo implements PlayGrantRepository using GORM.
type playGrantRepo struct {
	db *gorm.DB
}

// NewPlayGrantRepository creates a new PlayGrantRepository.
func NewPlayGrantRepository(db *gorm.DB) *playGrantRepo {
	return &playGrantRepo{db: db}
}

// Create records a new grant issuance.
func (r *playGrantRepo) Create(ctx context.Context, grant *models.PlayGrant) error {
	if err := r.db.WithContext(ctx).Create(grant).Error; err != nil {
		return fmt.Errorf("creating play grant: %w", err)
	}
	return nil
}

// GetByID retrieves a grant by ID.
func (r *playGrantRepo) GetByID(ctx context.Context, id models.ULID) (*models.PlayGrant, error) {
	var grant models.PlayGrant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&grant).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting play grant by ID: %w", err)
	}
	return &grant, nil
}

// MarkFirstUse records the grant's first consumption. The conditional update
// makes the mark atomic: concurrent callers race on the WHERE clause and only
// one observes an affected row.
func (r *playGrantRepo) MarkFirstUse(ctx context.Context, id models.ULID, usedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PlayGrant{}).
		Where("id = ? AND first_used_at IS NULL", id).
		Update("first_used_at", usedAt)
	if result.Error != nil {
		return false, fmt.Errorf("marking grant first use: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// DeleteExpiredBefore removes grant rows whose expiry passed before cutoff.
func (r *playGrantRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&models.PlayGrant{})
	if result.Error != nil {
		return 0, fmt.Errorf("deleting expired grants: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Ensure playGrantRepo implements PlayGrantRepository at compile time.
var _ PlayGrantRepository = (*playGrantRepo)(nil)
