package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/reelhouse/reelhouse/internal/models"
	"gorm.io/gorm"
)

// trackEventRepo implements TrackEventRepository using GORM.
type trackEventRepo struct {
	db *gorm.DB
}

// NewTrackEventRepository creates a new TrackEventRepository.
func NewTrackEventRepository(db *gorm.DB) *trackEventRepo {
	return &trackEventRepo{db: db}
}

// Create appends one event.
func (r *trackEventRepo) Create(ctx context.Context, event *models.TrackEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("creating track event: %w", err)
	}
	return nil
}

// GetBySessionID retrieves all events for a session ordered by server timestamp.
// The secondary order on id makes ordering stable for events sharing a
// server timestamp.
func (r *trackEventRepo) GetBySessionID(ctx context.Context, sessionID string) ([]*models.TrackEvent, error) {
	var events []*models.TrackEvent
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("server_ts ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("getting events by session: %w", err)
	}
	return events, nil
}

// CountBySessionID returns the number of events for a session.
func (r *trackEventRepo) CountBySessionID(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TrackEvent{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting events by session: %w", err)
	}
	return count, nil
}

// DistinctSessionIDsSince returns session ids with at least one event at or
// after the given instant.
func (r *trackEventRepo) DistinctSessionIDsSince(ctx context.Context, since time.Time) ([]string, error) {
	var sessionIDs []string
	err := r.db.WithContext(ctx).
		Model(&models.TrackEvent{}).
		Where("session_id <> '' AND server_ts >= ?", since).
		Distinct("session_id").
		Pluck("session_id", &sessionIDs).Error
	if err != nil {
		return nil, fmt.Errorf("listing session ids: %w", err)
	}
	return sessionIDs, nil
}

// Ensure trackEventRepo implements TrackEventRepository at compile time.
var _ TrackEventRepository = (*trackEventRepo)(nil)
