// Package repository defines data access interfaces for reelhouse entities.
// All database access goes through these interfaces, enabling easy testing
// and database backend switching.
package repository

import (
	"context"
	"time"

	"github.com/reelhouse/reelhouse/internal/models"
)

// MovieRepository defines operations for movie persistence.
type MovieRepository interface {
	// Create creates a new movie.
	Create(ctx context.Context, movie *models.Movie) error
	// GetByID retrieves a movie by ID.
	GetByID(ctx context.Context, id models.ULID) (*models.Movie, error)
	// GetByIDFull retrieves a movie with sources, subtitles, and genres preloaded.
	GetByIDFull(ctx context.Context, id models.ULID) (*models.Movie, error)
	// GetBySlug retrieves a movie by slug.
	GetBySlug(ctx context.Context, slug string) (*models.Movie, error)
	// GetAllPaginated retrieves movies with pagination, newest first.
	GetAllPaginated(ctx context.Context, offset, limit int) ([]*models.Movie, int64, error)
	// Update updates an existing movie.
	Update(ctx context.Context, movie *models.Movie) error
	// Delete soft-deletes a movie by ID.
	Delete(ctx context.Context, id models.ULID) error
	// AddSource attaches a media source to a movie.
	AddSource(ctx context.Context, source *models.MovieSource) error
	// DeleteSource removes a media source by ID.
	DeleteSource(ctx context.Context, id models.ULID) error
	// AddSubtitle attaches a subtitle track to a movie.
	AddSubtitle(ctx context.Context, track *models.SubtitleTrack) error
	// DeleteSubtitle removes a subtitle track by ID.
	DeleteSubtitle(ctx context.Context, id models.ULID) error
}

// GenreRepository defines operations for genre persistence.
type GenreRepository interface {
	// Create creates a new genre.
	Create(ctx context.Context, genre *models.Genre) error
	// GetByID retrieves a genre by ID.
	GetByID(ctx context.Context, id models.ULID) (*models.Genre, error)
	// GetBySlug retrieves a genre by slug.
	GetBySlug(ctx context.Context, slug string) (*models.Genre, error)
	// GetAll retrieves all genres ordered by name.
	GetAll(ctx context.Context) ([]*models.Genre, error)
	// Update updates an existing genre.
	Update(ctx context.Context, genre *models.Genre) error
	// Delete deletes a genre by ID.
	Delete(ctx context.Context, id models.ULID) error
}

// SponsorRepository defines operations for sponsor and placement persistence.
type SponsorRepository interface {
	// Create creates a new sponsor.
	Create(ctx context.Context, sponsor *models.Sponsor) error
	// GetByID retrieves a sponsor by ID with placements preloaded.
	GetByID(ctx context.Context, id models.ULID) (*models.Sponsor, error)
	// GetAll retrieves all sponsors ordered by name.
	GetAll(ctx context.Context) ([]*models.Sponsor, error)
	// Update updates an existing sponsor.
	Update(ctx context.Context, sponsor *models.Sponsor) error
	// Delete deletes a sponsor by ID.
	Delete(ctx context.Context, id models.ULID) error
	// AddPlacement attaches an overlay placement to a sponsor.
	AddPlacement(ctx context.Context, placement *models.SponsorPlacement) error
	// DeletePlacement removes an overlay placement by ID.
	DeletePlacement(ctx context.Context, id models.ULID) error
	// GetActivePlacements retrieves active placements of enabled sponsors
	// that apply to the given movie.
	GetActivePlacements(ctx context.Context, movieID models.ULID) ([]*models.SponsorPlacement, error)
}

// PlayGrantRepository defines operations for play grant persistence.
// Grant records are append-only; the single mutation is first-use marking.
type PlayGrantRepository interface {
	// Create records a new grant issuance.
	Create(ctx context.Context, grant *models.PlayGrant) error
	// GetByID retrieves a grant by ID.
	GetByID(ctx context.Context, id models.ULID) (*models.PlayGrant, error)
	// MarkFirstUse records the grant's first consumption. Returns false if
	// the grant was already marked, without modifying it.
	MarkFirstUse(ctx context.Context, id models.ULID, usedAt time.Time) (bool, error)
	// DeleteExpiredBefore removes grant rows whose expiry passed before the
	// cutoff. Returns the number of rows removed.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TrackEventRepository defines operations for the append-only event log.
// Events are never updated or deleted through the API.
type TrackEventRepository interface {
	// Create appends one event.
	Create(ctx context.Context, event *models.TrackEvent) error
	// GetBySessionID retrieves all events for a session ordered by server
	// timestamp. Client timestamps are never used for ordering.
	GetBySessionID(ctx context.Context, sessionID string) ([]*models.TrackEvent, error)
	// CountBySessionID returns the number of events for a session.
	CountBySessionID(ctx context.Context, sessionID string) (int64, error)
	// DistinctSessionIDsSince returns session ids with at least one event at
	// or after the given instant. Used by the abandonment sweep.
	DistinctSessionIDsSince(ctx context.Context, since time.Time) ([]string, error)
}
