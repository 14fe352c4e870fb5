package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/reelhouse/reelhouse/internal/repository"
	"github.com/reelhouse/reelhouse/internal/signing"
)

// GrantSource is one playable rendition inside a grant, with its signed URL.
type GrantSource struct {
	ID    string `json:"id"`
	Type  string `json:"type" enum:"hls,dash,mp4"`
	Label string `json:"label,omitempty"`
	URL   string `json:"url"`
	DRM   string `json:"drm,omitempty"`
}

// GrantSubtitle is one subtitle track inside a grant.
type GrantSubtitle struct {
	Lang  string `json:"lang"`
	Label string `json:"label,omitempty"`
	URL   string `json:"url"`
}

// GrantOverlay is one timed overlay inside a grant. Offsets are seconds
// relative to playback start.
type GrantOverlay struct {
	Type      string  `json:"type" enum:"image,html"`
	Placement string  `json:"placement" enum:"tl,tr,bl,br"`
	Start     int     `json:"start"`
	End       int     `json:"end"`
	URL       string  `json:"url,omitempty"`
	HTML      string  `json:"html,omitempty"`
	Href      string  `json:"href,omitempty"`
	Opacity   float64 `json:"opacity"`
}

// IssuedGrant is the immutable playback authorization handed to the client.
// A re-request yields a fresh grant with a new GrantID.
type IssuedGrant struct {
	GrantID                  string          `json:"grant_id"`
	ContentID                string          `json:"content_id"`
	Title                    string          `json:"title"`
	IssuedAt                 time.Time       `json:"issued_at"`
	ExpiresAt                time.Time       `json:"expires_at"`
	HeartbeatIntervalSeconds int             `json:"heartbeat_interval_seconds"`
	Sources                  []GrantSource   `json:"sources"`
	Subtitles                []GrantSubtitle `json:"subtitles,omitempty"`
	Overlays                 []GrantOverlay  `json:"overlays,omitempty"`
}

// ContentResolver resolves a movie ID to playable content. Implemented by
// MovieService.
type ContentResolver interface {
	ResolvePlayable(ctx context.Context, id models.ULID) (*PlayableContent, error)
}

// GrantService issues time-bounded playback grants.
type GrantService struct {
	content           ContentResolver
	grants            repository.PlayGrantRepository
	signer            *signing.Signer
	defaultTTL        time.Duration
	maxTTL            time.Duration
	heartbeatInterval time.Duration
	logger            *slog.Logger
	now               func() time.Time
}

// NewGrantService creates a grant service. defaultTTL applies when the
// caller does not request one; requested TTLs above maxTTL are clamped down.
func NewGrantService(content ContentResolver, grants repository.PlayGrantRepository, signer *signing.Signer, defaultTTL, maxTTL, heartbeatInterval time.Duration) *GrantService {
	if defaultTTL <= 0 {
		defaultTTL = 15 * time.Minute
	}
	if maxTTL < defaultTTL {
		maxTTL = defaultTTL
	}
	if heartbeatInterval <= 0 {
		heartbeatInterval = 30 * time.Second
	}
	return &GrantService{
		content:           content,
		grants:            grants,
		signer:            signer,
		defaultTTL:        defaultTTL,
		maxTTL:            maxTTL,
		heartbeatInterval: heartbeatInterval,
		logger:            slog.Default().With(slog.String("component", "grant-service")),
		now:               time.Now,
	}
}

// WithLogger sets a custom logger.
func (s *GrantService) WithLogger(logger *slog.Logger) *GrantService {
	s.logger = logger.With(slog.String("component", "grant-service"))
	return s
}

// WithClock overrides the time source. Used in tests.
func (s *GrantService) WithClock(now func() time.Time) *GrantService {
	s.now = now
	return s
}

// Issue resolves the movie, records a grant row, and assembles the signed
// grant payload. ttlSeconds is optional: nil takes the configured default,
// values above the maximum are clamped, and values <= 0 fail with
// models.ErrInvalidArgument. ExpiresAt is exactly IssuedAt plus the
// effective TTL.
func (s *GrantService) Issue(ctx context.Context, movieID models.ULID, ttlSeconds *int, userID string) (*IssuedGrant, error) {
	ttl := s.defaultTTL
	if ttlSeconds != nil {
		if *ttlSeconds <= 0 {
			return nil, fmt.Errorf("%w: ttl must be positive", models.ErrInvalidArgument)
		}
		ttl = time.Duration(*ttlSeconds) * time.Second
		if ttl > s.maxTTL {
			ttl = s.maxTTL
		}
	}

	content, err := s.content.ResolvePlayable(ctx, movieID)
	if err != nil {
		return nil, err
	}

	// Placements are validated at write time, but a malformed row must never
	// reach a client.
	for _, overlay := range content.Overlays {
		if err := overlay.Validate(); err != nil {
			return nil, fmt.Errorf("%w: overlay %s: %s", models.ErrInvalidArgument, overlay.ID, err)
		}
	}

	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl)

	record := &models.PlayGrant{
		MovieID:                  movieID,
		UserID:                   userID,
		IssuedAt:                 issuedAt,
		ExpiresAt:                expiresAt,
		HeartbeatIntervalSeconds: int(s.heartbeatInterval / time.Second),
	}
	if err := s.grants.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("recording grant: %w", err)
	}
	grantID := record.ID.String()

	grant := &IssuedGrant{
		GrantID:                  grantID,
		ContentID:                movieID.String(),
		Title:                    content.Movie.Title,
		IssuedAt:                 issuedAt,
		ExpiresAt:                expiresAt,
		HeartbeatIntervalSeconds: record.HeartbeatIntervalSeconds,
		Sources:                  make([]GrantSource, 0, len(content.Sources)),
		Subtitles:                make([]GrantSubtitle, 0, len(content.Subtitles)),
		Overlays:                 make([]GrantOverlay, 0, len(content.Overlays)),
	}

	for _, src := range content.Sources {
		signedURL, err := s.signer.SignedURL(src.StorageKey, grantID, issuedAt, expiresAt)
		if err != nil {
			return nil, fmt.Errorf("signing source url: %w", err)
		}
		grant.Sources = append(grant.Sources, GrantSource{
			ID:    src.ID.String(),
			Type:  string(src.Type),
			Label: src.Label,
			URL:   signedURL,
			DRM:   src.DRM,
		})
	}

	for _, sub := range content.Subtitles {
		signedURL, err := s.signer.SignedURL(sub.StorageKey, grantID, issuedAt, expiresAt)
		if err != nil {
			return nil, fmt.Errorf("signing subtitle url: %w", err)
		}
		grant.Subtitles = append(grant.Subtitles, GrantSubtitle{
			Lang:  sub.Lang,
			Label: sub.Label,
			URL:   signedURL,
		})
	}

	for _, overlay := range content.Overlays {
		grant.Overlays = append(grant.Overlays, GrantOverlay{
			Type:      string(overlay.Type),
			Placement: string(overlay.Corner),
			Start:     overlay.StartSeconds,
			End:       overlay.EndSeconds,
			URL:       overlay.URL,
			HTML:      overlay.HTML,
			Href:      overlay.Href,
			Opacity:   overlay.Opacity,
		})
	}

	s.logger.Info("grant issued",
		slog.String("grant_id", grantID),
		slog.String("movie_id", movieID.String()),
		slog.Duration("ttl", ttl),
		slog.Int("sources", len(grant.Sources)))

	return grant, nil
}
