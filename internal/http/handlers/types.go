// Package handlers provides the HTTP API handlers for reelhouse.
package handlers

import (
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/reelhouse/reelhouse/internal/models"
)

// Permission codes gating the admin surfaces.
const (
	// PermCatalogManage gates catalog and sponsor write operations.
	PermCatalogManage = "catalog:manage"
	// PermAnalyticsRead gates session reporting reads.
	PermAnalyticsRead = "analytics:read"
)

// validationSentinels are model errors that map to 400 at the boundary.
var validationSentinels = []error{
	models.ErrTitleRequired,
	models.ErrNameRequired,
	models.ErrSlugRequired,
	models.ErrStorageKeyRequired,
	models.ErrLanguageRequired,
	models.ErrInvalidSourceType,
	models.ErrInvalidMovieStatus,
	models.ErrInvalidOverlayType,
	models.ErrInvalidOverlayCorner,
	models.ErrInvalidOverlayWindow,
	models.ErrInvalidOverlayOpacity,
	models.ErrOverlayContentRequired,
	models.ErrInvalidEventType,
	models.ErrSessionIDRequired,
	models.ErrMovieIDRequired,
	models.ErrSponsorIDRequired,
}

// mapServiceError translates the service error taxonomy onto HTTP statuses:
// not found 404, invalid argument and validation failures 400, unavailable
// content 409, expired or replayed grants 403, rate limiting 429. Anything
// unrecognized is a 500 with the detail kept server-side.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return huma.Error404NotFound("not found")
	case errors.Is(err, models.ErrInvalidArgument):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, models.ErrContentUnavailable):
		return huma.Error409Conflict("content has no playable source")
	case errors.Is(err, models.ErrGrantExpired):
		return huma.Error403Forbidden("grant expired")
	case errors.Is(err, models.ErrGrantReplayed):
		return huma.Error403Forbidden("grant already used")
	case errors.Is(err, models.ErrRateLimited):
		return huma.Error429TooManyRequests("rate limited")
	}

	var verr models.ErrValidation
	if errors.As(err, &verr) {
		return huma.Error400BadRequest(verr.Error())
	}
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return huma.Error400BadRequest(err.Error())
		}
	}

	return huma.Error500InternalServerError("internal error", err)
}

// MovieResponse is the wire form of a movie.
type MovieResponse struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Slug            string             `json:"slug"`
	Synopsis        string             `json:"synopsis,omitempty"`
	Year            int                `json:"year,omitempty"`
	DurationSeconds int                `json:"duration_seconds,omitempty"`
	Status          string             `json:"status"`
	PosterKey       string             `json:"poster_key,omitempty"`
	Genres          []GenreResponse    `json:"genres,omitempty"`
	Sources         []SourceResponse   `json:"sources,omitempty"`
	Subtitles       []SubtitleResponse `json:"subtitles,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// SourceResponse is the wire form of a media source.
type SourceResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Label      string `json:"label,omitempty"`
	StorageKey string `json:"storage_key"`
	DRM        string `json:"drm,omitempty"`
	Active     bool   `json:"active"`
	Priority   int    `json:"priority"`
}

// SubtitleResponse is the wire form of a subtitle track.
type SubtitleResponse struct {
	ID         string `json:"id"`
	Lang       string `json:"lang"`
	Label      string `json:"label,omitempty"`
	StorageKey string `json:"storage_key"`
}

// GenreResponse is the wire form of a genre.
type GenreResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SponsorResponse is the wire form of a sponsor.
type SponsorResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	ContactEmail string              `json:"contact_email,omitempty"`
	Enabled      bool                `json:"enabled"`
	Placements   []PlacementResponse `json:"placements,omitempty"`
}

// PlacementResponse is the wire form of an overlay placement.
type PlacementResponse struct {
	ID      string  `json:"id"`
	MovieID string  `json:"movie_id,omitempty"`
	Type    string  `json:"type"`
	Corner  string  `json:"placement"`
	Start   int     `json:"start"`
	End     int     `json:"end"`
	URL     string  `json:"url,omitempty"`
	HTML    string  `json:"html,omitempty"`
	Href    string  `json:"href,omitempty"`
	Opacity float64 `json:"opacity"`
	Active  bool    `json:"active"`
}

// MovieFromModel converts a movie model to its wire form.
func MovieFromModel(m *models.Movie) MovieResponse {
	resp := MovieResponse{
		ID:              m.ID.String(),
		Title:           m.Title,
		Slug:            m.Slug,
		Synopsis:        m.Synopsis,
		Year:            m.Year,
		DurationSeconds: m.DurationSeconds,
		Status:          string(m.Status),
		PosterKey:       m.PosterKey,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	for _, g := range m.Genres {
		resp.Genres = append(resp.Genres, GenreResponse{ID: g.ID.String(), Name: g.Name, Slug: g.Slug})
	}
	for _, s := range m.Sources {
		resp.Sources = append(resp.Sources, SourceResponse{
			ID:         s.ID.String(),
			Type:       string(s.Type),
			Label:      s.Label,
			StorageKey: s.StorageKey,
			DRM:        s.DRM,
			Active:     models.BoolVal(s.Active),
			Priority:   s.Priority,
		})
	}
	for _, sub := range m.Subtitles {
		resp.Subtitles = append(resp.Subtitles, SubtitleResponse{
			ID:         sub.ID.String(),
			Lang:       sub.Lang,
			Label:      sub.Label,
			StorageKey: sub.StorageKey,
		})
	}
	return resp
}

// SponsorFromModel converts a sponsor model to its wire form.
func SponsorFromModel(s *models.Sponsor) SponsorResponse {
	resp := SponsorResponse{
		ID:           s.ID.String(),
		Name:         s.Name,
		ContactEmail: s.ContactEmail,
		Enabled:      models.BoolVal(s.Enabled),
	}
	for i := range s.Placements {
		resp.Placements = append(resp.Placements, PlacementFromModel(&s.Placements[i]))
	}
	return resp
}

// PlacementFromModel converts a placement model to its wire form.
func PlacementFromModel(p *models.SponsorPlacement) PlacementResponse {
	resp := PlacementResponse{
		ID:      p.ID.String(),
		Type:    string(p.Type),
		Corner:  string(p.Corner),
		Start:   p.StartSeconds,
		End:     p.EndSeconds,
		URL:     p.URL,
		HTML:    p.HTML,
		Href:    p.Href,
		Opacity: p.Opacity,
		Active:  models.BoolVal(p.Active),
	}
	if p.MovieID != nil && !p.MovieID.IsZero() {
		resp.MovieID = p.MovieID.String()
	}
	return resp
}
