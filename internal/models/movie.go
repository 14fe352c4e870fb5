package models

import "strings"

// MovieStatus represents the publication state of a movie.
type MovieStatus string

const (
	// MovieStatusDraft indicates a movie not yet visible to playback.
	MovieStatusDraft MovieStatus = "draft"
	// MovieStatusPublished indicates a movie available for playback.
	MovieStatusPublished MovieStatus = "published"
	// MovieStatusArchived indicates a movie withdrawn from playback.
	MovieStatusArchived MovieStatus = "archived"
)

// SourceType represents the container/protocol of a media source.
type SourceType string

const (
	// SourceTypeHLS represents an HLS rendition.
	SourceTypeHLS SourceType = "hls"
	// SourceTypeDASH represents a DASH rendition.
	SourceTypeDASH SourceType = "dash"
	// SourceTypeMP4 represents a progressive MP4 rendition.
	SourceTypeMP4 SourceType = "mp4"
)

// Movie represents a single playable content item in the catalog.
type Movie struct {
	BaseModel

	// Title is the display title.
	Title string `gorm:"not null;size:512" json:"title"`

	// Slug is a URL-friendly unique identifier.
	Slug string `gorm:"uniqueIndex;not null;size:255" json:"slug"`

	// Synopsis is the long-form description shown on detail pages.
	Synopsis string `gorm:"size:8192" json:"synopsis,omitempty"`

	// Year is the release year.
	Year int `gorm:"default:0" json:"year,omitempty"`

	// DurationSeconds is the runtime of the feature.
	DurationSeconds int `gorm:"default:0" json:"duration_seconds,omitempty"`

	// Status controls visibility to the playback surface.
	Status MovieStatus `gorm:"not null;default:'draft';size:20" json:"status"`

	// PosterKey is the object-store key of the poster image.
	PosterKey string `gorm:"size:1024" json:"poster_key,omitempty"`

	// Genres is the many-to-many relationship to genres.
	Genres []Genre `gorm:"many2many:movie_genres;" json:"genres,omitempty"`

	// Sources is the relationship to media renditions.
	Sources []MovieSource `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"sources,omitempty"`

	// Subtitles is the relationship to subtitle tracks.
	Subtitles []SubtitleTrack `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"subtitles,omitempty"`
}

// TableName returns the table name for Movie.
func (Movie) TableName() string {
	return "movies"
}

// IsPublished returns true if the movie is visible to playback.
func (m *Movie) IsPublished() bool {
	return m.Status == MovieStatusPublished
}

// ActiveSources returns the movie's active sources ordered as stored.
func (m *Movie) ActiveSources() []MovieSource {
	active := make([]MovieSource, 0, len(m.Sources))
	for _, s := range m.Sources {
		if BoolVal(s.Active) {
			active = append(active, s)
		}
	}
	return active
}

// Validate checks the movie for structural errors.
func (m *Movie) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(m.Slug) == "" {
		return ErrSlugRequired
	}
	switch m.Status {
	case MovieStatusDraft, MovieStatusPublished, MovieStatusArchived:
	default:
		return ErrInvalidMovieStatus
	}
	return nil
}

// MovieSource represents one playable rendition of a movie.
type MovieSource struct {
	BaseModel

	// MovieID is the owning movie.
	MovieID ULID `gorm:"not null;index" json:"movie_id"`

	// Type is the rendition container/protocol.
	Type SourceType `gorm:"not null;size:10" json:"type"`

	// Label is the human-readable quality label ("1080p", "4K HDR").
	Label string `gorm:"size:100" json:"label,omitempty"`

	// StorageKey is the object-store key of the manifest or file.
	StorageKey string `gorm:"not null;size:1024" json:"storage_key"`

	// DRM is an optional DRM scheme hint ("widevine", "fairplay").
	DRM string `gorm:"size:50" json:"drm,omitempty"`

	// Active indicates whether this rendition may be handed out in grants.
	Active *bool `gorm:"default:true" json:"active"`

	// Priority orders renditions within a grant. Higher first.
	Priority int `gorm:"default:0" json:"priority"`
}

// TableName returns the table name for MovieSource.
func (MovieSource) TableName() string {
	return "movie_sources"
}

// Validate checks the source for structural errors.
func (s *MovieSource) Validate() error {
	if s.MovieID.IsZero() {
		return ErrMovieIDRequired
	}
	switch s.Type {
	case SourceTypeHLS, SourceTypeDASH, SourceTypeMP4:
	default:
		return ErrInvalidSourceType
	}
	if strings.TrimSpace(s.StorageKey) == "" {
		return ErrStorageKeyRequired
	}
	return nil
}

// SubtitleTrack represents a subtitle file attached to a movie.
type SubtitleTrack struct {
	BaseModel

	// MovieID is the owning movie.
	MovieID ULID `gorm:"not null;index" json:"movie_id"`

	// Lang is the BCP-47 language tag.
	Lang string `gorm:"not null;size:20" json:"lang"`

	// Label is the display name ("English", "Deutsch (CC)").
	Label string `gorm:"size:100" json:"label,omitempty"`

	// StorageKey is the object-store key of the subtitle file.
	StorageKey string `gorm:"not null;size:1024" json:"storage_key"`
}

// TableName returns the table name for SubtitleTrack.
func (SubtitleTrack) TableName() string {
	return "subtitle_tracks"
}

// Validate checks the subtitle track for structural errors.
func (t *SubtitleTrack) Validate() error {
	if t.MovieID.IsZero() {
		return ErrMovieIDRequired
	}
	if strings.TrimSpace(t.Lang) == "" {
		return ErrLanguageRequired
	}
	if strings.TrimSpace(t.StorageKey) == "" {
		return ErrStorageKeyRequired
	}
	return nil
}
