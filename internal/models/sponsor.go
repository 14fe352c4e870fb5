package models

import "strings"

// OverlayType represents the kind of creative an overlay renders.
type OverlayType string

const (
	// OverlayTypeImage renders an image creative.
	OverlayTypeImage OverlayType = "image"
	// OverlayTypeHTML renders an HTML snippet.
	OverlayTypeHTML OverlayType = "html"
)

// OverlayCorner represents the screen corner an overlay is anchored to.
type OverlayCorner string

const (
	// OverlayCornerTopLeft anchors top-left.
	OverlayCornerTopLeft OverlayCorner = "tl"
	// OverlayCornerTopRight anchors top-right.
	OverlayCornerTopRight OverlayCorner = "tr"
	// OverlayCornerBottomLeft anchors bottom-left.
	OverlayCornerBottomLeft OverlayCorner = "bl"
	// OverlayCornerBottomRight anchors bottom-right.
	OverlayCornerBottomRight OverlayCorner = "br"
)

// Sponsor represents an advertiser whose creatives are shown during playback.
type Sponsor struct {
	BaseModel

	// Name is the sponsor's display name. Must be unique.
	Name string `gorm:"uniqueIndex;not null;size:255" json:"name"`

	// ContactEmail is the billing/ops contact.
	ContactEmail string `gorm:"size:255" json:"contact_email,omitempty"`

	// Enabled gates all of the sponsor's placements at once.
	Enabled *bool `gorm:"default:true" json:"enabled"`

	// Placements is the relationship to overlay placements.
	Placements []SponsorPlacement `gorm:"foreignKey:SponsorID;constraint:OnDelete:CASCADE" json:"placements,omitempty"`
}

// TableName returns the table name for Sponsor.
func (Sponsor) TableName() string {
	return "sponsors"
}

// Validate checks the sponsor for structural errors.
func (s *Sponsor) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// SponsorPlacement represents a timed overlay creative shown during playback.
// Start and End are offsets in seconds relative to playback start.
type SponsorPlacement struct {
	BaseModel

	// SponsorID is the owning sponsor.
	SponsorID ULID `gorm:"not null;index" json:"sponsor_id"`

	// MovieID optionally scopes the placement to one movie.
	// Zero means the placement applies to all movies.
	MovieID *ULID `gorm:"index" json:"movie_id,omitempty"`

	// Type is the creative kind.
	Type OverlayType `gorm:"not null;size:10" json:"type"`

	// Corner is the anchor position.
	Corner OverlayCorner `gorm:"not null;size:2" json:"placement"`

	// StartSeconds is the playback offset the overlay appears at.
	StartSeconds int `gorm:"not null;default:0" json:"start"`

	// EndSeconds is the playback offset the overlay disappears at.
	EndSeconds int `gorm:"not null;default:0" json:"end"`

	// URL is the creative asset URL for image overlays.
	URL string `gorm:"size:2048" json:"url,omitempty"`

	// HTML is the creative markup for html overlays.
	HTML string `gorm:"size:8192" json:"html,omitempty"`

	// Href is an optional click-through target.
	Href string `gorm:"size:2048" json:"href,omitempty"`

	// Opacity is the render opacity in [0,1].
	Opacity float64 `gorm:"not null;default:1" json:"opacity"`

	// Active indicates whether the placement may be included in grants.
	Active *bool `gorm:"default:true" json:"active"`
}

// TableName returns the table name for SponsorPlacement.
func (SponsorPlacement) TableName() string {
	return "sponsor_placements"
}

// Validate checks the placement for structural errors.
// Out-of-range values are rejected rather than clamped so that authoring
// mistakes surface at write time instead of during playback.
func (p *SponsorPlacement) Validate() error {
	if p.SponsorID.IsZero() {
		return ErrSponsorIDRequired
	}
	switch p.Type {
	case OverlayTypeImage, OverlayTypeHTML:
	default:
		return ErrInvalidOverlayType
	}
	switch p.Corner {
	case OverlayCornerTopLeft, OverlayCornerTopRight, OverlayCornerBottomLeft, OverlayCornerBottomRight:
	default:
		return ErrInvalidOverlayCorner
	}
	if p.StartSeconds < 0 || p.StartSeconds >= p.EndSeconds {
		return ErrInvalidOverlayWindow
	}
	if p.Opacity < 0 || p.Opacity > 1 {
		return ErrInvalidOverlayOpacity
	}
	if strings.TrimSpace(p.URL) == "" && strings.TrimSpace(p.HTML) == "" {
		return ErrOverlayContentRequired
	}
	return nil
}

// AppliesTo returns true if the placement targets the given movie.
func (p *SponsorPlacement) AppliesTo(movieID ULID) bool {
	if p.MovieID == nil || p.MovieID.IsZero() {
		return true
	}
	return *p.MovieID == movieID
}
