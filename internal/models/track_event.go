package models

import "strings"

// EventType identifies a lifecycle or analytics event kind.
// The enumeration is closed: unknown types are rejected at ingestion.
type EventType string

const (
	// EventPageView records a page render.
	EventPageView EventType = "page_view"
	// EventMovieDetailView records a movie detail page render.
	EventMovieDetailView EventType = "movie_detail_view"
	// EventSponsorClick records a click on a sponsor creative.
	EventSponsorClick EventType = "sponsor_click"
	// EventSearch records a catalog search.
	EventSearch EventType = "search"
	// EventPlayStart opens a playback session.
	EventPlayStart EventType = "play_start"
	// EventPlayHeartbeat signals continued playback.
	EventPlayHeartbeat EventType = "play_heartbeat"
	// EventPlayEnd closes a playback session.
	EventPlayEnd EventType = "play_end"
	// EventPlayerQuartile records a playback progress quartile.
	EventPlayerQuartile EventType = "player_quartile"
	// EventPlayerStallStart records the beginning of a buffering stall.
	EventPlayerStallStart EventType = "player_stall_start"
	// EventPlayerStallEnd records the end of a buffering stall.
	EventPlayerStallEnd EventType = "player_stall_end"
	// EventPlayerError records a player-side error.
	EventPlayerError EventType = "player_error"
)

// eventTypes is the closed enumeration of accepted event types.
var eventTypes = map[EventType]bool{
	EventPageView:         true,
	EventMovieDetailView:  true,
	EventSponsorClick:     true,
	EventSearch:           true,
	EventPlayStart:        true,
	EventPlayHeartbeat:    true,
	EventPlayEnd:          true,
	EventPlayerQuartile:   true,
	EventPlayerStallStart: true,
	EventPlayerStallEnd:   true,
	EventPlayerError:      true,
}

// IsValid returns true if the event type is part of the enumeration.
func (t EventType) IsValid() bool {
	return eventTypes[t]
}

// IsPlayEvent returns true for playback lifecycle events, which require
// a session id for correlation.
func (t EventType) IsPlayEvent() bool {
	switch t {
	case EventPlayStart, EventPlayHeartbeat, EventPlayEnd:
		return true
	}
	return false
}

// TrackEvent is one append-only analytics record. Events are never updated
// or deleted through the API; retention is a warehouse concern.
type TrackEvent struct {
	BaseModel

	// Type is the event kind.
	Type EventType `gorm:"not null;size:30;index" json:"type"`

	// ClientTS is the client-supplied timestamp, retained for audit.
	// Clock skew is expected and not corrected.
	ClientTS *Time `json:"timestamp,omitempty"`

	// ServerTS is stamped at ingestion and is the only timestamp used for
	// ordering-sensitive decisions.
	ServerTS Time `gorm:"not null;index" json:"server_ts"`

	// SessionID correlates events of one playback session.
	SessionID string `gorm:"size:100;index" json:"session_id,omitempty"`

	// GrantID correlates events back to the issued grant.
	GrantID string `gorm:"size:26;index" json:"grant_id,omitempty"`

	// MovieID is the content item the event refers to, if any.
	MovieID string `gorm:"size:26;index" json:"movie_id,omitempty"`

	// UserID is the authenticated user, if any.
	UserID string `gorm:"size:100" json:"user_id,omitempty"`

	// Path is the client-side route the event fired on.
	Path string `gorm:"size:2048" json:"path,omitempty"`

	// IP is the server-observed client address ("unknown" when unobtainable).
	IP string `gorm:"size:64" json:"ip,omitempty"`

	// UserAgent is the server-observed user agent.
	UserAgent string `gorm:"size:1024" json:"user_agent,omitempty"`

	// Country is the GeoIP-derived ISO country code, when enrichment is enabled.
	Country string `gorm:"size:2" json:"country,omitempty"`

	// Meta is a free-form extension bag (placement ids, quartile, error codes).
	// Only base fields are schema-validated; meta is passed through.
	Meta map[string]any `gorm:"type:text;serializer:json" json:"meta,omitempty"`
}

// TableName returns the table name for TrackEvent.
func (TrackEvent) TableName() string {
	return "track_events"
}

// Validate checks the event against the base-field schema.
func (e *TrackEvent) Validate() error {
	if !e.Type.IsValid() {
		return ErrInvalidEventType
	}
	if e.Type.IsPlayEvent() && strings.TrimSpace(e.SessionID) == "" {
		return ErrSessionIDRequired
	}
	return nil
}
