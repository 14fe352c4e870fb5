package models

import (
	"errors"
	"fmt"
)

// ErrValidation represents a validation error with field and message.
type ErrValidation struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ErrValidation) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Playback error taxonomy. Handlers map these onto HTTP statuses:
// not found -> 404, invalid argument -> 400, unavailable -> 409,
// expired/replayed -> 403, rate limited -> 429.
var (
	// ErrNotFound indicates a content id that could not be resolved.
	ErrNotFound = errors.New("content not found")

	// ErrInvalidArgument indicates a malformed caller-supplied value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrContentUnavailable indicates resolved content with no playable source.
	ErrContentUnavailable = errors.New("content has no playable source")

	// ErrGrantExpired indicates a grant used past its expiry.
	ErrGrantExpired = errors.New("grant expired")

	// ErrGrantReplayed indicates reuse of an already-consumed grant.
	ErrGrantReplayed = errors.New("grant already used")

	// ErrRateLimited indicates a caller exceeding its event budget.
	ErrRateLimited = errors.New("rate limited")
)

// Common validation errors for models.
var (
	// ErrTitleRequired indicates a required title field is empty.
	ErrTitleRequired = errors.New("title is required")

	// ErrNameRequired indicates a required name field is empty.
	ErrNameRequired = errors.New("name is required")

	// ErrSlugRequired indicates a required slug field is empty.
	ErrSlugRequired = errors.New("slug is required")

	// ErrStorageKeyRequired indicates a required storage key field is empty.
	ErrStorageKeyRequired = errors.New("storage_key is required")

	// ErrLanguageRequired indicates a required language field is empty.
	ErrLanguageRequired = errors.New("language is required")

	// ErrInvalidSourceType indicates an invalid media source type.
	ErrInvalidSourceType = errors.New("invalid source type: must be 'hls', 'dash' or 'mp4'")

	// ErrInvalidMovieStatus indicates an invalid movie status.
	ErrInvalidMovieStatus = errors.New("invalid movie status: must be 'draft', 'published' or 'archived'")

	// ErrInvalidOverlayType indicates an invalid overlay type.
	ErrInvalidOverlayType = errors.New("invalid overlay type: must be 'image' or 'html'")

	// ErrInvalidOverlayCorner indicates an invalid overlay placement corner.
	ErrInvalidOverlayCorner = errors.New("invalid overlay placement: must be 'tl', 'tr', 'bl' or 'br'")

	// ErrInvalidOverlayWindow indicates an overlay time window with start >= end.
	ErrInvalidOverlayWindow = errors.New("overlay start must be before end")

	// ErrInvalidOverlayOpacity indicates an overlay opacity outside [0,1].
	ErrInvalidOverlayOpacity = errors.New("overlay opacity must be between 0 and 1")

	// ErrOverlayContentRequired indicates an overlay missing both URL and HTML body.
	ErrOverlayContentRequired = errors.New("overlay requires a url or html body")

	// ErrInvalidEventType indicates an event type outside the fixed enumeration.
	ErrInvalidEventType = errors.New("invalid event type")

	// ErrSessionIDRequired indicates a playback event missing its session id.
	ErrSessionIDRequired = errors.New("session_id is required for play events")

	// ErrMovieIDRequired indicates a required movie ID field is zero.
	ErrMovieIDRequired = errors.New("movie_id is required")

	// ErrSponsorIDRequired indicates a required sponsor ID field is zero.
	ErrSponsorIDRequired = errors.New("sponsor_id is required")
)
