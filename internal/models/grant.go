package models

import "time"

// PlayGrant is the persisted record of one grant issuance. The record exists
// so the replay guard can enforce first-use and expiry across instances; the
// grant payload handed to the client is assembled by the grant service and is
// immutable once issued. A re-request is a new grant with a new ID.
type PlayGrant struct {
	BaseModel

	// MovieID is the content item the grant was issued for.
	MovieID ULID `gorm:"not null;index" json:"movie_id"`

	// UserID is the requesting user, if authenticated.
	UserID string `gorm:"size:100" json:"user_id,omitempty"`

	// IssuedAt is the issuance instant.
	IssuedAt Time `gorm:"not null" json:"issued_at"`

	// ExpiresAt is IssuedAt plus the granted TTL, exactly.
	ExpiresAt Time `gorm:"not null;index" json:"expires_at"`

	// HeartbeatIntervalSeconds is the advisory client ping interval.
	HeartbeatIntervalSeconds int `gorm:"not null;default:30" json:"heartbeat_interval_seconds"`

	// FirstUsedAt records when the grant was first consumed, for replay detection.
	FirstUsedAt *Time `json:"first_used_at,omitempty"`
}

// TableName returns the table name for PlayGrant.
func (PlayGrant) TableName() string {
	return "play_grants"
}

// TTL returns the grant lifetime.
func (g *PlayGrant) TTL() time.Duration {
	return g.ExpiresAt.Sub(g.IssuedAt)
}

// ExpiredAt returns true if the grant is past expiry at the given instant.
func (g *PlayGrant) ExpiredAt(now time.Time) bool {
	return now.After(g.ExpiresAt)
}
