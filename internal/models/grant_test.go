package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlayGrant_TTL(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := PlayGrant{
		IssuedAt:  issued,
		ExpiresAt: issued.Add(15 * time.Minute),
	}

	assert.Equal(t, 15*time.Minute, g.TTL())
}

func TestPlayGrant_ExpiredAt(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := PlayGrant{
		IssuedAt:  issued,
		ExpiresAt: issued.Add(time.Minute),
	}

	assert.False(t, g.ExpiredAt(issued))
	assert.False(t, g.ExpiredAt(issued.Add(time.Minute))) // boundary is still valid
	assert.True(t, g.ExpiredAt(issued.Add(time.Minute+time.Second)))
}

func TestPlayGrant_TableName(t *testing.T) {
	assert.Equal(t, "play_grants", PlayGrant{}.TableName())
}
