package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolver_EmptyPath(t *testing.T) {
	r, err := NewResolver("", nil)
	require.NoError(t, err)
	assert.IsType(t, NoopResolver{}, r)
	assert.Empty(t, r.Country("203.0.113.7"))
	assert.NoError(t, r.Close())
}

func TestNewResolver_MissingFile(t *testing.T) {
	_, err := NewResolver("/nonexistent/GeoLite2-Country.mmdb", nil)
	assert.Error(t, err)
}

func TestNoopResolver(t *testing.T) {
	var r Resolver = NoopResolver{}
	assert.Empty(t, r.Country("198.51.100.1"))
	assert.Empty(t, r.Country("not-an-ip"))
	assert.NoError(t, r.Close())
}
