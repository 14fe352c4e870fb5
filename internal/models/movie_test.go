package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovie_Validate(t *testing.T) {
	tests := []struct {
		name    string
		movie   Movie
		wantErr error
	}{
		{"valid", Movie{Title: "Solar Winds", Slug: "solar-winds", Status: MovieStatusDraft}, nil},
		{"missing title", Movie{Slug: "x", Status: MovieStatusDraft}, ErrTitleRequired},
		{"missing slug", Movie{Title: "X", Status: MovieStatusDraft}, ErrSlugRequired},
		{"bad status", Movie{Title: "X", Slug: "x", Status: "live"}, ErrInvalidMovieStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.movie.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestMovie_IsPublished(t *testing.T) {
	assert.True(t, (&Movie{Status: MovieStatusPublished}).IsPublished())
	assert.False(t, (&Movie{Status: MovieStatusDraft}).IsPublished())
	assert.False(t, (&Movie{Status: MovieStatusArchived}).IsPublished())
}

func TestMovie_ActiveSources(t *testing.T) {
	m := Movie{
		Sources: []MovieSource{
			{Type: SourceTypeHLS, StorageKey: "a", Active: BoolPtr(true)},
			{Type: SourceTypeMP4, StorageKey: "b", Active: BoolPtr(false)},
			{Type: SourceTypeDASH, StorageKey: "c"}, // nil defaults to active
		},
	}

	active := m.ActiveSources()
	assert.Len(t, active, 2)
	assert.Equal(t, "a", active[0].StorageKey)
	assert.Equal(t, "c", active[1].StorageKey)
}

func TestMovieSource_Validate(t *testing.T) {
	movieID := NewULID()

	tests := []struct {
		name    string
		source  MovieSource
		wantErr error
	}{
		{"valid hls", MovieSource{MovieID: movieID, Type: SourceTypeHLS, StorageKey: "movies/m1/master.m3u8"}, nil},
		{"missing movie", MovieSource{Type: SourceTypeHLS, StorageKey: "k"}, ErrMovieIDRequired},
		{"bad type", MovieSource{MovieID: movieID, Type: "rtmp", StorageKey: "k"}, ErrInvalidSourceType},
		{"missing key", MovieSource{MovieID: movieID, Type: SourceTypeMP4}, ErrStorageKeyRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.source.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSubtitleTrack_Validate(t *testing.T) {
	movieID := NewULID()

	assert.NoError(t, (&SubtitleTrack{MovieID: movieID, Lang: "en", StorageKey: "subs/en.vtt"}).Validate())
	assert.ErrorIs(t, (&SubtitleTrack{Lang: "en", StorageKey: "k"}).Validate(), ErrMovieIDRequired)
	assert.ErrorIs(t, (&SubtitleTrack{MovieID: movieID, StorageKey: "k"}).Validate(), ErrLanguageRequired)
	assert.ErrorIs(t, (&SubtitleTrack{MovieID: movieID, Lang: "en"}).Validate(), ErrStorageKeyRequired)
}
