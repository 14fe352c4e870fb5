package models

import "strings"

// Genre represents a catalog genre movies can be tagged with.
type Genre struct {
	BaseModel

	// Name is the display name. Must be unique across genres.
	Name string `gorm:"uniqueIndex;not null;size:100" json:"name"`

	// Slug is a URL-friendly unique identifier.
	Slug string `gorm:"uniqueIndex;not null;size:100" json:"slug"`

	// Movies is the many-to-many relationship back to movies.
	Movies []Movie `gorm:"many2many:movie_genres;" json:"movies,omitempty"`
}

// TableName returns the table name for Genre.
func (Genre) TableName() string {
	return "genres"
}

// Validate checks the genre for structural errors.
func (g *Genre) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(g.Slug) == "" {
		return ErrSlugRequired
	}
	return nil
}
