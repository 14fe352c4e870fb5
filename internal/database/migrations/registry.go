// Package migrations provides database migration management for reelhouse.
package migrations

import (
	"github.com/reelhouse/reelhouse/internal/models"
	"gorm.io/gorm"
)

// AllMigrations returns all registered migrations in order:
// - 001: Schema creation using GORM AutoMigrate
// - 002: Seed default genres
func AllMigrations() []Migration {
	return []Migration{
		migration001Schema(),
		migration002SeedGenres(),
	}
}

// migration001Schema creates all database tables using GORM AutoMigrate.
func migration001Schema() Migration {
	return Migration{
		Version:     "001",
		Description: "Create all database tables",
		Up: func(tx *gorm.DB) error {
			// AutoMigrate all models in dependency order
			return tx.AutoMigrate(
				// Catalog tables
				&models.Genre{},
				&models.Movie{},
				&models.MovieSource{},
				&models.SubtitleTrack{},

				// Sponsor tables
				&models.Sponsor{},
				&models.SponsorPlacement{},

				// Playback tracking
				&models.PlayGrant{},
				&models.TrackEvent{},
			)
		},
		Down: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(
				&models.TrackEvent{},
				&models.PlayGrant{},
				&models.SponsorPlacement{},
				&models.Sponsor{},
				&models.SubtitleTrack{},
				&models.MovieSource{},
				&models.Movie{},
				&models.Genre{},
			)
		},
	}
}

// migration002SeedGenres seeds the default genre set on fresh installs.
func migration002SeedGenres() Migration {
	defaults := []models.Genre{
		{Name: "Action", Slug: "action"},
		{Name: "Comedy", Slug: "comedy"},
		{Name: "Documentary", Slug: "documentary"},
		{Name: "Drama", Slug: "drama"},
		{Name: "Horror", Slug: "horror"},
		{Name: "Science Fiction", Slug: "science-fiction"},
		{Name: "Thriller", Slug: "thriller"},
	}

	return Migration{
		Version:     "002",
		Description: "Seed default genres",
		Up: func(tx *gorm.DB) error {
			for i := range defaults {
				genre := defaults[i]
				var count int64
				if err := tx.Model(&models.Genre{}).Where("slug = ?", genre.Slug).Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					continue
				}
				if err := tx.Create(&genre).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Down: func(tx *gorm.DB) error {
			slugs := make([]string, 0, len(defaults))
			for _, g := range defaults {
				slugs = append(slugs, g.Slug)
			}
			return tx.Where("slug IN ?", slugs).Delete(&models.Genre{}).Error
		},
	}
}
