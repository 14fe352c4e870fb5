package migrations

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMigrationTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db
}

func TestMigrator_Up(t *testing.T) {
	db := setupMigrationTestDB(t)
	ctx := context.Background()

	m := NewMigrator(db, nil)
	m.RegisterAll(AllMigrations())

	require.NoError(t, m.Up(ctx))

	// Schema exists
	assert.True(t, db.Migrator().HasTable(&models.Movie{}))
	assert.True(t, db.Migrator().HasTable(&models.MovieSource{}))
	assert.True(t, db.Migrator().HasTable(&models.TrackEvent{}))
	assert.True(t, db.Migrator().HasTable(&models.PlayGrant{}))
	assert.True(t, db.Migrator().HasTable(&models.SponsorPlacement{}))

	// Seed data exists
	var genreCount int64
	require.NoError(t, db.Model(&models.Genre{}).Count(&genreCount).Error)
	assert.Equal(t, int64(7), genreCount)

	// All versions recorded
	var records []MigrationRecord
	require.NoError(t, db.Find(&records).Error)
	assert.Len(t, records, 2)
}

func TestMigrator_Up_Idempotent(t *testing.T) {
	db := setupMigrationTestDB(t)
	ctx := context.Background()

	m := NewMigrator(db, nil)
	m.RegisterAll(AllMigrations())

	require.NoError(t, m.Up(ctx))
	require.NoError(t, m.Up(ctx))

	var genreCount int64
	require.NoError(t, db.Model(&models.Genre{}).Count(&genreCount).Error)
	assert.Equal(t, int64(7), genreCount)
}

func TestMigrator_Down(t *testing.T) {
	db := setupMigrationTestDB(t)
	ctx := context.Background()

	m := NewMigrator(db, nil)
	m.RegisterAll(AllMigrations())

	require.NoError(t, m.Up(ctx))
	require.NoError(t, m.Down(ctx))

	// Seed migration rolled back, schema migration still applied
	var genreCount int64
	require.NoError(t, db.Model(&models.Genre{}).Count(&genreCount).Error)
	assert.Equal(t, int64(0), genreCount)

	var records []MigrationRecord
	require.NoError(t, db.Find(&records).Error)
	assert.Len(t, records, 1)
	assert.Equal(t, "001", records[0].Version)
}

func TestMigrator_Down_Empty(t *testing.T) {
	db := setupMigrationTestDB(t)

	m := NewMigrator(db, nil)
	assert.NoError(t, m.Down(context.Background()))
}
