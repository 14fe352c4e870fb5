package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/reelhouse/reelhouse/internal/database"
	"github.com/reelhouse/reelhouse/internal/database/migrations"
	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/reelhouse/reelhouse/internal/observability"
	"github.com/reelhouse/reelhouse/internal/repository"
	"github.com/reelhouse/reelhouse/internal/testutil"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with sample catalog data",
	Long: `Populate the configured database with fictional movies, sponsors, and
completed playback sessions for local development and demos.

All generated titles and brands are fictional. Seeding appends to whatever
is already in the database; it never truncates. Re-running against a
non-empty database can fail on unique slug or sponsor name collisions.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().Int("movies", 12, "Number of movies to create")
	seedCmd.Flags().Int("sponsors", 3, "Number of sponsors to create")
	seedCmd.Flags().Int("sessions", 5, "Number of playback sessions to create")
	seedCmd.Flags().Int64("seed", 0, "Random seed for reproducible data (0 picks one)")
}

// seedCounts is how many of each entity to generate.
type seedCounts struct {
	movies   int
	sponsors int
	sessions int
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := observability.NewLoggerWithWriter(cfg.Logging, cmd.ErrOrStderr())

	db, err := database.New(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() { _ = db.Close() }()

	migrator := migrations.NewMigrator(db.DB, logger)
	migrator.RegisterAll(migrations.AllMigrations())
	if err := migrator.Up(cmd.Context()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	counts := seedCounts{}
	counts.movies, _ = cmd.Flags().GetInt("movies")
	counts.sponsors, _ = cmd.Flags().GetInt("sponsors")
	counts.sessions, _ = cmd.Flags().GetInt("sessions")

	gen := testutil.NewSampleDataGenerator()
	if seedVal, _ := cmd.Flags().GetInt64("seed"); seedVal != 0 {
		gen = testutil.NewSampleDataGeneratorWithSeed(seedVal)
	}

	return seedSampleData(
		cmd.Context(), gen,
		repository.NewMovieRepository(db.DB),
		repository.NewSponsorRepository(db.DB),
		repository.NewTrackEventRepository(db.DB),
		counts, logger,
	)
}

// seedSampleData generates and stores the requested entities. Sessions are
// spread over the preceding hours so reconciliation sees them as completed
// history rather than live playback.
func seedSampleData(
	ctx context.Context,
	gen *testutil.SampleDataGenerator,
	movies repository.MovieRepository,
	sponsors repository.SponsorRepository,
	events repository.TrackEventRepository,
	counts seedCounts,
	logger *slog.Logger,
) error {
	created := make([]*models.Movie, 0, counts.movies)
	for _, movie := range gen.GenerateMovies(counts.movies) {
		if err := movies.Create(ctx, movie); err != nil {
			return fmt.Errorf("seeding movie %q: %w", movie.Slug, err)
		}
		created = append(created, movie)
	}

	// Sponsor names are unique, and the generator draws from a fixed pool,
	// so skip duplicates instead of failing the whole run.
	if counts.sponsors > len(testutil.SponsorNames) {
		counts.sponsors = len(testutil.SponsorNames)
	}
	seen := make(map[string]bool, counts.sponsors)
	sponsorsCreated := 0
	for sponsorsCreated < counts.sponsors {
		sponsor := gen.GenerateSponsor()
		if seen[sponsor.Name] {
			continue
		}
		seen[sponsor.Name] = true
		if err := sponsors.Create(ctx, sponsor); err != nil {
			return fmt.Errorf("seeding sponsor %q: %w", sponsor.Name, err)
		}
		sponsorsCreated++
	}

	sessionsCreated := 0
	if len(created) > 0 {
		for i := 0; i < counts.sessions; i++ {
			movie := created[i%len(created)]
			start := time.Now().Add(-time.Duration(i+1) * time.Hour)
			for _, event := range gen.GenerateSession(uuid.NewString(), movie.ID, start, 4, 30*time.Second) {
				if err := events.Create(ctx, event); err != nil {
					return fmt.Errorf("seeding session events: %w", err)
				}
			}
			sessionsCreated++
		}
	}

	logger.Info("sample data created",
		slog.Int("movies", len(created)),
		slog.Int("sponsors", sponsorsCreated),
		slog.Int("sessions", sessionsCreated),
	)
	return nil
}
