package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reelhouse/reelhouse/internal/config"
	"github.com/reelhouse/reelhouse/internal/database"
	"github.com/reelhouse/reelhouse/internal/database/migrations"
	"github.com/reelhouse/reelhouse/internal/geo"
	"github.com/reelhouse/reelhouse/internal/guard"
	internalhttp "github.com/reelhouse/reelhouse/internal/http"
	"github.com/reelhouse/reelhouse/internal/http/handlers"
	"github.com/reelhouse/reelhouse/internal/observability"
	"github.com/reelhouse/reelhouse/internal/repository"
	"github.com/reelhouse/reelhouse/internal/scheduler"
	"github.com/reelhouse/reelhouse/internal/service"
	"github.com/reelhouse/reelhouse/internal/signing"
	"github.com/reelhouse/reelhouse/internal/sink"
	"github.com/reelhouse/reelhouse/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reelhouse server",
	Long: `Start the reelhouse HTTP server and API.

The server provides:
- Play grant issuance with signed, expiring media URLs
- Player lifecycle event ingestion
- Session state reporting
- REST API for catalog, genre, and sponsor administration
- Health check endpoint and OpenAPI documentation at /docs`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides config)")
}

// shutdownGrace bounds how long draining background components may take.
const shutdownGrace = 15 * time.Second

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}

	logger := observability.NewLoggerWithWriter(cfg.Logging, os.Stderr)
	observability.SetDefault(logger)

	db, err := database.New(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() { _ = db.Close() }()

	migrator := migrations.NewMigrator(db.DB, logger)
	migrator.RegisterAll(migrations.AllMigrations())
	if err := migrator.Up(context.Background()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Repositories
	movieRepo := repository.NewMovieRepository(db.DB)
	genreRepo := repository.NewGenreRepository(db.DB)
	sponsorRepo := repository.NewSponsorRepository(db.DB)
	grantRepo := repository.NewPlayGrantRepository(db.DB)
	eventRepo := repository.NewTrackEventRepository(db.DB)

	// Media URL signer. An empty key generates an ephemeral one, which
	// invalidates outstanding URLs across restarts.
	if cfg.Playback.SigningKey == "" {
		logger.Warn("playback.signing_key not set, using an ephemeral key; signed URLs will not survive restarts")
	}
	signer, err := signing.NewSigner(cfg.Playback.SigningKey, cfg.Playback.MediaBaseURL)
	if err != nil {
		return fmt.Errorf("initializing media signer: %w", err)
	}

	// Replay/rate guard over the configured session store.
	sessionStore, err := newSessionStore(cfg.Guard, logger)
	if err != nil {
		return fmt.Errorf("initializing guard store: %w", err)
	}
	defer func() { _ = sessionStore.Close() }()
	playGuard := guard.New(grantRepo, sessionStore, cfg.Playback.HeartbeatInterval, cfg.Guard.Enabled,
		observability.WithComponent(logger, "guard"))

	// Optional GeoIP enrichment.
	resolver, err := geo.NewResolver(cfg.Tracking.GeoIPDatabase, logger)
	if err != nil {
		return fmt.Errorf("initializing geo resolver: %w", err)
	}
	defer func() { _ = resolver.Close() }()

	// Async event sink.
	dispatcher := sink.NewDispatcher(
		sink.NewRepositorySink(eventRepo),
		cfg.Tracking.SinkBufferSize,
		cfg.Tracking.SinkWriteTimeout,
		observability.WithComponent(logger, "sink"),
	)
	dispatcher.Start()

	// Services
	movies := service.NewMovieService(movieRepo, sponsorRepo).WithLogger(logger)
	genres := service.NewGenreService(genreRepo).WithLogger(logger)
	sponsors := service.NewSponsorService(sponsorRepo, movieRepo).WithLogger(logger)
	grants := service.NewGrantService(
		movies, grantRepo, signer,
		cfg.Playback.DefaultTTL, cfg.Playback.MaxTTL, cfg.Playback.HeartbeatInterval,
	).WithLogger(logger)
	tracks := service.NewTrackService(dispatcher, playGuard, resolver).
		WithGrantChecker(playGuard).
		WithLogger(logger)
	sessions := service.NewSessionService(eventRepo, cfg.Playback.HeartbeatInterval).WithLogger(logger)
	permissions := service.NewStaticPermissionChecker(cfg.Auth.Grants)

	// HTTP server and handlers
	server := internalhttp.NewServer(cfg.Server, cfg.Tracking, logger, version.Version)

	handlers.NewPlayHandler(grants).Register(server.API())
	handlers.NewTrackHandler(tracks).Register(server.API())
	handlers.NewSessionHandler(sessions, permissions).Register(server.API())
	handlers.NewMovieHandler(movies, permissions).Register(server.API())
	handlers.NewGenreHandler(genres, permissions).Register(server.API())
	handlers.NewSponsorHandler(sponsors, permissions).Register(server.API())
	handlers.NewHealthHandler(version.Version).WithDB(db).Register(server.API())
	handlers.NewVersionHandler().Register(server.API())

	// Token redemption check for the media proxy, off the OpenAPI surface.
	handlers.NewMediaHandler(signer, logger).Register(server.Router())

	// Background maintenance
	jobs := scheduler.New(observability.WithComponent(logger, "scheduler"))
	if err := jobs.AddInterval("session-sweep", cfg.Tracking.SweepInterval, func(ctx context.Context) error {
		_, err := sessions.SweepAbandoned(ctx)
		return err
	}); err != nil {
		return fmt.Errorf("registering session sweep: %w", err)
	}
	if err := jobs.AddInterval("grant-purge", time.Hour, func(ctx context.Context) error {
		cutoff := time.Now().Add(-cfg.Playback.GrantRetention)
		removed, err := grantRepo.DeleteExpiredBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		if removed > 0 {
			logger.Info("purged expired grants", slog.Int64("removed", removed))
		}
		return nil
	}); err != nil {
		return fmt.Errorf("registering grant purge: %w", err)
	}
	if err := jobs.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	}()

	logger.Info("starting reelhouse server",
		slog.String("host", cfg.Server.Host),
		slog.Int("port", cfg.Server.Port),
		slog.String("version", version.Version),
	)

	serveErr := server.ListenAndServe(ctx)

	// Drain background components before returning.
	drainCtx, drainCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer drainCancel()

	if err := jobs.Stop(drainCtx); err != nil {
		logger.Warn("stopping scheduler", slog.Any("error", err))
	}
	if err := dispatcher.Close(drainCtx); err != nil {
		logger.Warn("draining event sink", slog.Any("error", err))
	}

	return serveErr
}

// newSessionStore builds the guard's heartbeat pacing store from config.
func newSessionStore(cfg config.GuardConfig, logger *slog.Logger) (guard.SessionStore, error) {
	switch cfg.Store {
	case "redis":
		store, err := guard.NewRedisStore(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		logger.Info("guard store connected", slog.String("store", "redis"), slog.String("addr", cfg.RedisAddr))
		return store, nil
	default:
		return guard.NewMemoryStore(0), nil
	}
}
