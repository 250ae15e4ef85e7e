package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xavion03/openings-tierlist/internal/adapters/credfile"
	"github.com/xavion03/openings-tierlist/internal/adapters/diskcache"
	"github.com/xavion03/openings-tierlist/internal/adapters/httpapi"
	"github.com/xavion03/openings-tierlist/internal/adapters/malapi"
	"github.com/xavion03/openings-tierlist/internal/adapters/memorybus"
	"github.com/xavion03/openings-tierlist/internal/adapters/sqlite"
	"github.com/xavion03/openings-tierlist/internal/app"
	"github.com/xavion03/openings-tierlist/internal/buildinfo"
	"github.com/xavion03/openings-tierlist/internal/config"
)

func main() {
	def, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	addr := flag.String("addr", def.Addr, "Adresse d'écoute (ex: 127.0.0.1:8080)")
	dbPath := flag.String("db", def.DBPath, "Chemin SQLite (ex: otl.db)")
	dataDir := flag.String("data", def.DataDir, "Répertoire des caches (watchlist, détails, images)")
	credPath := flag.String("credentials", def.CredentialsPath, "Fichier de credentials MAL (ex: MAL_KEY.env)")
	once := flag.Bool("once", false, "Exécute une seule passe de synchro puis quitte (pas de serveur HTTP)")
	flag.Parse()

	logOut := io.Writer(os.Stdout)
	if def.LogPath != "" {
		if f, err := os.OpenFile(def.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			logOut = zerolog.MultiLevelWriter(os.Stdout, f)
			defer f.Close()
		}
	}
	logger := zerolog.New(logOut).With().Timestamp().Str("app", "otl-server").Logger()
	log.Logger = logger

	logger.Info().Interface("build", buildinfo.Current()).Str("db", *dbPath).Str("data", *dataDir).Msg("starting")

	ctx := context.Background()
	db, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open db")
	}
	defer func() { _ = db.Close() }()

	bus := memorybus.New()
	api := malapi.NewClient()

	settingsRepo := sqlite.NewSettingsRepository(db.SQL)
	settingsSvc := app.NewSettingsService(settingsRepo)
	seedUsername(ctx, logger, settingsSvc, def.MALUser)

	creds := app.NewCredentialService(
		logger.With().Str("component", "credentials").Logger(),
		credfile.NewStore(*credPath),
		api,
	)

	snapshots := diskcache.NewSnapshotStore(*dataDir)
	metadata := diskcache.NewMetadataStore(*dataDir)
	images := diskcache.NewImageStore(*dataDir)

	scoresRepo := sqlite.NewScoresRepository(db.SQL)
	library := app.NewLibraryService(logger.With().Str("component", "library").Logger(), snapshots, metadata, images, scoresRepo)
	scores := app.NewScoreService(logger.With().Str("component", "scores").Logger(), scoresRepo, library)

	syncSvc := app.NewSyncService(
		logger.With().Str("component", "sync").Logger(),
		creds, api, snapshots, metadata, images, settingsSvc, bus,
	)

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := app.NewSyncRunner(shutdownCtx, syncSvc)

	if *once {
		report, err := runner.RunOnce(shutdownCtx)
		bus.Close()
		if err != nil {
			logger.Error().Err(err).Str("code", report.ErrorCode).Msg("sync pass failed")
			os.Exit(1)
		}
		logger.Info().Int("items", report.Items).Int("enriched", report.Enriched).Int("images", report.ImagesDownloaded).Msg("sync pass done")
		return
	}

	srv := httpapi.NewServer(logger, runner, library, scores, settingsSvc, bus)
	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", *addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server crashed")
			stop()
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	bus.Close()
	logger.Info().Msg("bye")
}

// seedUsername pousse OTL_MAL_USER dans les settings au premier démarrage.
func seedUsername(ctx context.Context, logger zerolog.Logger, settings *app.SettingsService, user string) {
	if user == "" {
		return
	}
	st, err := settings.Get(ctx)
	if err != nil || st.MALUsername != "" {
		return
	}
	st.MALUsername = user
	if _, err := settings.Put(ctx, st); err != nil {
		logger.Warn().Err(err).Msg("failed to seed MAL username")
		return
	}
	logger.Info().Str("user", user).Msg("seeded MAL username from environment")
}
