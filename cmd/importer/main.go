package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/automatenwerk/stockpilot/internal/cache"
	"github.com/automatenwerk/stockpilot/internal/config"
	"github.com/automatenwerk/stockpilot/internal/drive"
	"github.com/automatenwerk/stockpilot/internal/pipeline"
	"github.com/automatenwerk/stockpilot/internal/repository/postgres"
	"github.com/automatenwerk/stockpilot/pkg/logger"
)

// cacheInvalidatingImporter drops cached suggestions after every import so the
// API picks up the new sales history.
type cacheInvalidatingImporter struct {
	importer *pipeline.Importer
	cache    cache.ReorderCache
}

func (i *cacheInvalidatingImporter) ImportFiles(ctx context.Context, files []string) (*pipeline.ImportRun, error) {
	run, err := i.importer.ImportFiles(ctx, files)
	if run != nil && run.TotalRows > 0 {
		if cerr := i.cache.InvalidateAll(ctx); cerr != nil {
			log.Warn().Err(cerr).Msg("importer: cache invalidate failed")
		}
	}
	return run, err
}

func main() {
	cfg := config.Load()
	logger.Setup(cfg.Server.Mode, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Google Drive service")
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}
	repos := db.Repositories()

	reorderCache, err := cache.NewReorderCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, cached suggestions are not invalidated")
		reorderCache = cache.NewNoopReorderCache()
	}

	importCfg := pipeline.DefaultImportConfig()
	if cfg.Drive.Workers > 0 {
		importCfg.WorkerCount = cfg.Drive.Workers
	}
	if cfg.App.DataDir != "" {
		importCfg.TempDir = filepath.Join(cfg.App.DataDir, "intermediate", "sales")
	}

	ingestService := drive.NewIngestService(driveService,
		&cacheInvalidatingImporter{
			importer: pipeline.NewImporter(repos.Articles, repos.Sales, importCfg),
			cache:    reorderCache,
		},
		drive.IngestOptions{
			FolderID:    cfg.Drive.FolderID,
			FolderPath:  cfg.Drive.FolderPath,
			DownloadDir: cfg.Drive.DownloadDir,
		})

	r := mux.NewRouter()
	drive.NewHandler(ingestService).RegisterRoutes(r)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	go ingestService.Run(ctx, cfg.Drive.SyncInterval)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Dur("sync_interval", cfg.Drive.SyncInterval).Msg("Starting importer")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start importer")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down importer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Importer forced to shutdown")
	}
}
