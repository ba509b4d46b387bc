package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/automatenwerk/stockpilot/internal/api"
	"github.com/automatenwerk/stockpilot/internal/cache"
	"github.com/automatenwerk/stockpilot/internal/config"
	"github.com/automatenwerk/stockpilot/internal/repository"
	"github.com/automatenwerk/stockpilot/internal/repository/memory"
	"github.com/automatenwerk/stockpilot/internal/repository/postgres"
	"github.com/automatenwerk/stockpilot/internal/service"
	"github.com/automatenwerk/stockpilot/internal/storage"
	"github.com/automatenwerk/stockpilot/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.Setup(cfg.Server.Mode, os.Stdout)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	repos, closeRepos, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer closeRepos()

	reorderCache, err := cache.NewReorderCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, reorder suggestions are not cached")
		reorderCache = cache.NewNoopReorderCache()
	}

	var archive storage.ObjectStorage
	if cfg.ObjectStore.Enabled {
		client, err := storage.NewMinioClient(ctx, cfg.ObjectStore)
		if err != nil {
			log.Warn().Err(err).Msg("Object store unavailable, exports are not archived")
		} else {
			archive = client
		}
	}

	services := &api.Services{
		Catalog:  service.NewCatalogService(repos.Articles, repos.Suppliers, reorderCache),
		Bookings: service.NewBookingService(repos.Bookings, reorderCache),
		Reorder:  service.NewReorderService(repos, reorderCache, archive, cfg.Reorder),
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewRouter(services, cfg.Server.AllowedOrigins),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("storage", cfg.Storage.Driver).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// in-flight requests get 5 seconds to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

func openRepositories(ctx context.Context, cfg *config.Config) (repository.Repositories, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return repository.Repositories{}, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return repository.Repositories{}, nil, err
		}
		return db.Repositories(), func() { db.Close() }, nil
	default:
		log.Info().Msg("Using in-memory storage with the sample catalog")
		return memory.NewSampleStore(time.Now()).Repositories(), func() {}, nil
	}
}
