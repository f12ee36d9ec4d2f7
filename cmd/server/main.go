package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planetinfo-server/internal/auth"
	"planetinfo-server/internal/galaxy"
	"planetinfo-server/internal/middleware"
	"planetinfo-server/internal/planet"
	"planetinfo-server/internal/preview"
	"planetinfo-server/internal/server"
	"planetinfo-server/internal/shared/config"
	"planetinfo-server/internal/shared/database"
	"planetinfo-server/internal/shared/logger"
	"planetinfo-server/internal/shared/redis"
	"planetinfo-server/internal/shared/telemetry"
	"planetinfo-server/internal/system"
	"planetinfo-server/internal/universe"
)

func main() {
	if err := config.Init(); err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}
	logger.Init()

	if err := run(); err != nil {
		slog.Error("Server terminated", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.GlobalConfig
	log := slog.With("component", "main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting planetinfo server",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
	)

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.Server.Environment)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error("Failed to flush telemetry", "error", err)
		}
	}()

	db, err := database.Connect(ctx)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if err := db.RunMigrations(ctx, os.DirFS(cfg.Database.MigrationsPath)); err != nil {
			return err
		}
	}

	redisClient, err := redis.Connect(ctx)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	cache := planet.NewCache(nil, cfg.Redis.PlanetTTL, cfg.Universe.CacheEntries)
	if redisClient != nil {
		cache = planet.NewCache(redisClient, cfg.Redis.PlanetTTL, cfg.Universe.CacheEntries)
	}

	appLogger := slog.Default()
	indexer := universe.NewIndexer(universe.Options{
		Workers:       cfg.Universe.Workers,
		RetryAttempts: cfg.Universe.RetryAttempts,
		Progress: func(done, total int) {
			if done%10 == 0 || done == total {
				log.Debug("Universe index progress", "rows_done", done, "rows_total", total)
			}
		},
	}, appLogger)

	var store universe.Store
	if cfg.Universe.Persist && db != nil {
		store = universe.NewRepository(db, appLogger)
	}
	universeService := universe.NewService(indexer, store, appLogger).WithBuildContext(ctx)

	warm, err := universeService.WarmStart(ctx)
	if err != nil {
		log.Warn("Failed to load stored universe index", "error", err)
	}
	if !warm && cfg.Universe.Preload {
		universeService.StartBackground(ctx)
	}

	var signer *auth.Signer
	if cfg.AdminEnabled() {
		signer, err = auth.NewSigner(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiration)
		if err != nil {
			return err
		}
	} else {
		log.Warn("JWT_SECRET not set, admin endpoints are disabled")
	}

	textures := preview.NewTextureSet(os.DirFS(cfg.Preview.AssetDir), appLogger)
	compositor := preview.NewCompositor(textures, cfg.Preview.TilePx, appLogger)

	routes := server.NewRoutes(server.Deps{
		DB:              db,
		GalaxyService:   galaxy.NewService(appLogger),
		SystemService:   system.NewService(appLogger),
		PlanetService:   planet.NewService(cache, appLogger),
		UniverseService: universeService,
		Compositor:      compositor,
		MaxPreviewPx:    cfg.Preview.MaxPixels,
		Signer:          signer,
	}, appLogger)

	var handler http.Handler = routes.Setup()
	handler = middleware.NewCORS(cfg.Frontend).Middleware(handler)
	if cfg.RateLimit.Enabled {
		handler = middleware.NewRateLimiter(ctx, cfg.RateLimit, cfg.IsProduction()).Middleware(handler)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", "addr", srv.Addr, "url", cfg.Server.URL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server stopped")
	return nil
}
