package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nearchat/nearchat-server/internal/auth"
	"github.com/nearchat/nearchat-server/internal/bridge"
	"github.com/nearchat/nearchat-server/internal/config"
	"github.com/nearchat/nearchat-server/internal/core"
	"github.com/nearchat/nearchat-server/internal/geoip"
	"github.com/nearchat/nearchat-server/internal/store"
	"github.com/nearchat/nearchat-server/internal/store/sqlite"
	transporthttp "github.com/nearchat/nearchat-server/internal/transport/http"
)

// App wires together core, bridge and transport layers. Everything is
// constructed here and passed down; no package-level singletons.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	bridge          *bridge.Bridge
	redisClient     *redis.Client
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      24 * time.Hour,
	}
	authService := auth.NewService(st, jwtConfig)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	registry := core.NewRegistry(logger)
	rooms := core.NewDirectory(registry, logger)

	router := core.NewRouter(registry, rooms, nil, cfg.RoomRadiusKm, logger)
	propagation := bridge.New(redisClient, router, logger)
	router.SetPublisher(propagation)

	resolver := geoip.NewHTTPResolver(cfg.GeoIPEndpoint, logger)

	server := transporthttp.NewServer(router, authService, st, resolver, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		bridge:          propagation,
		redisClient:     redisClient,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the bridge and HTTP server and blocks until context
// cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	// An unreachable backbone at boot is fatal; a process that cannot
	// subscribe would serve a silently diverging view forever.
	if err := a.bridge.Start(ctx); err != nil {
		a.cleanup()
		return fmt.Errorf("start propagation bridge: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the store and the pub/sub client.
func (a *App) cleanup() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close redis client")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
