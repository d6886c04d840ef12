package app

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"mouscache/internal/cache"
	"mouscache/internal/circuitbreaker"
	"mouscache/internal/common/logging"
	"mouscache/internal/config"
	"mouscache/internal/handlers"
	"mouscache/internal/redis"
)

// App holds all the application dependencies
type App struct {
	Config      *config.Config
	Cache       cache.Cache
	RedisClient *redis.Client
	Breaker     *circuitbreaker.GoBreakerAdapter
	Reaper      *cache.Reaper
	Logger      logging.Logger
}

// New creates a new application instance with all dependencies
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.GetGlobalLogger().WithFields(logging.Field{Key: "component", Value: "app"}),
	}

	if err := app.initializeCache(); err != nil {
		app.Cleanup()
		return nil, err
	}

	if err := app.initializeReaper(); err != nil {
		app.Cleanup()
		return nil, err
	}

	return app, nil
}

func (app *App) initializeCache() error {
	cacheConfig := cache.Config{
		Type:            cache.Type(app.Config.CacheBackend),
		MaxContainerLen: app.Config.MaxContainerLen,
		KeyPrefix:       app.Config.KeyPrefix,
	}

	if app.Config.IsRedis() {
		client, err := redis.NewClient(&redis.Config{
			Address:  app.Config.RedisAddress,
			Password: app.Config.RedisPassword,
			DB:       app.Config.RedisDB,
			PoolSize: app.Config.RedisPoolSize,
		})
		if err != nil {
			return err
		}
		app.RedisClient = client
		app.Breaker = circuitbreaker.NewGoBreaker("redis", circuitbreaker.DefaultConfig(), app.Logger)

		cacheConfig.RedisClient = client.Redis()
		cacheConfig.Breaker = app.Breaker
		app.Logger.Info("Redis: Connected", logging.Field{Key: "address", Value: client.Address()})
	}

	c, err := cache.New(cacheConfig)
	if err != nil {
		return err
	}
	app.Cache = c

	app.Logger.Info("Cache initialized",
		logging.Field{Key: "backend", Value: app.Config.CacheBackend},
		logging.Field{Key: "max_container_len", Value: app.Config.MaxContainerLen},
	)
	return nil
}

func (app *App) initializeReaper() error {
	if !app.Config.ReaperEnabled {
		return nil
	}

	purger, ok := app.Cache.(cache.Purger)
	if !ok {
		app.Logger.Warn("Reaper: backend expires keys itself, ignoring REAPER_ENABLED",
			logging.Field{Key: "backend", Value: app.Config.CacheBackend})
		return nil
	}

	reaper, err := cache.NewReaper(purger, app.Config.ReaperSchedule, app.Logger)
	if err != nil {
		return err
	}
	app.Reaper = reaper
	return nil
}

// Handler builds the HTTP handler serving the admin API.
func (app *App) Handler() http.Handler {
	var remote handlers.HealthChecker
	if app.RedisClient != nil {
		remote = app.RedisClient
	}

	router := mux.NewRouter()
	SetupRoutes(router, handlers.New(app.Cache, app.Config.CacheBackend, remote, app.Breaker))
	return router
}

// Start launches background work.
func (app *App) Start() {
	if app.Reaper != nil {
		app.Reaper.Start()
	}
}

// Shutdown stops background work, waiting for an in-flight purge.
func (app *App) Shutdown(ctx context.Context) error {
	if app.Reaper == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		app.Reaper.Stop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cleanup releases all resources
func (app *App) Cleanup() {
	if app.Cache != nil {
		if err := app.Cache.Close(); err != nil {
			app.Logger.Warn("Failed to close cache", logging.Field{Key: "error", Value: err.Error()})
		}
	}

	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			app.Logger.Warn("Failed to close Redis client", logging.Field{Key: "error", Value: err.Error()})
		}
	}
}
