package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"mouscache/internal/common/logging"
	"mouscache/internal/config"
	"mouscache/internal/server"
)

const shutdownTimeout = 30 * time.Second

// Run is the main entry point for the application
func Run() error {
	// Load environment variables
	_ = godotenv.Load()

	if err := logging.InitGlobalLogger(); err != nil {
		return err
	}
	defer logging.MustSync()

	// Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logging.Error("Configuration validation failed", err)
		return err
	}

	logging.Info("Starting mouscache",
		logging.Field{Key: "backend", Value: cfg.CacheBackend},
		logging.Field{Key: "port", Value: cfg.Port},
	)

	app, err := New(cfg)
	if err != nil {
		logging.Error("Failed to initialize application", err)
		return err
	}
	defer app.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Serve(ctx)
}

// Serve runs the HTTP server and background work until ctx is cancelled or
// the listener fails, then shuts both down.
func (app *App) Serve(ctx context.Context) error {
	srv := server.New(app.Handler(), app.Config.Port, app.Config.TLSCertFile, app.Config.TLSKeyFile)
	if err := srv.Start(); err != nil {
		logging.Error("Server failed to start", err)
		return err
	}
	app.Start()
	app.Logger.Info("Server listening", logging.Field{Key: "addr", Value: srv.Addr()})

	g, gctx := errgroup.WithContext(ctx)

	// Err is closed once the server stops, so this returns nil after a clean shutdown.
	g.Go(func() error {
		if err := <-srv.Err(); err != nil {
			logging.Error("Server stopped unexpectedly", err)
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.Shutdown(shutdownCtx); err != nil {
			logging.Warn("Error during app shutdown", logging.Field{Key: "error", Value: err})
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error("Server forced to shutdown", err)
			return err
		}
		return nil
	})

	err := g.Wait()
	logging.Info("Server exited")
	return err
}
