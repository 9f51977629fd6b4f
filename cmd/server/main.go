package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/copyleftdev/KERF/internal/config"
	"github.com/copyleftdev/KERF/internal/engine"
	"github.com/copyleftdev/KERF/internal/engine/mincut"
	kerferrors "github.com/copyleftdev/KERF/internal/errors"
	"github.com/copyleftdev/KERF/internal/logging"
	"github.com/copyleftdev/KERF/internal/metrics"
	"github.com/copyleftdev/KERF/internal/server"
	"github.com/copyleftdev/KERF/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	serviceLogger := logger.WithFields(map[string]interface{}{
		"service": "kerf",
	})

	// Open the result store; its handle is a startup requirement.
	resultStore, closeStore, err := openStore(cfg, serviceLogger)
	if err != nil {
		serviceLogger.Fatal("Failed to open result store", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := closeStore(); err != nil {
			serviceLogger.Error("error closing result store", map[string]interface{}{"error": err.Error()})
		}
	}()

	// The registry is built once here and never mutated afterwards.
	registry := engine.NewRegistry()
	if err := registry.Register(mincut.New()); err != nil {
		serviceLogger.Fatal("Failed to register algorithms", map[string]interface{}{
			"error": err.Error(),
		})
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	eng := engine.NewEngine(registry, resultStore, serviceLogger, m)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)
	r.Use(logging.Middleware(logger))
	r.Use(kerferrors.RecoveryMiddleware(serviceLogger))
	r.Use(kerferrors.ErrorLogger(serviceLogger))
	r.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))

	srv := server.NewServer(registry, eng, serviceLogger, m)
	srv.RegisterRoutes(r)

	r.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		serviceLogger.Info("Starting server", map[string]interface{}{
			"address": httpServer.Addr,
		})

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serviceLogger.Fatal("Failed to start server", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	serviceLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		serviceLogger.Error("Server forced to shutdown", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	serviceLogger.Info("Server stopped")
}

// openStore builds the configured Result Store. It returns the store
// and a close function for shutdown.
func openStore(cfg *config.Config, logger *logging.Logger) (engine.Store, func() error, error) {
	if cfg.Store.InMemory {
		logger.Warn("using in-memory result store, records will not survive restarts")
		return store.NewMemory(), func() error { return nil }, nil
	}

	badgerStore, err := store.OpenBadger(store.BadgerConfig{
		Path:   cfg.Store.Path,
		Logger: logger.WithField("component", "badger"),
	})
	if err != nil {
		return nil, nil, err
	}
	return badgerStore, badgerStore.Close, nil
}
