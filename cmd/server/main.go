package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/segtrack/carnets/api"
	migrations "github.com/segtrack/carnets/db"
	"github.com/segtrack/carnets/internal/alerts"
	"github.com/segtrack/carnets/internal/config"
	"github.com/segtrack/carnets/internal/db"
	"github.com/segtrack/carnets/internal/models"
	"github.com/segtrack/carnets/internal/repository/sqlite"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	api.SetLogger(logger)

	logger.Info("starting carnets server", "version", version, "buildTime", buildTime)

	ctx := context.Background()

	// Open database connection and apply migrations
	d, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, d, migrations.Migrations); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	repo := sqlite.New(d, models.Defaults{
		MedicalFitness:      cfg.Defaults.MedicalFitness,
		Employer:            cfg.Defaults.Employer,
		AuthorizationType:   cfg.Defaults.AuthorizationType,
		ResolutionReference: cfg.Defaults.ResolutionReference,
	}, logger)

	handler := api.SetupRoutes(cfg, version, buildTime, repo)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Background expiry summary (disabled when alert_interval is 0)
	monitor := alerts.New(repo, logger, cfg.AlertInterval)
	monitor.Start(ctx)

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	monitor.Stop()

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Close database connection
	if err := d.Close(); err != nil {
		logger.Error("error closing DB", "err", err)
	}

	logger.Info("server exited")
}
