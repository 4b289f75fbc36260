// Package main is the entry point for the Listing Analyzer API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/config"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/database"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/logging"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/router"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/analyzer"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/pdf"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/sessions"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/worker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "listing-analyzer-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("Listing Analyzer API starting",
		zap.String("version", Version),
		zap.String("port", cfg.Port),
		zap.Int("workers", cfg.WorkerCount),
		zap.String("gin_mode", cfg.GinMode),
	)
	gin.SetMode(cfg.GinMode)

	// Step 2: Connect to Database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("database connected", zap.String("driver", db.DriverName()))

	// Run migrations
	if err := db.RunMigrations(log); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Step 3: Create Services
	if cfg.PdftotextPath != "" {
		log.Info("pdftotext enabled", zap.String("path", cfg.PdftotextPath))
	} else {
		log.Warn("pdftotext not found; using the built-in PDF reader only (set PDFTOTEXT_PATH to enable)")
	}
	chain := pdf.NewDefaultChain(log, cfg.PdftotextPath, cfg.ConversionTimeout)

	// Step 4: Create and Start Worker Pool
	wp := worker.NewPool(cfg.WorkerCount, cfg.JobQueueSize, analyzer.New(chain), log)
	wp.Start()
	defer wp.Stop()

	// Expired sessions are invalid anyway; the sweeper just reclaims rows.
	if cfg.SessionSweepInterval > 0 {
		sweeper := sessions.NewSweeper(db, cfg.SessionSweepInterval, log)
		sweeper.Start()
		defer sweeper.Stop()
	}

	// Step 5: Setup HTTP Router
	r, stopLimiters := router.Setup(cfg, db, wp, log, Version)
	defer stopLimiters()

	// Step 6: Start the HTTP Server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second, // uploads
		WriteTimeout:      cfg.AnalyzeTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", "http://localhost:"+cfg.Port),
			zap.String("health", "http://localhost:"+cfg.Port+"/api/v1/health"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Step 7: Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("shutting down gracefully", zap.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}
