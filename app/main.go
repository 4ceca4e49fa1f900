package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ogrodnik/feedsync/app/api"
	"github.com/ogrodnik/feedsync/app/cfg"
	"github.com/ogrodnik/feedsync/app/database"
	"github.com/ogrodnik/feedsync/app/feed"
	"github.com/ogrodnik/feedsync/app/scheduler"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting feedsync server", "version", appCfg.Version)

	// Database connection; total failure here is fatal by design.
	db, err := database.NewConnection(
		appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	slog.Info("Connected to database")

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Migrations applied", "version", version, "dirty", dirty)

	// Initialize repositories
	feedRepo := database.NewFeedRepository(db)
	articleRepo := database.NewArticleRepository(db)

	// Initialize core components
	fetcher := feed.NewFetcher(appCfg.UserAgent)
	normalizer := feed.NewNormalizer()
	parser := feed.NewParser()
	syncer := feed.NewSyncer(fetcher, normalizer, parser, feedRepo, articleRepo)

	// Initialize and start scheduler
	feedScheduler := scheduler.New(syncer)
	feedScheduler.Start(time.Duration(appCfg.SchedulerInterval) * time.Second)
	defer feedScheduler.Stop()

	// Initialize HTTP server
	apiHandler := api.NewHandler(feedRepo, articleRepo, syncer, feedScheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("feedsync server started")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	// Graceful shutdown
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("feedsync server shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
