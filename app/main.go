package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ostrenko/feedcast/app/ads"
	"github.com/ostrenko/feedcast/app/api"
	"github.com/ostrenko/feedcast/app/cfg"
	"github.com/ostrenko/feedcast/app/database"
	"github.com/ostrenko/feedcast/app/feed"
	"github.com/ostrenko/feedcast/app/reader"
	"github.com/ostrenko/feedcast/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Feedcast server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Connected to database")

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations applied", "version", version, "dirty", dirty)

	// Repositories
	feedRepo := database.NewFeedRepository(db)
	categoryRepo := database.NewCategoryRepository(db)
	articleRepo := database.NewArticleRepository(db)
	advertisementRepo := database.NewAdvertisementRepository(db)
	interactionRepo := database.NewInteractionRepository(db)
	userRepo := database.NewUserRepository(db)

	// Register seeded categories and feeds
	registry := feed.NewSeedRegistry(appCfg.SeedsDir)
	seeds, err := registry.LoadAll()
	if err != nil {
		slog.Error("Failed to load feed seeds", "error", err)
		os.Exit(1)
	}

	registeredCount := 0
	for _, seed := range seeds {
		categoryID, err := categoryRepo.UpsertCategory(seed.Category.Title, seed.Category.Image)
		if err != nil {
			slog.Warn("Failed to register category", "category", seed.Category.Title, "error", err)
			continue
		}

		feedID, err := feedRepo.UpsertFeed(categoryID, seed.Feed.URL, seed.Feed.Name,
			seed.Feed.Image, seed.Settings.ExtractContent)
		if err != nil {
			slog.Warn("Failed to register feed", "feed", seed.Feed.Name, "error", err)
			continue
		}

		slog.Info("Registered feed", "feed", seed.Feed.Name, "id", feedID, "url", seed.Feed.URL)
		registeredCount++
	}
	slog.Info("Feed registration complete", "registered", registeredCount, "total", len(seeds))

	// Core components
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConnsPerHost: 5,
		},
	}

	fetcher := feed.NewFetcher(httpClient, appCfg.UserAgent)
	parser := feed.NewParser()
	normalizer := feed.NewNormalizer()
	contentExtractor := feed.NewContentExtractor()
	allocator := ads.NewAllocator(advertisementRepo, categoryRepo)
	engine := reader.NewEngine(feedRepo, categoryRepo, articleRepo, interactionRepo,
		fetcher, parser, normalizer, allocator)

	// Background scheduler
	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(feedRepo, articleRepo, engine, httpClient, contentExtractor)
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP server
	handler := api.NewHandler(engine, feedRepo, categoryRepo, articleRepo,
		interactionRepo, userRepo, scheduler)
	server := api.NewServer(handler, userRepo, appCfg.APIAccessKey)

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

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Feedcast server shutdown complete")
}
