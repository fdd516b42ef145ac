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

	"github.com/lysyi3m/news-comb/app/api"
	"github.com/lysyi3m/news-comb/app/cfg"
	"github.com/lysyi3m/news-comb/app/content"
	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/news"
	"github.com/lysyi3m/news-comb/app/providers"
	"github.com/lysyi3m/news-comb/app/tasks"
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

	slog.Info("Starting News Comb server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	articleRepo := database.NewArticleRepository(db)

	topics := news.NewTopicCache(appCfg.TopicsDir, appCfg.DefaultTopic)
	if err := topics.Run(); err != nil {
		slog.Error("Failed to load topic configurations", "dir", appCfg.TopicsDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Topic configurations loaded", "count", topics.GetTopicCount(), "default", appCfg.DefaultTopic)

	if _, err := topics.GetTopic(appCfg.DefaultTopic); err != nil {
		slog.Error("Default topic is not configured", "topic", appCfg.DefaultTopic)
		os.Exit(1)
	}

	httpClient := &http.Client{
		Timeout: time.Duration(appCfg.HTTPTimeout) * time.Second,
	}

	var newsProviders []news.Provider
	if appCfg.NewsAPIKey != "" {
		newsProviders = append(newsProviders, providers.NewNewsAPI(appCfg.NewsAPIKey, httpClient, appCfg.UserAgent))
	} else {
		slog.Info("NewsAPI adapter disabled (NEWSAPI_KEY not set)")
	}
	if appCfg.GNewsAPIKey != "" {
		newsProviders = append(newsProviders, providers.NewGNews(appCfg.GNewsAPIKey, httpClient, appCfg.UserAgent))
	} else {
		slog.Info("GNews adapter disabled (GNEWS_API_KEY not set)")
	}
	newsProviders = append(newsProviders, providers.NewRSS(httpClient, appCfg.UserAgent))
	slog.Info("Provider adapters registered", "count", len(newsProviders))

	aggregateCache := news.NewAggregateCache()
	pipeline := news.NewPipeline(appCfg.MinScore)
	searcher := news.NewSearcher(topics, aggregateCache, pipeline, newsProviders)

	extractor := content.NewExtractor()
	scheduler := tasks.NewScheduler(articleRepo, extractor, httpClient)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount, "interval_seconds", appCfg.SchedulerInterval)

	apiHandler := api.NewHandler(searcher, topics, aggregateCache, articleRepo)
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
		slog.Info("HTTP server listening", "port", appCfg.Port)
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

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("News Comb server shutdown complete")
}
