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

	"github.com/sumberfakta/warta/app/api"
	"github.com/sumberfakta/warta/app/build"
	"github.com/sumberfakta/warta/app/cfg"
	"github.com/sumberfakta/warta/app/database"
	"github.com/sumberfakta/warta/app/feeds"
	"github.com/sumberfakta/warta/app/fetch"
	"github.com/sumberfakta/warta/app/news"
	"github.com/sumberfakta/warta/app/snapshot"
	"github.com/sumberfakta/warta/app/store"
	"github.com/sumberfakta/warta/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
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
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("Starting Warta", "version", appCfg.Version, "serve", appCfg.Serve)

	var archive database.ArchiveRepository
	if appCfg.DBPath != "" {
		db, err := database.NewConnection(appCfg.DBPath)
		if err != nil {
			slog.Error("Failed to open run archive", "path", appCfg.DBPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()

		version, dirty, err := database.RunMigrations(db)
		if err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("Run archive ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

		archive = database.NewArchiveRepository(db)
	}

	httpClient := &http.Client{}

	categories := news.NewDefaultCategoryNormalizer()
	fetcher := fetch.NewFetcher(httpClient, news.NewEntryNormalizer(categories), categories,
		appCfg.UserAgent, time.Duration(appCfg.FetchTimeout)*time.Second, appCfg.SitemapMaxURLs)

	runner := build.NewRunner(
		feeds.NewLoader(appCfg.FeedsPath, appCfg.FeedsFallbackPath, "feeds.yml"),
		fetch.NewOrchestrator(fetcher),
		news.NewMerger(),
		snapshot.NewStore(),
		archive,
		[]string{appCfg.ArticlesPath, appCfg.ArticlesFallbackPath},
		appCfg.SnapshotPath,
		appCfg.BackupPath,
		appCfg.MinItems,
		appCfg.MaxItems,
	)

	if !appCfg.Serve {
		if err := runner.Run(context.Background()); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
		return
	}

	serve(appCfg, runner, archive, httpClient)
}

func serve(appCfg *cfg.Cfg, runner *build.Runner, archive database.ArchiveRepository, httpClient *http.Client) {
	content := store.NewClient(httpClient, appCfg.GitHubOwner, appCfg.GitHubRepo,
		appCfg.GitHubBranch, appCfg.GitHubToken, appCfg.UserAgent, appCfg.BuildWorkflow)
	if !content.Configured() {
		slog.Warn("Content store disabled (GH_OWNER, GH_REPO or GITHUB_TOKEN not set)")
	}

	scheduler := tasks.NewScheduler(runner, appCfg.BuildSchedule)
	if err := scheduler.Start(); err != nil {
		slog.Error("Failed to start build scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	apiHandler := api.NewHandler(content, runner, archive, snapshot.NewStore(), appCfg.SnapshotPath)
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
}
