package cfg

import (
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	if Version != "" {
		return Version
	}
	return "unknown"
}

type rawCfg struct {
	// Source list candidates
	FeedsPath            string `long:"feeds-path" env:"FEEDS_PATH" default:"feeds.json" description:"Primary source list file"`
	FeedsFallbackPath    string `long:"feeds-fallback-path" env:"FEEDS_FALLBACK_PATH" default:"data/feeds.json" description:"Secondary source list file"`
	ArticlesPath         string `long:"articles-path" env:"ARTICLES_PATH" default:"articles.json" description:"Primary hand-authored articles file"`
	ArticlesFallbackPath string `long:"articles-fallback-path" env:"ARTICLES_FALLBACK_PATH" default:"data/articles.json" description:"Secondary hand-authored articles file"`

	// Snapshot output
	SnapshotPath string `long:"snapshot-path" env:"SNAPSHOT_PATH" default:"news.json" description:"Snapshot output file"`
	BackupPath   string `long:"backup-path" env:"BACKUP_PATH" default:"data/news_prev.json" description:"Previous snapshot backup file"`

	// Pipeline limits
	MaxItems       int `long:"max-items" env:"MAX_ITEMS" default:"400" description:"Maximum items kept in the snapshot"`
	MinItems       int `long:"min-items" env:"MIN_ITEMS" default:"20" description:"Minimum items before padding from the previous snapshot"`
	FetchTimeout   int `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"15" description:"Per-source fetch timeout in seconds"`
	SitemapMaxURLs int `long:"sitemap-max-urls" env:"SITEMAP_MAX_URLS" default:"40" description:"Maximum URLs taken from a sitemap source"`

	// Run archive
	DBPath string `long:"db-path" env:"DB_PATH" description:"SQLite run archive path (empty disables archiving)"`

	// Serve mode
	Serve         bool   `long:"serve" env:"SERVE" description:"Run the HTTP server and scheduled builds instead of a one-shot build"`
	Port          string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BuildSchedule string `long:"build-schedule" env:"BUILD_SCHEDULE" default:"@every 30m" description:"Cron expression for scheduled builds in serve mode"`
	APIAccessKey  string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for mutating endpoints (optional)"`

	// Content store
	GitHubOwner   string `long:"gh-owner" env:"GH_OWNER" description:"GitHub owner for the content store"`
	GitHubRepo    string `long:"gh-repo" env:"GH_REPO" description:"GitHub repository for the content store"`
	GitHubBranch  string `long:"gh-branch" env:"GH_BRANCH" default:"main" description:"GitHub branch for the content store"`
	GitHubToken   string `long:"gh-token" env:"GITHUB_TOKEN" description:"GitHub token for the content store"`
	BuildWorkflow string `long:"build-workflow" env:"BUILD_WORKFLOW" default:"build-news.yml" description:"Workflow file dispatched by the build trigger"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"WartaBot/1.0 (+https://sumberfakta.github.io/warta/)" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Jakarta)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		FeedsPath:            raw.FeedsPath,
		FeedsFallbackPath:    raw.FeedsFallbackPath,
		ArticlesPath:         raw.ArticlesPath,
		ArticlesFallbackPath: raw.ArticlesFallbackPath,
		SnapshotPath:         raw.SnapshotPath,
		BackupPath:           raw.BackupPath,
		MaxItems:             raw.MaxItems,
		MinItems:             raw.MinItems,
		FetchTimeout:         raw.FetchTimeout,
		SitemapMaxURLs:       raw.SitemapMaxURLs,
		DBPath:               raw.DBPath,
		Serve:                raw.Serve,
		Port:                 raw.Port,
		BuildSchedule:        raw.BuildSchedule,
		APIAccessKey:         raw.APIAccessKey,
		GitHubOwner:          raw.GitHubOwner,
		GitHubRepo:           raw.GitHubRepo,
		GitHubBranch:         raw.GitHubBranch,
		GitHubToken:          raw.GitHubToken,
		BuildWorkflow:        raw.BuildWorkflow,
		UserAgent:            raw.UserAgent,
		Timezone:             raw.Timezone,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
