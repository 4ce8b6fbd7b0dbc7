package cfg

type Cfg struct {
	// Source list candidates
	FeedsPath            string
	FeedsFallbackPath    string
	ArticlesPath         string
	ArticlesFallbackPath string

	// Snapshot output
	SnapshotPath string
	BackupPath   string

	// Pipeline limits
	MaxItems       int
	MinItems       int
	FetchTimeout   int
	SitemapMaxURLs int

	// Run archive (empty disables)
	DBPath string

	// Serve mode
	Serve         bool
	Port          string
	BuildSchedule string
	APIAccessKey  string

	// Content store (GitHub contents API)
	GitHubOwner   string
	GitHubRepo    string
	GitHubBranch  string
	GitHubToken   string
	BuildWorkflow string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
