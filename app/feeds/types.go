package feeds

const (
	KindFeed    = "feed"
	KindSitemap = "sitemap"
)

// Source is one configured origin to poll. Name doubles as the
// provenance label on every item the source contributes.
type Source struct {
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url" yaml:"url"`
	Category string `json:"category" yaml:"category"`
	Kind     string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// sourceList covers both accepted file shapes: a bare array, or an
// object carrying the array under "feeds" or "sources".
type sourceList struct {
	Feeds   []Source `json:"feeds" yaml:"feeds"`
	Sources []Source `json:"sources" yaml:"sources"`
}
