package news

// Item is the canonical article record persisted in the snapshot.
// IDs are stable within one run only: they encode the source name, the
// entry's position in its feed, and the resolved publish time, so the
// same article can carry a different id across runs.
type Item struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Link        string  `json:"link"`
	PublishedAt string  `json:"publishedAt"`
	Source      string  `json:"source"`
	Category    string  `json:"category"`
	Image       *string `json:"image"`
	Summary     *string `json:"summary"`
	ContentHTML *string `json:"contentHtml,omitempty"`
}

// Snapshot is the unit of persistence: one build's full item list plus
// its generation timestamp.
type Snapshot struct {
	GeneratedAt string `json:"generatedAt"`
	Items       []Item `json:"items"`
}

// RawEntry is the normalized intermediate shape of one feed entry,
// assembled by the fetch layer from whatever the underlying parser
// produced. Field names mirror the historical wire spellings the
// extraction probes are contracted to check.
type RawEntry struct {
	Title       string
	Link        string
	Description string
	Content     string

	// Date candidates, probed in declaration order.
	ISODate string
	PubDate string
	Pubdate string
	Date    string

	// Image candidates, probed in declaration order before the HTML
	// img sniff.
	EnclosureURL      string
	EnclosureLink     string
	MediaContentURL   string
	MediaThumbnailURL string
	Thumbnail         string

	// content:encoded payload, scanned before Content and Description
	// when sniffing for an inline image.
	ContentEncoded string
}
