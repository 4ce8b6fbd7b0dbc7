package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sumberfakta/warta/app/feeds"
	"github.com/sumberfakta/warta/app/news"
)

var locRe = regexp.MustCompile(`(?is)<loc>\s*(.*?)\s*</loc>`)

// Fetcher retrieves and normalizes the entries of a single source.
// Failure is contained: any network, parse, or timeout problem is
// logged with the source's name and URL and yields zero items.
type Fetcher struct {
	httpClient     *http.Client
	parser         *gofeed.Parser
	normalizer     *news.EntryNormalizer
	categories     *news.CategoryNormalizer
	userAgent      string
	timeout        time.Duration
	sitemapMaxURLs int
	now            func() time.Time
}

func NewFetcher(httpClient *http.Client, normalizer *news.EntryNormalizer,
	categories *news.CategoryNormalizer, userAgent string, timeout time.Duration,
	sitemapMaxURLs int) *Fetcher {
	return &Fetcher{
		httpClient:     httpClient,
		parser:         gofeed.NewParser(),
		normalizer:     normalizer,
		categories:     categories,
		userAgent:      userAgent,
		timeout:        timeout,
		sitemapMaxURLs: sitemapMaxURLs,
		now:            time.Now,
	}
}

// Fetch never returns an error: a failing source contributes nothing
// to the run and must not abort it.
func (f *Fetcher) Fetch(ctx context.Context, source feeds.Source) []news.Item {
	var items []news.Item
	var err error

	switch source.Kind {
	case feeds.KindSitemap:
		items, err = f.fetchSitemap(ctx, source)
	default:
		items, err = f.fetchFeed(ctx, source)
	}

	if err != nil {
		slog.Error("Source fetch failed", "source", source.Name, "url", source.URL, "error", err)
		return nil
	}

	slog.Info("Source fetched", "source", source.Name, "count", len(items))
	return items
}

func (f *Fetcher) fetchFeed(ctx context.Context, source feeds.Source) ([]news.Item, error) {
	data, err := f.get(ctx, source.URL)
	if err != nil {
		return nil, err
	}

	parsed, err := f.parser.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]news.Item, 0, len(parsed.Items))
	for i, entry := range parsed.Items {
		if entry == nil {
			continue
		}
		items = append(items, f.normalizer.Normalize(source, rawEntry(entry), i))
	}
	return items, nil
}

// fetchSitemap extracts <loc> URLs from a sitemap document and
// synthesizes minimal items for them, bypassing full entry
// normalization: sitemaps carry no titles, dates or media.
func (f *Fetcher) fetchSitemap(ctx context.Context, source feeds.Source) ([]news.Item, error) {
	data, err := f.get(ctx, source.URL)
	if err != nil {
		return nil, err
	}

	now := f.now()
	category := f.categories.Normalize(source.Category)

	matches := locRe.FindAllStringSubmatch(string(data), f.sitemapMaxURLs)
	items := make([]news.Item, 0, len(matches))
	for i, m := range matches {
		link := news.CleanURL(m[1])
		if link == "" {
			continue
		}
		items = append(items, news.Item{
			ID:          fmt.Sprintf("%s-%d-%d", source.Name, i, now.UnixMilli()),
			Title:       link,
			Link:        link,
			PublishedAt: now.UTC().Format(time.RFC3339),
			Source:      source.Name,
			Category:    category,
		})
	}
	return items, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	return data, nil
}

// rawEntry flattens a parsed feed entry into the intermediate shape
// the normalizer probes. Media RSS fields live in the extension tree.
func rawEntry(entry *gofeed.Item) news.RawEntry {
	raw := news.RawEntry{
		Title:       entry.Title,
		Link:        entry.Link,
		Description: entry.Description,
		Content:     entry.Content,
		PubDate:     entry.Published,
		Pubdate:     entry.Custom["pubdate"],
		Date:        entry.Custom["date"],
	}

	if entry.PublishedParsed != nil {
		raw.ISODate = entry.PublishedParsed.Format(time.RFC3339)
	} else if entry.UpdatedParsed != nil {
		raw.ISODate = entry.UpdatedParsed.Format(time.RFC3339)
	}

	if len(entry.Enclosures) > 0 && entry.Enclosures[0] != nil {
		raw.EnclosureURL = entry.Enclosures[0].URL
	}
	if entry.Image != nil {
		raw.Thumbnail = entry.Image.URL
	}

	if media, ok := entry.Extensions["media"]; ok {
		if contents, ok := media["content"]; ok && len(contents) > 0 {
			raw.MediaContentURL = contents[0].Attrs["url"]
		}
		if thumbs, ok := media["thumbnail"]; ok && len(thumbs) > 0 {
			raw.MediaThumbnailURL = thumbs[0].Attrs["url"]
		}
	}

	if encoded, ok := entry.Extensions["content"]; ok {
		if vals, ok := encoded["encoded"]; ok && len(vals) > 0 {
			raw.ContentEncoded = vals[0].Value
		}
	}

	return raw
}
