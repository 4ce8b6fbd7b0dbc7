package news

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/sumberfakta/warta/app/feeds"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	imgSrcRe     = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`)
)

// dateProbes lists the entry fields checked for a publish date, in
// priority order. The first candidate that parses wins.
var dateProbes = []func(RawEntry) string{
	func(e RawEntry) string { return e.ISODate },
	func(e RawEntry) string { return e.PubDate },
	func(e RawEntry) string { return e.Pubdate },
	func(e RawEntry) string { return e.Date },
}

// imageProbes lists the structured image fields checked before falling
// back to sniffing the entry HTML for an <img> tag.
var imageProbes = []func(RawEntry) string{
	func(e RawEntry) string { return e.EnclosureURL },
	func(e RawEntry) string { return e.EnclosureLink },
	func(e RawEntry) string { return e.MediaContentURL },
	func(e RawEntry) string { return e.MediaThumbnailURL },
	func(e RawEntry) string { return e.Thumbnail },
}

// EntryNormalizer converts one raw feed entry into the canonical Item
// shape. Normalization never fails: every extraction miss degrades to
// a default or nil.
type EntryNormalizer struct {
	categories *CategoryNormalizer
	now        func() time.Time
}

func NewEntryNormalizer(categories *CategoryNormalizer) *EntryNormalizer {
	return &EntryNormalizer{
		categories: categories,
		now:        time.Now,
	}
}

func (n *EntryNormalizer) Normalize(source feeds.Source, raw RawEntry, ordinal int) Item {
	publishedAt := n.resolveTime(raw)

	title := CollapseWhitespace(raw.Title)
	link := CleanURL(strings.TrimSpace(raw.Link))
	summary := CollapseWhitespace(firstNonEmpty(raw.Description, raw.Content))

	return Item{
		ID:          fmt.Sprintf("%s-%d-%d", source.Name, ordinal, publishedAt.UnixMilli()),
		Title:       title,
		Link:        link,
		PublishedAt: publishedAt.UTC().Format(time.RFC3339),
		Source:      source.Name,
		Category:    n.categories.Normalize(source.Category),
		Image:       n.extractImage(raw),
		Summary:     nullable(summary),
	}
}

// resolveTime probes the date candidates in order and parses the first
// non-empty one leniently. Everything missing or unparseable resolves
// to the current time.
func (n *EntryNormalizer) resolveTime(raw RawEntry) time.Time {
	for _, probe := range dateProbes {
		candidate := strings.TrimSpace(probe(raw))
		if candidate == "" {
			continue
		}
		if t, err := dateparse.ParseAny(candidate); err == nil {
			return t
		}
	}
	return n.now()
}

func (n *EntryNormalizer) extractImage(raw RawEntry) *string {
	for _, probe := range imageProbes {
		if u := strings.TrimSpace(probe(raw)); u != "" {
			return &u
		}
	}
	if u := FirstImageFromHTML(firstNonEmpty(raw.ContentEncoded, raw.Content, raw.Description)); u != "" {
		return &u
	}
	return nil
}

// FirstImageFromHTML returns the src of the first <img> occurrence in
// the given HTML fragment, or empty when none is found.
func FirstImageFromHTML(html string) string {
	if html == "" {
		return ""
	}
	if m := imgSrcRe.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}

// CleanURL re-serializes an absolute URL with its fragment stripped.
// Anything that does not parse passes through unchanged.
func CleanURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	return u.String()
}

// CollapseWhitespace trims a string and folds internal runs of
// whitespace into single spaces.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
