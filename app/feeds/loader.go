package feeds

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSources is used when no source list file exists or parses.
// Absence of configuration is deliberately non-fatal: the snapshot
// build runs unattended and must not fail on a missing file.
var DefaultSources = []Source{
	{Name: "ANTARA – Terkini", URL: "https://www.antaranews.com/rss/terkini", Category: "nasional", Kind: KindFeed},
	{Name: "Detik – Berita", URL: "https://news.detik.com/berita/rss", Category: "nasional", Kind: KindFeed},
	{Name: "Liputan6 – News", URL: "https://feed.liputan6.com/rss/news", Category: "nasional", Kind: KindFeed},
}

type Loader struct {
	candidates []string
}

func NewLoader(candidates ...string) *Loader {
	return &Loader{candidates: candidates}
}

// Load resolves the source list from the first candidate file that
// parses into a non-empty list. A missing or malformed candidate falls
// through to the next; when none works, DefaultSources is returned.
func (l *Loader) Load() []Source {
	for _, path := range l.candidates {
		sources, err := parseFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				slog.Warn("Skipping unusable source list", "path", path, "error", err)
			}
			continue
		}
		if len(sources) == 0 {
			continue
		}
		slog.Info("Source list loaded", "path", path, "count", len(sources))
		return normalize(sources)
	}

	slog.Warn("No usable source list found, using built-in defaults", "count", len(DefaultSources))
	return normalize(DefaultSources)
}

func parseFile(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	unmarshal := json.Unmarshal
	if strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".yaml") {
		unmarshal = yaml.Unmarshal
	}

	var bare []Source
	if err := unmarshal(data, &bare); err == nil {
		return bare, nil
	}

	var wrapped sourceList
	if err := unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	if len(wrapped.Feeds) > 0 {
		return wrapped.Feeds, nil
	}
	return wrapped.Sources, nil
}

func normalize(sources []Source) []Source {
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.URL == "" {
			slog.Warn("Skipping source without URL", "name", s.Name)
			continue
		}
		if s.Kind == "" {
			s.Kind = KindFeed
		}
		out = append(out, s)
	}
	return out
}
