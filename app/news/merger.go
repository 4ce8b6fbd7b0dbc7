package news

import (
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/cases"
)

// Merger combines freshly fetched items with hand-authored items and,
// when the result runs short, items from the previous snapshot. The
// output is deduplicated, ordered newest-first and size-capped.
type Merger struct{}

func NewMerger() *Merger {
	return &Merger{}
}

// Run merges the three candidate pools. Fresh items come first in the
// concatenation order, then authored items, so a fresh item always
// wins a dedup-key collision against a stale one. Previous-snapshot
// items are only considered when the deduplicated result falls below
// minItems; they pad the output but never displace anything.
func (m *Merger) Run(fresh, authored, previous []Item, minItems, maxItems int) []Item {
	candidates := make([]Item, 0, len(fresh)+len(authored))
	candidates = append(candidates, fresh...)
	candidates = append(candidates, authored...)

	out := m.dedupSortTrim(candidates, maxItems)
	if len(out) < minItems && len(previous) > 0 {
		out = m.dedupSortTrim(append(candidates, previous...), maxItems)
	}
	return out
}

// dedupSortTrim drops empty-keyed items, keeps the first occurrence of
// every dedup key, sorts newest-first and truncates to maxItems.
func (m *Merger) dedupSortTrim(items []Item, maxItems int) []Item {
	folder := cases.Fold()

	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, item := range items {
		key := DedupKey(folder, item)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return publishedTime(out[i]).After(publishedTime(out[j]))
	})

	if maxItems > 0 && len(out) > maxItems {
		out = out[:maxItems]
	}
	return out
}

// DedupKey is the case-folded link, or the case-folded title when the
// link is empty. Items with neither carry no identity and are dropped.
func DedupKey(folder cases.Caser, item Item) string {
	if key := strings.TrimSpace(item.Link); key != "" {
		return folder.String(key)
	}
	return folder.String(strings.TrimSpace(item.Title))
}

// publishedTime orders items: anything missing or unparseable sorts as
// the zero epoch, i.e. last.
func publishedTime(item Item) time.Time {
	if item.PublishedAt == "" {
		return time.Unix(0, 0)
	}
	t, err := dateparse.ParseAny(item.PublishedAt)
	if err != nil {
		return time.Unix(0, 0)
	}
	return t
}
