package fetch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sumberfakta/warta/app/feeds"
	"github.com/sumberfakta/warta/app/news"
)

// SourceFetcher retrieves one source's items. Implementations must
// contain their own failures and return an empty slice instead.
type SourceFetcher interface {
	Fetch(ctx context.Context, source feeds.Source) []news.Item
}

var _ SourceFetcher = (*Fetcher)(nil)

// Orchestrator fans the fetcher out over all configured sources
// concurrently and gathers every outcome before proceeding. A slow or
// failing source is bounded by its own timeout and never delays or
// aborts the others.
type Orchestrator struct {
	fetcher SourceFetcher
}

func NewOrchestrator(fetcher SourceFetcher) *Orchestrator {
	return &Orchestrator{fetcher: fetcher}
}

// FetchAll waits for every source to settle, then flattens the
// per-source results in source order. The final ordering of the run is
// imposed later by the merge step, never by fetch completion order.
func (o *Orchestrator) FetchAll(ctx context.Context, sources []feeds.Source) []news.Item {
	results := make([][]news.Item, len(sources))

	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func(i int, source feeds.Source) {
			defer wg.Done()
			results[i] = o.fetcher.Fetch(ctx, source)
		}(i, source)
	}
	wg.Wait()

	var items []news.Item
	for _, r := range results {
		items = append(items, r...)
	}

	slog.Info("Fetch fan-out settled", "sources", len(sources), "items", len(items))
	return items
}
