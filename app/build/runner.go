package build

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/sumberfakta/warta/app/database"
	"github.com/sumberfakta/warta/app/feeds"
	"github.com/sumberfakta/warta/app/fetch"
	"github.com/sumberfakta/warta/app/news"
	"github.com/sumberfakta/warta/app/snapshot"
)

// AuthoredSource is the fixed provenance label stamped on every
// hand-authored item, regardless of what the articles file claims.
const AuthoredSource = "redaksi"

// Runner executes one complete snapshot build: resolve sources, fan
// out the fetch, merge with authored items and the previous snapshot,
// then back up and atomically replace the snapshot file. Only the
// final write can fail a run.
type Runner struct {
	sources      *feeds.Loader
	orchestrator *fetch.Orchestrator
	merger       *news.Merger
	snapshots    *snapshot.Store
	archive      database.ArchiveRepository

	authoredPaths []string
	snapshotPath  string
	backupPath    string
	minItems      int
	maxItems      int

	now func() time.Time

	// The snapshot file is a critical section: concurrent runs against
	// the same path are not supported, so scheduled and manual builds
	// serialize here.
	mu sync.Mutex
}

func NewRunner(sources *feeds.Loader, orchestrator *fetch.Orchestrator, merger *news.Merger,
	snapshots *snapshot.Store, archive database.ArchiveRepository, authoredPaths []string,
	snapshotPath, backupPath string, minItems, maxItems int) *Runner {
	return &Runner{
		sources:       sources,
		orchestrator:  orchestrator,
		merger:        merger,
		snapshots:     snapshots,
		archive:       archive,
		authoredPaths: authoredPaths,
		snapshotPath:  snapshotPath,
		backupPath:    backupPath,
		minItems:      minItems,
		maxItems:      maxItems,
		now:           time.Now,
	}
}

func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()

	sources := r.sources.Load()
	fresh := r.orchestrator.FetchAll(ctx, sources)
	authored := r.loadAuthored()

	var previous []news.Item
	if prev := r.snapshots.Read(r.snapshotPath); prev != nil {
		previous = prev.Items
	}

	items := r.merger.Run(fresh, authored, previous, r.minItems, r.maxItems)
	if len(items) < r.minItems {
		slog.Warn("Merged result below minimum even after fallback",
			"count", len(items), "min_items", r.minItems)
	}

	r.snapshots.Backup(r.snapshotPath, r.backupPath)

	snap := &news.Snapshot{
		GeneratedAt: r.now().UTC().Format(time.RFC3339),
		Items:       items,
	}
	if err := r.snapshots.Write(r.snapshotPath, snap); err != nil {
		return err
	}

	r.archiveRun(len(sources), len(fresh), snap)

	slog.Info("Build completed",
		"sources", len(sources),
		"fresh", len(fresh),
		"authored", len(authored),
		"items", len(items),
		"duration", time.Since(start))
	return nil
}

// loadAuthored reads the optional hand-authored articles file: a JSON
// array of pre-built items from the first candidate path that parses.
// Absence is the normal case.
func (r *Runner) loadAuthored() []news.Item {
	for _, path := range r.authoredPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				slog.Warn("Skipping unreadable articles file", "path", path, "error", err)
			}
			continue
		}

		var items []news.Item
		if err := json.Unmarshal(data, &items); err != nil {
			slog.Warn("Skipping malformed articles file", "path", path, "error", err)
			continue
		}

		for i := range items {
			items[i].Source = AuthoredSource
		}
		slog.Info("Authored articles loaded", "path", path, "count", len(items))
		return items
	}
	return nil
}

// archiveRun is observational only: any archive failure is logged and
// swallowed, a successfully written snapshot is a successful run.
func (r *Runner) archiveRun(sourceCount, freshCount int, snap *news.Snapshot) {
	if r.archive == nil {
		return
	}

	if _, err := r.archive.RecordRun(database.RunRecord{
		GeneratedAt: snap.GeneratedAt,
		SourceCount: sourceCount,
		FreshCount:  freshCount,
		ItemCount:   len(snap.Items),
	}); err != nil {
		slog.Warn("Failed to record run in archive", "error", err)
		return
	}
	if err := r.archive.UpsertItems(snap.Items); err != nil {
		slog.Warn("Failed to archive items", "error", err)
	}
}
