package database

import "github.com/sumberfakta/warta/app/news"

// RunRecord summarizes one completed build.
type RunRecord struct {
	ID          int64
	GeneratedAt string
	SourceCount int
	FreshCount  int
	ItemCount   int
}

// ArchiveRepository records build runs and the items they produced.
// The archive is strictly observational: every method failure is
// recoverable and must never fail a build.
type ArchiveRepository interface {
	RecordRun(run RunRecord) (int64, error)
	UpsertItems(items []news.Item) error
	GetItemCount() (int, error)
	GetRunCount() (int, error)
	GetLastRun() (*RunRecord, error)
}
