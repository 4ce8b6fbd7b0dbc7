package database

import (
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/text/cases"

	"github.com/sumberfakta/warta/app/news"
)

var _ ArchiveRepository = (*ArchiveRepositoryImpl)(nil)

type ArchiveRepositoryImpl struct {
	db *DB
}

func NewArchiveRepository(db *DB) *ArchiveRepositoryImpl {
	return &ArchiveRepositoryImpl{db: db}
}

func (r *ArchiveRepositoryImpl) RecordRun(run RunRecord) (int64, error) {
	res, err := r.db.Exec(`
		INSERT INTO runs (generated_at, source_count, fresh_count, item_count)
		VALUES (?, ?, ?, ?)
	`, run.GeneratedAt, run.SourceCount, run.FreshCount, run.ItemCount)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	return id, nil
}

// UpsertItems stores items keyed by their dedup key, which is the only
// identity that survives across runs (item ids are run-local).
func (r *ArchiveRepositoryImpl) UpsertItems(items []news.Item) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO items (dedup_key, title, link, published_at, source, category, image, summary, first_seen_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (dedup_key) DO UPDATE SET
			title = excluded.title,
			link = excluded.link,
			published_at = excluded.published_at,
			source = excluded.source,
			category = excluded.category,
			image = excluded.image,
			summary = excluded.summary,
			last_seen_at = excluded.last_seen_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	folder := cases.Fold()
	now := time.Now().UTC().Format(time.RFC3339)

	for _, item := range items {
		key := news.DedupKey(folder, item)
		if key == "" {
			continue
		}
		if _, err := stmt.Exec(key, item.Title, item.Link, item.PublishedAt,
			item.Source, item.Category, item.Image, item.Summary, now, now); err != nil {
			return fmt.Errorf("failed to upsert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

func (r *ArchiveRepositoryImpl) GetItemCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

func (r *ArchiveRepositoryImpl) GetRunCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}

func (r *ArchiveRepositoryImpl) GetLastRun() (*RunRecord, error) {
	var run RunRecord
	err := r.db.QueryRow(`
		SELECT id, generated_at, source_count, fresh_count, item_count
		FROM runs
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&run.ID, &run.GeneratedAt, &run.SourceCount, &run.FreshCount, &run.ItemCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last run: %w", err)
	}
	return &run, nil
}
