package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sumberfakta/warta/app/news"
)

// Store reads and writes snapshot files. Reads are lenient because a
// missing or corrupt previous snapshot only costs the fallback merge;
// the write is the whole point of a run and is the one operation whose
// failure propagates.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// Read returns the snapshot at path, or nil when the file is absent or
// does not parse. It never returns an error: a broken previous
// snapshot is treated the same as none.
func (s *Store) Read(path string) *news.Snapshot {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Previous snapshot unreadable", "path", path, "error", err)
		}
		return nil
	}

	var snap news.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.Warn("Previous snapshot does not parse", "path", path, "error", err)
		return nil
	}
	return &snap
}

// Backup copies the current snapshot bytes to the backup path.
// Best-effort: a failure is logged and swallowed, it must never block
// the write of the new snapshot.
func (s *Store) Backup(src, dst string) {
	data, err := os.ReadFile(src)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Snapshot backup read failed", "path", src, "error", err)
		}
		return
	}

	if dir := filepath.Dir(dst); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			slog.Warn("Snapshot backup directory failed", "path", dir, "error", err)
			return
		}
	}

	if err := os.WriteFile(dst, data, 0644); err != nil {
		slog.Warn("Snapshot backup write failed", "path", dst, "error", err)
		return
	}
	slog.Debug("Snapshot backed up", "from", src, "to", dst)
}

// Write persists the snapshot atomically: it lands in a temp file in
// the target directory and is renamed into place, so readers never see
// a half-written snapshot.
func (s *Store) Write(path string, snap *news.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	slog.Info("Snapshot written", "path", path, "items", len(snap.Items))
	return nil
}
