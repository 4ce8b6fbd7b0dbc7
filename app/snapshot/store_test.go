package snapshot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sumberfakta/warta/app/news"
)

func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "news.json")
	store := NewStore()

	image := "https://a.example/img.jpg"
	snap := &news.Snapshot{
		GeneratedAt: "2025-06-01T12:00:00Z",
		Items: []news.Item{
			{
				ID:          "A-0-1748779200000",
				Title:       "Judul",
				Link:        "https://a.example/x",
				PublishedAt: "2025-06-01T10:00:00Z",
				Source:      "A",
				Category:    "nasional",
				Image:       &image,
			},
		},
	}

	if err := store.Write(path, snap); err != nil {
		t.Fatalf("Expected write to succeed, got: %v", err)
	}

	got := store.Read(path)
	if got == nil {
		t.Fatal("Expected snapshot to read back")
	}
	if got.GeneratedAt != snap.GeneratedAt {
		t.Errorf("Expected generatedAt %q, got: %q", snap.GeneratedAt, got.GeneratedAt)
	}
	if len(got.Items) != 1 || got.Items[0].ID != snap.Items[0].ID {
		t.Errorf("Expected items to round-trip, got: %v", got.Items)
	}
	if got.Items[0].Image == nil || *got.Items[0].Image != image {
		t.Errorf("Expected image to round-trip, got: %v", got.Items[0].Image)
	}
}

func TestWriteEmitsNullFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "news.json")
	store := NewStore()

	snap := &news.Snapshot{
		GeneratedAt: "2025-06-01T12:00:00Z",
		Items:       []news.Item{{ID: "x", Title: "t", PublishedAt: "2025-06-01T10:00:00Z"}},
	}
	if err := store.Write(path, snap); err != nil {
		t.Fatalf("Expected write to succeed, got: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read snapshot: %v", err)
	}
	if !strings.Contains(string(data), `"image": null`) {
		t.Errorf("Expected explicit null image field, got: %s", data)
	}
	if strings.Contains(string(data), "contentHtml") {
		t.Errorf("Expected contentHtml omitted for feed items, got: %s", data)
	}
}

func TestReadMissingOrCorrupt(t *testing.T) {
	dir := t.TempDir()
	store := NewStore()

	if snap := store.Read(filepath.Join(dir, "missing.json")); snap != nil {
		t.Errorf("Expected nil for missing snapshot, got: %v", snap)
	}

	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if snap := store.Read(corrupt); snap != nil {
		t.Errorf("Expected nil for corrupt snapshot, got: %v", snap)
	}
}

func TestBackupCopiesBytes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "news.json")
	dst := filepath.Join(dir, "data", "news_prev.json")
	store := NewStore()

	original := []byte(`{"generatedAt":"2025-06-01T12:00:00Z","items":[]}`)
	if err := os.WriteFile(src, original, 0644); err != nil {
		t.Fatal(err)
	}

	store.Backup(src, dst)

	copied, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("Expected backup file to exist: %v", err)
	}
	if !bytes.Equal(copied, original) {
		t.Error("Expected byte-identical backup")
	}
}

func TestBackupMissingSourceIsNonFatal(t *testing.T) {
	dir := t.TempDir()
	store := NewStore()

	// Must not panic or create anything.
	store.Backup(filepath.Join(dir, "missing.json"), filepath.Join(dir, "prev.json"))

	if _, err := os.Stat(filepath.Join(dir, "prev.json")); !os.IsNotExist(err) {
		t.Error("Expected no backup file for a missing source")
	}
}

func TestWriteReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "news.json")
	store := NewStore()

	if err := store.Write(path, &news.Snapshot{GeneratedAt: "2025-06-01T00:00:00Z"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Write(path, &news.Snapshot{GeneratedAt: "2025-06-02T00:00:00Z"}); err != nil {
		t.Fatal(err)
	}

	got := store.Read(path)
	if got == nil || got.GeneratedAt != "2025-06-02T00:00:00Z" {
		t.Errorf("Expected second write to replace the first, got: %v", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("Expected no leftover temp files, found: %s", e.Name())
		}
	}
}
