package news

import (
	"fmt"
	"reflect"
	"testing"
)

func makeItem(link, title, publishedAt string) Item {
	return Item{
		ID:          link + title,
		Title:       title,
		Link:        link,
		PublishedAt: publishedAt,
		Source:      "test",
		Category:    "nasional",
	}
}

func TestMergeDedupByLink(t *testing.T) {
	m := NewMerger()

	fresh := []Item{
		makeItem("https://a/x", "first", "2025-06-01T10:00:00Z"),
		makeItem("HTTPS://A/X", "shouting duplicate", "2025-06-01T11:00:00Z"),
		makeItem("https://b/y", "other", "2025-06-01T09:00:00Z"),
	}

	out := m.Run(fresh, nil, nil, 0, 400)

	if len(out) != 2 {
		t.Fatalf("Expected 2 items after dedup, got: %d", len(out))
	}
	for _, item := range out {
		if item.Title == "shouting duplicate" {
			t.Error("Expected first occurrence to win the key collision")
		}
	}
}

func TestMergeDedupByTitleWhenLinkEmpty(t *testing.T) {
	m := NewMerger()

	fresh := []Item{
		makeItem("", "Judul Sama", "2025-06-01T10:00:00Z"),
		makeItem("", "judul sama", "2025-06-01T11:00:00Z"),
		makeItem("", "", "2025-06-01T12:00:00Z"), // no key at all, dropped
	}

	out := m.Run(fresh, nil, nil, 0, 400)

	if len(out) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(out))
	}
	if out[0].Title != "Judul Sama" {
		t.Errorf("Expected first occurrence kept, got: %q", out[0].Title)
	}
}

func TestMergeSortsNewestFirst(t *testing.T) {
	m := NewMerger()

	fresh := []Item{
		makeItem("https://a/1", "old", "2025-05-30T00:00:00Z"),
		makeItem("https://a/2", "new", "2025-06-01T00:00:00Z"),
		makeItem("https://a/3", "undated", ""),
		makeItem("https://a/4", "middle", "2025-05-31T00:00:00Z"),
	}

	out := m.Run(fresh, nil, nil, 0, 400)

	want := []string{"new", "middle", "old", "undated"}
	for i, title := range want {
		if out[i].Title != title {
			t.Errorf("Position %d: expected %q, got %q", i, title, out[i].Title)
		}
	}
}

func TestMergeTruncatesToMaxItems(t *testing.T) {
	m := NewMerger()

	var fresh []Item
	for i := 0; i < 30; i++ {
		fresh = append(fresh, makeItem(
			fmt.Sprintf("https://a/%d", i),
			fmt.Sprintf("item %d", i),
			fmt.Sprintf("2025-06-01T%02d:00:00Z", i%24),
		))
	}

	out := m.Run(fresh, nil, nil, 0, 10)

	if len(out) != 10 {
		t.Fatalf("Expected 10 items after truncation, got: %d", len(out))
	}
}

func TestMergeFallbackFillsFromPrevious(t *testing.T) {
	m := NewMerger()

	fresh := []Item{
		makeItem("https://a/x", "fresh", "2025-06-01T10:00:00Z"),
	}
	previous := []Item{
		makeItem("https://a/x", "stale duplicate", "2025-05-01T10:00:00Z"),
		makeItem("https://b/y", "stale filler", "2025-05-02T10:00:00Z"),
	}

	out := m.Run(fresh, nil, previous, 2, 400)

	if len(out) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(out))
	}
	if out[0].Title != "fresh" {
		t.Errorf("Expected fresh item to win its key, got: %q", out[0].Title)
	}
	if out[1].Title != "stale filler" {
		t.Errorf("Expected previous snapshot filler, got: %q", out[1].Title)
	}
}

func TestMergeFallbackSkippedAboveMinimum(t *testing.T) {
	m := NewMerger()

	fresh := []Item{
		makeItem("https://a/x", "fresh", "2025-06-01T10:00:00Z"),
		makeItem("https://a/y", "fresh too", "2025-06-01T11:00:00Z"),
	}
	previous := []Item{
		makeItem("https://b/z", "stale", "2025-05-01T10:00:00Z"),
	}

	out := m.Run(fresh, nil, previous, 2, 400)

	if len(out) != 2 {
		t.Fatalf("Expected previous snapshot untouched, got %d items", len(out))
	}
}

func TestMergeAuthoredBetweenFreshAndPrevious(t *testing.T) {
	m := NewMerger()

	fresh := []Item{
		makeItem("https://a/x", "fresh", "2025-06-01T10:00:00Z"),
	}
	authored := []Item{
		makeItem("https://a/x", "authored duplicate", "2025-06-02T10:00:00Z"),
		makeItem("https://c/z", "authored", "2025-06-02T10:00:00Z"),
	}

	out := m.Run(fresh, authored, nil, 0, 400)

	if len(out) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(out))
	}
	for _, item := range out {
		if item.Title == "authored duplicate" {
			t.Error("Expected fresh item to beat authored item on the same key")
		}
	}
}

func TestMergeIdempotent(t *testing.T) {
	m := NewMerger()

	fresh := []Item{
		makeItem("https://a/1", "one", "2025-06-01T10:00:00Z"),
		makeItem("https://a/2", "two", "2025-06-01T10:00:00Z"),
		makeItem("https://a/3", "three", "2025-05-01T10:00:00Z"),
	}
	previous := []Item{
		makeItem("https://b/1", "prev", "2025-04-01T10:00:00Z"),
	}

	first := m.Run(fresh, nil, previous, 4, 400)
	second := m.Run(fresh, nil, previous, 4, 400)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical output on repeated merge:\n%v\n%v", first, second)
	}
}

func TestMergeScenarioTwoSources(t *testing.T) {
	m := NewMerger()

	// One source contributed 5 items, the other timed out.
	var fresh []Item
	for i := 0; i < 5; i++ {
		fresh = append(fresh, makeItem(
			fmt.Sprintf("https://a/%d", i),
			fmt.Sprintf("item %d", i),
			fmt.Sprintf("2025-06-01T0%d:00:00Z", i),
		))
	}

	out := m.Run(fresh, nil, nil, 3, 10)

	if len(out) != 5 {
		t.Fatalf("Expected exactly 5 items, got: %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if publishedTime(out[i]).After(publishedTime(out[i-1])) {
			t.Errorf("Expected non-increasing order at position %d", i)
		}
	}
}
