package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(serverURL string) *Client {
	c := NewClient(&http.Client{}, "owner", "repo", "main", "test-token", "TestBot/1.0", "build-news.yml")
	c.baseURL = serverURL
	return c
}

func TestGetExistingFile(t *testing.T) {
	content := `[{"name":"A","url":"https://a/rss"}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("Expected GET, got: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Expected bearer token, got: %q", got)
		}
		if got := r.Header.Get("X-GitHub-Api-Version"); got != apiVersion {
			t.Errorf("Expected API version header, got: %q", got)
		}
		json.NewEncoder(w).Encode(contentsResponse{
			SHA:      "abc123",
			Content:  base64.StdEncoding.EncodeToString([]byte(content)),
			Encoding: "base64",
		})
	}))
	defer server.Close()

	file, err := newTestClient(server.URL).Get(context.Background(), "feeds.json")
	if err != nil {
		t.Fatalf("Expected get to succeed, got: %v", err)
	}
	if !file.Exists {
		t.Error("Expected file to exist")
	}
	if file.SHA != "abc123" {
		t.Errorf("Expected sha abc123, got: %q", file.SHA)
	}
	if string(file.Content) != content {
		t.Errorf("Expected decoded content, got: %q", file.Content)
	}
}

func TestGetMissingFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	file, err := newTestClient(server.URL).Get(context.Background(), "missing.json")
	if err != nil {
		t.Fatalf("Expected 404 to map to Exists=false, got error: %v", err)
	}
	if file.Exists {
		t.Error("Expected Exists=false for a 404")
	}
	if !strings.Contains(file.RawURL, "owner/repo/main/missing.json") {
		t.Errorf("Expected raw URL to point at the branch path, got: %q", file.RawURL)
	}
}

func TestPutSendsShaAndBranch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PUT" {
			t.Errorf("Expected PUT, got: %s", r.Method)
		}
		var req putRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode put body: %v", err)
		}
		if req.Branch != "main" {
			t.Errorf("Expected branch main, got: %q", req.Branch)
		}
		if req.SHA != "prev-sha" {
			t.Errorf("Expected expected-revision sha, got: %q", req.SHA)
		}
		if req.Message != "update feeds" {
			t.Errorf("Expected commit message, got: %q", req.Message)
		}

		var resp putResponse
		resp.Content.SHA = "new-sha"
		resp.Content.Path = "feeds.json"
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	commit, err := newTestClient(server.URL).Put(context.Background(), "feeds.json",
		[]byte("[]"), "update feeds", "prev-sha")
	if err != nil {
		t.Fatalf("Expected put to succeed, got: %v", err)
	}
	if commit.SHA != "new-sha" {
		t.Errorf("Expected new revision sha, got: %q", commit.SHA)
	}
}

func TestPutRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		var resp putResponse
		resp.Content.SHA = "new-sha"
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	commit, err := newTestClient(server.URL).Put(context.Background(), "news.json",
		[]byte("{}"), "rebuild", "")
	if err != nil {
		t.Fatalf("Expected retry to recover, got: %v", err)
	}
	if commit.SHA != "new-sha" {
		t.Errorf("Expected commit after retries, got: %v", commit)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
}

func TestPutDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "conflict", http.StatusConflict)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Put(context.Background(), "news.json",
		[]byte("{}"), "rebuild", "stale-sha")
	if err == nil {
		t.Fatal("Expected conflict to surface as an error")
	}
	if attempts != 1 {
		t.Errorf("Expected a single attempt for a client error, got: %d", attempts)
	}
}

func TestTriggerBuild(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "build-news.yml/dispatches") {
			t.Errorf("Expected workflow dispatch path, got: %s", r.URL.Path)
		}
		var req dispatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode dispatch body: %v", err)
		}
		if req.Ref != "main" {
			t.Errorf("Expected ref main, got: %q", req.Ref)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if err := newTestClient(server.URL).TriggerBuild(context.Background()); err != nil {
		t.Fatalf("Expected dispatch to succeed, got: %v", err)
	}
}

func TestUploadGeneratesPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var resp putResponse
		resp.Content.SHA = "img-sha"
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	commit, err := newTestClient(server.URL).Upload(context.Background(), "JPG!", []byte{0xff, 0xd8})
	if err != nil {
		t.Fatalf("Expected upload to succeed, got: %v", err)
	}
	if commit.SHA != "img-sha" {
		t.Errorf("Expected commit sha, got: %v", commit)
	}
	if !strings.Contains(gotPath, "images/uploads/img-") {
		t.Errorf("Expected generated uploads path, got: %q", gotPath)
	}
	if !strings.HasSuffix(gotPath, ".jpg") {
		t.Errorf("Expected sanitized jpg extension, got: %q", gotPath)
	}
}

func TestSanitizeExt(t *testing.T) {
	tests := map[string]string{
		"jpg":   "jpg",
		"PNG":   "png",
		"..png": "png",
		"":      "jpg",
		"!!!":   "jpg",
	}
	for input, want := range tests {
		if got := sanitizeExt(input); got != want {
			t.Errorf("sanitizeExt(%q) = %q, want %q", input, got, want)
		}
	}
}
