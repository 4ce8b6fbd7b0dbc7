package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const apiVersion = "2022-11-28"

// Client talks to the versioned content store (the GitHub contents
// API) that backs the hosted deployment: reads and writes of arbitrary
// repository files plus the workflow dispatch that triggers a rebuild.
type Client struct {
	httpClient *http.Client
	baseURL    string
	owner      string
	repo       string
	branch     string
	token      string
	userAgent  string
	workflow   string
}

func NewClient(httpClient *http.Client, owner, repo, branch, token, userAgent, workflow string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    "https://api.github.com",
		owner:      owner,
		repo:       repo,
		branch:     branch,
		token:      token,
		userAgent:  userAgent,
		workflow:   workflow,
	}
}

// Configured reports whether the client has enough settings to reach
// the store. The API endpoints answer 503 when it is not.
func (c *Client) Configured() bool {
	return c.owner != "" && c.repo != "" && c.token != ""
}

// Get fetches a file. A 404 is not an error: it comes back as
// Exists=false so callers can distinguish "absent" from "broken".
func (c *Client) Get(ctx context.Context, path string) (*File, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		c.baseURL, c.owner, c.repo, url.PathEscape(path), url.QueryEscape(c.branch))

	resp, err := c.do(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	rawURL := c.rawURL(path)

	if resp.StatusCode == http.StatusNotFound {
		return &File{Exists: false, RawURL: rawURL}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var body contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode contents response: %w", err)
	}

	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(body.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode file content: %w", err)
	}

	return &File{Exists: true, SHA: body.SHA, Content: content, RawURL: rawURL}, nil
}

// Put creates or updates a file. The expected revision (sha) must be
// set when replacing an existing file; leaving it empty creates a new
// one. Transient failures are retried with exponential backoff.
func (c *Client) Put(ctx context.Context, path string, content []byte, message, sha string) (*Commit, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.baseURL, c.owner, c.repo, url.PathEscape(path))

	payload, err := json.Marshal(putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  c.branch,
		SHA:     sha,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode put request: %w", err)
	}

	var commit *Commit
	operation := func() error {
		resp, err := c.do(ctx, "PUT", endpoint, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return c.statusError(resp)
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return backoff.Permanent(c.statusError(resp))
		}

		var body putResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode put response: %w", err))
		}
		commit = &Commit{SHA: body.Content.SHA, Path: body.Content.Path, RawURL: c.rawURL(path)}
		return nil
	}

	if err := backoff.Retry(operation, c.retryPolicy(ctx)); err != nil {
		return nil, err
	}
	return commit, nil
}

// Upload stores an image under a generated path and returns the
// commit, so callers never have to invent collision-free names.
func (c *Client) Upload(ctx context.Context, ext string, content []byte) (*Commit, error) {
	ext = sanitizeExt(ext)
	name := fmt.Sprintf("img-%d-%04d.%s", time.Now().UnixMilli(), rand.Intn(10000), ext)
	path := "images/uploads/" + name

	return c.Put(ctx, path, content, fmt.Sprintf("chore: upload %s", name), "")
}

// TriggerBuild dispatches the snapshot build workflow on the
// configured branch.
func (c *Client) TriggerBuild(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/actions/workflows/%s/dispatches",
		c.baseURL, c.owner, c.repo, url.PathEscape(c.workflow))

	payload, err := json.Marshal(dispatchRequest{Ref: c.branch})
	if err != nil {
		return fmt.Errorf("failed to encode dispatch request: %w", err)
	}

	operation := func() error {
		resp, err := c.do(ctx, "POST", endpoint, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return c.statusError(resp)
		}
		if resp.StatusCode != http.StatusNoContent {
			return backoff.Permanent(c.statusError(resp))
		}
		return nil
	}

	if err := backoff.Retry(operation, c.retryPolicy(ctx)); err != nil {
		return err
	}

	slog.Info("Build workflow dispatched", "workflow", c.workflow, "branch", c.branch)
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content store request failed: %w", err)
	}
	return resp, nil
}

func (c *Client) statusError(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("content store HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
}

func (c *Client) retryPolicy(ctx context.Context) backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxElapsedTime = 15 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(policy, 3), ctx)
}

func (c *Client) rawURL(path string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s", c.owner, c.repo, c.branch, path)
}

func sanitizeExt(ext string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, strings.ToLower(ext))
	if cleaned == "" {
		return "jpg"
	}
	return cleaned
}
