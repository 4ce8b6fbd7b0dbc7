package api

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sumberfakta/warta/app/database"
	"github.com/sumberfakta/warta/app/snapshot"
)

func NewHandler(content ContentStore, runner BuildRunner, archive database.ArchiveRepository,
	snapshots *snapshot.Store, snapshotPath string) *Handler {
	return &Handler{
		content:      content,
		runner:       runner,
		archive:      archive,
		snapshots:    snapshots,
		snapshotPath: snapshotPath,
	}
}

func (h *Handler) GetSnapshot(c *gin.Context) {
	snap := h.snapshots.Read(h.snapshotPath)
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No snapshot has been built yet"})
		return
	}
	c.File(h.snapshotPath)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if snap := h.snapshots.Read(h.snapshotPath); snap != nil {
		health["snapshot_generated_at"] = snap.GeneratedAt
		health["snapshot_items"] = len(snap.Items)
	}

	if h.archive != nil {
		if runs, err := h.archive.GetRunCount(); err == nil {
			health["runs"] = runs
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{}

	if snap := h.snapshots.Read(h.snapshotPath); snap != nil {
		stats["snapshot"] = map[string]interface{}{
			"generated_at": snap.GeneratedAt,
			"items":        len(snap.Items),
		}
	}

	if h.archive != nil {
		archive := map[string]interface{}{}
		if runs, err := h.archive.GetRunCount(); err == nil {
			archive["runs"] = runs
		}
		if items, err := h.archive.GetItemCount(); err == nil {
			archive["items"] = items
		}
		if last, err := h.archive.GetLastRun(); err == nil && last != nil {
			archive["last_run"] = map[string]interface{}{
				"generated_at": last.GeneratedAt,
				"sources":      last.SourceCount,
				"fresh":        last.FreshCount,
				"items":        last.ItemCount,
			}
		}
		stats["archive"] = archive
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIGetContent(c *gin.Context) {
	if !h.content.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Content store is not configured"})
		return
	}

	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing path parameter"})
		return
	}

	file, err := h.content.Get(c.Request.Context(), path)
	if err != nil {
		slog.Error("Content store read failed", "path", path, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Content store read failed"})
		return
	}

	if !file.Exists {
		c.JSON(http.StatusNotFound, gin.H{
			"exists": false,
			"path":   path,
			"rawUrl": file.RawURL,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"exists":     true,
		"path":       path,
		"sha":        file.SHA,
		"contentB64": base64.StdEncoding.EncodeToString(file.Content),
		"rawUrl":     file.RawURL,
	})
}

func (h *Handler) APIPutContent(c *gin.Context) {
	if !h.content.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Content store is not configured"})
		return
	}

	var req putContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.ContentB64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contentB64 is not valid base64"})
		return
	}

	message := req.Message
	if message == "" {
		message = "chore: update " + req.Path
	}

	commit, err := h.content.Put(c.Request.Context(), req.Path, content, message, req.SHA)
	if err != nil {
		slog.Error("Content store write failed", "path", req.Path, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Content store write failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sha":    commit.SHA,
		"path":   commit.Path,
		"rawUrl": commit.RawURL,
	})
}

func (h *Handler) APIUpload(c *gin.Context) {
	if !h.content.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Content store is not configured"})
		return
	}

	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.ContentB64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contentB64 is not valid base64"})
		return
	}

	commit, err := h.content.Upload(c.Request.Context(), req.Ext, content)
	if err != nil {
		slog.Error("Image upload failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sha":    commit.SHA,
		"path":   commit.Path,
		"rawUrl": commit.RawURL,
	})
}

// APITriggerBuild starts a snapshot build. The default is a local run
// in the background; {"remote": true} dispatches the repository's
// build workflow instead.
func (h *Handler) APITriggerBuild(c *gin.Context) {
	var req buildRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}

	if req.Remote {
		if !h.content.Configured() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Content store is not configured"})
			return
		}
		if err := h.content.TriggerBuild(c.Request.Context()); err != nil {
			slog.Error("Build workflow dispatch failed", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Build workflow dispatch failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"dispatched": true})
		return
	}

	go func() {
		if err := h.runner.Run(context.Background()); err != nil {
			slog.Error("Manually triggered build failed", "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"started": true})
}
