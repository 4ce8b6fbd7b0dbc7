package api

import (
	"context"

	"github.com/sumberfakta/warta/app/build"
	"github.com/sumberfakta/warta/app/database"
	"github.com/sumberfakta/warta/app/snapshot"
	"github.com/sumberfakta/warta/app/store"
)

// ContentStore is the slice of the repository client the API exposes.
type ContentStore interface {
	Configured() bool
	Get(ctx context.Context, path string) (*store.File, error)
	Put(ctx context.Context, path string, content []byte, message, sha string) (*store.Commit, error)
	Upload(ctx context.Context, ext string, content []byte) (*store.Commit, error)
	TriggerBuild(ctx context.Context) error
}

var _ ContentStore = (*store.Client)(nil)

// BuildRunner executes one local snapshot build.
type BuildRunner interface {
	Run(ctx context.Context) error
}

var _ BuildRunner = (*build.Runner)(nil)

type Handler struct {
	content      ContentStore
	runner       BuildRunner
	archive      database.ArchiveRepository
	snapshots    *snapshot.Store
	snapshotPath string
}

type putContentRequest struct {
	Path       string `json:"path" binding:"required"`
	Message    string `json:"message"`
	ContentB64 string `json:"contentB64" binding:"required"`
	SHA        string `json:"sha"`
}

type uploadRequest struct {
	ContentB64 string `json:"contentB64" binding:"required"`
	Ext        string `json:"ext"`
}

type buildRequest struct {
	Remote bool `json:"remote"`
}
