package media

import (
	"context"

	"cutroom/internal/domain/models/media"
)

// DeletionService removes a folder subtree together with its assets and their blobs
type DeletionService interface {
	// DeleteFolder deletes folderID, every descendant folder and every asset filed in them.
	// Blob cleanup is best-effort; its outcome is reported, never returned as an error.
	DeleteFolder(ctx context.Context, actorID, folderID string) (*media.DeletionReport, error)
}
