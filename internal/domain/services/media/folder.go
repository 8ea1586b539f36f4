package media

import (
	"context"

	"cutroom/internal/domain/models/media"
	"cutroom/internal/httputil"
)

// FolderService maintains the per-project folder tree
type FolderService interface {
	// CreateFolder creates a folder at the project root or under ParentID
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*media.FolderWithCounts, error)

	// GetFolder retrieves a folder with its counts and computed path
	GetFolder(ctx context.Context, actorID, folderID string) (*media.FolderWithCounts, error)

	// MoveFolder renames and/or reparents a folder; a rename is a move that keeps the parent
	MoveFolder(ctx context.Context, req *MoveFolderRequest) (*media.Folder, error)

	// GetTree builds the nested folder/asset tree for a project
	GetTree(ctx context.Context, actorID, projectID string) (*media.Tree, error)

	// GetPath returns the ancestor chain of a folder, root first
	GetPath(ctx context.Context, actorID, folderID string) (*media.FolderPath, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	ActorID     string  `json:"-"`
	ProjectID   string  `json:"project_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	ParentID    *string `json:"parent_id,omitempty"` // null for root
}

// MoveFolderRequest represents a rename and/or move.
// ParentID is tri-state: absent keeps the parent, null moves to root, a value reparents.
type MoveFolderRequest struct {
	ActorID     string                  `json:"-"`
	FolderID    string                  `json:"-"`
	Name        *string                 `json:"name,omitempty"`
	Description *string                 `json:"description,omitempty"`
	ParentID    httputil.Optional[string] `json:"parent_id"`
}
