package media

import (
	"context"

	"cutroom/internal/domain/models/media"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, folder *media.Folder) error

	// GetByID retrieves a folder by ID within a project
	GetByID(ctx context.Context, id, projectID string) (*media.Folder, error)

	// GetByIDOnly retrieves a folder by ID without project scoping
	GetByIDOnly(ctx context.Context, id string) (*media.Folder, error)

	// FindByNameAndParent returns the folder named name under parentID, or nil if none exists
	FindByNameAndParent(ctx context.Context, projectID string, parentID *string, name string) (*media.Folder, error)

	// Update persists parent, name and description
	Update(ctx context.Context, folder *media.Folder) error

	// Delete deletes a folder; descendant folders and their assets cascade
	Delete(ctx context.Context, id, projectID string) error

	// ListChildren lists immediate child folders
	ListChildren(ctx context.Context, parentID *string, projectID string) ([]media.Folder, error)

	// CountChildren counts immediate child folders
	CountChildren(ctx context.Context, id string) (int, error)

	// GetAllByProject retrieves all folders in a project (flat list)
	GetAllByProject(ctx context.Context, projectID string) ([]media.Folder, error)
}
