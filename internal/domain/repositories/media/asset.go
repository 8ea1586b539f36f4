package media

import (
	"context"

	"cutroom/internal/domain/models/media"
)

// AssetRepository defines data access operations for assets
type AssetRepository interface {
	// Create inserts an asset; ID must be set by the caller
	Create(ctx context.Context, asset *media.Asset) error

	// GetByID retrieves an asset by ID
	GetByID(ctx context.Context, id string) (*media.Asset, error)

	// UpdateCurrent writes the current-version pointer fields
	UpdateCurrent(ctx context.Context, asset *media.Asset) error

	// ListByFolders lists assets filed in any of folderIDs
	ListByFolders(ctx context.Context, projectID string, folderIDs []string) ([]media.Asset, error)

	// GetAllByProject lists every asset in a project
	GetAllByProject(ctx context.Context, projectID string) ([]media.Asset, error)

	// CountByFolder counts assets filed directly in a folder
	CountByFolder(ctx context.Context, folderID string) (int, error)

	// DeleteByIDs deletes assets (versions cascade) and returns how many rows were removed
	DeleteByIDs(ctx context.Context, projectID string, ids []string) (int, error)
}
