package media

import (
	"context"

	"cutroom/internal/domain/models/media"
)

// VersionRepository defines data access operations for asset versions.
// Versions are never updated.
type VersionRepository interface {
	// Create inserts a version
	Create(ctx context.Context, version *media.Version) error

	// GetByID retrieves a version by ID
	GetByID(ctx context.Context, id string) (*media.Version, error)

	// ListByAsset lists an asset's versions ordered by version number
	ListByAsset(ctx context.Context, assetID string) ([]media.Version, error)

	// ListByAssets lists versions of several assets
	ListByAssets(ctx context.Context, assetIDs []string) ([]media.Version, error)

	// MaxVersionNumber returns the highest version number for an asset, 0 if none
	MaxVersionNumber(ctx context.Context, assetID string) (int, error)

	// Delete deletes a version
	Delete(ctx context.Context, id string) error
}
