package media

import (
	"context"
	"io"

	"cutroom/internal/domain/models/media"
)

// VersionService is the asset version ledger: append-only history plus one current pointer
type VersionService interface {
	// UploadAsset creates an asset whose first version holds the uploaded content
	UploadAsset(ctx context.Context, req *UploadAssetRequest) (*media.Asset, error)

	// CreateVersion appends a version and points the asset at it
	CreateVersion(ctx context.Context, req *CreateVersionRequest) (*media.Version, error)

	// ListVersions returns the asset's history and which version is active
	ListVersions(ctx context.Context, actorID, assetID string) (*media.VersionHistory, error)

	// RollbackToVersion points the asset at an existing version without creating a new one
	RollbackToVersion(ctx context.Context, actorID, assetID, versionID string) (*media.Asset, error)

	// DeleteVersion deletes a version that is not the active one
	DeleteVersion(ctx context.Context, actorID, versionID string) (*media.VersionDeletion, error)

	// CompareVersions describes how version B differs from version A of the same asset
	CompareVersions(ctx context.Context, actorID, versionIDA, versionIDB string) (*media.VersionComparison, error)
}

// VersionContent is the uploaded content of one version
type VersionContent struct {
	FileName  string    // Used for the blob key extension
	Content   io.Reader // Original media
	Thumbnail io.Reader // Optional pre-rendered thumbnail
	Media     media.MediaAttributes
}

// UploadAssetRequest creates an asset with its first version
type UploadAssetRequest struct {
	ActorID     string
	ProjectID   string
	FolderID    *string
	Name        string
	ChangeNotes *string
	VersionContent
}

// CreateVersionRequest appends a version to an existing asset
type CreateVersionRequest struct {
	ActorID     string
	AssetID     string
	ChangeNotes *string
	VersionContent
}
