package config

import "time"

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxFolderDescriptionLength bounds the free-text folder description.
	MaxFolderDescriptionLength = 2000

	// MaxAssetNameLength is the maximum length for asset display names.
	MaxAssetNameLength = 255

	// MaxChangeNotesLength bounds version change notes.
	MaxChangeNotesLength = 2000

	// DefaultMaxFolderDepth caps every walk over parent pointers.
	// No legitimate tree gets close; hitting it means the stored tree is corrupt.
	DefaultMaxFolderDepth = 256

	// MaxUploadBytes limits a single version upload (original plus thumbnail).
	MaxUploadBytes = 8 << 30

	// DefaultBlobDeleteConcurrency bounds parallel blob deletions per operation.
	DefaultBlobDeleteConcurrency = 8

	// DefaultBlobOpTimeout bounds each individual blob deletion.
	DefaultBlobOpTimeout = 30 * time.Second
)
