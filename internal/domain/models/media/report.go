package media

// BlobKind identifies which representation of an asset a blob holds
type BlobKind string

const (
	BlobKindOriginal  BlobKind = "original"
	BlobKindThumbnail BlobKind = "thumbnail"
)

// BlobOutcome records one best-effort blob deletion attempt
type BlobOutcome struct {
	Key     string   `json:"key"`
	AssetID string   `json:"asset_id"`
	Kind    BlobKind `json:"kind"`
	Deleted bool     `json:"deleted"`
	Error   string   `json:"error,omitempty"`
}

// CountDeleted returns how many outcomes succeeded and how many failed
func CountDeleted(outcomes []BlobOutcome) (deleted, failed int) {
	for _, o := range outcomes {
		if o.Deleted {
			deleted++
		} else {
			failed++
		}
	}
	return deleted, failed
}

// DeletionReport summarizes a cascading folder deletion.
// Blob failures are reported here and never fail the deletion itself.
type DeletionReport struct {
	DeletedFolderID         string        `json:"deleted_folder_id"`
	DeletedChildFolderCount int           `json:"deleted_child_folder_count"`
	DeletedAssetCount       int           `json:"deleted_asset_count"`
	DeletedBlobCount        int           `json:"deleted_blob_count"`
	FailedBlobCount         int           `json:"failed_blob_count"`
	BlobOutcomes            []BlobOutcome `json:"blob_outcomes"`
}

// VersionDeletion summarizes the removal of a single version
type VersionDeletion struct {
	VersionID        string        `json:"version_id"`
	AssetID          string        `json:"asset_id"`
	VersionNumber    int           `json:"version_number"`
	DeletedBlobCount int           `json:"deleted_blob_count"`
	FailedBlobCount  int           `json:"failed_blob_count"`
	BlobOutcomes     []BlobOutcome `json:"blob_outcomes"`
}
