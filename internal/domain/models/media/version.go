package media

import (
	"time"
)

// Version is an immutable snapshot of an asset's content
type Version struct {
	ID               string  `json:"id" db:"id"`
	AssetID          string  `json:"asset_id" db:"asset_id"`
	VersionNumber    int     `json:"version_number" db:"version_number"`
	BlobKey          string  `json:"blob_key" db:"blob_key"`
	ThumbnailBlobKey *string `json:"thumbnail_blob_key,omitempty" db:"thumbnail_blob_key"`
	SizeBytes        int64   `json:"size_bytes" db:"size_bytes"`
	MediaAttributes
	ChangeNotes *string   `json:"change_notes,omitempty" db:"change_notes"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// VersionHistory lists an asset's versions in ascending order.
// ActiveVersionID and LatestVersionNumber diverge after a rollback.
type VersionHistory struct {
	AssetID             string    `json:"asset_id"`
	Versions            []Version `json:"versions"`
	ActiveVersionID     string    `json:"active_version_id"`
	LatestVersionNumber int       `json:"latest_version_number"`
}

// VersionComparison describes how version B differs from version A
type VersionComparison struct {
	VersionAID        string   `json:"version_a_id"`
	VersionBID        string   `json:"version_b_id"`
	SizeChange        int64    `json:"size_change"`
	DurationChange    *float64 `json:"duration_change"` // nil when either version lacks a duration
	ResolutionChanged bool     `json:"resolution_changed"`
}

// Compare returns the difference from a to b
func Compare(a, b *Version) *VersionComparison {
	cmp := &VersionComparison{
		VersionAID:        a.ID,
		VersionBID:        b.ID,
		SizeChange:        b.SizeBytes - a.SizeBytes,
		ResolutionChanged: !a.SameResolution(b.MediaAttributes),
	}
	if a.DurationSeconds != nil && b.DurationSeconds != nil {
		change := *b.DurationSeconds - *a.DurationSeconds
		cmp.DurationChange = &change
	}
	return cmp
}
