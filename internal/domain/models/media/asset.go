package media

import (
	"time"
)

// MediaAttributes are the probed properties of one piece of media content.
// Extraction happens upstream; these values are carried as provided.
type MediaAttributes struct {
	MimeType        string   `json:"mime_type,omitempty" db:"mime_type"`
	Width           *int     `json:"width,omitempty" db:"width"`
	Height          *int     `json:"height,omitempty" db:"height"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty" db:"duration_seconds"`
}

// SameResolution reports whether both attribute sets describe the same frame size.
// Missing dimensions only match missing dimensions.
func (m MediaAttributes) SameResolution(other MediaAttributes) bool {
	return equalIntPtr(m.Width, other.Width) && equalIntPtr(m.Height, other.Height)
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Asset is a media object owned by a project, optionally filed in one folder.
// The Current* fields mirror the active Version and are only ever written through PointTo.
type Asset struct {
	ID        string  `json:"id" db:"id"`
	ProjectID string  `json:"project_id" db:"project_id"`
	FolderID  *string `json:"folder_id" db:"folder_id"` // NULL = project root
	Name      string  `json:"name" db:"name"`

	CurrentVersionID     string  `json:"current_version_id" db:"current_version_id"`
	CurrentVersionNumber int     `json:"current_version_number" db:"current_version_number"`
	LastVersionNumber    int     `json:"last_version_number" db:"last_version_number"` // Highest number ever issued
	CurrentBlobKey       string  `json:"current_blob_key" db:"current_blob_key"`
	CurrentThumbnailKey  *string `json:"current_thumbnail_key,omitempty" db:"current_thumbnail_key"`
	SizeBytes            int64   `json:"size_bytes" db:"size_bytes"`
	MediaAttributes

	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PointTo moves the current pointer to v, copying every denormalized field at once
func (a *Asset) PointTo(v *Version) {
	a.CurrentVersionID = v.ID
	a.CurrentVersionNumber = v.VersionNumber
	a.CurrentBlobKey = v.BlobKey
	a.CurrentThumbnailKey = v.ThumbnailBlobKey
	a.SizeBytes = v.SizeBytes
	a.MediaAttributes = v.MediaAttributes
}

// IsActive reports whether v is the version the asset currently points at
func (a *Asset) IsActive(v *Version) bool {
	return a.CurrentBlobKey == v.BlobKey || (a.CurrentVersionID != "" && a.CurrentVersionID == v.ID)
}
