package media

import "time"

// Tree represents the root of a project's folder tree
type Tree struct {
	Folders []*FolderNode `json:"folders"`
	Assets  []AssetNode   `json:"assets"` // Un-foldered assets at project root
}

// FolderNode represents a folder in the tree with nested children
type FolderNode struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	ParentID    *string       `json:"parent_id"`
	Description *string       `json:"description,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	ChildCount  int           `json:"child_count"`
	AssetCount  int           `json:"asset_count"`
	Folders     []*FolderNode `json:"folders"` // Pointers for proper nesting
	Assets      []AssetNode   `json:"assets"`
}

// AssetNode represents an asset in the tree (pointer fields only, no history)
type AssetNode struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	FolderID             *string   `json:"folder_id"`
	CurrentVersionNumber int       `json:"current_version_number"`
	SizeBytes            int64     `json:"size_bytes"`
	MimeType             string    `json:"mime_type,omitempty"`
	UpdatedAt            time.Time `json:"updated_at"`
}
