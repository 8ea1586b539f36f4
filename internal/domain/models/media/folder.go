package media

import (
	"time"
)

type Folder struct {
	ID          string    `json:"id" db:"id"`
	ProjectID   string    `json:"project_id" db:"project_id"`
	ParentID    *string   `json:"parent_id" db:"parent_id"` // NULL = project root
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	Path        string    `json:"path,omitempty"` // Computed display path, not stored in DB
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the folder sits at the project root
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// FolderWithCounts is a folder plus the number of its direct child folders and assets
type FolderWithCounts struct {
	Folder
	ChildCount int `json:"child_count"`
	AssetCount int `json:"asset_count"`
}

// FolderPath is the ancestor chain of a folder, root first, ending with the folder itself
type FolderPath struct {
	Folders []Folder `json:"folders"`
	Path    string   `json:"path"`
}
