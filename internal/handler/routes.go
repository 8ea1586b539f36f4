package handler

import (
	"log/slog"
	"net/http"

	mediaSvc "cutroom/internal/domain/services/media"
)

// Routes are the handlers mounted by the API server
type Routes struct {
	Health   *HealthHandler
	Folders  *FolderHandler
	Tree     *TreeHandler
	Versions *VersionHandler
}

// NewRoutes builds every handler over the media services
func NewRoutes(
	folders mediaSvc.FolderService,
	deletion mediaSvc.DeletionService,
	versions mediaSvc.VersionService,
	db Pinger,
	logger *slog.Logger,
) *Routes {
	return &Routes{
		Health:   NewHealthHandler(db),
		Folders:  NewFolderHandler(folders, deletion, logger),
		Tree:     NewTreeHandler(folders, logger),
		Versions: NewVersionHandler(versions, logger),
	}
}

// Register mounts the API on mux (Go 1.22+ method patterns)
func (rt *Routes) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", rt.Health.HealthCheck)

	// Project-scoped
	mux.HandleFunc("GET /api/projects/{id}/tree", rt.Tree.GetTree)
	mux.HandleFunc("POST /api/projects/{id}/folders", rt.Folders.CreateFolder)
	mux.HandleFunc("POST /api/projects/{id}/assets", rt.Versions.UploadAsset)

	// Folder routes
	mux.HandleFunc("GET /api/folders/{id}", rt.Folders.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", rt.Folders.MoveFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", rt.Folders.DeleteFolder)
	mux.HandleFunc("GET /api/folders/{id}/path", rt.Folders.GetPath)

	// Asset and version routes
	mux.HandleFunc("GET /api/assets/{id}/versions", rt.Versions.ListVersions)
	mux.HandleFunc("POST /api/assets/{id}/versions", rt.Versions.CreateVersion)
	mux.HandleFunc("POST /api/assets/{id}/rollback", rt.Versions.Rollback)
	mux.HandleFunc("GET /api/versions/compare", rt.Versions.CompareVersions) // Must stay distinct from {id}
	mux.HandleFunc("DELETE /api/versions/{id}", rt.Versions.DeleteVersion)
}
