package handler

import (
	"log/slog"
	"net/http"

	media "cutroom/internal/domain/models/media"
	mediaSvc "cutroom/internal/domain/services/media"
	"cutroom/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService   mediaSvc.FolderService
	deletionService mediaSvc.DeletionService
	logger          *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService mediaSvc.FolderService, deletionService mediaSvc.DeletionService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService:   folderService,
		deletionService: deletionService,
		logger:          logger,
	}
}

// CreateFolder creates a new folder
// POST /api/projects/{id}/folders
// Returns 201 if created, 409 with existing folder if duplicate
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	projectID, ok := requirePathValue(w, r, "id", "Project ID")
	if !ok {
		return
	}

	var req mediaSvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ProjectID = projectID
	req.ActorID = httputil.ActorID(r)

	folder, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func(existingID string) (*media.FolderWithCounts, error) {
			return h.folderService.GetFolder(r.Context(), req.ActorID, existingID)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder retrieves a folder with its counts and computed path
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathValue(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	folder, err := h.folderService.GetFolder(r.Context(), httputil.ActorID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// MoveFolder renames and/or reparents a folder
// PATCH /api/folders/{id}
// A "parent_id": null moves the folder to the project root; omitting it keeps the parent.
func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathValue(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	var req mediaSvc.MoveFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.FolderID = id
	req.ActorID = httputil.ActorID(r)

	folder, err := h.folderService.MoveFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// GetPath returns the folder's ancestor chain, root first
// GET /api/folders/{id}/path
func (h *FolderHandler) GetPath(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathValue(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	path, err := h.folderService.GetPath(r.Context(), httputil.ActorID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, path)
}

// DeleteFolder deletes a folder with everything below it
// DELETE /api/folders/{id}
// Responds 200 with the deletion report; blob failures are reported in the body.
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathValue(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	report, err := h.deletionService.DeleteFolder(r.Context(), httputil.ActorID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, report)
}
