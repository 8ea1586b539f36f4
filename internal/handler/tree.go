package handler

import (
	"log/slog"
	"net/http"

	mediaSvc "cutroom/internal/domain/services/media"
	"cutroom/internal/httputil"
)

// TreeHandler handles HTTP requests for tree operations
type TreeHandler struct {
	folderService mediaSvc.FolderService
	logger        *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(folderService mediaSvc.FolderService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// GetTree returns the nested folder/asset tree for a project
// GET /api/projects/{id}/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Project ID is required")
		return
	}

	// Get userID from context (set by auth middleware)
	userID := httputil.ActorID(r)

	tree, err := h.folderService.GetTree(r.Context(), userID, projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}
