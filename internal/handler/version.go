package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"cutroom/internal/config"
	media "cutroom/internal/domain/models/media"
	mediaSvc "cutroom/internal/domain/services/media"
	"cutroom/internal/httputil"
)

// multipartMemory is how much of an upload is buffered in memory before spilling to disk
const multipartMemory = 32 << 20

// VersionHandler handles asset upload and version HTTP requests
type VersionHandler struct {
	versionService mediaSvc.VersionService
	logger         *slog.Logger
}

// NewVersionHandler creates a new version handler
func NewVersionHandler(versionService mediaSvc.VersionService, logger *slog.Logger) *VersionHandler {
	return &VersionHandler{
		versionService: versionService,
		logger:         logger,
	}
}

// rollbackRequest is the body of a rollback call
type rollbackRequest struct {
	VersionID string `json:"version_id"`
}

// UploadAsset creates an asset with its first version.
// POST /api/projects/{id}/assets
//
// Multipart fields:
//   - file: required, the original media
//   - thumbnail: optional, a pre-rendered thumbnail
//   - name: required, the asset display name
//   - folder_id: optional, empty = project root
//   - change_notes, mime_type, width, height, duration_seconds: optional
func (h *VersionHandler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	projectID, ok := requirePathValue(w, r, "id", "Project ID")
	if !ok {
		return
	}

	up, err := parseUpload(w, r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer up.Close()

	req := &mediaSvc.UploadAssetRequest{
		ActorID:        httputil.ActorID(r),
		ProjectID:      projectID,
		Name:           strings.TrimSpace(r.FormValue("name")),
		FolderID:       optionalFormValue(r, "folder_id"),
		ChangeNotes:    optionalFormValue(r, "change_notes"),
		VersionContent: up.content,
	}

	asset, err := h.versionService.UploadAsset(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, asset)
}

// CreateVersion uploads a new version of an asset and makes it current.
// POST /api/assets/{id}/versions
//
// Multipart fields as for UploadAsset, without name and folder_id.
func (h *VersionHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	assetID, ok := requirePathValue(w, r, "id", "Asset ID")
	if !ok {
		return
	}

	up, err := parseUpload(w, r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer up.Close()

	version, err := h.versionService.CreateVersion(r.Context(), &mediaSvc.CreateVersionRequest{
		ActorID:        httputil.ActorID(r),
		AssetID:        assetID,
		ChangeNotes:    optionalFormValue(r, "change_notes"),
		VersionContent: up.content,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, version)
}

// ListVersions returns an asset's version history
// GET /api/assets/{id}/versions
func (h *VersionHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	assetID, ok := requirePathValue(w, r, "id", "Asset ID")
	if !ok {
		return
	}

	history, err := h.versionService.ListVersions(r.Context(), httputil.ActorID(r), assetID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, history)
}

// Rollback points an asset at one of its existing versions
// POST /api/assets/{id}/rollback
func (h *VersionHandler) Rollback(w http.ResponseWriter, r *http.Request) {
	assetID, ok := requirePathValue(w, r, "id", "Asset ID")
	if !ok {
		return
	}

	var req rollbackRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.VersionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "version_id is required")
		return
	}

	asset, err := h.versionService.RollbackToVersion(r.Context(), httputil.ActorID(r), assetID, req.VersionID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, asset)
}

// DeleteVersion deletes a version that is not active
// DELETE /api/versions/{id}
func (h *VersionHandler) DeleteVersion(w http.ResponseWriter, r *http.Request) {
	versionID, ok := requirePathValue(w, r, "id", "Version ID")
	if !ok {
		return
	}

	result, err := h.versionService.DeleteVersion(r.Context(), httputil.ActorID(r), versionID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// CompareVersions describes how version b differs from version a
// GET /api/versions/compare?a={versionID}&b={versionID}
func (h *VersionHandler) CompareVersions(w http.ResponseWriter, r *http.Request) {
	a := r.URL.Query().Get("a")
	b := r.URL.Query().Get("b")
	if a == "" || b == "" {
		httputil.RespondError(w, http.StatusBadRequest, "query parameters a and b are required")
		return
	}

	cmp, err := h.versionService.CompareVersions(r.Context(), httputil.ActorID(r), a, b)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, cmp)
}

// upload holds the opened parts of a version upload
type upload struct {
	content mediaSvc.VersionContent
	files   []multipart.File
}

func (u *upload) Close() {
	for _, f := range u.files {
		f.Close()
	}
}

// parseUpload reads the multipart form shared by asset and version uploads
func parseUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	u := &upload{}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("file is required")
	}
	u.files = append(u.files, file)
	u.content.FileName = header.Filename
	u.content.Content = file

	if thumb, _, err := r.FormFile("thumbnail"); err == nil {
		u.files = append(u.files, thumb)
		u.content.Thumbnail = thumb
	}

	attrs, err := parseMediaAttributes(r)
	if err != nil {
		u.Close()
		return nil, err
	}
	u.content.Media = attrs

	return u, nil
}

func parseMediaAttributes(r *http.Request) (media.MediaAttributes, error) {
	attrs := media.MediaAttributes{MimeType: r.FormValue("mime_type")}

	for _, field := range []struct {
		name string
		dest **int
	}{
		{"width", &attrs.Width},
		{"height", &attrs.Height},
	} {
		raw := r.FormValue(field.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return attrs, fmt.Errorf("%s must be an integer", field.name)
		}
		*field.dest = &n
	}

	if raw := r.FormValue("duration_seconds"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return attrs, errors.New("duration_seconds must be a number")
		}
		attrs.DurationSeconds = &d
	}

	return attrs, nil
}

// optionalFormValue returns nil for an absent or blank form field
func optionalFormValue(r *http.Request, key string) *string {
	value := strings.TrimSpace(r.FormValue(key))
	if value == "" {
		return nil
	}
	return &value
}
