package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"cutroom/internal/config"
	"cutroom/internal/domain/models"
	media "cutroom/internal/domain/models/media"
	mediaSvc "cutroom/internal/domain/services/media"
	"cutroom/internal/httputil"
	"cutroom/internal/service/auth"
	"cutroom/internal/testsupport"
)

const (
	projectP1 = "project-1"
	projectP2 = "project-2"

	ownerID    = "user-owner"
	editorID   = "user-editor"
	reviewerID = "user-reviewer"
	viewerID   = "user-viewer"
	strangerID = "user-stranger"
)

type harness struct {
	t     *testing.T
	ctx   context.Context
	store *testsupport.Store
	blobs *testsupport.FlakyBlobStore
	locks *testsupport.KeyedLocks
	svc   *Services
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithDepth(t, 64)
}

// newHarnessWithDepth builds a harness whose folder trees are capped at maxDepth levels
func newHarnessWithDepth(t *testing.T, maxDepth int) *harness {
	t.Helper()

	store := testsupport.NewStore()
	store.AddProject(projectP1, ownerID)
	store.AddProject(projectP2, ownerID)
	store.AddCollaborator(projectP1, editorID, models.RoleEditor)
	store.AddCollaborator(projectP1, reviewerID, models.RoleReviewer)
	store.AddCollaborator(projectP1, viewerID, models.RoleViewer)

	logger := testsupport.DiscardLogger()
	policy, err := auth.DefaultPolicy()
	if err != nil {
		t.Fatalf("DefaultPolicy: %v", err)
	}
	authorizer := auth.NewPolicyAuthorizer(policy, auth.NewRoleGate(store.Collaborators(), logger))

	blobs := testsupport.NewFlakyBlobStore()
	locks := testsupport.NewKeyedLocks()
	cfg := &config.Config{
		BlobDeleteConcurrency: 4,
		BlobOpTimeout:         time.Second,
		MaxFolderDepth:        maxDepth,
	}

	svc := SetupServices(
		Repositories{
			Folders:  store.Folders(),
			Assets:   store.Assets(),
			Versions: store.Versions(),
		},
		blobs,
		testsupport.TxManager{},
		locks,
		authorizer,
		cfg,
		logger,
	)

	return &harness{
		t:     t,
		ctx:   context.Background(),
		store: store,
		blobs: blobs,
		locks: locks,
		svc:   svc,
	}
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

// mkdir creates a folder as the project owner and fails the test on error
func (h *harness) mkdir(projectID, name string, parent *media.FolderWithCounts) *media.FolderWithCounts {
	h.t.Helper()

	req := &mediaSvc.CreateFolderRequest{
		ActorID:   ownerID,
		ProjectID: projectID,
		Name:      name,
	}
	if parent != nil {
		req.ParentID = strPtr(parent.ID)
	}

	folder, err := h.svc.Folders.CreateFolder(h.ctx, req)
	if err != nil {
		h.t.Fatalf("CreateFolder(%q): %v", name, err)
	}
	return folder
}

// chain creates nested folders level-1 > level-2 > ... and returns them outermost first
func (h *harness) chain(prefix string, levels int, parent *media.FolderWithCounts) []*media.FolderWithCounts {
	h.t.Helper()
	out := make([]*media.FolderWithCounts, 0, levels)
	for i := 1; i <= levels; i++ {
		parent = h.mkdir(projectP1, fmt.Sprintf("%s-%d", prefix, i), parent)
		out = append(out, parent)
	}
	return out
}

// move reparents folderID; a nil parent moves to the root
func (h *harness) move(actorID, folderID string, parentID *string) (*media.Folder, error) {
	return h.svc.Folders.MoveFolder(h.ctx, &mediaSvc.MoveFolderRequest{
		ActorID:  actorID,
		FolderID: folderID,
		ParentID: httputil.Optional[string]{Present: true, Value: parentID},
	})
}

// folder reads a folder straight from the store
func (h *harness) folder(id string) media.Folder {
	h.t.Helper()
	f, err := h.store.Folders().GetByIDOnly(h.ctx, id)
	if err != nil {
		h.t.Fatalf("folder %s: %v", id, err)
	}
	return *f
}

// upload creates an asset with one version as the project owner
func (h *harness) upload(projectID string, folder *media.FolderWithCounts, name, content string) *media.Asset {
	h.t.Helper()

	req := &mediaSvc.UploadAssetRequest{
		ActorID:   ownerID,
		ProjectID: projectID,
		Name:      name,
		VersionContent: mediaSvc.VersionContent{
			FileName:  name + ".mov",
			Content:   strings.NewReader(content),
			Thumbnail: strings.NewReader("thumb:" + content),
			Media:     media.MediaAttributes{MimeType: "video/quicktime"},
		},
	}
	if folder != nil {
		req.FolderID = strPtr(folder.ID)
	}

	asset, err := h.svc.Versions.UploadAsset(h.ctx, req)
	if err != nil {
		h.t.Fatalf("UploadAsset(%q): %v", name, err)
	}
	return asset
}

// newVersion appends a version as the project owner
func (h *harness) newVersion(assetID, content string, attrs media.MediaAttributes) *media.Version {
	h.t.Helper()

	v, err := h.svc.Versions.CreateVersion(h.ctx, &mediaSvc.CreateVersionRequest{
		ActorID: ownerID,
		AssetID: assetID,
		VersionContent: mediaSvc.VersionContent{
			FileName: "take.mov",
			Content:  strings.NewReader(content),
			Media:    attrs,
		},
	})
	if err != nil {
		h.t.Fatalf("CreateVersion: %v", err)
	}
	return v
}

// asset reads an asset straight from the store
func (h *harness) asset(id string) media.Asset {
	h.t.Helper()
	a, err := h.store.Assets().GetByID(h.ctx, id)
	if err != nil {
		h.t.Fatalf("asset %s: %v", id, err)
	}
	return *a
}

func (h *harness) versions(assetID string) []media.Version {
	h.t.Helper()
	vs, err := h.store.Versions().ListByAsset(h.ctx, assetID)
	if err != nil {
		h.t.Fatalf("versions of %s: %v", assetID, err)
	}
	return vs
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("err = %v, want %v", err, target)
	}
}
