package media

import (
	"strings"
	"testing"

	"cutroom/internal/domain"
	media "cutroom/internal/domain/models/media"
	"cutroom/internal/testsupport"
)

// assetKeys returns every blob key an asset and its versions reference
func assetKeys(h *harness, assetID string) []string {
	h.t.Helper()
	var keys []string
	for _, v := range h.versions(assetID) {
		keys = append(keys, v.BlobKey)
		if v.ThumbnailBlobKey != nil {
			keys = append(keys, *v.ThumbnailBlobKey)
		}
	}
	return keys
}

func TestDeleteFolder_CascadesSubtree(t *testing.T) {
	h := newHarness(t)

	x := h.mkdir(projectP1, "X", nil)
	y := h.mkdir(projectP1, "Y", x)
	z := h.mkdir(projectP1, "Z", y)
	keep := h.mkdir(projectP1, "Keep", nil)

	y1 := h.upload(projectP1, y, "y1", "y1")
	y2 := h.upload(projectP1, y, "y2", "y2")
	z1 := h.upload(projectP1, z, "z1", "z1")
	kept := h.upload(projectP1, keep, "kept", "kept")
	h.newVersion(z1.ID, "z1 take 2", media.MediaAttributes{})

	var subtreeKeys []string
	for _, id := range []string{y1.ID, y2.ID, z1.ID} {
		subtreeKeys = append(subtreeKeys, assetKeys(h, id)...)
	}
	keptKeys := assetKeys(h, kept.ID)

	report, err := h.svc.Deletion.DeleteFolder(h.ctx, editorID, x.ID)
	if err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}

	if report.DeletedFolderID != x.ID {
		t.Errorf("deleted folder = %s", report.DeletedFolderID)
	}
	if report.DeletedChildFolderCount != 2 {
		t.Errorf("child folder count = %d, want 2", report.DeletedChildFolderCount)
	}
	if report.DeletedAssetCount != 3 {
		t.Errorf("asset count = %d, want 3", report.DeletedAssetCount)
	}
	// 3 uploads with original+thumbnail, plus one extra version without thumbnail
	if report.DeletedBlobCount != 7 || report.FailedBlobCount != 0 {
		t.Errorf("blobs deleted/failed = %d/%d, want 7/0", report.DeletedBlobCount, report.FailedBlobCount)
	}
	if len(report.BlobOutcomes) != 7 {
		t.Errorf("outcomes = %d, want 7", len(report.BlobOutcomes))
	}

	for _, id := range []string{x.ID, y.ID, z.ID} {
		if _, err := h.store.Folders().GetByIDOnly(h.ctx, id); err == nil {
			t.Errorf("folder %s still present", id)
		}
	}
	for _, id := range []string{y1.ID, y2.ID, z1.ID} {
		if _, err := h.store.Assets().GetByID(h.ctx, id); err == nil {
			t.Errorf("asset %s still present", id)
		}
		if vs := h.versions(id); len(vs) != 0 {
			t.Errorf("asset %s still has %d versions", id, len(vs))
		}
	}
	for _, key := range subtreeKeys {
		if h.blobs.MustExist(key) {
			t.Errorf("blob %s not purged", key)
		}
	}

	if h.store.FolderCount() != 1 || h.store.AssetCount() != 1 {
		t.Errorf("remaining folders/assets = %d/%d, want 1/1", h.store.FolderCount(), h.store.AssetCount())
	}
	for _, key := range keptKeys {
		if !h.blobs.MustExist(key) {
			t.Errorf("unrelated blob %s was deleted", key)
		}
	}
}

func TestDeleteFolder_BlobFailuresAreReportedNotReturned(t *testing.T) {
	h := newHarness(t)

	x := h.mkdir(projectP1, "X", nil)
	a := h.upload(projectP1, x, "a", "aaa")
	b := h.upload(projectP1, x, "b", "bbb")

	h.blobs.FailDelete(a.CurrentBlobKey)
	h.blobs.FailDelete(*b.CurrentThumbnailKey)

	report, err := h.svc.Deletion.DeleteFolder(h.ctx, ownerID, x.ID)
	if err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}

	if report.DeletedAssetCount != 2 {
		t.Errorf("asset count = %d, want 2", report.DeletedAssetCount)
	}
	if report.DeletedBlobCount != 2 || report.FailedBlobCount != 2 {
		t.Errorf("blobs deleted/failed = %d/%d, want 2/2", report.DeletedBlobCount, report.FailedBlobCount)
	}

	failed := map[string]media.BlobOutcome{}
	for _, o := range report.BlobOutcomes {
		if !o.Deleted {
			failed[o.Key] = o
		}
	}
	if o, ok := failed[a.CurrentBlobKey]; !ok || o.Kind != media.BlobKindOriginal || o.AssetID != a.ID {
		t.Errorf("missing failure outcome for original of a: %+v", o)
	}
	if o, ok := failed[*b.CurrentThumbnailKey]; !ok || o.Kind != media.BlobKindThumbnail || !strings.Contains(o.Error, testsupport.ErrInjected.Error()) {
		t.Errorf("missing failure outcome for thumbnail of b: %+v", o)
	}

	// Metadata is gone regardless; the failed blobs are left behind
	if h.store.FolderCount() != 0 || h.store.AssetCount() != 0 {
		t.Errorf("metadata left behind: %d folders, %d assets", h.store.FolderCount(), h.store.AssetCount())
	}
	if !h.blobs.MustExist(a.CurrentBlobKey) {
		t.Error("failed blob should still exist")
	}
}

func TestDeleteFolder_EmptyFolder(t *testing.T) {
	h := newHarness(t)
	x := h.mkdir(projectP1, "X", nil)

	report, err := h.svc.Deletion.DeleteFolder(h.ctx, ownerID, x.ID)
	if err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	if report.DeletedChildFolderCount != 0 || report.DeletedAssetCount != 0 || report.DeletedBlobCount != 0 {
		t.Errorf("report = %+v", report)
	}
	if report.BlobOutcomes == nil {
		t.Error("BlobOutcomes should be an empty slice, not nil")
	}
}

func TestDeleteFolder_OnlyTheSubtree(t *testing.T) {
	h := newHarness(t)

	root := h.mkdir(projectP1, "Root", nil)
	left := h.mkdir(projectP1, "Left", root)
	right := h.mkdir(projectP1, "Right", root)
	h.mkdir(projectP1, "Deep", left)
	h.upload(projectP1, right, "r", "r")
	h.upload(projectP1, root, "top", "top")

	report, err := h.svc.Deletion.DeleteFolder(h.ctx, ownerID, left.ID)
	if err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	if report.DeletedChildFolderCount != 1 || report.DeletedAssetCount != 0 {
		t.Errorf("report = %+v", report)
	}
	if h.store.FolderCount() != 2 || h.store.AssetCount() != 2 {
		t.Errorf("remaining folders/assets = %d/%d, want 2/2", h.store.FolderCount(), h.store.AssetCount())
	}
}

func TestDeleteFolder_Errors(t *testing.T) {
	h := newHarness(t)
	x := h.mkdir(projectP1, "X", nil)
	h.upload(projectP1, x, "a", "a")

	tests := []struct {
		name    string
		actor   string
		folder  string
		wantErr error
	}{
		{"missing folder", ownerID, "nope", domain.ErrNotFound},
		{"viewer", viewerID, x.ID, domain.ErrForbidden},
		{"reviewer", reviewerID, x.ID, domain.ErrForbidden},
		{"stranger", strangerID, x.ID, domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Deletion.DeleteFolder(h.ctx, tt.actor, tt.folder)
			assertErrorIs(t, err, tt.wantErr)
		})
	}

	if h.store.FolderCount() != 1 || h.store.AssetCount() != 1 {
		t.Error("rejected deletes removed data")
	}
	if len(h.blobs.Deleted()) != 0 {
		t.Errorf("rejected deletes purged blobs: %v", h.blobs.Deleted())
	}
}
