package media

import (
	"math/rand"
	"strings"
	"sync"
	"testing"

	"cutroom/internal/domain"
	media "cutroom/internal/domain/models/media"
	mediaSvc "cutroom/internal/domain/services/media"
	"cutroom/internal/httputil"
)

func TestCreateFolder_DuplicateNameAtRoot(t *testing.T) {
	h := newHarness(t)

	h.mkdir(projectP1, "Raw", nil)
	h.mkdir(projectP1, "Edited", nil)

	_, err := h.svc.Folders.CreateFolder(h.ctx, &mediaSvc.CreateFolderRequest{
		ActorID:   ownerID,
		ProjectID: projectP1,
		Name:      "Raw",
	})
	assertErrorIs(t, err, domain.ErrConflict)

	if got := h.store.FolderCount(); got != 2 {
		t.Errorf("folder count = %d, want 2", got)
	}
}

func TestCreateFolder_SameNameAllowedUnderDifferentParents(t *testing.T) {
	h := newHarness(t)

	a := h.mkdir(projectP1, "A", nil)
	b := h.mkdir(projectP1, "B", nil)
	h.mkdir(projectP1, "Selects", a)
	h.mkdir(projectP1, "Selects", b)
	h.mkdir(projectP2, "A", nil)

	if got := h.store.FolderCount(); got != 5 {
		t.Errorf("folder count = %d, want 5", got)
	}
}

func TestCreateFolder_ReturnsZeroCountsAndPath(t *testing.T) {
	h := newHarness(t)

	parent := h.mkdir(projectP1, "Dailies", nil)
	child := h.mkdir(projectP1, "Day 1", parent)

	if child.ChildCount != 0 || child.AssetCount != 0 {
		t.Errorf("counts = %d/%d, want 0/0", child.ChildCount, child.AssetCount)
	}
	if child.Path != "Dailies/Day 1" {
		t.Errorf("path = %q", child.Path)
	}
	if child.CreatedBy != ownerID {
		t.Errorf("created_by = %q", child.CreatedBy)
	}
}

func TestCreateFolder_Errors(t *testing.T) {
	h := newHarness(t)
	otherProjectFolder := h.mkdir(projectP2, "Elsewhere", nil)

	tests := []struct {
		name    string
		req     mediaSvc.CreateFolderRequest
		wantErr error
	}{
		{
			name:    "empty name",
			req:     mediaSvc.CreateFolderRequest{ActorID: ownerID, ProjectID: projectP1, Name: "   "},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "slash in name",
			req:     mediaSvc.CreateFolderRequest{ActorID: ownerID, ProjectID: projectP1, Name: "a/b"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "name too long",
			req:     mediaSvc.CreateFolderRequest{ActorID: ownerID, ProjectID: projectP1, Name: strings.Repeat("x", 300)},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "missing parent",
			req:     mediaSvc.CreateFolderRequest{ActorID: ownerID, ProjectID: projectP1, Name: "x", ParentID: strPtr("no-such-folder")},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "parent in another project",
			req:     mediaSvc.CreateFolderRequest{ActorID: ownerID, ProjectID: projectP1, Name: "x", ParentID: strPtr(otherProjectFolder.ID)},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "non-member",
			req:     mediaSvc.CreateFolderRequest{ActorID: strangerID, ProjectID: projectP1, Name: "x"},
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "editor has no access to other project",
			req:     mediaSvc.CreateFolderRequest{ActorID: editorID, ProjectID: projectP2, Name: "x"},
			wantErr: domain.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := h.store.FolderCount()
			req := tt.req
			_, err := h.svc.Folders.CreateFolder(h.ctx, &req)
			assertErrorIs(t, err, tt.wantErr)
			if after := h.store.FolderCount(); after != before {
				t.Errorf("folder count changed from %d to %d", before, after)
			}
		})
	}
}

func TestCreateFolder_AnyMemberMayCreate(t *testing.T) {
	h := newHarness(t)

	for _, actor := range []string{editorID, reviewerID, viewerID} {
		_, err := h.svc.Folders.CreateFolder(h.ctx, &mediaSvc.CreateFolderRequest{
			ActorID:   actor,
			ProjectID: projectP1,
			Name:      "by-" + actor,
		})
		if err != nil {
			t.Errorf("CreateFolder as %s: %v", actor, err)
		}
	}
}

func TestMoveFolder_CycleIsRejected(t *testing.T) {
	h := newHarness(t)

	a := h.mkdir(projectP1, "A", nil)
	b := h.mkdir(projectP1, "B", a)

	_, err := h.move(ownerID, a.ID, strPtr(b.ID))
	assertErrorIs(t, err, domain.ErrValidation)

	if got := h.folder(a.ID); got.ParentID != nil {
		t.Errorf("A.parent = %v, want nil", *got.ParentID)
	}
	if got := h.folder(b.ID); got.ParentID == nil || *got.ParentID != a.ID {
		t.Errorf("B.parent = %v, want %s", got.ParentID, a.ID)
	}
}

func TestMoveFolder_DeepCycleIsRejected(t *testing.T) {
	h := newHarness(t)

	a := h.mkdir(projectP1, "A", nil)
	b := h.mkdir(projectP1, "B", a)
	c := h.mkdir(projectP1, "C", b)
	d := h.mkdir(projectP1, "D", c)

	_, err := h.move(editorID, b.ID, strPtr(d.ID))
	assertErrorIs(t, err, domain.ErrValidation)

	if got := h.folder(b.ID); *got.ParentID != a.ID {
		t.Errorf("B moved despite rejection")
	}
}

func TestMoveFolder_SelfParent(t *testing.T) {
	h := newHarness(t)
	a := h.mkdir(projectP1, "A", nil)

	_, err := h.move(ownerID, a.ID, strPtr(a.ID))
	assertErrorIs(t, err, domain.ErrValidation)

	if got := h.folder(a.ID); got.ParentID != nil {
		t.Error("self-parent move changed the parent")
	}
}

func TestMoveFolder_Reparent(t *testing.T) {
	h := newHarness(t)

	a := h.mkdir(projectP1, "A", nil)
	b := h.mkdir(projectP1, "B", nil)
	c := h.mkdir(projectP1, "C", a)

	moved, err := h.move(editorID, c.ID, strPtr(b.ID))
	if err != nil {
		t.Fatalf("MoveFolder: %v", err)
	}
	if moved.ParentID == nil || *moved.ParentID != b.ID {
		t.Errorf("parent = %v, want %s", moved.ParentID, b.ID)
	}
	if moved.Path != "B/C" {
		t.Errorf("path = %q, want B/C", moved.Path)
	}
}

func TestMoveFolder_ToRoot(t *testing.T) {
	h := newHarness(t)

	a := h.mkdir(projectP1, "A", nil)
	b := h.mkdir(projectP1, "B", a)

	moved, err := h.move(ownerID, b.ID, nil)
	if err != nil {
		t.Fatalf("MoveFolder: %v", err)
	}
	if moved.ParentID != nil {
		t.Errorf("parent = %v, want root", *moved.ParentID)
	}

	// An empty parent ID also means root
	_, err = h.move(ownerID, b.ID, strPtr(""))
	if err != nil {
		t.Fatalf("MoveFolder with empty parent: %v", err)
	}
}

func TestMoveFolder_Rename(t *testing.T) {
	h := newHarness(t)

	parent := h.mkdir(projectP1, "Dailies", nil)
	x := h.mkdir(projectP1, "X", parent)
	h.mkdir(projectP1, "Y", parent)
	h.mkdir(projectP1, "Z", nil)

	tests := []struct {
		name    string
		newName string
		wantErr error
	}{
		{"collides with sibling", "Y", domain.ErrConflict},
		{"same name as itself", "X", nil},
		{"same name as folder at another level", "Z", nil},
		{"slash rejected", "X/1", domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Folders.MoveFolder(h.ctx, &mediaSvc.MoveFolderRequest{
				ActorID:  ownerID,
				FolderID: x.ID,
				Name:     strPtr(tt.newName),
			})
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("rename: %v", err)
				}
				if got := h.folder(x.ID); got.Name != tt.newName || *got.ParentID != parent.ID {
					t.Errorf("folder = %q under %v", got.Name, got.ParentID)
				}
				return
			}
			assertErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMoveFolder_NameCollisionAtTarget(t *testing.T) {
	h := newHarness(t)

	a := h.mkdir(projectP1, "A", nil)
	b := h.mkdir(projectP1, "B", nil)
	h.mkdir(projectP1, "Selects", a)
	selectsB := h.mkdir(projectP1, "Selects", b)

	_, err := h.move(ownerID, selectsB.ID, strPtr(a.ID))
	assertErrorIs(t, err, domain.ErrConflict)

	// Moving and renaming in one step avoids the collision
	moved, err := h.svc.Folders.MoveFolder(h.ctx, &mediaSvc.MoveFolderRequest{
		ActorID:  ownerID,
		FolderID: selectsB.ID,
		Name:     strPtr("Selects (B)"),
		ParentID: httputil.Set(a.ID),
	})
	if err != nil {
		t.Fatalf("move+rename: %v", err)
	}
	if moved.Path != "A/Selects (B)" {
		t.Errorf("path = %q", moved.Path)
	}
}

func TestMoveFolder_Errors(t *testing.T) {
	h := newHarness(t)

	a := h.mkdir(projectP1, "A", nil)
	other := h.mkdir(projectP2, "Other", nil)

	tests := []struct {
		name    string
		actor   string
		folder  string
		parent  *string
		wantErr error
	}{
		{"missing folder", ownerID, "no-such-folder", nil, domain.ErrNotFound},
		{"missing target parent", ownerID, a.ID, strPtr("no-such-folder"), domain.ErrNotFound},
		{"target in other project", ownerID, a.ID, strPtr(other.ID), domain.ErrNotFound},
		{"viewer", viewerID, a.ID, nil, domain.ErrForbidden},
		{"reviewer", reviewerID, a.ID, nil, domain.ErrForbidden},
		{"stranger", strangerID, a.ID, nil, domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.move(tt.actor, tt.folder, tt.parent)
			assertErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := h.svc.Folders.MoveFolder(h.ctx, &mediaSvc.MoveFolderRequest{ActorID: ownerID, FolderID: a.ID})
	assertErrorIs(t, err, domain.ErrValidation)
}

func TestMoveFolder_UpdatesDescription(t *testing.T) {
	h := newHarness(t)
	a := h.mkdir(projectP1, "A", nil)

	_, err := h.svc.Folders.MoveFolder(h.ctx, &mediaSvc.MoveFolderRequest{
		ActorID:     editorID,
		FolderID:    a.ID,
		Description: strPtr("camera originals"),
	})
	if err != nil {
		t.Fatalf("MoveFolder: %v", err)
	}
	got := h.folder(a.ID)
	if got.Description == nil || *got.Description != "camera originals" || got.Name != "A" || got.ParentID != nil {
		t.Errorf("folder = %+v", got)
	}
}

// isOwnAncestor follows parent pointers from id and reports whether it comes back to id
func isOwnAncestor(h *harness, id string) bool {
	seen := map[string]bool{}
	current := h.folder(id).ParentID
	for current != nil {
		if *current == id || seen[*current] {
			return true
		}
		seen[*current] = true
		current = h.folder(*current).ParentID
	}
	return false
}

func TestMoveFolder_RandomMovesKeepTreeAcyclic(t *testing.T) {
	h := newHarness(t)
	rng := rand.New(rand.NewSource(42))

	var ids []string
	for i := 0; i < 12; i++ {
		f := h.mkdir(projectP1, "f"+string(rune('a'+i)), nil)
		ids = append(ids, f.ID)
	}

	for i := 0; i < 300; i++ {
		folderID := ids[rng.Intn(len(ids))]
		var parent *string
		if rng.Intn(4) != 0 {
			parent = strPtr(ids[rng.Intn(len(ids))])
		}
		before := h.folder(folderID).ParentID

		_, err := h.move(ownerID, folderID, parent)
		if err != nil {
			if after := h.folder(folderID).ParentID; !sameParent(before, after) {
				t.Fatalf("rejected move changed parent of %s", folderID)
			}
		}
	}

	for _, id := range ids {
		if isOwnAncestor(h, id) {
			t.Fatalf("folder %s is its own ancestor", id)
		}
	}
}

func TestMoveFolder_ConcurrentCrossMovesCannotFormCycle(t *testing.T) {
	for i := 0; i < 20; i++ {
		h := newHarness(t)
		a := h.mkdir(projectP1, "A", nil)
		b := h.mkdir(projectP1, "B", nil)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = h.move(ownerID, a.ID, strPtr(b.ID))
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = h.move(ownerID, b.ID, strPtr(a.ID))
		}()
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				assertErrorIs(t, err, domain.ErrValidation)
			}
		}
		if succeeded != 1 {
			t.Fatalf("iteration %d: %d moves succeeded, want exactly 1", i, succeeded)
		}
		if isOwnAncestor(h, a.ID) || isOwnAncestor(h, b.ID) {
			t.Fatalf("iteration %d: cycle formed", i)
		}
	}
}

func TestGetPath(t *testing.T) {
	h := newHarness(t)

	a := h.mkdir(projectP1, "Show", nil)
	b := h.mkdir(projectP1, "Episode 1", a)
	c := h.mkdir(projectP1, "Scene 4", b)

	path, err := h.svc.Folders.GetPath(h.ctx, viewerID, c.ID)
	if err != nil {
		t.Fatalf("GetPath: %v", err)
	}
	if path.Path != "Show/Episode 1/Scene 4" {
		t.Errorf("path = %q", path.Path)
	}
	wantIDs := []string{a.ID, b.ID, c.ID}
	if len(path.Folders) != len(wantIDs) {
		t.Fatalf("got %d folders, want %d", len(path.Folders), len(wantIDs))
	}
	for i, id := range wantIDs {
		if path.Folders[i].ID != id {
			t.Errorf("folders[%d] = %s, want %s", i, path.Folders[i].ID, id)
		}
	}

	rootPath, err := h.svc.Folders.GetPath(h.ctx, ownerID, a.ID)
	if err != nil {
		t.Fatalf("GetPath root: %v", err)
	}
	if rootPath.Path != "Show" || len(rootPath.Folders) != 1 {
		t.Errorf("root path = %+v", rootPath)
	}
}

func TestGetPath_Errors(t *testing.T) {
	h := newHarness(t)
	a := h.mkdir(projectP1, "A", nil)

	// Parent pointer to a folder that no longer exists
	h.store.PutFolderRaw(media.Folder{ID: "orphan", ProjectID: projectP1, Name: "Orphan", ParentID: strPtr("gone")})
	// Two folders pointing at each other
	h.store.PutFolderRaw(media.Folder{ID: "loop-1", ProjectID: projectP1, Name: "L1", ParentID: strPtr("loop-2")})
	h.store.PutFolderRaw(media.Folder{ID: "loop-2", ProjectID: projectP1, Name: "L2", ParentID: strPtr("loop-1")})

	tests := []struct {
		name    string
		actor   string
		folder  string
		wantErr error
	}{
		{"missing folder", ownerID, "nope", domain.ErrNotFound},
		{"dangling ancestor", ownerID, "orphan", domain.ErrNotFound},
		{"corrupt loop", ownerID, "loop-1", domain.ErrIntegrity},
		{"stranger", strangerID, a.ID, domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Folders.GetPath(h.ctx, tt.actor, tt.folder)
			assertErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMoveFolder_CorruptLoopAboveTargetIsIntegrityError(t *testing.T) {
	h := newHarness(t)
	a := h.mkdir(projectP1, "A", nil)
	h.store.PutFolderRaw(media.Folder{ID: "loop-1", ProjectID: projectP1, Name: "L1", ParentID: strPtr("loop-2")})
	h.store.PutFolderRaw(media.Folder{ID: "loop-2", ProjectID: projectP1, Name: "L2", ParentID: strPtr("loop-1")})

	_, err := h.move(ownerID, a.ID, strPtr("loop-1"))
	assertErrorIs(t, err, domain.ErrIntegrity)
	if got := h.folder(a.ID); got.ParentID != nil {
		t.Error("move into corrupt chain changed the parent")
	}
}

func TestGetTree(t *testing.T) {
	h := newHarness(t)

	raw := h.mkdir(projectP1, "Raw", nil)
	edited := h.mkdir(projectP1, "Edited", nil)
	day2 := h.mkdir(projectP1, "Day 2", raw)
	h.mkdir(projectP1, "Day 1", raw)
	h.upload(projectP1, day2, "clip-b", "bbb")
	h.upload(projectP1, day2, "clip-a", "aaa")
	h.upload(projectP1, edited, "cut-v1", "cut")
	h.upload(projectP1, nil, "loose", "loose")
	h.upload(projectP2, nil, "elsewhere", "x")

	h.store.PutFolderRaw(media.Folder{ID: "dangling", ProjectID: projectP1, Name: "Dangling", ParentID: strPtr("gone")})

	tree, err := h.svc.Folders.GetTree(h.ctx, viewerID, projectP1)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}

	if len(tree.Folders) != 2 || tree.Folders[0].Name != "Edited" || tree.Folders[1].Name != "Raw" {
		t.Fatalf("root folders = %v", folderNames(tree.Folders))
	}
	if len(tree.Assets) != 1 || tree.Assets[0].Name != "loose" {
		t.Errorf("root assets = %+v", tree.Assets)
	}

	rawNode := tree.Folders[1]
	if got := folderNames(rawNode.Folders); strings.Join(got, ",") != "Day 1,Day 2" {
		t.Errorf("Raw children = %v", got)
	}
	if rawNode.ChildCount != 2 || rawNode.AssetCount != 0 {
		t.Errorf("Raw counts = %d/%d", rawNode.ChildCount, rawNode.AssetCount)
	}

	day2Node := rawNode.Folders[1]
	if day2Node.AssetCount != 2 || day2Node.Assets[0].Name != "clip-a" {
		t.Errorf("Day 2 assets = %+v", day2Node.Assets)
	}
	if day2Node.Assets[0].CurrentVersionNumber != 1 {
		t.Errorf("asset version = %d", day2Node.Assets[0].CurrentVersionNumber)
	}

	var walk func(nodes []*media.FolderNode)
	walk = func(nodes []*media.FolderNode) {
		for _, n := range nodes {
			if n.ID == "dangling" {
				t.Error("dangling folder present in tree")
			}
			walk(n.Folders)
		}
	}
	walk(tree.Folders)

	_, err = h.svc.Folders.GetTree(h.ctx, strangerID, projectP1)
	assertErrorIs(t, err, domain.ErrForbidden)
}

func TestGetFolder(t *testing.T) {
	h := newHarness(t)

	a := h.mkdir(projectP1, "A", nil)
	h.mkdir(projectP1, "B", a)
	h.mkdir(projectP1, "C", a)
	h.upload(projectP1, a, "clip", "x")

	got, err := h.svc.Folders.GetFolder(h.ctx, reviewerID, a.ID)
	if err != nil {
		t.Fatalf("GetFolder: %v", err)
	}
	if got.ChildCount != 2 || got.AssetCount != 1 || got.Path != "A" {
		t.Errorf("folder = %+v", got)
	}

	_, err = h.svc.Folders.GetFolder(h.ctx, strangerID, a.ID)
	assertErrorIs(t, err, domain.ErrForbidden)
}

func folderNames(nodes []*media.FolderNode) []string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}
	return names
}

func TestCreateFolder_DepthCap(t *testing.T) {
	h := newHarnessWithDepth(t, 4)
	levels := h.chain("L", 4, nil)
	deepest := levels[3]

	_, err := h.svc.Folders.CreateFolder(h.ctx, &mediaSvc.CreateFolderRequest{
		ActorID:   ownerID,
		ProjectID: projectP1,
		ParentID:  strPtr(deepest.ID),
		Name:      "too deep",
	})
	assertErrorIs(t, err, domain.ErrValidation)
	if got := h.store.FolderCount(); got != 4 {
		t.Errorf("folder count = %d, want 4", got)
	}

	// A sibling at the last allowed level is still fine
	h.mkdir(projectP1, "L-4b", levels[2])
}

func TestMoveFolder_DepthCap(t *testing.T) {
	h := newHarnessWithDepth(t, 4)
	levels := h.chain("L", 3, nil) // depth 3 at the bottom
	moved := h.chain("M", 2, nil)  // subtree of height 2

	tests := []struct {
		name    string
		folder  string
		parent  string
		wantErr error
	}{
		{"subtree would reach depth 5", moved[0].ID, levels[2].ID, domain.ErrValidation},
		{"leaf fits at depth 4", moved[1].ID, levels[2].ID, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := h.folder(tt.folder)
			_, err := h.move(ownerID, tt.folder, strPtr(tt.parent))
			if tt.wantErr != nil {
				assertErrorIs(t, err, tt.wantErr)
				if got := h.folder(tt.folder); !sameParent(got.ParentID, before.ParentID) {
					t.Error("rejected move changed the parent")
				}
				return
			}
			if err != nil {
				t.Fatalf("MoveFolder: %v", err)
			}
			if got := h.folder(tt.folder); got.ParentID == nil || *got.ParentID != tt.parent {
				t.Errorf("parent = %v, want %s", got.ParentID, tt.parent)
			}
		})
	}

	// Renaming in place never re-checks depth
	name := "renamed"
	if _, err := h.svc.Folders.MoveFolder(h.ctx, &mediaSvc.MoveFolderRequest{
		ActorID:  ownerID,
		FolderID: moved[1].ID,
		Name:     &name,
	}); err != nil {
		t.Fatalf("rename at the cap: %v", err)
	}
}

func TestDepthCap_FullDepthTreeStaysUsable(t *testing.T) {
	h := newHarnessWithDepth(t, 4)
	levels := h.chain("L", 4, nil)
	h.upload(projectP1, levels[3], "deep take", "abc")

	path, err := h.svc.Folders.GetPath(h.ctx, ownerID, levels[3].ID)
	if err != nil {
		t.Fatalf("GetPath: %v", err)
	}
	if path.Path != "L-1/L-2/L-3/L-4" {
		t.Errorf("path = %q", path.Path)
	}

	report, err := h.svc.Deletion.DeleteFolder(h.ctx, ownerID, levels[0].ID)
	if err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	if report.DeletedChildFolderCount != 3 || report.DeletedAssetCount != 1 {
		t.Errorf("report = %+v", report)
	}
	if got := h.store.FolderCount(); got != 0 {
		t.Errorf("folders left = %d, want 0", got)
	}
}
