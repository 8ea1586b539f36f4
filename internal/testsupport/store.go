// Package testsupport provides in-memory implementations of the repository,
// transaction and lock contracts for service tests.
package testsupport

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"cutroom/internal/domain"
	"cutroom/internal/domain/models"
	media "cutroom/internal/domain/models/media"
	mediaRepo "cutroom/internal/domain/repositories/media"
)

// Store is an in-memory relational store with the same referential behavior as the schema:
// deleting a folder removes its subtree and the assets filed there, deleting an asset
// removes its versions.
type Store struct {
	mu            sync.RWMutex
	folders       map[string]media.Folder
	assets        map[string]media.Asset
	versions      map[string]media.Version
	projectOwners map[string]string
	collaborators map[string]models.Role // key: projectID/userID
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		folders:       make(map[string]media.Folder),
		assets:        make(map[string]media.Asset),
		versions:      make(map[string]media.Version),
		projectOwners: make(map[string]string),
		collaborators: make(map[string]models.Role),
	}
}

// AddProject registers a project and its owner
func (s *Store) AddProject(projectID, ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projectOwners[projectID] = ownerID
}

// AddCollaborator grants role on projectID to userID
func (s *Store) AddCollaborator(projectID, userID string, role models.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collaborators[projectID+"/"+userID] = role
}

// PutFolderRaw stores a folder as-is, bypassing every check.
// Used to build corrupt states such as dangling parents or cycles.
func (s *Store) PutFolderRaw(f media.Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders[f.ID] = f
}

// FolderCount returns the number of stored folders
func (s *Store) FolderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.folders)
}

// AssetCount returns the number of stored assets
func (s *Store) AssetCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assets)
}

// VersionCount returns the number of stored versions
func (s *Store) VersionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.versions)
}

// Folders returns the folder repository view
func (s *Store) Folders() mediaRepo.FolderRepository { return &folderRepo{s} }

// Assets returns the asset repository view
func (s *Store) Assets() mediaRepo.AssetRepository { return &assetRepo{s} }

// Versions returns the version repository view
func (s *Store) Versions() mediaRepo.VersionRepository { return &versionRepo{s} }

// Collaborators returns the collaborator repository view
func (s *Store) Collaborators() mediaRepo.CollaboratorRepository { return &collaboratorRepo{s} }

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// nameTakenLocked reports whether another folder already uses name at the given level
func (s *Store) nameTakenLocked(f *media.Folder) bool {
	for _, other := range s.folders {
		if other.ID != f.ID && other.ProjectID == f.ProjectID && other.Name == f.Name && sameParent(other.ParentID, f.ParentID) {
			return true
		}
	}
	return false
}

func conflict(name string) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
		ResourceType: "folder",
	}
}

// deleteFolderLocked removes a folder, its descendants, their assets and those assets' versions
func (s *Store) deleteFolderLocked(id string) {
	queue := []string{id}
	seen := map[string]bool{}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if seen[current] {
			continue
		}
		seen[current] = true

		for childID, child := range s.folders {
			if child.ParentID != nil && *child.ParentID == current {
				queue = append(queue, childID)
			}
		}
		for assetID, a := range s.assets {
			if a.FolderID != nil && *a.FolderID == current {
				s.deleteAssetLocked(assetID)
			}
		}
		delete(s.folders, current)
	}
}

func (s *Store) deleteAssetLocked(id string) {
	for vid, v := range s.versions {
		if v.AssetID == id {
			delete(s.versions, vid)
		}
	}
	delete(s.assets, id)
}

type folderRepo struct{ s *Store }

func (r *folderRepo) Create(_ context.Context, f *media.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if f.ParentID != nil {
		if _, ok := r.s.folders[*f.ParentID]; !ok {
			return fmt.Errorf("parent folder or project: %w", domain.ErrNotFound)
		}
	}
	if r.s.nameTakenLocked(f) {
		return conflict(f.Name)
	}

	f.ID = uuid.NewString()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = f.CreatedAt
	}
	stored := *f
	stored.Path = ""
	r.s.folders[f.ID] = stored
	return nil
}

func (r *folderRepo) GetByID(_ context.Context, id, projectID string) (*media.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.folders[id]
	if !ok || f.ProjectID != projectID {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return &f, nil
}

func (r *folderRepo) GetByIDOnly(_ context.Context, id string) (*media.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return &f, nil
}

func (r *folderRepo) FindByNameAndParent(_ context.Context, projectID string, parentID *string, name string) (*media.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, f := range r.s.folders {
		if f.ProjectID == projectID && f.Name == name && sameParent(f.ParentID, parentID) {
			found := f
			return &found, nil
		}
	}
	return nil, nil
}

func (r *folderRepo) Update(_ context.Context, f *media.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.folders[f.ID]
	if !ok || existing.ProjectID != f.ProjectID {
		return fmt.Errorf("folder %s: %w", f.ID, domain.ErrNotFound)
	}
	if r.s.nameTakenLocked(f) {
		return conflict(f.Name)
	}

	existing.ParentID = f.ParentID
	existing.Name = f.Name
	existing.Description = f.Description
	existing.UpdatedAt = f.UpdatedAt
	r.s.folders[f.ID] = existing
	return nil
}

func (r *folderRepo) Delete(_ context.Context, id, projectID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.folders[id]
	if !ok || f.ProjectID != projectID {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	r.s.deleteFolderLocked(id)
	return nil
}

func (r *folderRepo) ListChildren(_ context.Context, parentID *string, projectID string) ([]media.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	children := []media.Folder{}
	for _, f := range r.s.folders {
		if f.ProjectID == projectID && sameParent(f.ParentID, parentID) {
			children = append(children, f)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children, nil
}

func (r *folderRepo) CountChildren(_ context.Context, id string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, f := range r.s.folders {
		if f.ParentID != nil && *f.ParentID == id {
			count++
		}
	}
	return count, nil
}

func (r *folderRepo) GetAllByProject(_ context.Context, projectID string) ([]media.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	folders := []media.Folder{}
	for _, f := range r.s.folders {
		if f.ProjectID == projectID {
			folders = append(folders, f)
		}
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].CreatedAt.Before(folders[j].CreatedAt) })
	return folders, nil
}

type assetRepo struct{ s *Store }

func (r *assetRepo) Create(_ context.Context, a *media.Asset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if a.ID == "" {
		return fmt.Errorf("asset id must be set by caller")
	}
	if a.FolderID != nil {
		if _, ok := r.s.folders[*a.FolderID]; !ok {
			return fmt.Errorf("asset folder or project: %w", domain.ErrNotFound)
		}
	}
	r.s.assets[a.ID] = *a
	return nil
}

func (r *assetRepo) GetByID(_ context.Context, id string) (*media.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.assets[id]
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}
	return &a, nil
}

func (r *assetRepo) UpdateCurrent(_ context.Context, a *media.Asset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.assets[a.ID]
	if !ok {
		return fmt.Errorf("asset %s: %w", a.ID, domain.ErrNotFound)
	}
	existing.CurrentVersionID = a.CurrentVersionID
	existing.CurrentVersionNumber = a.CurrentVersionNumber
	existing.CurrentBlobKey = a.CurrentBlobKey
	existing.CurrentThumbnailKey = a.CurrentThumbnailKey
	existing.SizeBytes = a.SizeBytes
	existing.MediaAttributes = a.MediaAttributes
	existing.UpdatedAt = a.UpdatedAt
	existing.LastVersionNumber = max(existing.LastVersionNumber, a.LastVersionNumber)
	r.s.assets[a.ID] = existing
	return nil
}

func (r *assetRepo) ListByFolders(_ context.Context, projectID string, folderIDs []string) ([]media.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[string]bool, len(folderIDs))
	for _, id := range folderIDs {
		wanted[id] = true
	}

	assets := []media.Asset{}
	for _, a := range r.s.assets {
		if a.ProjectID == projectID && a.FolderID != nil && wanted[*a.FolderID] {
			assets = append(assets, a)
		}
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })
	return assets, nil
}

func (r *assetRepo) GetAllByProject(_ context.Context, projectID string) ([]media.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	assets := []media.Asset{}
	for _, a := range r.s.assets {
		if a.ProjectID == projectID {
			assets = append(assets, a)
		}
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets, nil
}

func (r *assetRepo) CountByFolder(_ context.Context, folderID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, a := range r.s.assets {
		if a.FolderID != nil && *a.FolderID == folderID {
			count++
		}
	}
	return count, nil
}

func (r *assetRepo) DeleteByIDs(_ context.Context, projectID string, ids []string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if a, ok := r.s.assets[id]; ok && a.ProjectID == projectID {
			r.s.deleteAssetLocked(id)
			deleted++
		}
	}
	return deleted, nil
}

type versionRepo struct{ s *Store }

func (r *versionRepo) Create(_ context.Context, v *media.Version) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.assets[v.AssetID]; !ok {
		return fmt.Errorf("asset %s: %w", v.AssetID, domain.ErrNotFound)
	}
	for _, other := range r.s.versions {
		if other.AssetID == v.AssetID && other.VersionNumber == v.VersionNumber {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("version %d of asset %s already exists", v.VersionNumber, v.AssetID),
				ResourceType: "version",
				ResourceID:   other.ID,
			}
		}
	}

	v.ID = uuid.NewString()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	r.s.versions[v.ID] = *v
	return nil
}

func (r *versionRepo) GetByID(_ context.Context, id string) (*media.Version, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.versions[id]
	if !ok {
		return nil, fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
	}
	return &v, nil
}

func (r *versionRepo) ListByAsset(_ context.Context, assetID string) ([]media.Version, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	versions := []media.Version{}
	for _, v := range r.s.versions {
		if v.AssetID == assetID {
			versions = append(versions, v)
		}
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].VersionNumber < versions[j].VersionNumber })
	return versions, nil
}

func (r *versionRepo) ListByAssets(_ context.Context, assetIDs []string) ([]media.Version, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[string]bool, len(assetIDs))
	for _, id := range assetIDs {
		wanted[id] = true
	}

	versions := []media.Version{}
	for _, v := range r.s.versions {
		if wanted[v.AssetID] {
			versions = append(versions, v)
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		if versions[i].AssetID != versions[j].AssetID {
			return versions[i].AssetID < versions[j].AssetID
		}
		return versions[i].VersionNumber < versions[j].VersionNumber
	})
	return versions, nil
}

func (r *versionRepo) MaxVersionNumber(_ context.Context, assetID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	max := 0
	for _, v := range r.s.versions {
		if v.AssetID == assetID && v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	return max, nil
}

func (r *versionRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.versions[id]; !ok {
		return fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.versions, id)
	return nil
}

type collaboratorRepo struct{ s *Store }

func (r *collaboratorRepo) GetRole(_ context.Context, projectID, userID string) (models.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if owner, ok := r.s.projectOwners[projectID]; ok && owner == userID {
		return models.RoleOwner, nil
	}
	if role, ok := r.s.collaborators[projectID+"/"+userID]; ok {
		return role, nil
	}
	return "", fmt.Errorf("membership of %s in project %s: %w", userID, projectID, domain.ErrNotFound)
}
