package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cutroom/internal/domain"
	models "cutroom/internal/domain/models/media"
	"cutroom/internal/domain/repositories"
	mediaRepo "cutroom/internal/domain/repositories/media"
	"cutroom/internal/domain/services"
	mediaSvc "cutroom/internal/domain/services/media"
)

type folderService struct {
	folderRepo mediaRepo.FolderRepository
	assetRepo  mediaRepo.AssetRepository
	txManager  repositories.TransactionManager
	locks      repositories.LockManager
	authorizer services.Authorizer
	maxDepth   int
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo mediaRepo.FolderRepository,
	assetRepo mediaRepo.AssetRepository,
	txManager repositories.TransactionManager,
	locks repositories.LockManager,
	authorizer services.Authorizer,
	maxDepth int,
	logger *slog.Logger,
) mediaSvc.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		assetRepo:  assetRepo,
		txManager:  txManager,
		locks:      locks,
		authorizer: authorizer,
		maxDepth:   maxDepth,
		logger:     logger,
	}
}

// CreateFolder creates a folder at the project root or under req.ParentID
func (s *folderService) CreateFolder(ctx context.Context, req *mediaSvc.CreateFolderRequest) (*models.FolderWithCounts, error) {
	req.Name = strings.TrimSpace(req.Name)
	// Normalize empty string to nil for root-level folders
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	if err := validateCreateFolder(req); err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(ctx, req.ActorID, req.ProjectID, services.ActionFolderCreate); err != nil {
		return nil, err
	}

	now := time.Now()
	folder := &models.Folder{
		ProjectID:   req.ProjectID,
		ParentID:    req.ParentID,
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   req.ActorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		release, err := s.locks.Lock(txCtx, repositories.ProjectLockKey(req.ProjectID))
		if err != nil {
			return err
		}
		defer release()

		// Parent must exist in the same project and leave room for one more level
		if req.ParentID != nil {
			parentDepth, err := folderDepth(txCtx, s.folderRepo, req.ProjectID, *req.ParentID, s.maxDepth)
			if err != nil {
				return fmt.Errorf("parent folder: %w", err)
			}
			if parentDepth+1 > s.maxDepth {
				return fmt.Errorf("%w: folders may be nested at most %d levels deep", domain.ErrValidation, s.maxDepth)
			}
		}

		if err := s.checkNameAvailable(txCtx, req.ProjectID, req.ParentID, req.Name, ""); err != nil {
			return err
		}

		return s.folderRepo.Create(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	folder.Path = s.displayPath(ctx, folder)

	s.logger.Info("folder created",
		"folder_id", folder.ID,
		"name", folder.Name,
		"project_id", folder.ProjectID,
		"parent_id", folder.ParentID,
		"actor_id", req.ActorID,
	)

	return &models.FolderWithCounts{Folder: *folder}, nil
}

// GetFolder retrieves a folder with its counts and path
func (s *folderService) GetFolder(ctx context.Context, actorID, folderID string) (*models.FolderWithCounts, error) {
	folder, err := s.folderRepo.GetByIDOnly(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(ctx, actorID, folder.ProjectID, services.ActionFolderRead); err != nil {
		return nil, err
	}

	childCount, err := s.folderRepo.CountChildren(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	assetCount, err := s.assetRepo.CountByFolder(ctx, folder.ID)
	if err != nil {
		return nil, err
	}

	folder.Path = s.displayPath(ctx, folder)

	return &models.FolderWithCounts{
		Folder:     *folder,
		ChildCount: childCount,
		AssetCount: assetCount,
	}, nil
}

// MoveFolder renames and/or reparents a folder. All checks run before the single write.
func (s *folderService) MoveFolder(ctx context.Context, req *mediaSvc.MoveFolderRequest) (*models.Folder, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := validateMoveFolder(req); err != nil {
		return nil, err
	}

	existing, err := s.folderRepo.GetByIDOnly(ctx, req.FolderID)
	if err != nil {
		return nil, err
	}
	projectID := existing.ProjectID

	if err := s.authorizer.Authorize(ctx, req.ActorID, projectID, services.ActionFolderMove); err != nil {
		return nil, err
	}

	var folder *models.Folder
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		release, err := s.locks.Lock(txCtx, repositories.ProjectLockKey(projectID))
		if err != nil {
			return err
		}
		defer release()

		// Re-read under the lock; the unlocked read only resolved the project
		folder, err = s.folderRepo.GetByID(txCtx, req.FolderID, projectID)
		if err != nil {
			return err
		}

		targetParent := folder.ParentID
		if req.ParentID.Present {
			targetParent = req.ParentID.Value
			if targetParent != nil && *targetParent == "" {
				targetParent = nil
			}
		}
		targetName := folder.Name
		if req.Name != nil {
			targetName = *req.Name
		}

		if !sameParent(targetParent, folder.ParentID) {
			if err := s.checkPlacement(txCtx, projectID, folder.ID, targetParent); err != nil {
				return err
			}
		}

		if err := s.checkNameAvailable(txCtx, projectID, targetParent, targetName, folder.ID); err != nil {
			return err
		}

		folder.ParentID = targetParent
		folder.Name = targetName
		if req.Description != nil {
			folder.Description = req.Description
		}
		folder.UpdatedAt = time.Now()

		return s.folderRepo.Update(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	folder.Path = s.displayPath(ctx, folder)

	s.logger.Info("folder moved",
		"folder_id", folder.ID,
		"name", folder.Name,
		"project_id", projectID,
		"parent_id", folder.ParentID,
		"actor_id", req.ActorID,
	)

	return folder, nil
}

// GetTree builds the nested folder/asset tree for a project
func (s *folderService) GetTree(ctx context.Context, actorID, projectID string) (*models.Tree, error) {
	if err := s.authorizer.Authorize(ctx, actorID, projectID, services.ActionFolderRead); err != nil {
		return nil, err
	}

	allFolders, err := s.folderRepo.GetAllByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	allAssets, err := s.assetRepo.GetAllByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	tree, omitted := buildTree(allFolders, allAssets)
	if omitted > 0 {
		s.logger.Warn("folders with unreachable parents omitted from tree",
			"project_id", projectID,
			"omitted_count", omitted,
		)
	}

	s.logger.Debug("project tree built",
		"project_id", projectID,
		"folder_count", len(allFolders),
		"asset_count", len(allAssets),
	)

	return tree, nil
}

// GetPath returns the ancestor chain of a folder, root first
func (s *folderService) GetPath(ctx context.Context, actorID, folderID string) (*models.FolderPath, error) {
	folder, err := s.folderRepo.GetByIDOnly(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(ctx, actorID, folder.ProjectID, services.ActionFolderRead); err != nil {
		return nil, err
	}

	chain, err := s.ancestry(ctx, folder.ProjectID, folder.ID)
	if err != nil {
		return nil, err
	}

	return &models.FolderPath{Folders: chain, Path: joinPath(chain)}, nil
}

// ancestry returns folderID and its ancestors, root first
func (s *folderService) ancestry(ctx context.Context, projectID, folderID string) ([]models.Folder, error) {
	var reversed []models.Folder
	err := walkAncestors(ctx, s.folderRepo, projectID, folderID, s.maxDepth, func(f *models.Folder) bool {
		reversed = append(reversed, *f)
		return true
	})
	if err != nil {
		return nil, err
	}

	chain := make([]models.Folder, len(reversed))
	for i, f := range reversed {
		chain[len(reversed)-1-i] = f
	}
	return chain, nil
}

func joinPath(chain []models.Folder) string {
	names := make([]string, len(chain))
	for i, f := range chain {
		names[i] = f.Name
	}
	return strings.Join(names, "/")
}

// displayPath computes the folder's path, falling back to its name
func (s *folderService) displayPath(ctx context.Context, folder *models.Folder) string {
	chain, err := s.ancestry(ctx, folder.ProjectID, folder.ID)
	if err != nil {
		s.logger.Warn("failed to compute path", "folder_id", folder.ID, "error", err)
		return folder.Name
	}
	return joinPath(chain)
}

// checkPlacement validates moving folderID under newParentID (nil for the root):
// the parent must exist, must not be the folder or one of its descendants, and the
// moved subtree must still fit within the depth cap
func (s *folderService) checkPlacement(ctx context.Context, projectID, folderID string, newParentID *string) error {
	parentDepth := 0
	if newParentID != nil {
		var err error
		parentDepth, err = s.checkNoCycle(ctx, projectID, folderID, *newParentID)
		if err != nil {
			return err
		}
	}

	_, height, err := walkSubtree(ctx, s.folderRepo, projectID, folderID, s.maxDepth)
	if err != nil {
		return err
	}
	if parentDepth+height > s.maxDepth {
		return fmt.Errorf("%w: moving this folder would nest folders deeper than %d levels", domain.ErrValidation, s.maxDepth)
	}
	return nil
}

// checkNoCycle rejects moving folderID under newParentID when that would make it its own
// ancestor, and returns the depth of newParentID
func (s *folderService) checkNoCycle(ctx context.Context, projectID, folderID, newParentID string) (int, error) {
	if folderID == newParentID {
		return 0, fmt.Errorf("%w: cannot move folder to be its own parent", domain.ErrValidation)
	}

	cycle := false
	depth := 0
	err := walkAncestors(ctx, s.folderRepo, projectID, newParentID, s.maxDepth, func(f *models.Folder) bool {
		if f.ID == folderID {
			cycle = true
			return false
		}
		depth++
		return true
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("target parent folder: %w", err)
		}
		return 0, err
	}
	if cycle {
		return 0, fmt.Errorf("%w: cannot move folder to be a child of its own descendant", domain.ErrValidation)
	}
	return depth, nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// checkNameAvailable fails with a conflict if another folder already uses name at the level
func (s *folderService) checkNameAvailable(ctx context.Context, projectID string, parentID *string, name, selfID string) error {
	existing, err := s.folderRepo.FindByNameAndParent(ctx, projectID, parentID, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
			ResourceType: "folder",
			ResourceID:   existing.ID,
		}
	}
	return nil
}
